// Package browser drives a real Chromium page through go-rod and exposes it
// as the effects ports: a Document whose root style is rewritten, an
// Announcer backed by the page's speech synthesis, and a FocusSource fed by
// focusin events. It is used by a11yctl preview to show a profile on a live
// page.
package browser

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config holds browser launch options.
type Config struct {
	// Bin is the browser executable. Empty lets the launcher find or
	// download one.
	Bin string

	// ControlURL connects to an already running browser instead of
	// launching one.
	ControlURL string

	Headless       bool
	ViewportWidth  int
	ViewportHeight int

	// NavigationTimeout bounds page loads.
	NavigationTimeout time.Duration
}

// DefaultConfig returns a headless 1280x800 setup.
func DefaultConfig() Config {
	return Config{
		Headless:          true,
		ViewportWidth:     1280,
		ViewportHeight:    800,
		NavigationTimeout: 30 * time.Second,
	}
}

// Session is one browser with one open page.
type Session struct {
	cfg      Config
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	logger   *slog.Logger
}

// Open launches (or connects to) a browser and navigates to url.
func Open(ctx context.Context, cfg Config, url string, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.ViewportWidth == 0 {
		cfg.ViewportWidth = 1280
	}
	if cfg.ViewportHeight == 0 {
		cfg.ViewportHeight = 800
	}
	if cfg.NavigationTimeout == 0 {
		cfg.NavigationTimeout = 30 * time.Second
	}

	s := &Session{cfg: cfg, logger: logger}

	controlURL := cfg.ControlURL
	if controlURL == "" {
		l := launcher.New().Headless(cfg.Headless)
		if cfg.Bin != "" {
			l = l.Bin(cfg.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launching browser: %w", err)
		}
		s.launcher = l
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		s.killLauncher()
		return nil, fmt.Errorf("connecting to browser: %w", err)
	}
	s.browser = b

	page, err := b.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("creating page: %w", err)
	}
	s.page = page

	if err := (proto.EmulationSetDeviceMetricsOverride{
		Width:             cfg.ViewportWidth,
		Height:            cfg.ViewportHeight,
		DeviceScaleFactor: 1,
	}).Call(page); err != nil {
		logger.Debug("viewport override failed", slog.Any("error", err))
	}

	nav := page.Context(ctx).Timeout(cfg.NavigationTimeout)
	if err := nav.Navigate(url); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("navigating to %s: %w", url, err)
	}
	if err := nav.WaitLoad(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("waiting for %s to load: %w", url, err)
	}

	logger.Info("browser page ready", slog.String("url", url), slog.Bool("headless", cfg.Headless))
	return s, nil
}

// Document returns the page as an effects.Document.
func (s *Session) Document() *Document {
	return &Document{page: s.page}
}

// Announcer returns the page's speech synthesis as an effects.Announcer.
func (s *Session) Announcer() *Announcer {
	return &Announcer{page: s.page, logger: s.logger}
}

// FocusSource returns the page's focus events as an effects.FocusSource.
func (s *Session) FocusSource() *FocusSource {
	return &FocusSource{page: s.page, logger: s.logger}
}

// Screenshot writes a PNG of the visible viewport to path.
func (s *Session) Screenshot(path string) error {
	data, err := s.page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return fmt.Errorf("capturing screenshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing screenshot: %w", err)
	}
	return nil
}

// Close shuts the browser down. Safe to call more than once.
func (s *Session) Close() error {
	var err error
	if s.browser != nil {
		err = s.browser.Close()
		s.browser = nil
	}
	s.killLauncher()
	return err
}

func (s *Session) killLauncher() {
	if s.launcher != nil {
		s.launcher.Kill()
		s.launcher = nil
	}
}
