package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
	"github.com/keyxmakerx/a11y-engine/internal/a11y/effects"
	"github.com/keyxmakerx/a11y-engine/internal/a11y/panel"
	"github.com/keyxmakerx/a11y-engine/internal/browser"
)

// =============================================================================
// PREVIEW COMMAND - apply a saved profile to a live page
// =============================================================================

type previewFlags struct {
	url        string
	screenshot string
	presets    string
	headful    bool
	hold       time.Duration
}

func newPreviewCmd(opts *options) *cobra.Command {
	f := &previewFlags{}
	cmd := &cobra.Command{
		Use:   "preview <profileId>",
		Short: "Open a page in a browser with a saved profile applied",
		Long: `Loads the profile from the API, opens --url in a browser driven over the
DevTools protocol and applies the profile through the same store and effect
applicator the storefront uses. With --screenshot the result is captured to
a PNG; with --headful the window stays open for --hold or until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, opts, f, args[0])
		},
	}
	cmd.Flags().StringVar(&f.url, "url", "", "page to preview (required)")
	cmd.Flags().StringVar(&f.screenshot, "screenshot", "", "write a PNG of the previewed page")
	cmd.Flags().StringVar(&f.presets, "presets", opts.cfg.PresetsFile, "YAML effect presets (env A11Y_PRESETS_FILE)")
	cmd.Flags().BoolVar(&f.headful, "headful", false, "show the browser window")
	cmd.Flags().DurationVar(&f.hold, "hold", 0, "keep the page open this long after applying")
	_ = cmd.MarkFlagRequired("url")
	return cmd
}

func runPreview(cmd *cobra.Command, opts *options, f *previewFlags, id string) error {
	ctx := cmd.Context()
	model := a11y.DefaultModel()

	presets, err := effects.LoadPresets(f.presets, model)
	if err != nil {
		return err
	}

	store := a11y.NewStore(model)
	sel := panel.NewSelector(opts.client(), store, panel.LogNotifier{Logger: opts.logger})
	if err := sel.Refresh(ctx); err != nil {
		return err
	}
	if _, ok := findProfile(sel.Profiles(), id); !ok {
		return fmt.Errorf("profile %s: %w", id, panel.ErrUnknownProfile)
	}

	bcfg := browser.DefaultConfig()
	bcfg.Bin = opts.cfg.BrowserBin
	bcfg.ControlURL = opts.cfg.BrowserControlURL
	bcfg.Headless = !f.headful

	sess, err := browser.Open(ctx, bcfg, f.url, opts.logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	applicator := effects.NewApplicator(model, sess.Document(),
		effects.WithPresets(presets),
		effects.WithAnnouncer(sess.Announcer()),
		effects.WithFocusSource(sess.FocusSource()),
		effects.WithLogger(opts.logger),
	)
	applicator.Attach(store)
	defer applicator.Close()

	if err := sel.Apply(id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", titleStyle.Render("applied"), model.Describe(store.Current()))

	if f.screenshot != "" {
		if err := sess.Screenshot(f.screenshot); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "screenshot written to %s\n", f.screenshot)
	}

	if f.hold > 0 {
		timer := time.NewTimer(f.hold)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			if !errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
		}
	}
	return nil
}
