// Package panel holds the presentation logic behind the accessibility
// profile panel: a Selector that lists and applies saved profiles, and an
// Editor that previews changes live on the active bundle and saves them as
// a profile. Rendering is left to the host; outcomes are reported through a
// Notifier as transient notices.
package panel

import (
	"context"
	"errors"
	"log/slog"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
	"github.com/keyxmakerx/a11y-engine/internal/profileclient"
)

// Gateway is the remote profile store. *profileclient.Client satisfies it.
type Gateway interface {
	List(ctx context.Context) ([]a11y.Profile, error)
	Create(ctx context.Context, p a11y.Profile) (a11y.Profile, error)
	Update(ctx context.Context, p a11y.Profile) (a11y.Profile, error)
	Delete(ctx context.Context, id string) error
}

// Level is the severity of a notice.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notice is one transient notification. Field is set when the notice
// belongs to a specific form input.
type Notice struct {
	Level   Level
	Message string
	Field   string
}

// Notifier shows notices to the user.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify calls f(n).
func (f NotifierFunc) Notify(n Notice) { f(n) }

// LogNotifier writes notices to a structured logger. Used by headless hosts
// such as the CLI.
type LogNotifier struct {
	Logger *slog.Logger
}

// Notify logs n at info or error level.
func (l LogNotifier) Notify(n Notice) {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attrs := []any{}
	if n.Field != "" {
		attrs = append(attrs, slog.String("field", n.Field))
	}
	if n.Level == LevelError {
		logger.Error(n.Message, attrs...)
		return
	}
	logger.Info(n.Message, attrs...)
}

// Field names used in notices.
const FieldProfileName = "profileName"

// User-facing messages.
const (
	msgGenericFailure = "Something went wrong. Please try again."
	msgNetwork        = "Could not reach the server. Check your connection and try again."
	msgUnauthorized   = "Please sign in to manage your profiles."
	msgDuplicateName  = "You already have a profile with this name."
	msgNotFound       = "That profile no longer exists."
	msgInvalidProfile = "This profile contains settings that cannot be applied."
	msgNameRequired   = "Give the profile a name."
)

// noticeFor turns a gateway failure into a notice. Duplicate names are
// attributed to the name field; everything else is a generic banner.
func noticeFor(err error) Notice {
	switch {
	case errors.Is(err, profileclient.ErrDuplicateName):
		return Notice{Level: LevelError, Message: msgDuplicateName, Field: FieldProfileName}
	case errors.Is(err, profileclient.ErrUnauthorized):
		return Notice{Level: LevelError, Message: msgUnauthorized}
	case errors.Is(err, profileclient.ErrNotFound):
		return Notice{Level: LevelError, Message: msgNotFound}
	case errors.Is(err, profileclient.ErrNetwork):
		return Notice{Level: LevelError, Message: msgNetwork}
	case errors.Is(err, a11y.ErrInvalidValue):
		return Notice{Level: LevelError, Message: msgInvalidProfile}
	}
	return Notice{Level: LevelError, Message: msgGenericFailure}
}

type nopNotifier struct{}

func (nopNotifier) Notify(Notice) {}

func orNop(n Notifier) Notifier {
	if n == nil {
		return nopNotifier{}
	}
	return n
}
