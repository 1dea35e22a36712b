package profiles

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

// ProfileListPage renders the signed-in user's saved profiles as a plain
// HTML page. Every user-supplied string goes through templ.EscapeString.
func ProfileListPage(userName string, profiles []a11y.Profile, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		model := a11y.DefaultModel()
		var b strings.Builder

		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		fmt.Fprintf(&b, `<meta name="csrf-token" content="%s">`, templ.EscapeString(csrfToken))
		b.WriteString(`<title>Accessibility profiles</title></head><body><main>`)

		if userName != "" {
			fmt.Fprintf(&b, `<h1>Accessibility profiles for %s</h1>`, templ.EscapeString(userName))
		} else {
			b.WriteString(`<h1>Accessibility profiles</h1>`)
		}

		if len(profiles) == 0 {
			b.WriteString(`<p>No saved profiles yet.</p>`)
		} else {
			b.WriteString(`<ul class="a11y-profiles">`)
			for _, p := range profiles {
				fmt.Fprintf(&b, `<li data-profile-id="%s"><h2>%s</h2>`,
					templ.EscapeString(p.ID), templ.EscapeString(p.Name))
				if p.Description != "" {
					fmt.Fprintf(&b, `<p>%s</p>`, templ.EscapeString(p.Description))
				}
				fmt.Fprintf(&b, `<p class="summary">%s</p></li>`, templ.EscapeString(model.Describe(p.Bundle)))
			}
			b.WriteString(`</ul>`)
		}

		b.WriteString(`</main></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}
