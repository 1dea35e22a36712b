package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
	"github.com/keyxmakerx/a11y-engine/internal/a11y/panel"
)

// =============================================================================
// PROFILE COMMANDS - CRUD against the profile store
// =============================================================================

func newProfilesCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "profiles",
		Aliases: []string{"p"},
		Short:   "List, create, update and delete saved profiles",
	}
	cmd.AddCommand(
		newProfilesListCmd(opts),
		newProfilesCreateCmd(opts),
		newProfilesUpdateCmd(opts),
		newProfilesDeleteCmd(opts),
	)
	return cmd
}

func newProfilesListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your saved profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model := a11y.DefaultModel()
			sel := panel.NewSelector(opts.client(), a11y.NewStore(model), panel.LogNotifier{Logger: opts.logger})
			if err := sel.Refresh(cmd.Context()); err != nil {
				return err
			}

			profiles := sel.Profiles()
			out := cmd.OutOrStdout()
			if len(profiles) == 0 {
				fmt.Fprintln(out, mutedStyle.Render("no saved profiles"))
				return nil
			}

			t := &table{title: "Accessibility profiles", headers: []string{"ID", "NAME", "SETTINGS"}}
			for _, p := range profiles {
				t.add(p.ID, p.Name, model.Describe(p.Bundle))
			}
			fmt.Fprint(out, t.String())
			return nil
		},
	}
}

func newProfilesCreateCmd(opts *options) *cobra.Command {
	var (
		name, description string
		settings          settingFlags
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Save a new profile from the given settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := a11y.NewStore(a11y.DefaultModel())
			if err := settings.apply(cmd, store); err != nil {
				return err
			}

			ed := panel.NewEditor(opts.client(), store, panel.LogNotifier{Logger: opts.logger})
			ed.OpenNew()
			ed.SetName(name)
			ed.SetDescription(description)

			saved, err := ed.Save(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created profile %s (%s)\n", saved.ID, saved.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "profile name (required)")
	cmd.Flags().StringVar(&description, "description", "", "free-text description")
	_ = cmd.MarkFlagRequired("name")
	settings.register(cmd)
	return cmd
}

func newProfilesUpdateCmd(opts *options) *cobra.Command {
	var (
		name, description string
		settings          settingFlags
	)
	cmd := &cobra.Command{
		Use:   "update <profileId>",
		Short: "Change a saved profile; unset flags keep their stored values",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			notify := panel.LogNotifier{Logger: opts.logger}
			store := a11y.NewStore(a11y.DefaultModel())

			sel := panel.NewSelector(client, store, notify)
			if err := sel.Refresh(cmd.Context()); err != nil {
				return err
			}
			current, ok := findProfile(sel.Profiles(), args[0])
			if !ok {
				return fmt.Errorf("profile %s: %w", args[0], panel.ErrUnknownProfile)
			}

			ed := panel.NewEditor(client, store, notify, panel.WithOnSaved(sel.Remember))
			if err := ed.OpenExisting(current); err != nil {
				return err
			}
			if err := settings.apply(cmd, store); err != nil {
				ed.Cancel()
				return err
			}
			if cmd.Flags().Changed("name") {
				ed.SetName(name)
			}
			if cmd.Flags().Changed("description") {
				ed.SetDescription(description)
			}

			saved, err := ed.Save(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "updated profile %s (%s)\n", saved.ID, saved.Name)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "new profile name")
	cmd.Flags().StringVar(&description, "description", "", "new description")
	settings.register(cmd)
	return cmd
}

func newProfilesDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <profileId>",
		Short: "Delete a saved profile",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sel := panel.NewSelector(opts.client(), a11y.NewStore(a11y.DefaultModel()), panel.LogNotifier{Logger: opts.logger})
			if err := sel.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted profile %s\n", args[0])
			return nil
		},
	}
}

func findProfile(profiles []a11y.Profile, id string) (a11y.Profile, bool) {
	for _, p := range profiles {
		if p.ID == id {
			return p, true
		}
	}
	return a11y.Profile{}, false
}

// --- Settings flags ---

// settingFlags binds one flag per dimension. Only flags the user set are
// applied, so updates keep the stored value of everything else.
type settingFlags struct {
	contrast      string
	textSize      int
	textSpacing   int
	lineHeight    int
	align         string
	screenReader  bool
	smartContrast bool
	links         bool
	cursor        bool
}

func (f *settingFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.contrast, "contrast", "", "contrast mode name or level (none, inverted, high-contrast, dark)")
	fs.IntVar(&f.textSize, "text-size", 0, "text size level 0-2")
	fs.IntVar(&f.textSpacing, "text-spacing", 0, "letter and word spacing level 0-2")
	fs.IntVar(&f.lineHeight, "line-height", 0, "line height level 0-2")
	fs.StringVar(&f.align, "align", "", "text alignment: left, center or right")
	fs.BoolVar(&f.screenReader, "screen-reader", false, "announce focused elements")
	fs.BoolVar(&f.smartContrast, "smart-contrast", false, "adapt contrast to the page background")
	fs.BoolVar(&f.links, "highlight-links", false, "outline every link")
	fs.BoolVar(&f.cursor, "cursor-highlight", false, "enlarge the mouse cursor")
}

// apply writes every changed flag into store through SetDimension, so the
// store's own validation rejects out-of-range values.
func (f *settingFlags) apply(cmd *cobra.Command, store *a11y.Store) error {
	fs := cmd.Flags()
	set := func(flag string, d a11y.Dimension, v any) error {
		if !fs.Changed(flag) {
			return nil
		}
		if err := store.SetDimension(d, v); err != nil {
			return fmt.Errorf("--%s: %w", flag, err)
		}
		return nil
	}

	if fs.Changed("contrast") {
		level, err := contrastLevel(store.Model(), f.contrast)
		if err != nil {
			return err
		}
		if err := store.SetDimension(a11y.DimContrast, level); err != nil {
			return fmt.Errorf("--contrast: %w", err)
		}
	}

	for _, s := range []struct {
		flag string
		dim  a11y.Dimension
		v    any
	}{
		{"text-size", a11y.DimTextSize, f.textSize},
		{"text-spacing", a11y.DimTextSpacing, f.textSpacing},
		{"line-height", a11y.DimLineHeight, f.lineHeight},
		{"align", a11y.DimTextAlign, f.align},
		{"screen-reader", a11y.DimScreenReader, f.screenReader},
		{"smart-contrast", a11y.DimSmartContrast, f.smartContrast},
		{"highlight-links", a11y.DimHighlightLinks, f.links},
		{"cursor-highlight", a11y.DimCursorHighlight, f.cursor},
	} {
		if err := set(s.flag, s.dim, s.v); err != nil {
			return err
		}
	}
	return nil
}

// contrastLevel accepts a mode name or a numeric level.
func contrastLevel(model a11y.Model, s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	for i, mode := range model.ContrastModes() {
		if strings.EqualFold(mode, s) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("--contrast: unknown mode %q (want one of %s)", s, strings.Join(model.ContrastModes(), ", "))
}
