package profiles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
	"github.com/keyxmakerx/a11y-engine/internal/apperror"
	"github.com/keyxmakerx/a11y-engine/internal/database"
)

// ProfileRepository defines the data access contract for profiles. Every
// method is scoped by owner: a profile ID belonging to another user behaves
// exactly like an unknown ID.
type ProfileRepository interface {
	ListByUser(ctx context.Context, userID string) ([]a11y.Profile, error)
	FindByID(ctx context.Context, userID, id string) (*a11y.Profile, error)
	NameExists(ctx context.Context, userID, name, excludeID string) (bool, error)
	Create(ctx context.Context, userID string, p *a11y.Profile) error
	Update(ctx context.Context, userID string, p *a11y.Profile) error
	Delete(ctx context.Context, userID, id string) error
}

// profileRepository implements ProfileRepository with MariaDB queries.
type profileRepository struct {
	db *sql.DB
}

// NewProfileRepository creates a profile repository backed by the given pool.
func NewProfileRepository(db *sql.DB) ProfileRepository {
	return &profileRepository{db: db}
}

// profileColumns is the column list shared by every SELECT, in scan order.
const profileColumns = `id, user_id, profile_name, description,
	contrast_level, text_size_level, text_spacing_level, line_height_level,
	text_align, screen_reader, smart_contrast, highlight_links, cursor_highlight`

// ListByUser returns the user's profiles ordered by name.
func (r *profileRepository) ListByUser(ctx context.Context, userID string) ([]a11y.Profile, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+profileColumns+` FROM a11y_profiles WHERE user_id = ? ORDER BY profile_name, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	profiles := []a11y.Profile{}
	for rows.Next() {
		var row profileRow
		if err := scanProfile(rows, &row); err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		profiles = append(profiles, row.toProfile())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profiles: %w", err)
	}
	return profiles, nil
}

// FindByID returns one of the user's profiles. Returns apperror.NotFound for
// unknown, malformed or foreign IDs.
func (r *profileRepository) FindByID(ctx context.Context, userID, id string) (*a11y.Profile, error) {
	if !validID(id) {
		return nil, apperror.NewNotFound("profile not found")
	}

	var row profileRow
	err := scanProfile(r.db.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM a11y_profiles WHERE id = ? AND user_id = ?`,
		id, userID,
	), &row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperror.NewNotFound("profile not found")
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	p := row.toProfile()
	return &p, nil
}

// NameExists reports whether the user already has a profile called name,
// ignoring the profile excludeID (pass "" on create).
func (r *profileRepository) NameExists(ctx context.Context, userID, name, excludeID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM a11y_profiles WHERE user_id = ? AND profile_name = ? AND id <> ?)`,
		userID, name, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking profile name: %w", err)
	}
	return exists, nil
}

// Create assigns p a fresh UUID and inserts it. The unique key on (user_id,
// profile_name) turns a lost race into a duplicate-name error.
func (r *profileRepository) Create(ctx context.Context, userID string, p *a11y.Profile) error {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO a11y_profiles (id, user_id, profile_name, description,
			contrast_level, text_size_level, text_spacing_level, line_height_level,
			text_align, screen_reader, smart_contrast, highlight_links, cursor_highlight)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, userID, p.Name, p.Description,
		p.ContrastLevel, p.TextSizeLevel, p.TextSpacingLevel, p.LineHeightLevel,
		string(p.TextAlign), p.ScreenReader, p.SmartContrast, p.HighlightLinks, p.CursorHighlight,
	)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return errDuplicateName()
		}
		return fmt.Errorf("inserting profile: %w", err)
	}

	p.ID = id
	return nil
}

// Update overwrites every field of the user's profile p.ID.
func (r *profileRepository) Update(ctx context.Context, userID string, p *a11y.Profile) error {
	if !validID(p.ID) {
		return apperror.NewNotFound("profile not found")
	}

	_, err := r.db.ExecContext(ctx,
		`UPDATE a11y_profiles SET profile_name = ?, description = ?,
			contrast_level = ?, text_size_level = ?, text_spacing_level = ?, line_height_level = ?,
			text_align = ?, screen_reader = ?, smart_contrast = ?, highlight_links = ?, cursor_highlight = ?
		 WHERE id = ? AND user_id = ?`,
		p.Name, p.Description,
		p.ContrastLevel, p.TextSizeLevel, p.TextSpacingLevel, p.LineHeightLevel,
		string(p.TextAlign), p.ScreenReader, p.SmartContrast, p.HighlightLinks, p.CursorHighlight,
		p.ID, userID,
	)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return errDuplicateName()
		}
		return fmt.Errorf("updating profile: %w", err)
	}
	return nil
}

// Delete removes the user's profile. Returns apperror.NotFound when nothing
// was deleted.
func (r *profileRepository) Delete(ctx context.Context, userID, id string) error {
	if !validID(id) {
		return apperror.NewNotFound("profile not found")
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM a11y_profiles WHERE id = ? AND user_id = ?`, id, userID,
	)
	if err != nil {
		return fmt.Errorf("deleting profile: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return apperror.NewNotFound("profile not found")
	}
	return nil
}

// --- Helpers ---

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanProfile(s scanner, row *profileRow) error {
	return s.Scan(
		&row.ID, &row.UserID, &row.Name, &row.Description,
		&row.ContrastLevel, &row.TextSizeLevel, &row.TextSpacingLevel, &row.LineHeightLevel,
		&row.TextAlign, &row.ScreenReader, &row.SmartContrast, &row.HighlightLinks, &row.CursorHighlight,
	)
}

func (row profileRow) toProfile() a11y.Profile {
	return a11y.Profile{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description,
		Bundle: a11y.Bundle{
			ContrastLevel:    row.ContrastLevel,
			TextSizeLevel:    row.TextSizeLevel,
			TextSpacingLevel: row.TextSpacingLevel,
			LineHeightLevel:  row.LineHeightLevel,
			TextAlign:        a11y.TextAlign(row.TextAlign),
			ScreenReader:     row.ScreenReader,
			SmartContrast:    row.SmartContrast,
			HighlightLinks:   row.HighlightLinks,
			CursorHighlight:  row.CursorHighlight,
		},
	}
}

// validID reports whether a path ID has the canonical 36-character UUID
// form the id column stores. Anything else cannot match a row.
func validID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}

func errDuplicateName() *apperror.AppError {
	return apperror.NewDuplicateName(FieldProfileName, "you already have a profile with this name")
}
