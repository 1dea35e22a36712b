package profiles

import (
	"testing"

	"github.com/google/uuid"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

func TestValidID(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"3f1c2b8e-5d4a-4c6b-9e7f-0a1b2c3d4e5f", true},
		{uuid.NewString(), true},
		{"12", false},
		{"0", false},
		{"abc", false},
		{"", false},
		{"3f1c2b8e5d4a4c6b9e7f0a1b2c3d4e5f", false},
		{"{3f1c2b8e-5d4a-4c6b-9e7f-0a1b2c3d4e5f}", false},
		{"urn:uuid:3f1c2b8e-5d4a-4c6b-9e7f-0a1b2c3d4e5f", false},
	}
	for _, tt := range tests {
		if got := validID(tt.in); got != tt.ok {
			t.Errorf("validID(%q) = %v; want %v", tt.in, got, tt.ok)
		}
	}
}

func TestProfileRowToProfile(t *testing.T) {
	id := "3f1c2b8e-5d4a-4c6b-9e7f-0a1b2c3d4e5f"
	row := profileRow{
		ID: id, UserID: "u1", Name: "Low vision",
		ContrastLevel: 2, TextSizeLevel: 2, TextAlign: "center", CursorHighlight: true,
	}
	p := row.toProfile()
	if p.ID != id || p.Name != "Low vision" {
		t.Errorf("unexpected identity %s/%s", p.ID, p.Name)
	}
	if p.TextAlign != a11y.AlignCenter || !p.CursorHighlight || p.TextSizeLevel != 2 {
		t.Errorf("unexpected bundle %+v", p.Bundle)
	}
	if err := a11y.DefaultModel().Validate(p.Bundle); err != nil {
		t.Errorf("stored row should decode to a valid bundle: %v", err)
	}
}
