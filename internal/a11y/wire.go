package a11y

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/go-viper/mapstructure/v2"
)

// Profile is a named, persisted bundle owned by a user. On the wire the
// bundle fields are flattened next to the profile fields.
type Profile struct {
	ID          string `json:"profileId,omitempty"`
	Name        string `json:"profileName"`
	Description string `json:"description"`
	Bundle
}

// DecodeProfile reads one flattened profile object. The four toggles are
// accepted either as JSON booleans or as 0/1 integers, since both encodings
// are in circulation. Fields missing from the object keep their default
// values. Encoding always writes booleans (plain encoding/json).
func DecodeProfile(r io.Reader) (Profile, error) {
	var raw map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Profile{}, fmt.Errorf("decoding profile json: %w", err)
	}
	return profileFromMap(raw)
}

// DecodeProfiles reads a JSON array of flattened profile objects.
func DecodeProfiles(r io.Reader) ([]Profile, error) {
	var raws []map[string]any
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&raws); err != nil {
		return nil, fmt.Errorf("decoding profile list json: %w", err)
	}

	profiles := make([]Profile, 0, len(raws))
	for i, raw := range raws {
		p, err := profileFromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// DecodeProfileBytes is DecodeProfile for an in-memory body.
func DecodeProfileBytes(data []byte) (Profile, error) {
	return DecodeProfile(bytes.NewReader(data))
}

// profileFromMap decodes a generic JSON object into a Profile starting from
// the default bundle.
func profileFromMap(raw map[string]any) (Profile, error) {
	p := Profile{Bundle: DefaultModel().DefaultBundle()}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:    "json",
		Squash:     true,
		DecodeHook: wireHook,
		Result:     &p,
	})
	if err != nil {
		return Profile{}, fmt.Errorf("building profile decoder: %w", err)
	}
	if err := dec.Decode(raw); err != nil {
		return Profile{}, fmt.Errorf("decoding profile fields: %w", err)
	}
	return p, nil
}

// wireHook converts json.Number values for boolean targets: 0 is false,
// 1 is true, anything else is rejected rather than guessed.
func wireHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	n, ok := data.(json.Number)
	if !ok || to.Kind() != reflect.Bool {
		return data, nil
	}
	switch n.String() {
	case "0":
		return false, nil
	case "1":
		return true, nil
	}
	return nil, fmt.Errorf("cannot use %s as a boolean, expected 0 or 1", n)
}
