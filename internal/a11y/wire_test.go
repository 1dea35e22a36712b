package a11y

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeProfile_AcceptsBooleansAndIntegers(t *testing.T) {
	asBools := `{
		"profileId": "p-1", "profileName": "Low vision", "description": "night",
		"contrastLevel": 2, "textSizeLevel": 1, "textSpacingLevel": 0, "lineHeightLevel": 2,
		"textAlign": "center",
		"screenReader": true, "smartContrast": false, "highlightLinks": true, "cursorHighlight": false
	}`
	asInts := strings.NewReplacer("true", "1", "false", "0").Replace(asBools)

	a, err := DecodeProfile(strings.NewReader(asBools))
	require.NoError(t, err)
	b, err := DecodeProfile(strings.NewReader(asInts))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Equal(t, "p-1", a.ID)
	assert.Equal(t, "Low vision", a.Name)
	assert.Equal(t, 2, a.ContrastLevel)
	assert.Equal(t, AlignCenter, a.TextAlign)
	assert.True(t, a.ScreenReader)
	assert.True(t, a.HighlightLinks)
	assert.False(t, a.SmartContrast)
}

func TestDecodeProfile_RejectsAmbiguousToggle(t *testing.T) {
	_, err := DecodeProfile(strings.NewReader(`{"profileName":"x","screenReader":2}`))
	assert.Error(t, err)

	_, err = DecodeProfile(strings.NewReader(`{"profileName":"x","textSizeLevel":1.5}`))
	assert.Error(t, err)
}

func TestDecodeProfile_MissingFieldsUseDefaults(t *testing.T) {
	p, err := DecodeProfile(strings.NewReader(`{"profileName":"Plain","description":null}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultModel().DefaultBundle(), p.Bundle)
	assert.Equal(t, "", p.Description)
}

func TestProfileEncoding_IsFlatWithBooleans(t *testing.T) {
	p := Profile{ID: "p-2", Name: "Focus", Bundle: Bundle{TextAlign: AlignRight, CursorHighlight: true}}
	data, err := json.Marshal(p)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, true, flat["cursorHighlight"])
	assert.Equal(t, "right", flat["textAlign"])
	assert.NotContains(t, flat, "Bundle")

	back, err := DecodeProfileBytes(data)
	require.NoError(t, err)
	assert.Equal(t, p, back)
}

func TestDecodeProfiles(t *testing.T) {
	list, err := DecodeProfiles(strings.NewReader(`[{"profileId":"a","profileName":"A","highlightLinks":1},{"profileId":"b","profileName":"B"}]`))
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].HighlightLinks)
	assert.Equal(t, "b", list[1].ID)

	empty, err := DecodeProfiles(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, empty)
}
