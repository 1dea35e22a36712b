package main

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
	"github.com/keyxmakerx/a11y-engine/internal/config"
)

// fakeAPI records the last write and serves a fixed profile list.
type fakeAPI struct {
	mu       sync.Mutex
	lastBody map[string]any
	lastPath string
	auth     string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.auth = r.Header.Get("Authorization")
	f.lastPath = r.Method + " " + r.URL.Path

	switch {
	case r.Method == http.MethodGet:
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"profileId":"1","profileName":"Night","description":"","contrastLevel":3,"textSizeLevel":0,"textSpacingLevel":0,"lineHeightLevel":0,"textAlign":"left","screenReader":0,"smartContrast":1,"highlightLinks":0,"cursorHighlight":0},
			{"profileId":"2","profileName":"Reading","description":"","contrastLevel":0,"textSizeLevel":2,"textSpacingLevel":1,"lineHeightLevel":2,"textAlign":"left","screenReader":false,"smartContrast":false,"highlightLinks":true,"cursorHighlight":false}
		]`)
	case r.Method == http.MethodPost || r.Method == http.MethodPut:
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.lastBody = body
		if r.Method == http.MethodPost {
			body["profileId"] = "9"
			w.WriteHeader(http.StatusCreated)
		}
		_ = json.NewEncoder(w).Encode(body)
	case r.Method == http.MethodDelete:
		if strings.HasSuffix(r.URL.Path, "/404") {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"error":"Not Found","message":"profile not found","type":"not_found"}`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// snapshot returns the recorded request under the lock.
func (f *fakeAPI) snapshot() (path, auth string, body map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastPath, f.auth, f.lastBody
}

func run(t *testing.T, api *fakeAPI, args ...string) (string, error) {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	root := newRootCmd(config.ClientConfig{
		APIURL:   srv.URL + "/api/v1",
		Token:    "tok",
		RetryMax: 0,
		Timeout:  5 * time.Second,
		LogLevel: "error",
	})
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestProfilesList(t *testing.T) {
	api := &fakeAPI{}
	out, err := run(t, api, "profiles", "list")
	require.NoError(t, err)

	assert.Contains(t, out, "Night")
	assert.Contains(t, out, "contrast: dark, smart contrast")
	assert.Contains(t, out, "text size 2, text spacing 1, line height 2, links highlighted")
	_, auth, _ := api.snapshot()
	assert.Equal(t, "Bearer tok", auth)
}

func TestProfilesCreate_SendsOnlyChangedSettings(t *testing.T) {
	api := &fakeAPI{}
	out, err := run(t, api, "profiles", "create", "--name", "Focus",
		"--contrast", "high-contrast", "--align", "center", "--cursor-highlight")
	require.NoError(t, err)

	path, _, body := api.snapshot()
	assert.Contains(t, out, "created profile 9 (Focus)")
	assert.Equal(t, "POST /api/v1/users/me/a11y/profiles", path)
	assert.Equal(t, "Focus", body["profileName"])
	assert.EqualValues(t, 2, body["contrastLevel"])
	assert.Equal(t, "center", body["textAlign"])
	assert.Equal(t, true, body["cursorHighlight"])
	assert.Equal(t, false, body["screenReader"])
}

func TestProfilesCreate_RejectsOutOfRangeLevel(t *testing.T) {
	api := &fakeAPI{}
	_, err := run(t, api, "profiles", "create", "--name", "Big", "--text-size", "3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--text-size")
	_, _, body := api.snapshot()
	assert.Empty(t, body, "nothing should be sent")
}

func TestProfilesUpdate_KeepsStoredValues(t *testing.T) {
	api := &fakeAPI{}
	out, err := run(t, api, "profiles", "update", "2", "--highlight-links=false")
	require.NoError(t, err)

	path, _, body := api.snapshot()
	assert.Contains(t, out, "updated profile 2 (Reading)")
	assert.Equal(t, "PUT /api/v1/users/me/a11y/profiles/2", path)
	assert.EqualValues(t, 2, body["textSizeLevel"])
	assert.Equal(t, false, body["highlightLinks"])
}

func TestProfilesUpdate_UnknownID(t *testing.T) {
	_, err := run(t, &fakeAPI{}, "profiles", "update", "77", "--name", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown profile")
}

func TestProfilesDelete(t *testing.T) {
	api := &fakeAPI{}
	out, err := run(t, api, "profiles", "delete", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted profile 2")

	_, err = run(t, api, "profiles", "delete", "404")
	require.Error(t, err)
}

func TestContrastLevel(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"dark", 3, true},
		{"INVERTED", 1, true},
		{"2", 2, true},
		{"sepia", 0, false},
	}
	for _, tt := range tests {
		got, err := contrastLevel(a11y.DefaultModel(), tt.in)
		if tt.ok {
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got, tt.in)
		} else {
			assert.Error(t, err, tt.in)
		}
	}
}

func TestTableAlignsColumns(t *testing.T) {
	tb := &table{headers: []string{"ID", "NAME"}}
	tb.add("1", "Night")
	tb.add("10", "Reading")
	lines := strings.Split(strings.TrimRight(tb.String(), "\n"), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "1   Night", lines[1])
	assert.Equal(t, "10  Reading", lines[2])
}
