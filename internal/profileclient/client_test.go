package profileclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/keyxmakerx/a11y-engine/internal/a11y"
)

// fakeStore is a minimal in-memory implementation of the profile endpoints.
// It stores raw JSON objects so tests can check what went over the wire.
type fakeStore struct {
	mu     sync.Mutex
	token  string
	nextID int
	rows   map[string]map[string]any
	order  []string
}

func newFakeStore(token string) *fakeStore {
	return &fakeStore{token: token, rows: make(map[string]map[string]any)}
}

func writeErr(w http.ResponseWriter, status int, typ, field, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": http.StatusText(status), "message": msg, "type": typ, "field": field,
	})
}

func (f *fakeStore) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer "+f.token {
		writeErr(w, http.StatusUnauthorized, "unauthorized", "", "login required")
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/users/me/a11y/profiles")
	id = strings.TrimPrefix(id, "/")

	switch {
	case r.Method == http.MethodGet && id == "":
		out := make([]map[string]any, 0, len(f.order))
		for _, k := range f.order {
			out = append(out, f.rows[k])
		}
		_ = json.NewEncoder(w).Encode(out)

	case r.Method == http.MethodPost && id == "":
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeErr(w, http.StatusBadRequest, "bad_request", "", "malformed json")
			return
		}
		if f.nameTaken(body["profileName"], "") {
			writeErr(w, http.StatusConflict, "duplicate_name", "profileName", "name already used")
			return
		}
		f.nextID++
		newID := "p" + strconv.Itoa(f.nextID)
		body["profileId"] = newID
		f.rows[newID] = body
		f.order = append(f.order, newID)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(body)

	case r.Method == http.MethodPut:
		if _, ok := f.rows[id]; !ok {
			writeErr(w, http.StatusNotFound, "not_found", "", "no such profile")
			return
		}
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		if f.nameTaken(body["profileName"], id) {
			writeErr(w, http.StatusConflict, "duplicate_name", "profileName", "name already used")
			return
		}
		body["profileId"] = id
		f.rows[id] = body
		w.WriteHeader(http.StatusNoContent)

	case r.Method == http.MethodDelete:
		if _, ok := f.rows[id]; !ok {
			writeErr(w, http.StatusNotFound, "not_found", "", "no such profile")
			return
		}
		delete(f.rows, id)
		for i, k := range f.order {
			if k == id {
				f.order = append(f.order[:i], f.order[i+1:]...)
				break
			}
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *fakeStore) row(id string) map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[id]
}

func (f *fakeStore) nameTaken(name any, except string) bool {
	for id, row := range f.rows {
		if id != except && row["profileName"] == name {
			return true
		}
	}
	return false
}

func newTestClient(t *testing.T, h http.Handler, token string) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Config{BaseURL: srv.URL + "/api/v1/", Token: token, RetryMax: 0})
}

func TestClient_RoundTrip(t *testing.T) {
	store := newFakeStore("tok")
	c := newTestClient(t, store, "tok")
	ctx := context.Background()

	b := a11y.DefaultModel().DefaultBundle()
	b.ContrastLevel = 2
	b.TextAlign = a11y.AlignRight
	b.HighlightLinks = true

	created, err := c.Create(ctx, a11y.Profile{Name: "Evening", Description: "dim", Bundle: b})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, b, created.Bundle)

	// Booleans go over the wire as JSON booleans.
	assert.Equal(t, true, store.row(created.ID)["highlightLinks"])
	assert.Equal(t, false, store.row(created.ID)["screenReader"])

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, created, list[0])

	created.Name = "Night"
	created.Bundle.LineHeightLevel = 1
	updated, err := c.Update(ctx, created)
	require.NoError(t, err)
	assert.Equal(t, created, updated)

	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Night", list[0].Name)
	assert.Equal(t, 1, list[0].LineHeightLevel)

	require.NoError(t, c.Delete(ctx, created.ID))
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestClient_DuplicateNameIsDistinct(t *testing.T) {
	store := newFakeStore("tok")
	c := newTestClient(t, store, "tok")
	ctx := context.Background()

	p := a11y.Profile{Name: "Evening", Bundle: a11y.DefaultModel().DefaultBundle()}
	_, err := c.Create(ctx, p)
	require.NoError(t, err)

	_, err = c.Create(ctx, p)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateName)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "profileName", apiErr.Field)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1, "the rejected create must not add a profile")
}

func TestClient_StatusMapping(t *testing.T) {
	store := newFakeStore("tok")
	ctx := context.Background()

	_, err := newTestClient(t, store, "wrong").List(ctx)
	assert.ErrorIs(t, err, ErrUnauthorized)

	c := newTestClient(t, store, "tok")
	err = c.Delete(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Update(ctx, a11y.Profile{ID: "missing", Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Update(ctx, a11y.Profile{Name: "no id"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClient_ValidationError(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeErr(w, http.StatusUnprocessableEntity, "validation_error", "textSizeLevel", "level must be between 0 and 2")
	})
	_, err := newTestClient(t, h, "").Create(context.Background(), a11y.Profile{Name: "x"})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, "textSizeLevel", apiErr.Field)
	assert.Equal(t, "level must be between 0 and 2", apiErr.Message)
}

func TestClient_AcceptsIntegerBooleans(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `[{"profileId":"7","profileName":"Legacy","description":null,
			"contrastLevel":1,"textSizeLevel":2,"textSpacingLevel":0,"lineHeightLevel":0,
			"textAlign":"center","screenReader":1,"smartContrast":0,"highlightLinks":true,"cursorHighlight":0}]`)
	})
	list, err := newTestClient(t, h, "").List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].ScreenReader)
	assert.False(t, list[0].SmartContrast)
	assert.True(t, list[0].HighlightLinks)
	assert.Equal(t, a11y.AlignCenter, list[0].TextAlign)
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL + "/api/v1", RetryMax: 3, RetryWait: time.Millisecond})
	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClient_CreateIsNotRepeated(t *testing.T) {
	var posts, gets atomic.Int32
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			posts.Add(1)
		} else {
			gets.Add(1)
		}
		// The row may have been written before the failure.
		w.WriteHeader(http.StatusInternalServerError)
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL + "/api/v1", RetryMax: 3, RetryWait: time.Millisecond})
	_, err := c.Create(context.Background(), a11y.Profile{Name: "Once", Bundle: a11y.DefaultModel().DefaultBundle()})
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, int32(1), posts.Load())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)

	// The same client still retries reads.
	_, err = c.List(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
	assert.Equal(t, int32(4), gets.Load())
}

func TestClient_ExhaustedRetriesAreNetworkErrors(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c := New(Config{BaseURL: srv.URL, RetryMax: 1, RetryWait: time.Millisecond})
	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}

func TestClient_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c := New(Config{BaseURL: base, RetryMax: 0})
	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, ErrNetwork)
}
