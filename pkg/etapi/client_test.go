package etapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/strata/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetNote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/notes/n1", r.URL.Path)
		assert.Equal(t, "secret-token", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(core.NoteRecord{
			NoteID: "n1",
			Title:  "hello",
			Type:   "text",
			Mime:   "text/html",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, WithToken("secret-token"))
	rec, err := c.GetNote(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", rec.NoteID)
	assert.Equal(t, "hello", rec.Title)
}

func TestGetNoteNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"NOTE_NOT_FOUND","message":"no such note"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.GetNote(context.Background(), "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestServerErrorMapsToAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"code":"VALIDATION_ERROR","message":"title is required"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.CreateNote(context.Background(), &core.NoteRecord{})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
	assert.Contains(t, apiErr.Message, "title is required")
}

func TestCreateNoteReturnsAssignedID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/notes", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in core.NoteRecord
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Empty(t, in.NoteID)

		in.NoteID = "srv123"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	out, err := c.CreateNote(context.Background(), &core.NoteRecord{Title: "new", Type: "text"})
	require.NoError(t, err)
	assert.Equal(t, "srv123", out.NoteID)
	assert.Equal(t, "new", out.Title)
}

func TestPatchBranchTranslatesFieldNames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)

		var fields map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		assert.Equal(t, float64(20), fields["notePosition"])
		assert.NotContains(t, fields, "note_position")

		json.NewEncoder(w).Encode(core.BranchRecord{BranchID: "b1", NotePosition: 20})
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	out, err := c.PatchBranch(context.Background(), "b1", map[string]any{"note_position": 20})
	require.NoError(t, err)
	assert.Equal(t, 20, out.NotePosition)
}

func TestContentRoundTrip(t *testing.T) {
	var stored []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/notes/n1/content", r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			require.Equal(t, "text/plain", r.Header.Get("Content-Type"))
			stored, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusNoContent)
		case http.MethodGet:
			w.Write(stored)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	ctx := context.Background()
	require.NoError(t, c.PutContent(ctx, "n1", []byte("<p>body</p>")))
	got, err := c.GetContent(ctx, "n1")
	require.NoError(t, err)
	assert.Equal(t, "<p>body</p>", string(got))
}

// flakyTransport fails the first request, then delegates.
type flakyTransport struct {
	attempts int
	next     http.RoundTripper
}

func (f *flakyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	f.attempts++
	if f.attempts == 1 {
		return nil, fmt.Errorf("connection reset")
	}
	return f.next.RoundTrip(req)
}

func TestGetRetriesOnceOnTransportError(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		json.NewEncoder(w).Encode(core.NoteRecord{NoteID: "n1"})
	}))
	defer srv.Close()

	hc := &http.Client{Transport: &flakyTransport{next: http.DefaultTransport}}
	c := NewClient(srv.URL, WithHTTPClient(hc))
	rec, err := c.GetNote(context.Background(), "n1")
	require.NoError(t, err)
	assert.Equal(t, "n1", rec.NoteID)
	assert.Equal(t, 1, hits)
}

func TestWritesNeverRetry(t *testing.T) {
	ft := &flakyTransport{next: http.DefaultTransport}
	c := NewClient("http://localhost:0", WithHTTPClient(&http.Client{Transport: ft}))
	err := c.DeleteNote(context.Background(), "n1")
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrNotFound))
	assert.Equal(t, 1, ft.attempts)
}

func TestLoginInstallsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			require.Equal(t, "hunter2", in["password"])
			json.NewEncoder(w).Encode(map[string]string{"authToken": "tok42"})
		case "/notes/n1":
			assert.Equal(t, "tok42", r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(core.NoteRecord{NoteID: "n1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	token, err := c.Login(context.Background(), "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "tok42", token)

	_, err = c.GetNote(context.Background(), "n1")
	require.NoError(t, err)
}

func TestBackup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/backup/nightly", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	require.NoError(t, c.Backup(context.Background(), "nightly"))
}
