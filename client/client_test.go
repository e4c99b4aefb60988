package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingTokens counts Token calls so tests can verify the token is fetched
// fresh per request.
type countingTokens struct {
	calls atomic.Int32
	token string
	err   error
}

func (s *countingTokens) Token(context.Context) (string, error) {
	s.calls.Add(1)
	if s.err != nil {
		return "", s.err
	}
	return s.token, nil
}

func TestUploadFile(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/files/upload", r.URL.Path)
			assert.Equal(t, "Bearer session-token", r.Header.Get("Authorization"))

			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "user-a", r.FormValue("userId"))
			f, fh, err := r.FormFile("file")
			require.NoError(t, err)
			defer f.Close()
			assert.Equal(t, "cv.pdf", fh.Filename)

			json.NewEncoder(w).Encode(map[string]any{
				"success": true, "fileKey": "documents/user-a/1_t_cv.pdf",
				"fileName": "cv.pdf", "fileSize": 9, "fileType": "application/pdf",
			})
		}))
		defer srv.Close()

		tokens := &countingTokens{token: "session-token"}
		c, err := New(srv.URL, tokens)
		require.NoError(t, err)

		up, err := c.UploadFile(ctx, strings.NewReader("%PDF-data"), "cv.pdf", 9, "application/pdf", "user-a")
		require.NoError(t, err)
		assert.Equal(t, "documents/user-a/1_t_cv.pdf", up.FileKey)
		assert.Equal(t, int32(1), tokens.calls.Load())
	})

	t.Run("client-side size pre-check", func(t *testing.T) {
		c, _ := New("http://gateway.invalid", &countingTokens{token: "t"})
		_, err := c.UploadFile(ctx, strings.NewReader("x"), "big.pdf", DefaultMaxUploadSize+1, "application/pdf", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "maximum allowed size")
	})

	t.Run("client-side type pre-check", func(t *testing.T) {
		c, _ := New("http://gateway.invalid", &countingTokens{token: "t"})
		_, err := c.UploadFile(ctx, strings.NewReader("MZ"), "app.exe", 2, "application/octet-stream", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not supported")
	})

	t.Run("server rejection becomes APIError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(map[string]any{
				"success": false, "error": "file exceeds the maximum allowed size of 50 MB", "code": "FILE_TOO_LARGE",
			})
		}))
		defer srv.Close()

		c, _ := New(srv.URL, &countingTokens{token: "t"})
		_, err := c.UploadFile(ctx, strings.NewReader("x"), "cv.pdf", 1, "application/pdf", "")

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, "FILE_TOO_LARGE", apiErr.Code)
	})

	t.Run("token source failure", func(t *testing.T) {
		c, _ := New("http://gateway.invalid", &countingTokens{err: errors.New("no session")})
		_, err := c.UploadFile(ctx, strings.NewReader("x"), "cv.pdf", 1, "application/pdf", "")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "fetch session token")
	})
}

func TestSignURLs(t *testing.T) {
	ctx := context.Background()

	var lastBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/files/sign", r.URL.Path)
		json.NewDecoder(r.Body).Decode(&lastBody)
		json.NewEncoder(w).Encode(map[string]any{
			"success": true, "signedUrl": "https://store/signed", "expiresIn": 3600,
		})
	}))
	defer srv.Close()

	tokens := &countingTokens{token: "t"}
	c, err := New(srv.URL, tokens)
	require.NoError(t, err)

	t.Run("view url", func(t *testing.T) {
		u, err := c.ViewURL(ctx, "documents/user-a/1_t_cv.pdf", 0)
		require.NoError(t, err)
		assert.Equal(t, "https://store/signed", u)
		assert.Nil(t, lastBody["download"])
	})

	t.Run("download url sets flag and name", func(t *testing.T) {
		_, err := c.DownloadURL(ctx, "documents/user-a/1_t_cv.pdf", "cv.pdf", 120)
		require.NoError(t, err)
		assert.Equal(t, true, lastBody["download"])
		assert.Equal(t, "cv.pdf", lastBody["fileName"])
		assert.Equal(t, float64(120), lastBody["expiresIn"])
	})

	t.Run("token fetched fresh per call", func(t *testing.T) {
		before := tokens.calls.Load()
		c.ViewURL(ctx, "documents/user-a/1_t_cv.pdf", 0)
		c.ViewURL(ctx, "documents/user-a/1_t_cv.pdf", 0)
		assert.Equal(t, before+2, tokens.calls.Load())
	})
}

func TestDeleteFile(t *testing.T) {
	ctx := context.Background()

	newServer := func(status int, body map[string]any) *httptest.Server {
		return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/files/delete", r.URL.Path)
			w.WriteHeader(status)
			json.NewEncoder(w).Encode(body)
		}))
	}

	t.Run("success", func(t *testing.T) {
		srv := newServer(http.StatusOK, map[string]any{
			"success": true, "message": "file deleted",
			"fileKey": "documents/user-a/1_t_cv.pdf", "userId": "user-a",
		})
		defer srv.Close()

		c, _ := New(srv.URL, &countingTokens{token: "t"})
		ok, err := c.DeleteFile(ctx, "documents/user-a/1_t_cv.pdf")
		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("access denied degrades to false", func(t *testing.T) {
		srv := newServer(http.StatusForbidden, map[string]any{
			"success": false, "error": "access denied", "code": "ACCESS_DENIED",
		})
		defer srv.Close()

		c, _ := New(srv.URL, &countingTokens{token: "t"})
		ok, err := c.DeleteFile(ctx, "documents/user-b/1_t_x.pdf")
		assert.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("session expiry propagates", func(t *testing.T) {
		srv := newServer(http.StatusUnauthorized, map[string]any{
			"success": false, "error": "session has expired", "code": "SESSION_EXPIRED",
		})
		defer srv.Close()

		c, _ := New(srv.URL, &countingTokens{token: "t"})
		ok, err := c.DeleteFile(ctx, "documents/user-a/1_t_cv.pdf")
		assert.False(t, ok)
		assert.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("network failure degrades to false", func(t *testing.T) {
		c, _ := New("http://127.0.0.1:1", &countingTokens{token: "t"})
		ok, err := c.DeleteFile(ctx, "documents/user-a/1_t_cv.pdf")
		assert.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestNewValidation(t *testing.T) {
	_, err := New("", &countingTokens{})
	assert.Error(t, err)

	_, err = New("http://gateway.example", nil)
	assert.Error(t, err)

	c, err := New("http://gateway.example/", TokenFunc(func(context.Context) (string, error) { return "t", nil }))
	require.NoError(t, err)
	assert.Equal(t, "http://gateway.example", c.baseURL)
}
