package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, opts ...ClientOption) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	// Append /api to base to simulate real base path usage.
	u.Path = "/api"

	c, err := NewClient(append([]ClientOption{WithBaseURL(u.String())}, opts...)...)
	require.NoError(t, err)
	return c
}

func testRequest(t *testing.T) ConvertRequest {
	t.Helper()
	req, err := NewConvertRequest("/tmp/cat.png", []byte("\x89PNG fake"), 80)
	require.NoError(t, err)
	return req
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestConvert_MultipartContract(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/ascii/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Contains(t, r.Header.Get("User-Agent"), "ascii-view/")
		_, err := uuid.Parse(r.Header.Get("X-Request-Id"))
		assert.NoError(t, err)

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "80", r.FormValue("width"))
		f, hdr, err := r.FormFile("image")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		assert.NoError(t, err)
		assert.Equal(t, "cat.png", hdr.Filename)
		assert.Equal(t, "\x89PNG fake", string(data))

		writeJSON(w, http.StatusOK, ConvertResponse{ASCII: "@@%%\n##  \n\n"})
	})

	c := newTestClient(t, h)
	text, err := c.Convert(context.Background(), testRequest(t))
	require.NoError(t, err)
	// Text is returned verbatim; normalization happens downstream.
	assert.Equal(t, "@@%%\n##  \n\n", text)
}

func TestConvert_IdentityHeaders(t *testing.T) {
	var seen []string
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("X-Client-Id"))
		writeJSON(w, http.StatusOK, ConvertResponse{ASCII: "x"})
	})

	c := newTestClient(t, h, WithDefaultIdentity(Identity{ClientID: "client-1"}))

	_, err := c.Convert(context.Background(), testRequest(t))
	require.NoError(t, err)

	ctx := WithIdentity(context.Background(), Identity{ClientID: "client-2"})
	_, err = c.Convert(ctx, testRequest(t))
	require.NoError(t, err)

	ctx = WithIdentity(context.Background(), Identity{ClientID: "client-3", Anonymous: true})
	_, err = c.Convert(ctx, testRequest(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"client-1", "client-2", ""}, seen)
}

func TestConvert_InvalidImageReply(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, ConvertResponse{ASCII: "Invalid image."})
	})
	c := newTestClient(t, h)
	_, err := c.Convert(context.Background(), testRequest(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidImage))
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   ErrorBody
		header map[string]string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "400 missing image",
			status: http.StatusBadRequest,
			body:   ErrorBody{Err: "No image uploaded"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrValidation))
				assert.Contains(t, err.Error(), "No image uploaded")
			},
		},
		{
			name:   "401",
			status: http.StatusUnauthorized,
			body:   ErrorBody{Detail: "auth required"},
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrUnauthorized))
				assert.Contains(t, err.Error(), "auth required")
			},
		},
		{
			name:   "404",
			status: http.StatusNotFound,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrNotFound))
			},
		},
		{
			name:   "429",
			status: http.StatusTooManyRequests,
			body:   ErrorBody{Err: "slow down"},
			header: map[string]string{"Retry-After": "3"},
			check: func(t *testing.T, err error) {
				var rl RateLimitedError
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, 3, rl.RetryAfterSeconds)
				assert.True(t, Retryable(err))
			},
		},
		{
			name:   "500",
			status: http.StatusInternalServerError,
			body:   ErrorBody{Err: "boom"},
			check: func(t *testing.T, err error) {
				var re RemoteError
				require.ErrorAs(t, err, &re)
				assert.Equal(t, http.StatusInternalServerError, re.StatusCode)
				assert.NotEmpty(t, re.RequestID)
				assert.Contains(t, re.Error(), "boom")
				assert.True(t, Retryable(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header().Set(k, v)
				}
				writeJSON(w, tt.status, tt.body)
			})
			c := newTestClient(t, h)
			_, err := c.Convert(context.Background(), testRequest(t))
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestConvert_Offline(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(WithBaseURL(base), WithTimeout(time.Second))
	require.NoError(t, err)
	_, err = c.Convert(context.Background(), testRequest(t))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOffline))
	assert.True(t, Retryable(err))
}

func TestConvert_ContextCanceled(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	c := newTestClient(t, h)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Convert(ctx, testRequest(t))
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, Retryable(err))
}

func TestNewConvertRequest_Validation(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		image    []byte
		columns  int
		wantErr  bool
	}{
		{name: "ok", filename: "a.png", image: []byte{1}, columns: 100},
		{name: "lower bound", filename: "a.png", image: []byte{1}, columns: MinColumns},
		{name: "upper bound", filename: "a.png", image: []byte{1}, columns: MaxColumns},
		{name: "too few columns", filename: "a.png", image: []byte{1}, columns: 9, wantErr: true},
		{name: "too many columns", filename: "a.png", image: []byte{1}, columns: 401, wantErr: true},
		{name: "empty image", filename: "a.png", image: []byte{}, columns: 100, wantErr: true},
		{name: "missing filename", filename: "", image: []byte{1}, columns: 100, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewConvertRequest(tt.filename, tt.image, tt.columns)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestNewClient_RejectsNonHTTPBase(t *testing.T) {
	_, err := NewClient(WithBaseURL("ftp://example.com/api"))
	require.ErrorIs(t, err, ErrValidation)
}

func TestJoinURLPath(t *testing.T) {
	assert.Equal(t, "/api/ascii/", joinURLPath("/api", "/ascii/"))
	assert.Equal(t, "/api/ascii/", joinURLPath("/api/", "/ascii/"))
	assert.Equal(t, "/api/ascii/", joinURLPath("/api", "ascii/"))
	assert.Equal(t, "/ascii/", joinURLPath("", "/ascii/"))
	assert.Equal(t, "/api", joinURLPath("/api", ""))
}

func TestClampColumns(t *testing.T) {
	assert.Equal(t, MinColumns, ClampColumns(-5))
	assert.Equal(t, 120, ClampColumns(120))
	assert.Equal(t, MaxColumns, ClampColumns(1000))
}
