package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	recordURL  = "https://pokeapi.co/api/v2/pokemon/25"
	artworkURL = "https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/25.png"
)

func TestNewAppliesDefaults(t *testing.T) {
	tests := []struct {
		name        string
		cfg         *Config
		wantTimeout time.Duration
		wantAgent   string
	}{
		{
			name:        "nil config",
			cfg:         nil,
			wantTimeout: DefaultTimeout,
			wantAgent:   DefaultUserAgent,
		},
		{
			name:        "zero values",
			cfg:         &Config{},
			wantTimeout: DefaultTimeout,
			wantAgent:   DefaultUserAgent,
		},
		{
			name:        "configured values",
			cfg:         &Config{DefaultTimeout: 5 * time.Second, UserAgent: "pokeart-go/1.2.3"},
			wantTimeout: 5 * time.Second,
			wantAgent:   "pokeart-go/1.2.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := New(tt.cfg)
			t.Cleanup(client.Close)

			assert.Equal(t, tt.wantTimeout, client.defaultTimeout)
			assert.Equal(t, tt.wantAgent, client.userAgent)
		})
	}
}

func TestNewDoesNotMutateConfig(t *testing.T) {
	cfg := Config{UserAgent: "custom"}
	newTestClientWithConfig(t, &cfg)

	assert.Zero(t, cfg.DefaultTimeout)
	assert.Zero(t, cfg.MaxIdleConns)
}

func TestDoNilRequest(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.Do(t.Context(), nil)
	require.Error(t, err)
	assert.Nil(t, resp)
}

func TestGetFetchesRecord(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v2/pokemon/25", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":25,"name":"pikachu"}`))
	})
	client := newTestClient(t)

	resp, err := client.Get(t.Context(), server.URL+"/api/v2/pokemon/25")
	require.NoError(t, err)
	defer closeResponseBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"id":25,"name":"pikachu"}`, readBody(t, resp))
}

func TestUserAgent(t *testing.T) {
	tests := []struct {
		name    string
		agent   string
		headers map[string]string
		want    string
	}{
		{
			name:  "configured agent",
			agent: "pokeart-go/0.3.0",
			want:  "pokeart-go/0.3.0",
		},
		{
			name: "default agent",
			want: DefaultUserAgent,
		},
		{
			name:    "request header wins",
			agent:   "pokeart-go/0.3.0",
			headers: map[string]string{"User-Agent": "override/1.0"},
			want:    "override/1.0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agents := make(chan string, 1)
			server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				agents <- r.Header.Get("User-Agent")
			})
			client := newTestClientWithConfig(t, &Config{UserAgent: tt.agent})

			resp, err := client.GetWithHeaders(t.Context(), server.URL, tt.headers)
			require.NoError(t, err)
			closeResponseBody(t, resp)

			assert.Equal(t, tt.want, <-agents)
		})
	}
}

func TestGetWithHeaders(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, recordURL,
		func(req *http.Request) (*http.Response, error) {
			if req.Header.Get("Accept") != "application/json" {
				return httpmock.NewStringResponse(http.StatusNotAcceptable, ""), nil
			}
			return httpmock.NewStringResponse(http.StatusOK, `{"id":25}`), nil
		})

	resp, err := client.GetWithHeaders(t.Context(), recordURL, map[string]string{"Accept": "application/json"})
	require.NoError(t, err)
	defer closeResponseBody(t, resp)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetInvalidURL(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.Get(t.Context(), "://not a url")
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "failed to create GET request")
}

func TestTransportOverride(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, artworkURL,
		httpmock.NewBytesResponder(http.StatusOK, []byte("\x89PNG")))

	resp, err := client.Get(t.Context(), artworkURL)
	require.NoError(t, err)
	defer closeResponseBody(t, resp)

	assert.Equal(t, "\x89PNG", readBody(t, resp))
	assert.Equal(t, 1, transport.GetTotalCallCount())
}

func TestTransportError(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, recordURL,
		httpmock.NewErrorResponder(errors.New("connection refused")))

	resp, err := client.Get(t.Context(), recordURL)
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestContextDeadlines(t *testing.T) {
	slow := func(delay time.Duration) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(delay):
			}
		}
	}

	t.Run("canceled before send", func(t *testing.T) {
		server := newTestServer(t, slow(2*time.Second))
		client := newTestClient(t)

		ctx, cancel := context.WithCancel(t.Context())
		cancel()

		resp, err := client.Get(ctx, server.URL)
		defer closeResponseBody(t, resp)
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("caller deadline", func(t *testing.T) {
		server := newTestServer(t, slow(500*time.Millisecond))
		client := newTestClient(t)

		ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
		defer cancel()

		resp, err := client.Get(ctx, server.URL)
		defer closeResponseBody(t, resp)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("default timeout without deadline", func(t *testing.T) {
		server := newTestServer(t, slow(500*time.Millisecond))
		client := newTestClientWithConfig(t, &Config{DefaultTimeout: 50 * time.Millisecond})

		resp, err := client.Get(t.Context(), server.URL)
		defer closeResponseBody(t, resp)
		require.ErrorIs(t, err, context.DeadlineExceeded)
	})

	t.Run("caller deadline beats default timeout", func(t *testing.T) {
		server := newTestServer(t, slow(20*time.Millisecond))
		client := newTestClientWithConfig(t, &Config{DefaultTimeout: 5 * time.Millisecond})

		ctx, cancel := context.WithTimeout(t.Context(), time.Second)
		defer cancel()

		resp, err := client.Get(ctx, server.URL)
		require.NoError(t, err)
		defer closeResponseBody(t, resp)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestDefaultTimeoutCoversBodyRead(t *testing.T) {
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 128)))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	client := newTestClientWithConfig(t, &Config{DefaultTimeout: 100 * time.Millisecond})

	resp, err := client.Get(t.Context(), server.URL)
	require.NoError(t, err, "headers should arrive before the timeout")
	defer closeResponseBody(t, resp)

	_, err = io.ReadAll(resp.Body)
	require.Error(t, err, "stalled artwork stream should hit the default timeout")
}

func TestHooksObserveEveryRequest(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, recordURL, httpmock.NewStringResponder(http.StatusOK, `{}`))
	transport.RegisterResponder(http.MethodGet, artworkURL, httpmock.NewStringResponder(http.StatusNotFound, ""))

	var before atomic.Int32
	var mu sync.Mutex
	statuses := map[string]int{}

	client.SetBeforeRequestHook(func(r *http.Request) {
		before.Add(1)
		assert.NotEmpty(t, r.Header.Get("User-Agent"), "User-Agent must be set before hooks run")
	})
	client.SetAfterResponseHook(func(r *http.Request, resp *http.Response, err error) {
		require.NoError(t, err)
		mu.Lock()
		defer mu.Unlock()
		statuses[r.URL.String()] = resp.StatusCode
	})

	for _, u := range []string{recordURL, artworkURL} {
		resp, err := client.Get(t.Context(), u)
		require.NoError(t, err)
		closeResponseBody(t, resp)
	}

	assert.Equal(t, int32(2), before.Load())
	assert.Equal(t, map[string]int{recordURL: http.StatusOK, artworkURL: http.StatusNotFound}, statuses)
}

func TestAfterHookSeesTransportError(t *testing.T) {
	client, transport := newMockClient(t)
	transport.RegisterResponder(http.MethodGet, artworkURL,
		httpmock.NewErrorResponder(errors.New("connection reset")))

	var hookErr error
	client.SetAfterResponseHook(func(_ *http.Request, _ *http.Response, err error) {
		hookErr = err
	})

	_, err := client.Get(t.Context(), artworkURL)
	require.Error(t, err)
	assert.Error(t, hookErr)
}

func TestConcurrentDownloads(t *testing.T) {
	var served atomic.Int32
	server := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		served.Add(1)
		_, _ = w.Write([]byte(r.URL.Path))
	})
	client := newTestClient(t)

	const workers = 50
	var wg sync.WaitGroup
	bodies := make([]string, workers)

	for i := range workers {
		wg.Go(func() {
			resp, err := client.Get(t.Context(), server.URL+"/"+strings.Repeat("a", i+1))
			if !assert.NoError(t, err) {
				return
			}
			defer closeResponseBody(t, resp)
			data, err := io.ReadAll(resp.Body)
			assert.NoError(t, err)
			bodies[i] = string(data)
		})
	}
	wg.Wait()

	assert.Equal(t, int32(workers), served.Load())
	for i, body := range bodies {
		assert.Equal(t, "/"+strings.Repeat("a", i+1), body)
	}
}

func TestCancelOnCloseReleasesOnce(t *testing.T) {
	var calls int
	body := &cancelOnClose{
		ReadCloser: httpmock.NewRespBodyFromString("data"),
		cancel:     func() { calls++ },
	}

	require.NoError(t, body.Close())
	_ = body.Close()
	assert.Equal(t, 1, calls)
}

func TestCloseIsIdempotent(t *testing.T) {
	client := New(nil)

	assert.NotPanics(t, func() {
		client.Close()
		client.Close()
	})
}
