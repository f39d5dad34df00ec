package version

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

func TestBuildString(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		info Build
		want string
	}{
		{
			name: "all fields populated",
			info: Build{Version: "v1.2.3", Commit: "abc1234", Date: "2026-01-15"},
			want: "v1.2.3 (commit: abc1234, built: 2026-01-15)",
		},
		{
			name: "all fields empty",
			info: Build{},
			want: "dev (commit: unknown, built: unknown)",
		},
		{
			name: "only version set",
			info: Build{Version: "v0.4.0"},
			want: "v0.4.0 (commit: unknown, built: unknown)",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, tc.info.String())
		})
	}
}

func TestCompare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b string
		want int
	}{
		{"v1.0.0", "v1.0.0", 0},
		{"1.0.0", "v1.0.0", 0},
		{"v1.2.0", "v1.1.9", 1},
		{"v1.1.9", "v1.2.0", -1},
		{"v2.0", "v1.9.9", 1},
		{"v1.0.0-rc1", "v1.0.0", 0},
		{"dev", "v0.0.1", -1},
		{"v0.0.1", "dev", 1},
		{"dev", "", 0},
		{"abc1234", "v0.1.0", -1},
		{"1.2.3.4", "1.2.3", -1},
	}

	for _, tc := range tests {
		t.Run(tc.a+"_vs_"+tc.b, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Compare(tc.a, tc.b))
		})
	}
}

func TestIsNewer(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNewer("v1.0.0", "v1.0.1"))
	assert.True(t, IsNewer("dev", "v0.1.0"))
	assert.False(t, IsNewer("v1.0.1", "v1.0.0"))
	assert.False(t, IsNewer("v1.0.0", "v1.0.0"))
}

func TestCheckerCheck(t *testing.T) {
	t.Parallel()

	var gotPath, gotAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"tag_name":"v1.3.0","name":"deaddrop v1.3.0","html_url":"https://github.com/mrz1836/deaddrop/releases/tag/v1.3.0"}`))
	}))
	defer server.Close()

	checker := NewChecker("v1.2.0", WithBaseURL(server.URL+"/"))
	status, err := checker.Check(context.Background(), "v1.2.0")
	require.NoError(t, err)

	assert.Equal(t, "/repos/mrz1836/deaddrop/releases/latest", gotPath)
	assert.Contains(t, gotAgent, "deaddrop/v1.2.0")
	assert.True(t, status.UpdateAvailable)
	assert.Equal(t, "v1.2.0", status.Current)
	assert.Equal(t, "v1.3.0", status.Latest)
	assert.Contains(t, status.URL, "releases/tag/v1.3.0")
}

func TestCheckerCheck_UpToDate(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"tag_name":"v1.2.0"}`))
	}))
	defer server.Close()

	status, err := NewChecker("", WithBaseURL(server.URL)).Check(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "dev", status.Current)
	assert.True(t, status.UpdateAvailable)

	status, err = NewChecker("v1.2.0", WithBaseURL(server.URL)).Check(context.Background(), "v1.2.0")
	require.NoError(t, err)
	assert.False(t, status.UpdateAvailable)
}

func TestCheckerLatest_Errors(t *testing.T) {
	t.Parallel()

	t.Run("status", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, "rate limited", http.StatusForbidden)
		}))
		defer server.Close()

		_, err := NewChecker("v1.0.0", WithBaseURL(server.URL)).Latest(context.Background())
		require.ErrorIs(t, err, droperr.ErrNetworkUnreachable)
	})

	t.Run("bad json", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		}))
		defer server.Close()

		_, err := NewChecker("v1.0.0", WithBaseURL(server.URL)).Latest(context.Background())
		require.ErrorIs(t, err, droperr.ErrNetworkUnreachable)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"tag_name":"v1.0.0"}`))
		}))
		defer server.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewChecker("v1.0.0", WithBaseURL(server.URL)).Latest(ctx)
		require.Error(t, err)
	})
}

func TestWithRepository(t *testing.T) {
	t.Parallel()

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"tag_name":"v0.1.0"}`))
	}))
	defer server.Close()

	client := &http.Client{Timeout: time.Second}
	_, err := NewChecker("v0.1.0", WithBaseURL(server.URL), WithHTTPClient(client), WithRepository("acme", "drops")).
		Latest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/repos/acme/drops/releases/latest", gotPath)
}
