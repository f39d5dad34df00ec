// Package version describes the running build and checks GitHub for a newer
// deaddrop release.
package version

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	droperr "github.com/mrz1836/deaddrop/pkg/errors"
)

// Default configuration constants
const (
	DefaultBaseURL = "https://api.github.com"
	DefaultOwner   = "mrz1836"
	DefaultRepo    = "deaddrop"
	DefaultTimeout = 15 * time.Second

	devVersion          = "dev"
	maxResponseBodySize = 64 * 1024
)

// Build identifies the running binary. The fields are set with -ldflags.
type Build struct {
	Version string `json:"version"`
	Commit  string `json:"commit"`
	Date    string `json:"date"`
}

// String renders the build as "v1.2.3 (commit: abc1234, built: 2026-01-15)".
// Missing fields read dev or unknown.
func (b Build) String() string {
	return fmt.Sprintf("%s (commit: %s, built: %s)",
		orDefault(b.Version, devVersion), orDefault(b.Commit, "unknown"), orDefault(b.Date, "unknown"))
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// Release is the part of a GitHub release the update check reads.
type Release struct {
	TagName     string    `json:"tag_name"`
	Name        string    `json:"name"`
	Prerelease  bool      `json:"prerelease"`
	HTMLURL     string    `json:"html_url"`
	PublishedAt time.Time `json:"published_at"`
}

// Status is the result of an update check.
type Status struct {
	Current         string `json:"current"`
	Latest          string `json:"latest"`
	UpdateAvailable bool   `json:"update_available"`
	URL             string `json:"url,omitempty"`
}

// Checker fetches the latest release of one repository.
type Checker struct {
	baseURL    string
	owner      string
	repo       string
	httpClient *http.Client
	userAgent  string
}

// Option configures a Checker.
type Option func(*Checker)

// WithBaseURL points the checker at another GitHub API host.
func WithBaseURL(url string) Option {
	return func(c *Checker) {
		c.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Checker) {
		c.httpClient = client
	}
}

// WithRepository overrides the repository checked.
func WithRepository(owner, repo string) Option {
	return func(c *Checker) {
		c.owner = owner
		c.repo = repo
	}
}

// NewChecker creates a checker for the deaddrop repository.
func NewChecker(current string, opts ...Option) *Checker {
	c := &Checker{
		baseURL:    DefaultBaseURL,
		owner:      DefaultOwner,
		repo:       DefaultRepo,
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  fmt.Sprintf("deaddrop/%s (%s/%s)", orDefault(current, devVersion), runtime.GOOS, runtime.GOARCH),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Latest fetches the latest published release.
func (c *Checker) Latest(ctx context.Context) (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/%s/releases/latest", c.baseURL, c.owner, c.repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL is built from the configured GitHub API host
	if err != nil {
		return nil, droperr.WithCause(droperr.ErrNetworkUnreachable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, droperr.WithDetails(droperr.ErrNetworkUnreachable, map[string]string{
			"url":    url,
			"status": strconv.Itoa(resp.StatusCode),
		})
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBodySize)).Decode(&release); err != nil {
		return nil, droperr.WithCause(droperr.ErrNetworkUnreachable, fmt.Errorf("decoding release: %w", err))
	}
	return &release, nil
}

// Check compares current with the latest release.
func (c *Checker) Check(ctx context.Context, current string) (Status, error) {
	release, err := c.Latest(ctx)
	if err != nil {
		return Status{}, err
	}

	return Status{
		Current:         orDefault(current, devVersion),
		Latest:          release.TagName,
		UpdateAvailable: IsNewer(current, release.TagName),
		URL:             release.HTMLURL,
	}, nil
}

// IsNewer reports whether latest is a newer release than current.
// Development builds are older than every release.
func IsNewer(current, latest string) bool {
	return Compare(latest, current) > 0
}

// Compare orders two versions by major, minor and patch. It returns 1, 0 or
// -1. Versions that do not parse, such as "dev" or a commit hash, sort below
// every release.
func Compare(a, b string) int {
	pa, okA := parse(a)
	pb, okB := parse(b)

	switch {
	case !okA && !okB:
		return 0
	case !okA:
		return -1
	case !okB:
		return 1
	}

	for i := range pa {
		if pa[i] != pb[i] {
			if pa[i] > pb[i] {
				return 1
			}
			return -1
		}
	}
	return 0
}

// parse reads "v1.2.3", "1.2" or "1.2.3-rc1" into major, minor, patch.
// Pre-release and build suffixes are ignored.
func parse(v string) ([3]int, bool) {
	var out [3]int

	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if i := strings.IndexAny(v, "-+"); i >= 0 {
		v = v[:i]
	}
	if v == "" {
		return out, false
	}

	parts := strings.Split(v, ".")
	if len(parts) > len(out) {
		return out, false
	}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return out, false
		}
		out[i] = n
	}
	return out, true
}
