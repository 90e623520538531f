package gutenberg

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
)

const DefaultFeedURL = "https://gutenberg.org/cache/epub/feeds/rdf-files.tar.bz2"

// Client downloads the catalog feed archive.
type Client struct {
	httpClient *retryablehttp.Client
	userAgent  string
	feedURL    string
	tempDir    string
}

type ClientOption func(*Client)

// WithRetries overrides the retry policy of the download.
func WithRetries(max int, waitMin, waitMax time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.RetryMax = max
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithTempDir sets where the archive is spooled while it is read.
func WithTempDir(dir string) ClientOption {
	return func(c *Client) { c.tempDir = dir }
}

func NewClient(feedURL, userAgent string, log *slog.Logger, opts ...ClientOption) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 4
	httpClient.RetryWaitMin = time.Second
	httpClient.RetryWaitMax = 30 * time.Second
	httpClient.Logger = log
	// The archive is large; only the connection phase is bounded.
	httpClient.HTTPClient.Timeout = 0

	if feedURL == "" {
		feedURL = DefaultFeedURL
	}
	c := &Client{
		httpClient: httpClient,
		userAgent:  userAgent,
		feedURL:    feedURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) FeedURL() string {
	return c.feedURL
}

// Download stores the feed archive in a temporary file and returns its path.
// The caller removes the file.
func (c *Client) Download(ctx context.Context) (string, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return "", errors.Wrap(err, "build feed request")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, "download %s", c.feedURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("download %s: unexpected status code: %d", c.feedURL, resp.StatusCode)
	}

	f, err := os.CreateTemp(c.tempDir, "rdf-files-*.tar.bz2")
	if err != nil {
		return "", errors.Wrap(err, "create temp file")
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", errors.Wrap(err, "write feed archive")
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", errors.Wrap(err, "close feed archive")
	}
	return f.Name(), nil
}

// Fetch downloads the feed and visits every book entry in it. It returns nil
// only when the whole archive was read.
func (c *Client) Fetch(ctx context.Context, visit func(Entry) error) error {
	path, err := c.Download(ctx)
	if err != nil {
		return err
	}
	defer os.Remove(path)

	return ReadArchive(ctx, path, visit)
}
