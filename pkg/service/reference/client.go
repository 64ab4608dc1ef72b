// Package reference looks up topic summaries from an external reference site.
package reference

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/lore/pkg/model"
	"github.com/m-mizutani/lore/pkg/utils/logging"
)

// DefaultBaseURL is the English Wikipedia article root
const DefaultBaseURL = "https://en.wikipedia.org/wiki/"

// Client fetches a reference page for a topic and extracts its body text
type Client struct {
	baseURL    string
	httpClient *http.Client
	extractor  Extractor
}

type Option func(*Client)

// WithBaseURL sets the address that escaped topics are appended to
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithExtractor replaces the default ContainerExtractor
func WithExtractor(extractor Extractor) Option {
	return func(c *Client) {
		c.extractor = extractor
	}
}

// New creates a new reference client
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: http.DefaultClient,
		extractor:  NewContainerExtractor(DefaultContainerID),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL builds the page address of topic. Spaces become underscores.
func (c *Client) URL(topic string) string {
	return c.baseURL + url.PathEscape(strings.ReplaceAll(topic, " ", "_"))
}

// Fetch issues a single GET for topic and returns its paragraphs joined by
// newlines. Non-2xx status, a missing container or a page without any
// paragraph text are reported with model.ErrTagFetch.
func (c *Client) Fetch(ctx context.Context, topic string) (string, error) {
	pageURL := c.URL(topic)
	logger := logging.From(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create request",
			goerr.V("url", pageURL),
			goerr.T(model.ErrTagFetch))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to send request",
			goerr.V("url", pageURL),
			goerr.T(model.ErrTagFetch))
	}
	defer resp.Body.Close()

	logger.Debug("reference page fetched", "url", pageURL, "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", goerr.New("reference page returned error",
			goerr.V("url", pageURL),
			goerr.V("status", resp.StatusCode),
			goerr.T(model.ErrTagFetch))
	}

	paragraphs, err := c.extractor.Extract(resp.Body)
	if err != nil {
		return "", goerr.Wrap(err, "failed to extract reference text",
			goerr.V("url", pageURL),
			goerr.T(model.ErrTagFetch))
	}

	text := joinParagraphs(paragraphs)
	if text == "" {
		return "", goerr.New("reference page has no paragraph text",
			goerr.V("url", pageURL),
			goerr.T(model.ErrTagFetch))
	}

	return text, nil
}
