// Package hackernews is a simple HTTP client for the Hacker News Firebase
// API, used as the seed source for the news feed.
package hackernews

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Client provides functions for interacting with the Hacker News API.
type Client struct {
	Client *http.Client
	Host   string
}

// New creates a new Client.
func New(client *http.Client, host string) *Client {
	return &Client{
		Client: client,
		Host:   host,
	}
}

func (c *Client) doGet(ctx context.Context, url string, target any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return fmt.Errorf("while making request: %w", err)
	}

	resp, err := c.Client.Do(req)
	if err != nil {
		return fmt.Errorf("while fetching %q: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bad status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("while reading body: %w", err)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("while unmarshaling body: %w", err)
	}

	return nil
}

// TopStories pulls the /v0/topstories endpoint.
func (c *Client) TopStories(ctx context.Context) ([]uint64, error) {
	url := &url.URL{
		Scheme: "https",
		Host:   c.Host,
		Path:   path.Join("v0", "topstories.json"),
	}

	topStories := []uint64{}
	if err := c.doGet(ctx, url.String(), &topStories); err != nil {
		return nil, fmt.Errorf("while getting top stories: %w", err)
	}
	return topStories, nil
}

// Item is a member of /v0/item.
type Item struct {
	ID          uint64   `json:"id"`
	Deleted     bool     `json:"deleted"`
	Type        string   `json:"type"`
	By          string   `json:"by"`
	Time        uint64   `json:"time"`
	Text        string   `json:"text"`
	Dead        bool     `json:"dead"`
	Parent      uint64   `json:"parent"`
	Kids        []uint64 `json:"kids"`
	URL         string   `json:"url"`
	Score       int64    `json:"score"`
	Title       string   `json:"title"`
	Descendants uint64   `json:"descendants"`
}

// Item pulls a specific item from the /v0/item collection.
func (c *Client) Item(ctx context.Context, id uint64) (*Item, error) {
	tracer := otel.Tracer("campuslink/hackernews")
	var span trace.Span
	ctx, span = tracer.Start(ctx, "Client.Item")
	defer span.End()

	url := &url.URL{
		Scheme: "https",
		Host:   c.Host,
		Path:   path.Join("v0", "item", fmt.Sprintf("%v.json", id)),
	}

	item := &Item{}
	if err := c.doGet(ctx, url.String(), item); err != nil {
		return nil, fmt.Errorf("while getting item %d: %w", id, err)
	}
	return item, nil
}
