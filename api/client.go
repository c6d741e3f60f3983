// Package api provides the HTTP client for the playback backend.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// ErrNotFound is returned when the requested resource does not exist.
var ErrNotFound = errors.New("resource not found")

const userAgent = "castkit/1.0 (https://github.com/treble-fm/castkit)"

// Client is a playback backend API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client for the given base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// GetPost fetches the canonical post representation.
func (c *Client) GetPost(ctx context.Context, id string) (*Post, error) {
	var post Post
	if err := c.get(ctx, "/posts/"+url.PathEscape(id), nil, &post); err != nil {
		return nil, err
	}
	return &post, nil
}

// GetPlaybackOffset fetches the server-side playback offset for a post.
// The local offset and its timestamp are sent along so the server can
// return whichever checkpoint is newer.
func (c *Client) GetPlaybackOffset(ctx context.Context, postID string, offset float64, timestamp int64) (*Offset, error) {
	params := url.Values{}
	params.Set("offset", fmt.Sprintf("%.3f", offset))
	params.Set("timestamp", strconv.FormatInt(timestamp, 10))

	var result Offset
	if err := c.get(ctx, "/posts/"+url.PathEscape(postID)+"/offset", params, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// PostPlaybackOffset reports the current playback position for a post.
func (c *Client) PostPlaybackOffset(ctx context.Context, postID string, position float64, completed bool) (*Offset, error) {
	body := Offset{
		PostID:    postID,
		Offset:    position,
		Timestamp: time.Now().UnixMilli(),
		Completed: completed,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode offset: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/posts/"+url.PathEscape(postID)+"/offset", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("unexpected status: %s", resp.Status)
	}

	var result Offset
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &result, nil
}

// GetPlaybackQueuePosts fetches the suggested up-next posts for a post.
func (c *Client) GetPlaybackQueuePosts(ctx context.Context, postID string) ([]Post, error) {
	var posts []Post
	if err := c.get(ctx, "/posts/"+url.PathEscape(postID)+"/queue", nil, &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// GetTranscript fetches the transcript of a post.
func (c *Client) GetTranscript(ctx context.Context, postID string) (*Transcript, error) {
	var transcript Transcript
	if err := c.get(ctx, "/posts/"+url.PathEscape(postID)+"/transcript", nil, &transcript); err != nil {
		return nil, err
	}
	return &transcript, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
