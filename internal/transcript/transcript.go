// Package transcript talks to the transcript-fetch collaborator. The service
// owns captions access and rate limiting; this client just asks and decodes.
package transcript

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"talkdoc/internal/artifact"
)

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// Client fetches transcripts from the transcript service.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a transcript client for the given service URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 60 * time.Second},
	}
}

// Fetch retrieves the transcript for a video ID.
func (c *Client) Fetch(ctx context.Context, videoID string) (*artifact.Transcript, error) {
	if !videoIDPattern.MatchString(videoID) {
		return nil, fmt.Errorf("invalid video ID %q", videoID)
	}

	endpoint := fmt.Sprintf("%s/transcripts/%s", c.baseURL, url.PathEscape(videoID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("building transcript request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching transcript: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("no transcript available for video %s", videoID)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("transcript service returned HTTP %d", resp.StatusCode)
	}

	var t artifact.Transcript
	if err := json.NewDecoder(resp.Body).Decode(&t); err != nil {
		return nil, fmt.Errorf("decoding transcript: %w", err)
	}
	t.VideoID = videoID
	if t.SegmentCount == 0 {
		t.SegmentCount = len(t.Segments)
	}
	return &t, nil
}

// ExtractVideoID pulls the video ID out of the common YouTube URL shapes, or
// accepts a bare 11-character ID.
func ExtractVideoID(input string) (string, error) {
	input = strings.TrimSpace(input)
	if videoIDPattern.MatchString(input) {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("not a video URL or ID: %q", input)
	}

	host := strings.TrimPrefix(u.Hostname(), "www.")
	switch host {
	case "youtube.com", "m.youtube.com":
		if id := u.Query().Get("v"); videoIDPattern.MatchString(id) {
			return id, nil
		}
		// /live/<id>, /embed/<id>, /shorts/<id>
		parts := strings.Split(strings.Trim(u.Path, "/"), "/")
		if len(parts) == 2 && videoIDPattern.MatchString(parts[1]) {
			return parts[1], nil
		}
	case "youtu.be":
		id := strings.Trim(u.Path, "/")
		if videoIDPattern.MatchString(id) {
			return id, nil
		}
	}

	return "", fmt.Errorf("could not extract a video ID from %q", input)
}
