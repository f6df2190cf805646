package youtube

import (
	"context"
	"errors"
)

// Kind distinguishes the renderer types surfaced in search results.
type Kind string

const (
	KindVideo   Kind = "video"
	KindChannel Kind = "channel"
)

// Result is one normalized search match. The count/time fields are display
// strings exactly as YouTube serves them ("1.2M views", "2 years ago");
// nothing here is parsed back into numbers.
type Result struct {
	Kind         Kind   `json:"kind"`
	ID           string `json:"id"`
	Title        string `json:"title"`
	Channel      string `json:"channel,omitempty"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`

	// Video fields.
	Duration    string `json:"duration,omitempty"`
	ViewCount   string `json:"viewCount,omitempty"`
	PublishedAt string `json:"publishedAt,omitempty"`

	// Channel fields.
	VideoCount      string `json:"videoCount,omitempty"`
	SubscriberCount string `json:"subscriberCount,omitempty"`
}

// Provider performs a single search against YouTube.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
}

// ErrNoData means the response did not contain the expected payload,
// usually an upstream markup change rather than a network failure.
var ErrNoData = errors.New("ytInitialData not found in search response")

func watchURL(videoID string) string {
	return "https://www.youtube.com/watch?v=" + videoID
}

func channelURL(channelID string) string {
	return "https://www.youtube.com/channel/" + channelID
}
