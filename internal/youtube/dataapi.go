package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// DataAPIClient searches via the YouTube Data API v3. It is used instead of
// the scrape client whenever an API key is configured. Search responses carry
// no durations; the details fetcher fills those in afterwards.
type DataAPIClient struct {
	apiKey    string
	searchURL string
	http      *http.Client
}

func NewDataAPIClient(apiKey, searchURL string, timeout time.Duration) *DataAPIClient {
	return &DataAPIClient{
		apiKey:    apiKey,
		searchURL: searchURL,
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

type apiSearchResponse struct {
	Items []struct {
		ID struct {
			Kind      string `json:"kind"`
			VideoID   string `json:"videoId"`
			ChannelID string `json:"channelId"`
		} `json:"id"`
		Snippet struct {
			Title        string `json:"title"`
			ChannelTitle string `json:"channelTitle"`
			PublishedAt  string `json:"publishedAt"`
			Thumbnails   struct {
				Default struct {
					URL string `json:"url"`
				} `json:"default"`
				Medium struct {
					URL string `json:"url"`
				} `json:"medium"`
				High struct {
					URL string `json:"url"`
				} `json:"high"`
			} `json:"thumbnails"`
		} `json:"snippet"`
	} `json:"items"`
}

func (c *DataAPIClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 || limit > 25 {
		limit = 15
	}

	val := url.Values{}
	val.Set("part", "snippet")
	val.Set("type", "video,channel")
	val.Set("maxResults", fmt.Sprint(limit))
	val.Set("q", query)
	val.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL+"?"+val.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube api status %d", resp.StatusCode)
	}

	var body apiSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(body.Items))
	for _, it := range body.Items {
		thumbs := it.Snippet.Thumbnails
		thumb := thumbs.High.URL
		if thumb == "" {
			thumb = thumbs.Medium.URL
		}
		if thumb == "" {
			thumb = thumbs.Default.URL
		}

		switch {
		case it.ID.VideoID != "":
			out = append(out, Result{
				Kind:         KindVideo,
				ID:           it.ID.VideoID,
				Title:        it.Snippet.Title,
				Channel:      it.Snippet.ChannelTitle,
				URL:          watchURL(it.ID.VideoID),
				ThumbnailURL: thumb,
			})
		case it.ID.ChannelID != "":
			out = append(out, Result{
				Kind:         KindChannel,
				ID:           it.ID.ChannelID,
				Title:        it.Snippet.Title,
				URL:          channelURL(it.ID.ChannelID),
				ThumbnailURL: thumb,
			})
		}
	}
	return out, nil
}
