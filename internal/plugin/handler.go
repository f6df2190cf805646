package plugin

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"youtube-plugin/internal/youtube"
)

// ErrLookupFailed marks upstream search failures. Callers surface zero rows;
// nothing retries.
var ErrLookupFailed = errors.New("youtube lookup failed")

const showMoreID = "show_more"

// Handler turns a typed query into launcher rows. It is stateless across
// invocations; the host owns debouncing and cancellation.
type Handler struct {
	provider   youtube.Provider
	icons      *IconFetcher
	maxResults int
	resultsURL string
}

// NewHandler builds a query handler. icons may be nil to skip thumbnail
// downloads. resultsURL is the public search page used for the show-more row.
func NewHandler(p youtube.Provider, icons *IconFetcher, maxResults int, resultsURL string) *Handler {
	return &Handler{
		provider:   p,
		icons:      icons,
		maxResults: maxResults,
		resultsURL: resultsURL,
	}
}

// Query searches for raw and maps matches to rows. limit <= 0 means the
// configured maximum. An empty or whitespace-only query returns no rows and
// performs no network call.
func (h *Handler) Query(ctx context.Context, raw string, limit int) ([]Item, error) {
	query := strings.TrimSpace(raw)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 || limit > h.maxResults {
		limit = h.maxResults
	}

	log.Printf("youtube-plugin: searching for %q", query)
	results, err := h.provider.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLookupFailed, err)
	}

	items := make([]Item, 0, len(results)+1)
	for _, r := range results {
		if r.URL == "" {
			continue
		}
		items = append(items, Item{
			ID:         strconv.Itoa(len(items)),
			Title:      r.Title,
			Subtitle:   subtitle(r),
			URL:        r.URL,
			ActionName: actionName(r.Kind),
			IconURL:    r.ThumbnailURL,
		})
		if len(items) >= limit {
			break
		}
	}

	if h.icons != nil {
		h.icons.Fetch(ctx, items)
	}

	// Row for the remaining matches the panel cannot show.
	if len(items) > 0 {
		items = append(items, Item{
			ID:         showMoreID,
			Title:      "Show more in browser",
			URL:        h.resultsURL + "?search_query=" + url.QueryEscape(query),
			ActionName: "Show more in browser",
		})
	}

	return items, nil
}

// subtitle joins the kind label with whichever stat strings the result
// carries: "Video | 3:04 | 1.2M views | 2 years ago".
func subtitle(r youtube.Result) string {
	var parts []string
	switch r.Kind {
	case youtube.KindChannel:
		parts = append(parts, "Channel", r.VideoCount, r.SubscriberCount)
	default:
		parts = append(parts, "Video", r.Duration, r.ViewCount, r.PublishedAt)
	}

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " | ")
}

func actionName(kind youtube.Kind) string {
	if kind == youtube.KindChannel {
		return "Show on YouTube"
	}
	return "Watch on YouTube"
}
