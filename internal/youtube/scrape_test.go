package youtube

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock HTTP Transport
type RoundTripFunc func(req *http.Request) *http.Response

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func NewMockClient(fn RoundTripFunc) *http.Client {
	return &http.Client{
		Transport: fn,
	}
}

const searchFixture = `{
	"contents": {
		"twoColumnSearchResultsRenderer": {
			"primaryContents": {
				"sectionListRenderer": {
					"contents": [
						{
							"itemSectionRenderer": {
								"contents": [
									{
										"videoRenderer": {
											"videoId": "vid1",
											"title": { "runs": [{ "text": "lofi hip hop " }, { "text": "radio" }] },
											"ownerText": { "runs": [{ "text": "Lofi Girl" }] },
											"lengthText": { "simpleText": "3:32" },
											"shortViewCountText": { "simpleText": "1.2M views" },
											"publishedTimeText": { "simpleText": "2 years ago" },
											"thumbnail": { "thumbnails": [{ "url": "https://i.ytimg.com/vi/vid1/default.jpg?sqp=abc" }] }
										}
									},
									{ "shelfRenderer": { "title": { "simpleText": "ignored" } } },
									{
										"channelRenderer": {
											"channelId": "chan1",
											"title": { "simpleText": "Lofi Girl" },
											"videoCountText": { "runs": [{ "text": "321 videos" }] },
											"subscriberCountText": { "simpleText": "13M subscribers" }
										}
									},
									{
										"videoRenderer": {
											"title": { "simpleText": "no id, dropped" }
										}
									},
									{
										"videoRenderer": {
											"videoId": "vid2",
											"title": { "simpleText": "second video" },
											"ownerText": { "runs": [{ "text": "Someone" }] },
											"thumbnail": { "thumbnails": [] }
										}
									}
								]
							}
						}
					]
				}
			}
		}
	}
}`

func fixturePage(marker string) string {
	return "<html><head><script>" + marker + searchFixture + ";</script></head><body></body></html>"
}

func newScrapeClientForTest(t *testing.T, page string, status int) *ScrapeClient {
	t.Helper()

	c := NewScrapeClient("https://mock.test/results", "test-agent", time.Second)
	c.dumpDir = t.TempDir()
	c.http = NewMockClient(func(req *http.Request) *http.Response {
		assert.Equal(t, "test-agent", req.Header.Get("User-Agent"))
		assert.Equal(t, "lofi hip hop radio", req.URL.Query().Get("search_query"))
		return &http.Response{
			StatusCode: status,
			Body:       io.NopCloser(strings.NewReader(page)),
			Header:     make(http.Header),
		}
	})
	return c
}

func TestScrapeSearch(t *testing.T) {
	t.Run("parses video and channel renderers in order", func(t *testing.T) {
		c := newScrapeClientForTest(t, fixturePage("var ytInitialData = "), 200)

		results, err := c.Search(context.Background(), "lofi hip hop radio", 10)
		require.NoError(t, err)
		require.Len(t, results, 3)

		assert.Equal(t, Result{
			Kind:         KindVideo,
			ID:           "vid1",
			Title:        "lofi hip hop radio",
			Channel:      "Lofi Girl",
			URL:          "https://www.youtube.com/watch?v=vid1",
			ThumbnailURL: "https://i.ytimg.com/vi/vid1/default.jpg",
			Duration:     "3:32",
			ViewCount:    "1.2M views",
			PublishedAt:  "2 years ago",
		}, results[0])

		assert.Equal(t, Result{
			Kind:            KindChannel,
			ID:              "chan1",
			Title:           "Lofi Girl",
			URL:             "https://www.youtube.com/channel/chan1",
			VideoCount:      "321 videos",
			SubscriberCount: "13M subscribers",
		}, results[1])

		assert.Equal(t, "vid2", results[2].ID)
		assert.Empty(t, results[2].ThumbnailURL)
	})

	t.Run("window assignment marker", func(t *testing.T) {
		c := newScrapeClientForTest(t, fixturePage(`window["ytInitialData"] = `), 200)

		results, err := c.Search(context.Background(), "lofi hip hop radio", 10)
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("limit caps results", func(t *testing.T) {
		c := newScrapeClientForTest(t, fixturePage("var ytInitialData = "), 200)

		results, err := c.Search(context.Background(), "lofi hip hop radio", 2)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "vid1", results[0].ID)
		assert.Equal(t, "chan1", results[1].ID)
	})

	t.Run("missing marker dumps page and returns ErrNoData", func(t *testing.T) {
		c := newScrapeClientForTest(t, "<html>not the usual page</html>", 200)

		_, err := c.Search(context.Background(), "lofi hip hop radio", 10)
		assert.True(t, errors.Is(err, ErrNoData))

		entries, readErr := os.ReadDir(c.dumpDir)
		require.NoError(t, readErr)
		require.Len(t, entries, 1)
		assert.True(t, strings.HasPrefix(entries[0].Name(), "youtube-plugin-dump-"))

		dump, readErr := os.ReadFile(filepath.Join(c.dumpDir, entries[0].Name()))
		require.NoError(t, readErr)
		assert.Contains(t, string(dump), "not the usual page")
	})

	t.Run("non-200 status", func(t *testing.T) {
		c := newScrapeClientForTest(t, "", 429)

		_, err := c.Search(context.Background(), "lofi hip hop radio", 10)
		assert.ErrorContains(t, err, "429")
	})
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"flat object", `{"a":1};rest`, `{"a":1}`},
		{"nested objects", `{"a":{"b":{}}} trailing`, `{"a":{"b":{}}}`},
		{"braces inside strings", `{"a":"}{"};`, `{"a":"}{"}`},
		{"escaped quote in string", `{"a":"\"}"} tail`, `{"a":"\"}"}`},
		{"unbalanced", `{"a":1`, ""},
		{"not an object", `[1,2]`, ""},
		{"empty", ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractJSON([]byte(tt.input))
			if tt.expected == "" {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestTextString(t *testing.T) {
	assert.Equal(t, "plain", text{SimpleText: " plain "}.String())

	runs := text{Runs: []struct {
		Text string `json:"text"`
	}{{Text: "a "}, {Text: "b"}}}
	assert.Equal(t, "a b", runs.String())

	assert.Equal(t, "", text{}.String())
}
