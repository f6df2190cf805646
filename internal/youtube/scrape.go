package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ScrapeClient searches YouTube without a credential by fetching the public
// results page and parsing the ytInitialData JSON embedded in it.
type ScrapeClient struct {
	resultsURL string
	userAgent  string
	dumpDir    string
	http       *http.Client
}

func NewScrapeClient(resultsURL, userAgent string, timeout time.Duration) *ScrapeClient {
	return &ScrapeClient{
		resultsURL: resultsURL,
		userAgent:  userAgent,
		dumpDir:    os.TempDir(),
		http: &http.Client{
			Timeout: timeout,
		},
	}
}

// ytInitialData is assigned in one of two forms depending on the page build.
var dataMarkers = []string{
	"var ytInitialData = ",
	`window["ytInitialData"] = `,
}

const maxPageBytes = 8 * 1024 * 1024

func (c *ScrapeClient) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	val := url.Values{}
	val.Set("search_query", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resultsURL+"?"+val.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("youtube results status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, err
	}

	raw := extractInitialData(body)
	if raw == nil {
		// Markup change or a served error page. Keep the evidence around
		// so users can attach it to a bug report.
		c.dumpPage(body)
		return nil, ErrNoData
	}

	return parseInitialData(raw, limit), nil
}

// extractInitialData locates the ytInitialData assignment and returns the
// complete JSON object, or nil when no marker is present.
func extractInitialData(body []byte) []byte {
	page := string(body)
	for _, marker := range dataMarkers {
		idx := strings.Index(page, marker)
		if idx < 0 {
			continue
		}
		if obj := extractJSON(body[idx+len(marker):]); obj != nil {
			return obj
		}
	}
	return nil
}

// extractJSON returns the balanced JSON object starting at b[0] == '{',
// tracking brace depth and skipping string contents.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr := false
	escaped := false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}

func (c *ScrapeClient) dumpPage(body []byte) {
	name := fmt.Sprintf("youtube-plugin-dump-%s.html", time.Now().Format("20060102-150405"))
	path := filepath.Join(c.dumpDir, name)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		log.Printf("youtube-plugin: dump search page: %v", err)
		return
	}
	log.Printf("youtube-plugin: unexpected search page dumped to %s", path)
	log.Printf("youtube-plugin: if the page looks fine in a browser, please attach the dump to an issue")
}

// --- ytInitialData shapes ---

// text is YouTube's polymorphic string: either simpleText or a list of runs.
type text struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t text) String() string {
	if len(t.Runs) == 0 {
		return strings.TrimSpace(t.SimpleText)
	}
	var b strings.Builder
	for _, r := range t.Runs {
		b.WriteString(r.Text)
	}
	return strings.TrimSpace(b.String())
}

type thumbnails struct {
	Thumbnails []struct {
		URL string `json:"url"`
	} `json:"thumbnails"`
}

// first returns the smallest thumbnail URL with any query string stripped,
// matching what the watch page serves for direct image requests.
func (t thumbnails) first() string {
	if len(t.Thumbnails) == 0 {
		return ""
	}
	u := t.Thumbnails[0].URL
	if i := strings.IndexByte(u, '?'); i >= 0 {
		u = u[:i]
	}
	return u
}

type videoRenderer struct {
	VideoID            string     `json:"videoId"`
	Title              text       `json:"title"`
	OwnerText          text       `json:"ownerText"`
	LengthText         text       `json:"lengthText"`
	ShortViewCountText text       `json:"shortViewCountText"`
	PublishedTimeText  text       `json:"publishedTimeText"`
	Thumbnail          thumbnails `json:"thumbnail"`
}

type channelRenderer struct {
	ChannelID           string `json:"channelId"`
	Title               text   `json:"title"`
	VideoCountText      text   `json:"videoCountText"`
	SubscriberCountText text   `json:"subscriberCountText"`
}

type initialData struct {
	Contents struct {
		TwoColumnSearchResultsRenderer struct {
			PrimaryContents struct {
				SectionListRenderer struct {
					Contents []struct {
						ItemSectionRenderer struct {
							Contents []json.RawMessage `json:"contents"`
						} `json:"itemSectionRenderer"`
					} `json:"contents"`
				} `json:"sectionListRenderer"`
			} `json:"primaryContents"`
		} `json:"twoColumnSearchResultsRenderer"`
	} `json:"contents"`
}

// parseInitialData walks the section list for video and channel renderers.
// Entries of other renderer types (shelves, ads, did-you-mean) are skipped,
// as are entries missing their ID.
func parseInitialData(raw []byte, limit int) []Result {
	var data initialData
	if err := json.Unmarshal(raw, &data); err != nil {
		log.Printf("youtube-plugin: decode ytInitialData: %v", err)
		return nil
	}

	var out []Result
	sections := data.Contents.TwoColumnSearchResultsRenderer.PrimaryContents.SectionListRenderer.Contents
	for _, section := range sections {
		for _, entry := range section.ItemSectionRenderer.Contents {
			if limit > 0 && len(out) >= limit {
				return out
			}
			r, ok := parseEntry(entry)
			if ok {
				out = append(out, r)
			}
		}
	}
	return out
}

func parseEntry(entry json.RawMessage) (Result, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(entry, &obj); err != nil {
		return Result{}, false
	}

	if raw, ok := obj["videoRenderer"]; ok {
		var vr videoRenderer
		if err := json.Unmarshal(raw, &vr); err != nil || vr.VideoID == "" {
			return Result{}, false
		}
		return Result{
			Kind:         KindVideo,
			ID:           vr.VideoID,
			Title:        vr.Title.String(),
			Channel:      vr.OwnerText.String(),
			URL:          watchURL(vr.VideoID),
			ThumbnailURL: vr.Thumbnail.first(),
			Duration:     vr.LengthText.String(),
			ViewCount:    vr.ShortViewCountText.String(),
			PublishedAt:  vr.PublishedTimeText.String(),
		}, true
	}

	if raw, ok := obj["channelRenderer"]; ok {
		var cr channelRenderer
		if err := json.Unmarshal(raw, &cr); err != nil || cr.ChannelID == "" {
			return Result{}, false
		}
		return Result{
			Kind:            KindChannel,
			ID:              cr.ChannelID,
			Title:           cr.Title.String(),
			URL:             channelURL(cr.ChannelID),
			VideoCount:      cr.VideoCountText.String(),
			SubscriberCount: cr.SubscriberCountText.String(),
		}, true
	}

	return Result{}, false
}
