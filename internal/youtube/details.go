package youtube

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	ytdl "github.com/kkdai/youtube/v2"
)

const detailWorkers = 5

// WithDetails wraps a provider and fills in durations for video results that
// lack one (the Data API search response carries none). Lookups run
// concurrently and failures degrade to rows without a duration.
func WithDetails(p Provider) Provider {
	client := &ytdl.Client{}
	return &detailProvider{
		inner: p,
		fetch: func(ctx context.Context, videoID string) (time.Duration, error) {
			v, err := client.GetVideoContext(ctx, videoID)
			if err != nil {
				return 0, err
			}
			return v.Duration, nil
		},
	}
}

type detailProvider struct {
	inner Provider
	fetch func(ctx context.Context, videoID string) (time.Duration, error)
}

func (d *detailProvider) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	results, err := d.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, detailWorkers)
	for i := range results {
		if results[i].Kind != KindVideo || results[i].Duration != "" {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(r *Result) {
			defer wg.Done()
			defer func() { <-sem }()
			dur, err := d.fetch(ctx, r.ID)
			if err != nil {
				log.Printf("youtube-plugin: video details %s: %v", r.ID, err)
				return
			}
			r.Duration = FormatDuration(dur)
		}(&results[i])
	}
	wg.Wait()

	return results, nil
}

// FormatDuration renders a duration the way YouTube labels videos:
// "3:04", "1:02:03". Zero and negative durations render as "".
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return ""
	}
	total := int(d.Round(time.Second).Seconds())
	h := total / 3600
	m := total % 3600 / 60
	s := total % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
