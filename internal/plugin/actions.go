package plugin

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/pkg/browser"
)

// Actions performs the side effects a user can trigger on a row. Both are
// fire-and-forget from the launcher's point of view; errors are only
// reported, never retried.
type Actions struct {
	openURL func(string) error
	copyAll func(string) error
}

func NewActions() *Actions {
	return &Actions{
		openURL: browser.OpenURL,
		copyAll: clipboard.WriteAll,
	}
}

// Open opens the item's target URL in the default browser.
func (a *Actions) Open(item Item) error {
	if item.URL == "" {
		return fmt.Errorf("item %q has no URL", item.Title)
	}
	return a.openURL(item.URL)
}

// Copy puts a markdown link for the item on the system clipboard.
func (a *Actions) Copy(item Item) error {
	if item.URL == "" {
		return fmt.Errorf("item %q has no URL", item.Title)
	}
	return a.copyAll(fmt.Sprintf("[%s](%s)", item.Title, item.URL))
}
