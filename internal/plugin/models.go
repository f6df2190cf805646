package plugin

// Item is one selectable launcher row. IconPath is set only when the icon
// fetcher managed to download the thumbnail; hosts fall back to the bundled
// plugin icon otherwise.
type Item struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	URL        string `json:"url"`
	ActionName string `json:"actionName"`
	IconURL    string `json:"iconUrl,omitempty"`
	IconPath   string `json:"iconPath,omitempty"`
}

type SearchResponse struct {
	Items []Item `json:"items"`
}
