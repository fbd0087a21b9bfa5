package domain

// Game is one downloadable catalog entry scraped from an index page.
type Game struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Console      string `json:"console"`
	Date         string `json:"date"`
	Size         string `json:"size"`
	DownloadLink string `json:"dl_link"`
	IsDownloaded bool   `json:"is_downloaded"`
}

// Console is a named index page the catalog scraper walks.
type Console struct {
	ID      int64  `json:"id"`
	Console string `json:"console"`
	URL     string `json:"url"`
}
