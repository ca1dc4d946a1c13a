package schemas

// TabInfo describes a single open tab in the host browser.
type TabInfo struct {
	PageID int    `json:"page_id"`
	URL    string `json:"url"`
	Title  string `json:"title"`
}

// BrowserState is a point-in-time snapshot of the browser as reported by the
// host's browser collaborator. Screenshot carries the transport encoding
// (base64 PNG); it may be empty when the collaborator captured no image.
type BrowserState struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Screenshot string    `json:"screenshot,omitempty"`
	Tabs       []TabInfo `json:"tabs,omitempty"`
}
