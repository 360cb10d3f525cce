package scrape

// VideoRef names a single video to process.
type VideoRef struct {
	ID        string `json:"id"`
	SourceURL string `json:"source_url"`
}

// IsShort reports whether the reference came from a shorts link.
func (r VideoRef) IsShort() bool {
	return IsShortURL(r.SourceURL)
}

// VideoListing is an entry found on a channel or search results page.
type VideoListing struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Ref converts the listing into a VideoRef.
func (l VideoListing) Ref() VideoRef {
	return VideoRef{ID: l.ID, SourceURL: l.URL}
}

// Thumbnail is a decoded thumbnail image.
type Thumbnail struct {
	URL      string `json:"url"`
	MIMEType string `json:"mime_type"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Data     []byte `json:"-"`
}

// VideoMetadata is the resolved display information for one video.
type VideoMetadata struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url"`
	ThumbnailURL string     `json:"thumbnail_url,omitempty"`
	Thumbnail    *Thumbnail `json:"thumbnail,omitempty"`
	IsShort      bool       `json:"is_short"`
	Error        string     `json:"error,omitempty"`
}

// DisplayTitle returns the title, or a placeholder when resolution failed.
func (m VideoMetadata) DisplayTitle() string {
	if m.Title == "" {
		return FailedTitle
	}
	return m.Title
}

// CaptionTrack describes one caption track offered for a video.
type CaptionTrack struct {
	LanguageCode string `json:"language_code"`
	Name         string `json:"name,omitempty"`
	BaseURL      string `json:"base_url,omitempty"`
	Generated    bool   `json:"generated"`
}
