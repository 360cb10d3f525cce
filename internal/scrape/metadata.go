package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"
)

const (
	// TitlePlaceholder is used when the page was fetched but no strategy found a title.
	TitlePlaceholder = "(title unavailable)"
	// FailedTitle is shown for videos whose metadata could not be fetched.
	FailedTitle = "(metadata error)"
)

// ResolveMetadata fetches the page for id and resolves its title and
// thumbnail. Failures are recorded on the result, never returned.
func (c *Client) ResolveMetadata(ctx context.Context, id string, isShort bool) VideoMetadata {
	meta := VideoMetadata{ID: id, URL: WatchURL(id), IsShort: isShort}
	pageURL := c.baseURL + "/watch?v=" + id
	if isShort {
		meta.URL = ShortsURL(id)
		pageURL = c.baseURL + "/shorts/" + id
	}

	body, err := c.fetchPage(ctx, pageURL, c.pageTimeout)
	if err != nil {
		meta.Error = "fetching video page: " + err.Error()
		return meta
	}
	title := ResolveTitle(body)

	thumb, thumbURL, err := c.ResolveThumbnail(ctx, id)
	if err != nil {
		meta.Error = err.Error()
		return meta
	}
	meta.Title = title
	meta.ThumbnailURL = thumbURL
	meta.Thumbnail = thumb
	return meta
}

type pageDoc struct {
	raw []byte
	doc *goquery.Document
}

// titleStrategy returns a title or reports a miss.
type titleStrategy func(p *pageDoc) (string, bool)

var titleChain = []titleStrategy{
	openGraphTitle,
	documentTitle,
	linkedDataName,
	playerResponseTitle,
}

// ResolveTitle runs the title strategies in order and returns the first hit,
// or TitlePlaceholder.
func ResolveTitle(body []byte) string {
	p := &pageDoc{raw: body}
	if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body)); err == nil {
		p.doc = doc
	}
	for _, strategy := range titleChain {
		if title, ok := strategy(p); ok {
			return title
		}
	}
	return TitlePlaceholder
}

func openGraphTitle(p *pageDoc) (string, bool) {
	if p.doc == nil {
		return "", false
	}
	content, ok := p.doc.Find(`meta[property="og:title"]`).First().Attr("content")
	content = strings.TrimSpace(content)
	return content, ok && content != ""
}

func documentTitle(p *pageDoc) (string, bool) {
	if p.doc == nil {
		return "", false
	}
	title := strings.TrimSpace(p.doc.Find("title").First().Text())
	title = strings.TrimSpace(strings.TrimSuffix(title, " - YouTube"))
	return title, title != "" && title != "YouTube"
}

func linkedDataName(p *pageDoc) (string, bool) {
	if p.doc == nil {
		return "", false
	}
	var name string
	p.doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		data := s.Text()
		if !gjson.Valid(data) {
			return true
		}
		r := gjson.Get(data, "name")
		if !r.Exists() {
			r = gjson.Get(data, "0.name")
		}
		name = strings.TrimSpace(r.String())
		return name == ""
	})
	return name, name != ""
}

var playerTitleRE = regexp.MustCompile(`"title":"((?:[^"\\]|\\.)+)"`)

func playerResponseTitle(p *pageDoc) (string, bool) {
	m := playerTitleRE.FindSubmatch(p.raw)
	if m == nil {
		return "", false
	}
	var title string
	if err := json.Unmarshal([]byte(`"`+string(m[1])+`"`), &title); err != nil {
		title = string(m[1])
	}
	title = strings.TrimSpace(title)
	return title, title != ""
}
