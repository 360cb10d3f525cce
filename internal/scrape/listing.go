package scrape

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// NormalizeChannelURL makes sure a channel URL targets the videos tab.
func NormalizeChannelURL(channelURL string) string {
	channelURL = strings.TrimSpace(channelURL)
	if strings.Contains(channelURL, "/videos") {
		return channelURL
	}
	return strings.TrimRight(channelURL, "/") + "/videos"
}

// ChannelVideos lists up to limit videos from the first page of a channel.
// A page whose embedded data cannot be found yields no videos and no error.
func (c *Client) ChannelVideos(ctx context.Context, channelURL string, limit int) ([]VideoListing, error) {
	pageURL := NormalizeChannelURL(channelURL)
	c.verbosef("Fetching channel page %s\n", pageURL)

	body, err := c.fetchPage(ctx, pageURL, c.channelTimeout)
	if err != nil {
		return nil, fmt.Errorf("fetching channel page: %w", err)
	}
	return c.walkPage(body, ChannelShapes, limit), nil
}

// SearchVideos lists up to limit videos from the first page of search results.
func (c *Client) SearchVideos(ctx context.Context, query string, limit int) ([]VideoListing, error) {
	pageURL := c.baseURL + "/results?search_query=" + url.QueryEscape(query)
	c.verbosef("Searching for %q\n", query)

	body, err := c.fetchPage(ctx, pageURL, c.pageTimeout)
	if err != nil {
		return nil, fmt.Errorf("fetching search results: %w", err)
	}
	return c.walkPage(body, SearchShapes, limit), nil
}

func (c *Client) walkPage(body []byte, opts WalkOptions, limit int) []VideoListing {
	root, ok := Locate(body, InitialData)
	if !ok {
		c.verbosef("No %s found in page\n", InitialData)
		return nil
	}
	opts.MaxResults = limit
	videos := WalkVideos(root, opts)
	c.verbosef("Found %d videos\n", len(videos))
	return videos
}
