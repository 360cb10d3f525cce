package scrape

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"

	_ "golang.org/x/image/webp"
)

var thumbnailNames = []string{"maxresdefault.jpg", "hqdefault.jpg"}

// ResolveThumbnail probes the high resolution thumbnail and falls back to
// the standard one. It returns the decoded thumbnail (nil when neither probe
// answered with a decodable image), the last probed URL, and an error only
// for network failures.
func (c *Client) ResolveThumbnail(ctx context.Context, id string) (*Thumbnail, string, error) {
	var thumbURL string
	for _, name := range thumbnailNames {
		thumbURL = fmt.Sprintf("%s/vi/%s/%s", c.imageBaseURL, id, name)
		body, status, err := c.fetch(ctx, thumbURL, c.thumbnailTimeout)
		if err != nil {
			return nil, thumbURL, fmt.Errorf("fetching thumbnail: %w", err)
		}
		if status != http.StatusOK {
			c.verbosef("Thumbnail %s answered %d\n", name, status)
			continue
		}
		thumb, err := decodeThumbnail(thumbURL, body)
		if err != nil {
			c.verbosef("Thumbnail %s: %v\n", name, err)
			return nil, thumbURL, nil
		}
		return thumb, thumbURL, nil
	}
	return nil, thumbURL, nil
}

func decodeThumbnail(thumbURL string, data []byte) (*Thumbnail, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	bounds := img.Bounds()
	return &Thumbnail{
		URL:      thumbURL,
		MIMEType: "image/" + format,
		Width:    bounds.Dx(),
		Height:   bounds.Dy(),
		Data:     data,
	}, nil
}
