package scrape

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jpegBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil))
	return buf.Bytes()
}

// fakeYouTube serves pages keyed by path plus query.
type fakeYouTube struct {
	pages    map[string]string
	images   map[string][]byte
	requests []string
	headers  http.Header
}

func (f *fakeYouTube) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Path
	if r.URL.RawQuery != "" {
		key += "?" + r.URL.RawQuery
	}
	f.requests = append(f.requests, key)
	f.headers = r.Header.Clone()

	if body, ok := f.pages[key]; ok {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(body))
		return
	}
	if data, ok := f.images[key]; ok {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(data)
		return
	}
	http.NotFound(w, r)
}

func newFakeClient(t *testing.T, f *fakeYouTube) *Client {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithImageBaseURL(srv.URL))
}

func TestResolveTitleChain(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "open graph wins over title element",
			html: `<html><head><title>Other - YouTube</title><meta property="og:title" content="OG Title"></head></html>`,
			want: "OG Title",
		},
		{
			name: "title element with suffix trimmed",
			html: `<html><head><title>Page Title - YouTube</title></head></html>`,
			want: "Page Title",
		},
		{
			name: "linked data name",
			html: `<html><head><title>YouTube</title><script type="application/ld+json">{"@type":"VideoObject","name":"LD Name"}</script></head></html>`,
			want: "LD Name",
		},
		{
			name: "player response with unicode escapes",
			html: `<html><head><title>YouTube</title></head><script>var x = {"videoDetails":{"title":"\u65e5\u672c \"quoted\""}};</script></html>`,
			want: `日本 "quoted"`,
		},
		{
			name: "placeholder when every strategy misses",
			html: `<html><head></head><body></body></html>`,
			want: TitlePlaceholder,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ResolveTitle([]byte(tt.html)))
		})
	}
}

func TestResolveMetadataThumbnailFallback(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	f := &fakeYouTube{
		pages: map[string]string{
			"/watch?v=" + id: `<meta property="og:title" content="Never Gonna">`,
		},
		images: map[string][]byte{
			"/vi/" + id + "/hqdefault.jpg": jpegBytes(t, 4, 3),
		},
	}
	c := newFakeClient(t, f)

	meta := c.ResolveMetadata(context.Background(), id, false)

	assert.Empty(t, meta.Error)
	assert.Equal(t, "Never Gonna", meta.Title)
	assert.Equal(t, WatchURL(id), meta.URL)
	require.NotNil(t, meta.Thumbnail)
	assert.True(t, strings.HasSuffix(meta.Thumbnail.URL, "/hqdefault.jpg"))
	assert.Equal(t, "image/jpeg", meta.Thumbnail.MIMEType)
	assert.Equal(t, 4, meta.Thumbnail.Width)
	assert.Equal(t, 3, meta.Thumbnail.Height)
	assert.Equal(t, []string{
		"/watch?v=" + id,
		"/vi/" + id + "/maxresdefault.jpg",
		"/vi/" + id + "/hqdefault.jpg",
	}, f.requests)

	assert.Contains(t, f.headers.Get("User-Agent"), "Mozilla/5.0")
	assert.Equal(t, DefaultAcceptLanguage, f.headers.Get("Accept-Language"))
}

func TestResolveMetadataPrefersHighResolution(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	f := &fakeYouTube{
		pages: map[string]string{"/watch?v=" + id: `<title>T - YouTube</title>`},
		images: map[string][]byte{
			"/vi/" + id + "/maxresdefault.jpg": jpegBytes(t, 8, 6),
			"/vi/" + id + "/hqdefault.jpg":     jpegBytes(t, 4, 3),
		},
	}
	meta := newFakeClient(t, f).ResolveMetadata(context.Background(), id, false)

	require.NotNil(t, meta.Thumbnail)
	assert.Equal(t, 8, meta.Thumbnail.Width)
	assert.NotContains(t, f.requests, "/vi/"+id+"/hqdefault.jpg")
}

func TestResolveMetadataShorts(t *testing.T) {
	const id = "abc_DEF-123"
	f := &fakeYouTube{
		pages: map[string]string{"/shorts/" + id: `<meta property="og:title" content="Short one">`},
	}
	meta := newFakeClient(t, f).ResolveMetadata(context.Background(), id, true)

	assert.Empty(t, meta.Error)
	assert.True(t, meta.IsShort)
	assert.Equal(t, ShortsURL(id), meta.URL)
	assert.Equal(t, "Short one", meta.Title)
	assert.Nil(t, meta.Thumbnail, "no thumbnail probe succeeded")
	assert.True(t, strings.HasSuffix(meta.ThumbnailURL, "/hqdefault.jpg"))
}

func TestResolveMetadataUndecodableThumbnail(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	f := &fakeYouTube{
		pages:  map[string]string{"/watch?v=" + id: `<title>T - YouTube</title>`},
		images: map[string][]byte{"/vi/" + id + "/maxresdefault.jpg": []byte("not an image")},
	}
	meta := newFakeClient(t, f).ResolveMetadata(context.Background(), id, false)

	assert.Empty(t, meta.Error)
	assert.Equal(t, "T", meta.Title)
	assert.Nil(t, meta.Thumbnail)
}

func TestResolveMetadataPageFailure(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	meta := newFakeClient(t, &fakeYouTube{}).ResolveMetadata(context.Background(), id, false)

	assert.Contains(t, meta.Error, "404")
	assert.Empty(t, meta.Title)
	assert.Nil(t, meta.Thumbnail)
	assert.Equal(t, WatchURL(id), meta.URL)
	assert.Equal(t, FailedTitle, meta.DisplayTitle())
}

func TestResolveMetadataNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c := NewClient(WithBaseURL(srv.URL), WithImageBaseURL(srv.URL))

	meta := c.ResolveMetadata(context.Background(), "dQw4w9WgXcQ", false)
	assert.NotEmpty(t, meta.Error)
	assert.Empty(t, meta.Title)
	assert.Nil(t, meta.Thumbnail)
}
