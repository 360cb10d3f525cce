package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimedText(t *testing.T) {
	tests := []struct {
		name string
		xml  string
		want string
	}{
		{
			name: "legacy transcript",
			xml:  `<?xml version="1.0" encoding="utf-8" ?><transcript><text start="0" dur="1.5">Hello &amp;amp; welcome</text><text start="1.5" dur="2">it&#39;s   a
test</text></transcript>`,
			want: "Hello & welcome it's a test",
		},
		{
			name: "srv3 paragraphs",
			xml:  `<timedtext format="3"><body><p t="0" d="1000">first line</p><p t="1000" d="900"><s>sec</s><s>ond</s></p></body></timedtext>`,
			want: "first line second",
		},
		{
			name: "empty",
			xml:  `<transcript></transcript>`,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimedText([]byte(tt.xml))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseTimedText([]byte("<transcript><text>"))
	assert.Error(t, err)
}

func TestPageTranscriptsResolve(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	var watchHits atomic.Int32

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		watchHits.Add(1)
		fmt.Fprintf(w, `<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
			{"baseUrl":"%[1]s/api/timedtext?lang=en&kind=asr","name":{"simpleText":"English (auto-generated)"},"languageCode":"en","kind":"asr"},
			{"baseUrl":"%[1]s/api/timedtext?lang=ja","name":{"runs":[{"text":"Japanese"}]},"languageCode":"ja"}
		]}}};</script>`, srv.URL)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("lang") {
		case "ja":
			fmt.Fprint(w, `<transcript><text>こんにちは</text><text>世界</text></transcript>`)
		case "en":
			fmt.Fprint(w, `<transcript><text>hello</text></transcript>`)
		}
	})

	source := NewPageTranscripts(NewClient(WithBaseURL(srv.URL)))

	tracks, err := source.List(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, []CaptionTrack{
		{LanguageCode: "en", Name: "English (auto-generated)", BaseURL: srv.URL + "/api/timedtext?lang=en&kind=asr", Generated: true},
		{LanguageCode: "ja", Name: "Japanese", BaseURL: srv.URL + "/api/timedtext?lang=ja"},
	}, tracks)

	text, ok := NewCaptionResolver(source, nil, false).Resolve(context.Background(), id)
	require.True(t, ok)
	assert.Equal(t, "こんにちは 世界", text)

	// two language misses and the track pass share one listing
	watchHits.Store(0)
	text, ok = NewCaptionResolver(source, []string{"fr", "de"}, false).Resolve(context.Background(), id)
	require.True(t, ok)
	assert.Equal(t, "こんにちは 世界", text)
	assert.EqualValues(t, 1, watchHits.Load(), "track listing is fetched once per resolution")

	// a later resolution lists again
	_, ok = NewCaptionResolver(source, nil, false).Resolve(context.Background(), id)
	require.True(t, ok)
	assert.EqualValues(t, 2, watchHits.Load())

	_, err = source.Fetch(context.Background(), id, "fr")
	assert.ErrorIs(t, err, ErrNoCaptionTrack)
}

func TestPageTranscriptsNoPlayerResponse(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	f := &fakeYouTube{pages: map[string]string{"/watch?v=" + id: `<html>no data</html>`}}
	source := NewPageTranscripts(newFakeClient(t, f))

	_, err := source.List(context.Background(), id)
	assert.ErrorIs(t, err, ErrNoPlayerResponse)

	_, ok := NewCaptionResolver(source, nil, false).Resolve(context.Background(), id)
	assert.False(t, ok)
}

func TestPageTranscriptsRetriesAfterFailure(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	var healthy atomic.Bool

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	mux.HandleFunc("/watch", func(w http.ResponseWriter, r *http.Request) {
		if !healthy.Load() {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprintf(w, `<script>var ytInitialPlayerResponse = {"captions":{"playerCaptionsTracklistRenderer":{"captionTracks":[
			{"baseUrl":"%s/api/timedtext?lang=ja","name":{"simpleText":"Japanese"},"languageCode":"ja"}
		]}}};</script>`, srv.URL)
	})
	mux.HandleFunc("/api/timedtext", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<transcript><text>もう一度</text></transcript>`)
	})

	source := NewPageTranscripts(NewClient(WithBaseURL(srv.URL)))
	resolver := NewCaptionResolver(source, nil, false)

	_, err := source.List(context.Background(), id)
	require.Error(t, err)
	_, ok := resolver.Resolve(context.Background(), id)
	require.False(t, ok)

	healthy.Store(true)

	tracks, err := source.List(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, tracks, 1)
	text, ok := resolver.Resolve(context.Background(), id)
	require.True(t, ok)
	assert.Equal(t, "もう一度", text)
}

func TestPageTranscriptsConcurrentResolves(t *testing.T) {
	const id = "dQw4w9WgXcQ"
	var watchHits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		watchHits.Add(1)
		fmt.Fprint(w, `<html>no data</html>`)
	}))
	t.Cleanup(srv.Close)
	source := NewPageTranscripts(NewClient(WithBaseURL(srv.URL)))
	resolver := NewCaptionResolver(source, nil, false)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = source.List(context.Background(), id)
			_, _ = resolver.Resolve(context.Background(), id)
		}()
	}
	wg.Wait()
	// failed listings are not shared between calls
	assert.Greater(t, watchHits.Load(), int32(8))
}
