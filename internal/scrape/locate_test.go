package scrape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocateRaw(t *testing.T) {
	tests := []struct {
		name   string
		html   string
		want   string
		wantOK bool
	}{
		{
			name:   "var assignment",
			html:   `<script>var ytInitialData = {"a":1};</script>`,
			want:   `{"a":1}`,
			wantOK: true,
		},
		{
			name:   "bracket assignment",
			html:   `<script>window["ytInitialData"] = {"a":{"b":2}};</script>`,
			want:   `{"a":{"b":2}}`,
			wantOK: true,
		},
		{
			name:   "dotted assignment",
			html:   `<script>window.ytInitialData={"a":[1,2]};</script>`,
			want:   `{"a":[1,2]}`,
			wantOK: true,
		},
		{
			name:   "bare assignment",
			html:   `<script>ytInitialData  =  {"x":"y"}; other()</script>`,
			want:   `{"x":"y"}`,
			wantOK: true,
		},
		{
			name:   "braces and escapes inside strings",
			html:   `<script>var ytInitialData = {"t":"a } \" { b","u":"\\"};</script>`,
			want:   `{"t":"a } \" { b","u":"\\"}`,
			wantOK: true,
		},
		{
			name:   "semicolon brace inside string",
			html:   `<script>var ytInitialData = {"t":"};"};</script>`,
			want:   `{"t":"};"}`,
			wantOK: true,
		},
		{
			name:   "malformed json is not found",
			html:   `<script>var ytInitialData = {"a":tru};</script>`,
			wantOK: false,
		},
		{
			name:   "unterminated object",
			html:   `<script>var ytInitialData = {"a":{"b":1}</script>`,
			wantOK: false,
		},
		{
			name:   "absent",
			html:   `<html><body>nothing here</body></html>`,
			wantOK: false,
		},
		{
			name:   "other variable not confused",
			html:   `<script>var ytInitialPlayerResponse = {"p":1};</script>`,
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, ok := LocateRaw([]byte(tt.html), InitialData)
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.want, string(raw))
			}
		})
	}
}

func TestLocateSkipsBrokenCandidate(t *testing.T) {
	html := `<script>var ytInitialData = {"broken":;</script>` +
		`<script>window["ytInitialData"] = {"ok":true};</script>`

	root, ok := Locate([]byte(html), InitialData)
	require.True(t, ok)
	assert.True(t, root.Get("ok").Bool)
}

func TestDecodeKeepsKeyOrder(t *testing.T) {
	root, err := Decode([]byte(`{"z":1,"a":{"y":"\u3042","b":null},"m":[true,"s"]}`))
	require.NoError(t, err)

	assert.Equal(t, []string{"z", "a", "m"}, root.Keys)
	assert.Equal(t, []string{"y", "b"}, root.Get("a").Keys)

	s, ok := root.Path("a", "y").Text()
	require.True(t, ok)
	assert.Equal(t, "あ", s)

	assert.Equal(t, KindNull, root.Path("a", "b").Kind)
	assert.Equal(t, KindNumber, root.Get("z").Kind)
	assert.Equal(t, "1", root.Get("z").Str)
	assert.True(t, root.Get("m").Index(0).Bool)
	assert.Nil(t, root.Get("m").Index(5))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"a":`))
	assert.ErrorIs(t, err, ErrMalformedJSON)
}
