package scrape

// Shape is a wrapper key under which a page layout stores a video entry.
// Inner is the path from the wrapper down to the renderer object.
type Shape struct {
	Key   string
	Inner []string
}

// WalkOptions bounds a walk over embedded page data.
type WalkOptions struct {
	MaxResults int
	MaxDepth   int
	Shapes     []Shape
	// BareVideoID also accepts any object with an 11-character videoId and a
	// title, when none of the shapes matched.
	BareVideoID bool
}

// ChannelShapes recognises the grid, feed and rich-grid layouts of channel pages.
var ChannelShapes = WalkOptions{
	MaxDepth: 20,
	Shapes: []Shape{
		{Key: "videoRenderer"},
		{Key: "gridVideoRenderer"},
		{Key: "compactVideoRenderer"},
		{Key: "richItemRenderer", Inner: []string{"content", "videoRenderer"}},
	},
	BareVideoID: true,
}

// SearchShapes recognises search result entries.
var SearchShapes = WalkOptions{
	MaxDepth: 15,
	Shapes:   []Shape{{Key: "videoRenderer"}},
}

// WalkVideos collects video entries from a decoded page state tree in
// document order, deduplicated by ID and capped at opts.MaxResults.
func WalkVideos(root *Node, opts WalkOptions) []VideoListing {
	if opts.MaxResults <= 0 {
		return nil
	}
	w := &walker{opts: opts, seen: make(map[string]bool)}
	w.visit(root, 0)
	return w.out
}

type walker struct {
	opts WalkOptions
	seen map[string]bool
	out  []VideoListing
}

func (w *walker) full() bool {
	return len(w.out) >= w.opts.MaxResults
}

func (w *walker) visit(n *Node, depth int) {
	if n == nil || depth > w.opts.MaxDepth || w.full() {
		return
	}
	switch n.Kind {
	case KindObject:
		w.match(n)
		for _, key := range n.Keys {
			if w.full() {
				return
			}
			w.visit(n.Fields[key], depth+1)
		}
	case KindArray:
		for _, item := range n.Items {
			if w.full() {
				return
			}
			w.visit(item, depth+1)
		}
	}
}

// match checks the shapes in order; only the first present wrapper is used.
func (w *walker) match(n *Node) {
	for _, shape := range w.opts.Shapes {
		wrapper := n.Get(shape.Key)
		if wrapper == nil {
			continue
		}
		renderer := wrapper.Path(shape.Inner...)
		if renderer != nil {
			id, _ := renderer.Get("videoId").Text()
			w.add(id, TitleText(renderer.Get("title")))
		}
		return
	}

	if !w.opts.BareVideoID {
		return
	}
	id, ok := n.Get("videoId").Text()
	if !ok || len(id) != 11 {
		return
	}
	title := n.Get("title")
	if title == nil || (title.Kind != KindString && title.Kind != KindObject) {
		return
	}
	w.add(id, TitleText(title))
}

func (w *walker) add(id, title string) {
	if id == "" || title == "" || w.seen[id] {
		return
	}
	w.seen[id] = true
	w.out = append(w.out, VideoListing{ID: id, Title: title, URL: WatchURL(id)})
}

// TitleText reads a title stored either as a plain string or as rich text
// ({"runs":[{"text":...}]} or {"simpleText":...}).
func TitleText(title *Node) string {
	if s, ok := title.Text(); ok {
		return s
	}
	if s, ok := title.Get("runs").Index(0).Get("text").Text(); ok && s != "" {
		return s
	}
	s, _ := title.Get("simpleText").Text()
	return s
}
