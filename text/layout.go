package text

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/go-text/typesetting/di"
	"github.com/go-text/typesetting/font"
	"github.com/go-text/typesetting/language"
	"github.com/go-text/typesetting/shaping"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/bidi"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/internal/cache"
	"github.com/gogpu/compose/scene"
)

// defaultLineHeight is the line advance as a multiple of the font size
// when a text node does not set one.
const defaultLineHeight = 1.2

// Option configures a Layouter.
type Option func(*Layouter)

// WithDefaultFont sets the font used when a text node names none.
func WithDefaultFont(id string) Option {
	return func(l *Layouter) { l.defaultFont = id }
}

// WithDefaultSize sets the font size used when a text node sets none.
func WithDefaultSize(size float64) Option {
	return func(l *Layouter) {
		if size > 0 {
			l.defaultSize = size
		}
	}
}

// WithCacheSize sets how many layouts are memoized. 0 disables the limit.
func WithCacheSize(n int) Option {
	return func(l *Layouter) {
		if n >= 0 {
			l.cacheSize = n
		}
	}
}

// Layouter lays out text nodes. It is safe for concurrent use.
type Layouter struct {
	book        *FontBook
	defaultFont string
	defaultSize float64
	cacheSize   int

	layouts *cache.Cache[string, *Layout]
	glyphs  *cache.Cache[glyphKey, sfnt.Segments]

	mu     sync.Mutex // guards buf and shaper
	buf    sfnt.Buffer
	shaper shaping.HarfbuzzShaper
}

// New creates a Layouter resolving fonts through book.
func New(book *FontBook, opts ...Option) *Layouter {
	l := &Layouter{
		book:        book,
		defaultFont: "go-regular",
		defaultSize: 16,
		cacheSize:   256,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.layouts = cache.New[string, *Layout](l.cacheSize)
	l.glyphs = cache.New[glyphKey, sfnt.Segments](l.cacheSize * 64)
	return l
}

// Layout is the result of laying out one text node.
type Layout struct {
	Lines []Line
	// Path holds the outlines of all glyphs; nil when nothing is visible.
	Path *compose.Path
}

// Line is one laid-out line. Start and End are rune indices into the
// content; End excludes the line's newline.
type Line struct {
	Start, End int
	// X is the left edge after alignment; Baseline is measured from the
	// top of the container.
	X, Baseline float64
	// Width excludes trailing spaces.
	Width  float64
	Glyphs []Glyph
}

// Glyph is a positioned glyph. X and Y are its origin on the baseline.
type Glyph struct {
	Font    string
	ID      sfnt.GlyphIndex
	Size    float64
	X, Y    float64
	Cluster int
}

// LayoutText implements the outline package's TextLayouter. Failures are
// logged and yield nil.
func (l *Layouter) LayoutText(t scene.Text, size compose.Size) *compose.Path {
	lay, err := l.Layout(t, size)
	if err != nil {
		compose.Logger().Warn("text layout failed", "font", t.Font, "error", err)
		return nil
	}
	if lay.Path.IsEmpty() {
		return nil
	}
	return lay.Path.Clone()
}

// Layout lays out t inside a container of the given size. Only the width
// affects the result: text starts at the top and may overflow the height.
// The returned Layout is shared with the cache and must not be modified.
func (l *Layouter) Layout(t scene.Text, size compose.Size) (*Layout, error) {
	key := l.key(t, size.Width)
	if lay, ok := l.layouts.Get(key); ok {
		return lay, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	lay, err := l.layout(t, size.Width)
	if err != nil {
		return nil, err
	}
	l.layouts.Set(key, lay)
	return lay, nil
}

// CacheStats reports the layout cache statistics.
func (l *Layouter) CacheStats() cache.Stats {
	return l.layouts.Stats()
}

func (l *Layouter) key(t scene.Text, width float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s|%g|%g|%d|%d|%g|", t.Font, t.FontSize, t.LineHeight, t.Align, t.Wrap, width)
	for _, s := range t.Spans {
		fmt.Fprintf(&sb, "%d-%d:%s:%g;", s.Start, s.End, s.Font, s.Size)
	}
	sb.WriteByte('|')
	sb.WriteString(t.Content)
	return sb.String()
}

type runStyle struct {
	font *Font
	size float64
}

type item struct {
	start, end int
	rtl        bool
	style      runStyle
	visual     int
	sub        int
	glyphs     []shaping.Glyph
	ascent     float64
	descent    float64
}

type layoutState struct {
	t          scene.Text
	runes      []rune
	styles     []runStyle
	widths     []float64
	width      float64
	lineHeight float64
	y          float64
	out        *Layout
}

func (l *Layouter) layout(t scene.Text, width float64) (*Layout, error) {
	runes := []rune(t.Content)
	styles, base, err := l.styles(t, runes)
	if err != nil {
		return nil, err
	}
	lh := t.LineHeight
	if lh <= 0 {
		lh = defaultLineHeight
	}
	st := &layoutState{
		t:          t,
		runes:      runes,
		styles:     styles,
		widths:     make([]float64, len(runes)),
		width:      width,
		lineHeight: lh,
		out:        &Layout{},
	}

	start := 0
	for i := 0; i <= len(runes); i++ {
		if i < len(runes) && runes[i] != '\n' {
			continue
		}
		if i == start {
			// Empty paragraph: advance by one line of the base style.
			st.out.Lines = append(st.out.Lines, Line{Start: start, End: i})
			st.y += base.size * lh
		} else if err := l.paragraph(st, start, i); err != nil {
			return nil, err
		}
		start = i + 1
	}
	if len(runes) == 0 {
		st.out.Lines = nil
	}
	return st.out, nil
}

// styles resolves the font and size of every rune.
func (l *Layouter) styles(t scene.Text, runes []rune) ([]runStyle, runStyle, error) {
	fontID := t.Font
	if fontID == "" {
		fontID = l.defaultFont
	}
	f, err := l.book.Lookup(fontID)
	if err != nil {
		return nil, runStyle{}, err
	}
	base := runStyle{font: f, size: t.FontSize}
	if base.size <= 0 {
		base.size = l.defaultSize
	}
	styles := make([]runStyle, len(runes))
	for i := range styles {
		styles[i] = base
	}
	if len(t.Spans) == 0 {
		return styles, base, nil
	}

	// Spans address bytes; styles are per rune.
	runeAt := make([]int, len(t.Content)+1)
	r := 0
	for b := 0; b < len(t.Content); {
		_, w := utf8.DecodeRuneInString(t.Content[b:])
		for k := 0; k < w; k++ {
			runeAt[b+k] = r
		}
		b += w
		r++
	}
	runeAt[len(t.Content)] = r

	for _, sp := range t.Spans {
		s := max(0, min(sp.Start, len(t.Content)))
		e := max(0, min(sp.End, len(t.Content)))
		if s >= e {
			continue
		}
		style := base
		if sp.Font != "" {
			if style.font, err = l.book.Lookup(sp.Font); err != nil {
				return nil, runStyle{}, err
			}
		}
		if sp.Size > 0 {
			style.size = sp.Size
		}
		for i := runeAt[s]; i < runeAt[e]; i++ {
			styles[i] = style
		}
	}
	return styles, base, nil
}

func (l *Layouter) paragraph(st *layoutState, start, end int) error {
	items, err := l.itemize(st, start, end)
	if err != nil {
		return err
	}
	for _, it := range items {
		for _, g := range it.glyphs {
			if c := g.TextIndex(); c >= start && c < end {
				st.widths[c] += fixedToFloat(g.Advance)
			}
		}
	}
	for _, span := range st.breakLines(start, end) {
		if err := l.placeLine(st, items, span[0], span[1]); err != nil {
			return err
		}
	}
	return nil
}

type bidiRun struct {
	start, end int
	rtl        bool
	visual     int
}

// bidiRuns returns the directional runs of runes[start:end] in logical
// order, each tagged with its visual rank.
func bidiRuns(runes []rune, start, end int) []bidiRun {
	fallback := []bidiRun{{start: start, end: end}}

	var p bidi.Paragraph
	if _, err := p.SetString(string(runes[start:end]), bidi.DefaultDirection(bidi.LeftToRight)); err != nil {
		return fallback
	}
	ordering, err := p.Order()
	if err != nil || ordering.NumRuns() == 0 {
		return fallback
	}

	runs := make([]bidiRun, 0, ordering.NumRuns())
	for i := 0; i < ordering.NumRuns(); i++ {
		run := ordering.Run(i)
		s, e := run.Pos() // rune indices, end inclusive
		runs = append(runs, bidiRun{
			start:  start + s,
			end:    start + e + 1,
			rtl:    run.Direction() == bidi.RightToLeft,
			visual: i,
		})
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].start < runs[j].start })

	next := start
	for _, r := range runs {
		if r.start != next || r.end <= r.start {
			return fallback
		}
		next = r.end
	}
	if next != end {
		return fallback
	}
	return runs
}

// itemize splits a paragraph into shaped items of uniform style and
// direction, in logical order.
func (l *Layouter) itemize(st *layoutState, start, end int) ([]*item, error) {
	var items []*item
	for _, run := range bidiRuns(st.runes, start, end) {
		sub := 0
		for s := run.start; s < run.end; {
			e := s + 1
			for e < run.end && st.styles[e] == st.styles[s] {
				e++
			}
			it := &item{start: s, end: e, rtl: run.rtl, style: st.styles[s], visual: run.visual, sub: sub}
			if run.rtl {
				it.sub = -sub
			}
			if err := l.shape(st.runes, it); err != nil {
				return nil, err
			}
			items = append(items, it)
			sub++
			s = e
		}
	}
	return items, nil
}

func (l *Layouter) shape(runes []rune, it *item) error {
	dir := di.DirectionLTR
	if it.rtl {
		dir = di.DirectionRTL
	}
	ppem := floatToFixed(it.style.size)
	input := shaping.Input{
		Text:      runes,
		RunStart:  it.start,
		RunEnd:    it.end,
		Direction: dir,
		Face:      font.NewFace(it.style.font.shaping),
		Size:      ppem,
		Script:    detectScript(runes[it.start:it.end]),
		Language:  language.NewLanguage("en"),
	}
	it.glyphs = l.shaper.Shape(input).Glyphs

	m, err := it.style.font.outlines.Metrics(&l.buf, ppem, xfont.HintingNone)
	if err != nil {
		return fmt.Errorf("text: metrics of %q: %w", it.style.font.ID, err)
	}
	it.ascent = fixedToFloat(m.Ascent)
	it.descent = fixedToFloat(m.Descent)
	return nil
}

// breakLines splits [start, end) into lines. With word wrapping and a
// positive container width, a line breaks after the last space that
// keeps it within the width; a word wider than the container is broken
// between runes.
func (st *layoutState) breakLines(start, end int) [][2]int {
	if st.t.Wrap != scene.WrapWord || st.width <= 0 {
		return [][2]int{{start, end}}
	}
	var lines [][2]int
	lineStart := start
	lastSpace := -1
	w := 0.0
	for i := start; i < end; {
		if st.runes[i] != ' ' && i > lineStart && w+st.widths[i] > st.width {
			brk := i
			if lastSpace >= lineStart {
				brk = lastSpace + 1
			}
			lines = append(lines, [2]int{lineStart, brk})
			lineStart = brk
			lastSpace = -1
			w = 0
			for k := lineStart; k < i; k++ {
				w += st.widths[k]
			}
			// The remainder of the word may still overflow.
			continue
		}
		w += st.widths[i]
		if st.runes[i] == ' ' {
			lastSpace = i
		}
		i++
	}
	return append(lines, [2]int{lineStart, end})
}

func (l *Layouter) placeLine(st *layoutState, items []*item, start, end int) error {
	var parts []*item
	for _, it := range items {
		if it.start < end && it.end > start {
			parts = append(parts, it)
		}
	}
	sort.SliceStable(parts, func(i, j int) bool {
		if parts[i].visual != parts[j].visual {
			return parts[i].visual < parts[j].visual
		}
		return parts[i].sub < parts[j].sub
	})

	var ascent, descent, size, total float64
	for _, it := range parts {
		ascent = max(ascent, it.ascent)
		descent = max(descent, it.descent)
		size = max(size, it.style.size)
	}
	for i := start; i < end; i++ {
		total += st.widths[i]
	}
	trailing := 0.0
	for i := end - 1; i >= start && st.runes[i] == ' '; i-- {
		trailing += st.widths[i]
	}

	line := Line{Start: start, End: end, Width: total - trailing}
	switch st.t.Align {
	case scene.AlignCenter:
		line.X = (st.width - line.Width) / 2
	case scene.AlignRight:
		line.X = st.width - line.Width
	}
	height := size * st.lineHeight
	line.Baseline = st.y + ascent + (height-(ascent+descent))/2
	st.y += height

	if st.out.Path == nil {
		st.out.Path = compose.NewPath()
	}
	x := line.X
	for _, it := range parts {
		for _, g := range it.glyphs {
			c := g.TextIndex()
			if c < start || c >= end {
				continue
			}
			gl := Glyph{
				Font:    it.style.font.ID,
				ID:      sfnt.GlyphIndex(g.GlyphID),
				Size:    it.style.size,
				X:       x + fixedToFloat(g.XOffset),
				Y:       line.Baseline - fixedToFloat(g.YOffset),
				Cluster: c,
			}
			x += fixedToFloat(g.Advance)
			line.Glyphs = append(line.Glyphs, gl)

			segs, err := l.outline(it.style.font, gl.ID, gl.Size)
			if err != nil {
				return err
			}
			appendGlyph(st.out.Path, segs, gl.X, gl.Y)
		}
	}
	st.out.Lines = append(st.out.Lines, line)
	return nil
}

type glyphKey struct {
	font string
	id   sfnt.GlyphIndex
	ppem fixed.Int26_6
}

// outline returns the segments of a glyph, relative to its origin, with
// y growing downward.
func (l *Layouter) outline(f *Font, id sfnt.GlyphIndex, size float64) (sfnt.Segments, error) {
	key := glyphKey{font: f.ID, id: id, ppem: floatToFixed(size)}
	if segs, ok := l.glyphs.Get(key); ok {
		return segs, nil
	}
	segs, err := f.outlines.LoadGlyph(&l.buf, id, key.ppem, nil)
	if err != nil {
		return nil, fmt.Errorf("text: glyph %d of %q: %w", id, f.ID, err)
	}
	// LoadGlyph's result aliases the buffer.
	segs = append(sfnt.Segments(nil), segs...)
	l.glyphs.Set(key, segs)
	return segs, nil
}

func appendGlyph(p *compose.Path, segs sfnt.Segments, x, y float64) {
	pt := func(a fixed.Point26_6) (float64, float64) {
		return x + fixedToFloat(a.X), y + fixedToFloat(a.Y)
	}
	open := false
	for _, s := range segs {
		switch s.Op {
		case sfnt.SegmentOpMoveTo:
			if open {
				p.Close()
			}
			px, py := pt(s.Args[0])
			p.MoveTo(px, py)
			open = true
		case sfnt.SegmentOpLineTo:
			px, py := pt(s.Args[0])
			p.LineTo(px, py)
		case sfnt.SegmentOpQuadTo:
			cx, cy := pt(s.Args[0])
			px, py := pt(s.Args[1])
			p.QuadraticTo(cx, cy, px, py)
		case sfnt.SegmentOpCubeTo:
			c1x, c1y := pt(s.Args[0])
			c2x, c2y := pt(s.Args[1])
			px, py := pt(s.Args[2])
			p.CubicTo(c1x, c1y, c2x, c2y, px, py)
		}
	}
	if open {
		p.Close()
	}
}

// detectScript returns the script of the first non-space rune.
func detectScript(runes []rune) language.Script {
	for _, r := range runes {
		if r == ' ' || r == '\t' || r == '\r' {
			continue
		}
		return language.LookupScript(r)
	}
	return language.Latin
}

func floatToFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(v * 64)
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
