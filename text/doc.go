// Package text is the text layout collaborator: it turns a text node into
// the path of its glyphs.
//
// # Pipeline
//
//  1. The content is split into paragraphs at newlines.
//  2. Each paragraph is split into bidi runs (golang.org/x/text/unicode/bidi)
//     and further at span boundaries into items of one font, size and
//     direction.
//  3. Items are shaped with HarfBuzz (github.com/go-text/typesetting).
//  4. Lines are broken greedily at spaces when the node wraps, then placed
//     with the node's alignment.
//  5. Glyph outlines are read from the font (golang.org/x/image/font/sfnt)
//     and appended to one path.
//
// Fonts are opaque ids resolved by a FontBook; DefaultFontBook serves the Go
// font family. Results are memoized per (text, container width) in an LRU
// cache, so repeated layout of an unchanged node is a lookup.
//
// Layout failures (unknown font, unparsable glyph) never escape
// LayoutText: they are logged and reported as "no outline".
package text
