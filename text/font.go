package text

import (
	"bytes"
	"fmt"
	"slices"
	"sync"

	"github.com/go-text/typesetting/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
)

// Font is a parsed font registered under an id. It is safe for concurrent
// use; per-call state (faces, buffers) is created by the caller.
type Font struct {
	ID string

	outlines *sfnt.Font
	shaping  *font.Font
}

// FontBook resolves font ids. It is safe for concurrent use.
type FontBook struct {
	mu    sync.RWMutex
	fonts map[string]*Font
}

// NewFontBook creates an empty font book.
func NewFontBook() *FontBook {
	return &FontBook{fonts: make(map[string]*Font)}
}

// DefaultFontBook returns a font book with the Go fonts registered as
// "go-regular", "go-bold", "go-italic" and "go-mono".
func DefaultFontBook() (*FontBook, error) {
	b := NewFontBook()
	for id, ttf := range map[string][]byte{
		"go-regular": goregular.TTF,
		"go-bold":    gobold.TTF,
		"go-italic":  goitalic.TTF,
		"go-mono":    gomono.TTF,
	} {
		if err := b.Register(id, ttf); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Register parses TrueType or OpenType data and registers it under id,
// replacing any font with the same id.
func (b *FontBook) Register(id string, data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: %q", ErrEmptyFontData, id)
	}
	outlines, err := sfnt.Parse(data)
	if err != nil {
		return fmt.Errorf("text: parse font %q: %w", id, err)
	}
	face, err := font.ParseTTF(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("text: parse font %q for shaping: %w", id, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	b.fonts[id] = &Font{ID: id, outlines: outlines, shaping: face.Font}
	return nil
}

// Lookup returns the font registered under id.
func (b *FontBook) Lookup(id string) (*Font, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	f, ok := b.fonts[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFont, id)
	}
	return f, nil
}

// IDs returns the registered font ids in sorted order.
func (b *FontBook) IDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	ids := make([]string, 0, len(b.fonts))
	for id := range b.fonts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
