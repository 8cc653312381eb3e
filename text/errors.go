package text

import "errors"

var (
	// ErrUnknownFont is returned when a font id is not registered.
	ErrUnknownFont = errors.New("text: unknown font")

	// ErrEmptyFontData is returned when font data is empty.
	ErrEmptyFontData = errors.New("text: empty font data")
)
