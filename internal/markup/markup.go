// Package markup writes SVG element markup from ordered attribute and style
// lists. It is shared by the element tree and the replica sink so both
// serialize the same way.
package markup

import (
	"io"
	"strings"

	"cogentcore.org/core/base/keylist"
)

var escaper = strings.NewReplacer(`&`, "&amp;", `<`, "&lt;", `>`, "&gt;", `"`, "&quot;")

// Escape escapes s for use inside a double-quoted attribute value.
func Escape(s string) string {
	return escaper.Replace(s)
}

// Style joins style properties into a CSS declaration list, "k:v;k:v".
func Style(styles *keylist.List[string, string]) string {
	if styles.Len() == 0 {
		return ""
	}
	var sb strings.Builder
	for i, k := range styles.Keys {
		if i > 0 {
			sb.WriteByte(';')
		}
		sb.WriteString(k)
		sb.WriteByte(':')
		sb.WriteString(styles.Values[i])
	}
	return sb.String()
}

// Start writes the start tag of an element. Styles are written as one
// style attribute after the other attributes. An element without children
// is written self-closed and needs no End.
func Start(w io.StringWriter, tag string, attrs, styles *keylist.List[string, string], empty bool) {
	w.WriteString("<")
	w.WriteString(tag)
	for i := 0; i < attrs.Len(); i++ {
		w.WriteString(" ")
		w.WriteString(attrs.Keys[i])
		w.WriteString(`="`)
		w.WriteString(Escape(attrs.Values[i]))
		w.WriteString(`"`)
	}
	if s := Style(styles); s != "" {
		w.WriteString(` style="`)
		w.WriteString(Escape(s))
		w.WriteString(`"`)
	}
	if empty {
		w.WriteString("/>")
		return
	}
	w.WriteString(">")
}

// End writes the end tag of an element.
func End(w io.StringWriter, tag string) {
	w.WriteString("</")
	w.WriteString(tag)
	w.WriteString(">")
}
