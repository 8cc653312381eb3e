package markup

import (
	"strings"
	"testing"

	"cogentcore.org/core/base/keylist"
)

func TestStart(t *testing.T) {
	attrs := keylist.New[string, string]()
	attrs.Set("d", "M0 0Z")
	attrs.Set("fill", "#ff0000")
	styles := keylist.New[string, string]()
	styles.Set("mix-blend-mode", "multiply")
	styles.Set("opacity", "0.5")

	tests := []struct {
		name   string
		attrs  *keylist.List[string, string]
		styles *keylist.List[string, string]
		empty  bool
		want   string
	}{
		{"bare", nil, nil, false, "<g>"},
		{"self closed", attrs, nil, true, `<path d="M0 0Z" fill="#ff0000"/>`},
		{"styles", nil, styles, false, `<g style="mix-blend-mode:multiply;opacity:0.5">`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var sb strings.Builder
			tag := "g"
			if tt.empty {
				tag = "path"
			}
			Start(&sb, tag, tt.attrs, tt.styles, tt.empty)
			if got := sb.String(); got != tt.want {
				t.Errorf("Start() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEscape(t *testing.T) {
	if got, want := Escape(`a<b & "c">`), "a&lt;b &amp; &quot;c&quot;&gt;"; got != want {
		t.Errorf("Escape() = %q, want %q", got, want)
	}
}

func TestEnd(t *testing.T) {
	var sb strings.Builder
	End(&sb, "svg")
	if sb.String() != "</svg>" {
		t.Errorf("End() = %q", sb.String())
	}
}
