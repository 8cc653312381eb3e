package compose

import (
	"errors"
	"math"
	"testing"
)

func TestPathBuilding(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.QuadraticTo(15, 0, 15, 5)
	p.CubicTo(15, 8, 12, 10, 10, 10)
	p.ArcTo(5, 5, 0, false, true, 0, 10)
	p.Close()

	if p.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", p.Len())
	}
	if got := p.CurrentPoint(); got != Pt(0, 0) {
		t.Errorf("CurrentPoint() after Close = %v, want (0, 0)", got)
	}
	for _, kind := range []PathElement{MoveTo{}, LineTo{}, QuadTo{}, CubicTo{}, ArcTo{}, Close{}} {
		if n := p.Count(kind); n != 1 {
			t.Errorf("Count(%T) = %d, want 1", kind, n)
		}
	}
}

func TestPathNilSafety(t *testing.T) {
	var p *Path
	if !p.IsEmpty() {
		t.Error("nil path should be empty")
	}
	if p.Len() != 0 {
		t.Errorf("nil Len() = %d, want 0", p.Len())
	}
	if p.Clone() != nil {
		t.Error("nil Clone() should be nil")
	}
	if p.SVG() != "" {
		t.Errorf("nil SVG() = %q, want empty", p.SVG())
	}
}

func TestPathCloneIsIndependent(t *testing.T) {
	p := NewPath()
	p.MoveTo(1, 2)
	p.LineTo(3, 4)
	c := p.Clone()
	c.LineTo(5, 6)
	if p.Len() != 2 {
		t.Errorf("original Len() = %d after modifying clone, want 2", p.Len())
	}
	if c.Len() != 3 {
		t.Errorf("clone Len() = %d, want 3", c.Len())
	}
}

func TestPathTransform(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.ArcTo(5, 5, 0, false, true, 0, 0)
	p.Close()

	got := p.Transform(Scale(2, 3)).SVG()
	want := "M0 0L20 0A10 15 0 0 1 0 0Z"
	if got != want {
		t.Errorf("Transform(Scale(2, 3)).SVG() = %q, want %q", got, want)
	}

	// A mirrored arc sweeps the other way.
	mirrored := p.Transform(Scale(-1, 1)).Elements()[2].(ArcTo)
	if mirrored.Sweep {
		t.Error("mirrored arc should flip its sweep flag")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "0"},
		{10, "10"},
		{0.5, "0.5"},
		{-2.5, "-2.5"},
		{1.23456, "1.235"},
		{-0.0001, "0"},
		{math.NaN(), "0"},
		{math.Inf(1), "0"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPathSVG(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.QuadraticTo(12, 0, 12, 2)
	p.CubicTo(12, 4, 11, 5, 10, 5)
	p.ArcTo(5, 5, 0, true, false, 0, 5)
	p.Close()

	want := "M0 0L10 0Q12 0 12 2C12 4 11 5 10 5A5 5 0 1 0 0 5Z"
	if got := p.SVG(); got != want {
		t.Errorf("SVG() = %q, want %q", got, want)
	}
	if p.String() != want {
		t.Errorf("String() = %q, want %q", p.String(), want)
	}
}

func TestParseSVGPath(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"absolute", "M0 0L10 0Z", "M0 0L10 0Z"},
		{"relative", "m1 1l2 0l0 2z", "M1 1L3 1L3 3Z"},
		{"horizontal and vertical", "M0 0H10V5h-10v-5", "M0 0L10 0L10 5L0 5L0 0"},
		{"implicit lineto", "M 0,0 10,0 10,10", "M0 0L10 0L10 10"},
		{"smooth cubic", "M0 0C0 5 5 10 10 10S20 5 20 0", "M0 0C0 5 5 10 10 10C15 10 20 5 20 0"},
		{"smooth quad", "M0 0Q5 5 10 0T20 0", "M0 0Q5 5 10 0Q15 -5 20 0"},
		{"arc", "M0 0A5 5 0 1 0 10 0", "M0 0A5 5 0 1 0 10 0"},
		{"compact numbers", "M0-5L1-2", "M0 -5L1 -2"},
		{"missing moveto", "L10 10", "M0 0L10 10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseSVGPath(tt.in)
			if err != nil {
				t.Fatalf("ParseSVGPath(%q) error = %v", tt.in, err)
			}
			if got := p.SVG(); got != tt.want {
				t.Errorf("ParseSVGPath(%q).SVG() = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseSVGPathErrors(t *testing.T) {
	for _, in := range []string{"X0 0", "M0", "M0 0A5 5 0 2 1 10 0", "M0 0Z 5"} {
		if _, err := ParseSVGPath(in); !errors.Is(err, ErrBadPathData) {
			t.Errorf("ParseSVGPath(%q) error = %v, want ErrBadPathData", in, err)
		}
	}
}

func TestParseSVGPathRoundTrip(t *testing.T) {
	p := NewPath()
	p.MoveTo(1.5, 2.25)
	p.CubicTo(3, 4, 5, 6, 7, 8)
	p.ArcTo(2, 3, 30, false, true, 9, 1)
	p.Close()

	parsed, err := ParseSVGPath(p.SVG())
	if err != nil {
		t.Fatalf("ParseSVGPath() error = %v", err)
	}
	if parsed.SVG() != p.SVG() {
		t.Errorf("round trip = %q, want %q", parsed.SVG(), p.SVG())
	}
}
