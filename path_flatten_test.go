package compose

import (
	"math"
	"testing"
)

func TestFlattenLines(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(10, 0)
	p.LineTo(10, 10)
	p.LineTo(0, 10)
	p.Close()
	p.MoveTo(20, 20)
	p.LineTo(30, 20)

	got := p.Flatten(DefaultTolerance)
	if len(got) != 2 {
		t.Fatalf("Flatten() = %d polylines, want 2", len(got))
	}
	if !got[0].Closed || len(got[0].Points) != 4 {
		t.Errorf("first polyline = %+v, want 4 closed points", got[0])
	}
	if got[1].Closed || len(got[1].Points) != 2 {
		t.Errorf("second polyline = %+v, want 2 open points", got[1])
	}
}

func TestFlattenCurvesStayWithinTolerance(t *testing.T) {
	const tol = 0.1
	tests := []struct {
		name   string
		build  func(p *Path)
		center Point
		radius float64
	}{
		{
			name: "semicircle arc",
			build: func(p *Path) {
				p.MoveTo(0, 0)
				p.ArcTo(5, 5, 0, false, true, 10, 0)
			},
			center: Pt(5, 0),
			radius: 5,
		},
		{
			name: "quarter cubic",
			build: func(p *Path) {
				const k = 0.5522847498 * 10
				p.MoveTo(10, 0)
				p.CubicTo(10, k, k, 10, 0, 10)
			},
			center: Pt(0, 0),
			radius: 10,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewPath()
			tt.build(p)
			lines := p.Flatten(tol)
			if len(lines) != 1 {
				t.Fatalf("Flatten() = %d polylines, want 1", len(lines))
			}
			pts := lines[0].Points
			if len(pts) < 4 {
				t.Errorf("curve flattened to only %d points", len(pts))
			}
			for _, pt := range pts {
				if d := math.Abs(pt.Distance(tt.center) - tt.radius); d > tol+1e-3 {
					t.Errorf("point %v is %v off the circle", pt, d)
				}
			}
		})
	}
}

func TestFlattenQuadEndpoints(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.QuadraticTo(5, 10, 10, 0)
	pts := p.Flatten(0.05)[0].Points
	if pts[0] != Pt(0, 0) || pts[len(pts)-1] != Pt(10, 0) {
		t.Errorf("endpoints = %v, %v; want (0, 0), (10, 0)", pts[0], pts[len(pts)-1])
	}
}

func TestArcCenter(t *testing.T) {
	c, rx, ry, _, delta, ok := ArcCenter(Pt(0, 0), ArcTo{Rx: 5, Ry: 5, Sweep: true, Point: Pt(10, 0)})
	if !ok {
		t.Fatal("ArcCenter() ok = false")
	}
	if c.Distance(Pt(5, 0)) > 1e-9 {
		t.Errorf("center = %v, want (5, 0)", c)
	}
	if rx != 5 || ry != 5 {
		t.Errorf("radii = %v, %v; want 5, 5", rx, ry)
	}
	if math.Abs(math.Abs(delta)-math.Pi) > 1e-9 {
		t.Errorf("|delta| = %v, want pi", math.Abs(delta))
	}

	// Radii too small for the chord are scaled up.
	_, rx, _, _, _, _ = ArcCenter(Pt(0, 0), ArcTo{Rx: 1, Ry: 1, Point: Pt(10, 0)})
	if math.Abs(rx-5) > 1e-9 {
		t.Errorf("scaled rx = %v, want 5", rx)
	}

	if _, _, _, _, _, ok := ArcCenter(Pt(0, 0), ArcTo{Rx: 0, Ry: 5, Point: Pt(10, 0)}); ok {
		t.Error("zero radius arc should report ok = false")
	}
}
