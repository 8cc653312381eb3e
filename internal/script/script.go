// Package script decodes YAML scene scripts into mutation batches.
//
// A script is a stream of YAML documents. Each document is a list of
// steps and becomes one batch, so one document is one update pass:
//
//	- op: create
//	  name: card
//	  shape: {kind: frame, clip: true, radii: [8, 8, 8, 8]}
//	  at: [10, 10]
//	  size: [200, 120]
//	- op: style
//	  name: card-fill
//	  node: card
//	  kind: fill
//	  paint: {color: "#3366ff"}
//	---
//	- op: resize
//	  name: card
//	  size: [240, 120]
//
// Nodes and styles are addressed by name. Names are bound to ids reserved
// from the store when they are created.
package script

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gogpu/compose"
	"github.com/gogpu/compose/scene"
)

// ErrUnknownName is returned for steps naming a node or style that no
// earlier step created.
var ErrUnknownName = errors.New("script: unknown name")

// Step is one scripted mutation.
type Step struct {
	Op     string `yaml:"op"`
	Name   string `yaml:"name"`   // the node, or the style for style and unstyle
	Node   string `yaml:"node"`   // style: the node a new style is added to
	Parent string `yaml:"parent"` // create, reparent: empty for top level
	Index  *int   `yaml:"index"`  // create, reparent: 0 is topmost; default bottom

	Shape    *Shape    `yaml:"shape"`
	At       []float64 `yaml:"at"` // create: x y; move: dx dy
	Size     []float64 `yaml:"size"`
	Rotation float64   `yaml:"rotation"`
	Visible  *bool     `yaml:"visible"`
	Opacity  *float64  `yaml:"opacity"`
	Text     string    `yaml:"text"`

	Kind        string   `yaml:"kind"` // fill | stroke | shadow
	Paint       *Paint   `yaml:"paint"`
	StrokeWidth *float64 `yaml:"stroke_width"`
	Join        string   `yaml:"join"` // miter | bevel
	Cap         string   `yaml:"cap"`  // butt | square
	Shadow      *Shadow  `yaml:"shadow"`
}

// Shape describes node geometry. Only the fields of Kind are read.
type Shape struct {
	Kind string `yaml:"kind"`

	Radii      []float64 `yaml:"radii"` // rectangle, frame
	Clip       bool      `yaml:"clip"`  // frame
	Start      float64   `yaml:"start"` // ellipse, radians
	End        float64   `yaml:"end"`
	InnerRatio float64   `yaml:"inner_ratio"` // ellipse, star
	Points     int       `yaml:"points"`      // star, polygon
	Path       string    `yaml:"path"`        // vector, SVG path data

	Content    string  `yaml:"content"` // text
	Font       string  `yaml:"font"`
	FontSize   float64 `yaml:"font_size"`
	LineHeight float64 `yaml:"line_height"`
	Align      string  `yaml:"align"` // left | center | right
	Wrap       string  `yaml:"wrap"`  // none | word
	Spans      []Span  `yaml:"spans"`
}

// Span overrides the font of the byte range [Start, End) of a text.
type Span struct {
	Start int     `yaml:"start"`
	End   int     `yaml:"end"`
	Font  string  `yaml:"font"`
	Size  float64 `yaml:"size"`
}

// Paint is one of a solid color, a gradient or an image.
type Paint struct {
	Color    string    `yaml:"color"`
	Gradient *Gradient `yaml:"gradient"`
	Image    *Image    `yaml:"image"`
}

// Gradient points are fractions of the node box.
type Gradient struct {
	Radial bool      `yaml:"radial"`
	Start  []float64 `yaml:"start"`
	End    []float64 `yaml:"end"`
	Stops  []Stop    `yaml:"stops"`
}

// Stop is a gradient color stop.
type Stop struct {
	Offset float64 `yaml:"offset"`
	Color  string  `yaml:"color"`
}

// Image is an image paint.
type Image struct {
	Href   string  `yaml:"href"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	Mode   string  `yaml:"mode"` // fill | fit | stretch | tile
}

// Shadow is a drop shadow's geometry.
type Shadow struct {
	DX   float64 `yaml:"dx"`
	DY   float64 `yaml:"dy"`
	Blur float64 `yaml:"blur"`
}

// Interpreter turns steps into mutations, keeping the name bindings of
// every script it has read. It reserves ids from the store but never
// writes to it.
type Interpreter struct {
	store  *scene.Store
	nodes  map[string]scene.NodeID
	styles map[string]scene.StyleID
}

// New creates an interpreter reserving ids from store.
func New(store *scene.Store) *Interpreter {
	return &Interpreter{
		store:  store,
		nodes:  make(map[string]scene.NodeID),
		styles: make(map[string]scene.StyleID),
	}
}

// Node returns the id bound to a node name.
func (in *Interpreter) Node(name string) (scene.NodeID, bool) {
	id, ok := in.nodes[name]
	return id, ok
}

// Style returns the id bound to a style name.
func (in *Interpreter) Style(name string) (scene.StyleID, bool) {
	id, ok := in.styles[name]
	return id, ok
}

// Decode reads every document of a script and returns one batch per
// document. Empty documents yield no batch.
func (in *Interpreter) Decode(r io.Reader) ([][]scene.Mutation, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	var batches [][]scene.Mutation
	for doc := 1; ; doc++ {
		var steps []Step
		err := dec.Decode(&steps)
		if errors.Is(err, io.EOF) {
			return batches, nil
		}
		if err != nil {
			return nil, fmt.Errorf("script: document %d: %w", doc, err)
		}
		if len(steps) == 0 {
			continue
		}
		batch, err := in.Mutations(steps)
		if err != nil {
			return nil, fmt.Errorf("script: document %d: %w", doc, err)
		}
		batches = append(batches, batch)
	}
}

// Mutations converts steps in order. Names created by a step can be used
// by the following steps.
func (in *Interpreter) Mutations(steps []Step) ([]scene.Mutation, error) {
	out := make([]scene.Mutation, 0, len(steps))
	for i, s := range steps {
		m, err := in.mutation(s)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s %s): %w", i+1, s.Op, s.Name, err)
		}
		out = append(out, m)
	}
	return out, nil
}

func (in *Interpreter) mutation(s Step) (scene.Mutation, error) {
	if s.Op == "style" {
		return in.style(s)
	}
	if s.Op == "unstyle" {
		id, err := in.styleID(s.Name)
		if err != nil {
			return nil, err
		}
		return scene.DeleteStyle{ID: id}, nil
	}
	if s.Op == "create" {
		return in.create(s)
	}

	id, err := in.nodeID(s.Name)
	if err != nil {
		return nil, err
	}
	switch s.Op {
	case "delete":
		return scene.DeleteNode{ID: id}, nil
	case "resize":
		size, err := pair("size", s.Size)
		if err != nil {
			return nil, err
		}
		return scene.ResizeNode{ID: id, Size: compose.Sz(size.X, size.Y)}, nil
	case "move":
		d, err := pair("at", s.At)
		if err != nil {
			return nil, err
		}
		return scene.MoveNode{ID: id, DX: d.X, DY: d.Y}, nil
	case "rotate":
		return scene.SetRotation{ID: id, Degrees: s.Rotation}, nil
	case "show":
		return scene.SetVisible{ID: id, Visible: s.Visible == nil || *s.Visible}, nil
	case "hide":
		return scene.SetVisible{ID: id, Visible: false}, nil
	case "opacity":
		if s.Opacity == nil {
			return nil, errors.New("missing opacity")
		}
		return scene.SetOpacity{ID: id, Opacity: *s.Opacity}, nil
	case "text":
		return scene.SetText{ID: id, Content: s.Text}, nil
	case "shape":
		shape, err := s.Shape.scene()
		if err != nil {
			return nil, err
		}
		return scene.SetShape{ID: id, Shape: shape}, nil
	case "reparent":
		parent, err := in.parent(s.Parent)
		if err != nil {
			return nil, err
		}
		return scene.ReparentNode{ID: id, Parent: parent, Index: index(s.Index)}, nil
	}
	return nil, fmt.Errorf("unknown op %q", s.Op)
}

func (in *Interpreter) create(s Step) (scene.Mutation, error) {
	if s.Name == "" {
		return nil, errors.New("create needs a name")
	}
	shape, err := s.Shape.scene()
	if err != nil {
		return nil, err
	}
	parent, err := in.parent(s.Parent)
	if err != nil {
		return nil, err
	}
	var at, size compose.Point
	if s.At != nil {
		if at, err = pair("at", s.At); err != nil {
			return nil, err
		}
	}
	if s.Size != nil {
		if size, err = pair("size", s.Size); err != nil {
			return nil, err
		}
	}

	id := in.store.Reserve()
	in.nodes[s.Name] = id
	return scene.CreateNode{
		ID:       id,
		Parent:   parent,
		Index:    index(s.Index),
		Name:     s.Name,
		Shape:    shape,
		X:        at.X,
		Y:        at.Y,
		Rotation: s.Rotation,
		Size:     compose.Sz(size.X, size.Y),
	}, nil
}

// style creates the named style when the name is new and updates it
// otherwise.
func (in *Interpreter) style(s Step) (scene.Mutation, error) {
	m := scene.SetStyle{
		Width:   s.StrokeWidth,
		Visible: s.Visible,
		Opacity: s.Opacity,
	}
	if s.Paint != nil {
		p, err := s.Paint.scene()
		if err != nil {
			return nil, err
		}
		m.Paint = &p
	}
	if s.Join != "" {
		j, err := lookup("join", s.Join, map[string]compose.LineJoin{
			"miter": compose.LineJoinMiter, "bevel": compose.LineJoinBevel,
		})
		if err != nil {
			return nil, err
		}
		m.Join = &j
	}
	if s.Cap != "" {
		c, err := lookup("cap", s.Cap, map[string]compose.LineCap{
			"butt": compose.LineCapButt, "square": compose.LineCapSquare,
		})
		if err != nil {
			return nil, err
		}
		m.Cap = &c
	}
	if s.Shadow != nil {
		m.Shadow = &scene.Shadow{DX: s.Shadow.DX, DY: s.Shadow.DY, Blur: s.Shadow.Blur}
	}

	if id, ok := in.styles[s.Name]; ok {
		m.ID = id
		return m, nil
	}
	if s.Name == "" {
		return nil, errors.New("style needs a name")
	}
	node, err := in.nodeID(s.Node)
	if err != nil {
		return nil, err
	}
	kind, err := lookup("style kind", s.Kind, map[string]scene.StyleKind{
		"fill": scene.StyleFill, "stroke": scene.StyleStroke, "shadow": scene.StyleDropShadow,
	})
	if err != nil {
		return nil, err
	}
	m.ID, m.Node, m.Kind = in.store.ReserveStyle(), node, kind
	in.styles[s.Name] = m.ID
	return m, nil
}

func (in *Interpreter) nodeID(name string) (scene.NodeID, error) {
	id, ok := in.nodes[name]
	if !ok {
		return scene.NodeID{}, fmt.Errorf("%w: node %q", ErrUnknownName, name)
	}
	return id, nil
}

func (in *Interpreter) styleID(name string) (scene.StyleID, error) {
	id, ok := in.styles[name]
	if !ok {
		return scene.StyleID{}, fmt.Errorf("%w: style %q", ErrUnknownName, name)
	}
	return id, nil
}

func (in *Interpreter) parent(name string) (scene.NodeID, error) {
	if name == "" {
		return scene.NodeID{}, nil
	}
	return in.nodeID(name)
}

func (s *Shape) scene() (scene.Shape, error) {
	if s == nil {
		return nil, errors.New("missing shape")
	}
	switch s.Kind {
	case "rectangle":
		r, err := radii(s.Radii)
		return scene.Rectangle{Radii: r}, err
	case "frame":
		r, err := radii(s.Radii)
		return scene.Frame{ClipContent: s.Clip, Radii: r}, err
	case "group":
		return scene.Group{}, nil
	case "ellipse":
		return scene.Ellipse{Start: s.Start, End: s.End, InnerRatio: s.InnerRatio}, nil
	case "star":
		return scene.Star{Points: s.Points, InnerRatio: s.InnerRatio}, nil
	case "polygon":
		return scene.Polygon{Points: s.Points}, nil
	case "vector":
		return scene.VectorFromSVG(s.Path)
	case "text":
		return s.text()
	}
	return nil, fmt.Errorf("unknown shape kind %q", s.Kind)
}

func (s *Shape) text() (scene.Shape, error) {
	t := scene.Text{
		Content:    s.Content,
		Font:       s.Font,
		FontSize:   s.FontSize,
		LineHeight: s.LineHeight,
	}
	var err error
	if s.Align != "" {
		t.Align, err = lookup("align", s.Align, map[string]scene.Align{
			"left": scene.AlignLeft, "center": scene.AlignCenter, "right": scene.AlignRight,
		})
		if err != nil {
			return nil, err
		}
	}
	if s.Wrap != "" {
		t.Wrap, err = lookup("wrap", s.Wrap, map[string]scene.Wrap{
			"none": scene.WrapNone, "word": scene.WrapWord,
		})
		if err != nil {
			return nil, err
		}
	}
	for _, sp := range s.Spans {
		t.Spans = append(t.Spans, scene.Span{Start: sp.Start, End: sp.End, Font: sp.Font, Size: sp.Size})
	}
	return t, nil
}

func (p *Paint) scene() (scene.Paint, error) {
	switch {
	case p.Gradient != nil:
		g := p.Gradient
		start, err := pair("gradient start", g.Start)
		if err != nil {
			return scene.Paint{}, err
		}
		end, err := pair("gradient end", g.End)
		if err != nil {
			return scene.Paint{}, err
		}
		stops := make([]scene.Stop, len(g.Stops))
		for i, s := range g.Stops {
			stops[i] = scene.Stop{Offset: s.Offset, Color: scene.Hex(s.Color)}
		}
		if g.Radial {
			return scene.RadialGradient(start, end, stops...), nil
		}
		return scene.LinearGradient(start, end, stops...), nil
	case p.Image != nil:
		mode := scene.ScaleFill
		if p.Image.Mode != "" {
			var err error
			mode, err = lookup("image mode", p.Image.Mode, map[string]scene.ScaleMode{
				"fill": scene.ScaleFill, "fit": scene.ScaleFit,
				"stretch": scene.ScaleStretch, "tile": scene.ScaleTile,
			})
			if err != nil {
				return scene.Paint{}, err
			}
		}
		return scene.ImagePaint(scene.Image{
			Href: p.Image.Href, Width: p.Image.Width, Height: p.Image.Height, Mode: mode,
		}), nil
	}
	return scene.Solid(scene.Hex(p.Color)), nil
}

func pair(field string, v []float64) (compose.Point, error) {
	if len(v) != 2 {
		return compose.Point{}, fmt.Errorf("%s needs 2 numbers, got %d", field, len(v))
	}
	return compose.Pt(v[0], v[1]), nil
}

func radii(v []float64) ([4]float64, error) {
	var r [4]float64
	switch len(v) {
	case 0:
	case 1:
		r = [4]float64{v[0], v[0], v[0], v[0]}
	case 4:
		copy(r[:], v)
	default:
		return r, fmt.Errorf("radii needs 1 or 4 numbers, got %d", len(v))
	}
	return r, nil
}

func index(i *int) int {
	if i == nil {
		return -1
	}
	return *i
}

func lookup[T any](field, name string, values map[string]T) (T, error) {
	v, ok := values[strings.ToLower(name)]
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s %q", field, name)
	}
	return v, nil
}
