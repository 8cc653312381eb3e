package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/compose"
)

func TestStaleReferenceForEveryNodeMutation(t *testing.T) {
	s := New()
	ghost := s.Reserve() // reserved but never created
	for _, m := range []Mutation{
		DeleteNode{ID: ghost},
		ResizeNode{ID: ghost, Size: compose.Sz(1, 1)},
		MoveNode{ID: ghost, DX: 1},
		SetRotation{ID: ghost, Degrees: 45},
		SetShape{ID: ghost, Shape: Group{}},
		SetVisible{ID: ghost},
		SetOpacity{ID: ghost, Opacity: 0.5},
		ReparentNode{ID: ghost},
		SetText{ID: ghost, Content: "x"},
		SetStyle{ID: s.ReserveStyle(), Node: ghost},
		DeleteStyle{ID: StyleID{Ref{Index: 9, Gen: 1}}},
	} {
		t.Run(m.Op(), func(t *testing.T) {
			err := s.Apply(m)
			var se *StaleReferenceError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, m.Op(), se.Op)
			assert.Contains(t, err.Error(), "stale reference")
		})
	}
}

func TestSetStyleCreateDefaults(t *testing.T) {
	s := New()
	node := create(t, s, NodeID{}, Rectangle{}, compose.Sz(10, 10))
	id := s.ReserveStyle()
	require.NoError(t, s.Apply(SetStyle{ID: id, Node: node, Kind: StyleStroke}))

	st, ok := s.Style(id)
	require.True(t, ok)
	assert.Equal(t, 1.0, st.Width)
	assert.True(t, st.Visible)
	assert.Equal(t, 1.0, st.Opacity)

	p, ok := s.Paint(st.Paint)
	require.True(t, ok)
	assert.Equal(t, PaintSolid, p.Kind)
	assert.Equal(t, Black, p.Color)
	assert.Equal(t, id, p.Style)

	n, _ := s.Node(node)
	assert.Equal(t, []StyleID{id}, n.Styles)
}

func TestSetStyleUpdatePatchesOnlyGivenFields(t *testing.T) {
	s := New()
	node := create(t, s, NodeID{}, Rectangle{}, compose.Sz(10, 10))
	id := s.ReserveStyle()
	red := Solid(Hex("#ff0000"))
	require.NoError(t, s.Apply(SetStyle{ID: id, Node: node, Kind: StyleStroke, Paint: &red, Width: Ptr(2.0)}))
	st, _ := s.Style(id)
	v := st.Version

	require.NoError(t, s.Apply(SetStyle{ID: id, Width: Ptr(4.0), Kind: StyleFill}))
	assert.Equal(t, 4.0, st.Width)
	assert.Equal(t, StyleStroke, st.Kind, "kind is fixed at creation")
	assert.Greater(t, st.Version, v)
	p, _ := s.Paint(st.Paint)
	assert.Equal(t, "#ff0000", p.Color.Hex(), "paint untouched")
}

func TestSetStyleValidation(t *testing.T) {
	s := New()
	node := create(t, s, NodeID{}, Rectangle{}, compose.Sz(10, 10))
	img := ImagePaint(Image{Href: "a.png", Width: 1, Height: 1})

	tests := []struct {
		name string
		m    SetStyle
	}{
		{"negative width", SetStyle{ID: s.ReserveStyle(), Node: node, Kind: StyleStroke, Width: Ptr(-1.0)}},
		{"shadow with image paint", SetStyle{ID: s.ReserveStyle(), Node: node, Kind: StyleDropShadow, Paint: &img}},
		{"negative blur", SetStyle{ID: s.ReserveStyle(), Node: node, Kind: StyleDropShadow, Shadow: &Shadow{Blur: -2}}},
		{"unknown kind", SetStyle{ID: s.ReserveStyle(), Node: node, Kind: StyleKind(9)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, s.Apply(tt.m), ErrInvalidMutation)
		})
	}
	n, _ := s.Node(node)
	assert.Empty(t, n.Styles)
}

func TestDeleteStyle(t *testing.T) {
	s := New()
	node := create(t, s, NodeID{}, Rectangle{}, compose.Sz(10, 10))
	fill, stroke := s.ReserveStyle(), s.ReserveStyle()
	require.NoError(t, s.Apply(SetStyle{ID: fill, Node: node, Kind: StyleFill}))
	require.NoError(t, s.Apply(SetStyle{ID: stroke, Node: node, Kind: StyleStroke}))

	require.NoError(t, s.Apply(DeleteStyle{ID: fill}))
	n, _ := s.Node(node)
	assert.Equal(t, []StyleID{stroke}, n.Styles)
	assert.ErrorIs(t, s.Apply(DeleteStyle{ID: fill}), ErrStaleReference)
}

func TestSetTextAndShape(t *testing.T) {
	s := New()
	txt := create(t, s, NodeID{}, Text{Content: "a", Spans: []Span{{Start: 0, End: 1}}}, compose.Sz(10, 10))
	rect := create(t, s, NodeID{}, Rectangle{}, compose.Sz(10, 10))

	require.NoError(t, s.Apply(SetText{ID: txt, Content: "hello"}))
	n, _ := s.Node(txt)
	assert.Equal(t, "hello", n.Shape.(Text).Content)
	assert.ErrorIs(t, s.Apply(SetText{ID: rect, Content: "x"}), ErrInvalidMutation)

	frame := create(t, s, NodeID{}, Frame{}, compose.Sz(10, 10))
	create(t, s, frame, Rectangle{}, compose.Sz(1, 1))
	assert.ErrorIs(t, s.Apply(SetShape{ID: frame, Shape: Star{Points: 5}}), ErrInvalidMutation)
	require.NoError(t, s.Apply(SetShape{ID: frame, Shape: Group{}}))
}

func TestSetOpacityAndVisible(t *testing.T) {
	s := New()
	id := create(t, s, NodeID{}, Rectangle{}, compose.Sz(10, 10))
	require.NoError(t, s.Apply(SetOpacity{ID: id, Opacity: 3}))
	require.NoError(t, s.Apply(SetVisible{ID: id, Visible: false}))
	n, _ := s.Node(id)
	assert.Equal(t, 1.0, n.Opacity)
	assert.False(t, n.Visible)

	require.NoError(t, s.Apply(SetOpacity{ID: id, Opacity: 0.25}))
	assert.Equal(t, 0.25, n.Opacity)
}

func TestShapeIsCopied(t *testing.T) {
	s := New()
	spans := []Span{{Start: 0, End: 1, Size: 10}}
	id := create(t, s, NodeID{}, Text{Content: "a", Spans: spans}, compose.Sz(10, 10))
	spans[0].Size = 99
	n, _ := s.Node(id)
	assert.Equal(t, 10.0, n.Shape.(Text).Spans[0].Size)
}

func TestColorHex(t *testing.T) {
	tests := []struct {
		in   string
		want string
		a    float64
	}{
		{"#ff0000", "#ff0000", 1},
		{"0f0", "#00ff00", 1},
		{"#0000ff80", "#0000ff", 128.0 / 255},
		{"bogus", "#000000", 1},
	}
	for _, tt := range tests {
		c := Hex(tt.in)
		assert.Equal(t, tt.want, c.Hex(), tt.in)
		assert.InDelta(t, tt.a, c.A, 1e-9, tt.in)
	}
}
