// Package layout computes block positions for a stack rendered as a single
// vertical column.
//
// Layers are placed top to bottom in stack order. After each layer the
// offset from [spacing.Resolve] is added to the running position, so
// negative offsets make the next layer overlap the current one. Earlier
// layers are drawn above later ones: block i has Z = -i.
//
// Coordinates are screen-style (y grows downwards) in CSS pixels. The column
// is horizontally centred in the frame.
package layout

import (
	"math"

	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/spacing"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// Size is the nominal width and height of a layer kind.
type Size struct {
	W, H float64
}

// DefaultSizes are the nominal sizes of the four visual variants.
var DefaultSizes = map[layer.Kind]Size{
	layer.TopImage:    {W: 300, H: 160},
	layer.BottomImage: {W: 300, H: 160},
	layer.LabelImage:  {W: 280, H: 128},
	layer.Spacer:      {W: 100, H: 120},
}

const (
	// DefaultWidth is the minimum frame width.
	DefaultWidth = 400.0

	// DefaultMargin surrounds the column on every side.
	DefaultMargin = 24.0
)

// Options configures layout computation. Zero values take the defaults.
type Options struct {
	Width  float64
	Margin float64
	Sizes  map[layer.Kind]Size
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Margin <= 0 {
		o.Margin = DefaultMargin
	}
	if o.Sizes == nil {
		o.Sizes = DefaultSizes
	}
	return o
}

func (o Options) size(k layer.Kind) Size {
	if s, ok := o.Sizes[k]; ok {
		return s
	}
	return DefaultSizes[k]
}

// Block is one positioned layer.
type Block struct {
	ID          string
	Kind        layer.Kind
	Index       int
	Left, Right float64
	Top, Bottom float64
	Z           int
	Offset      spacing.Offset
}

// Width returns the horizontal span of the block.
func (b Block) Width() float64 { return b.Right - b.Left }

// Height returns the vertical span of the block.
func (b Block) Height() float64 { return b.Bottom - b.Top }

// CenterX returns the horizontal center point of the block.
func (b Block) CenterX() float64 { return (b.Left + b.Right) / 2 }

// CenterY returns the vertical center point of the block.
func (b Block) CenterY() float64 { return (b.Top + b.Bottom) / 2 }

// Layout is a positioned stack.
type Layout struct {
	FrameWidth  float64
	FrameHeight float64
	Margin      float64
	// Blocks are in stack order.
	Blocks []Block
}

// Build positions every layer of s.
//
// The frame grows to fit the widest layer. If offsets would push a block
// above the top margin, the whole column is shifted down.
func Build(s stack.Stack, opts Options) Layout {
	opts = opts.withDefaults()
	offsets := spacing.Offsets(s)

	width := opts.Width
	for _, l := range s.All() {
		width = math.Max(width, opts.size(l.Kind).W+2*opts.Margin)
	}
	centre := width / 2

	blocks := make([]Block, 0, s.Len())
	y, minTop, end := 0.0, 0.0, 0.0
	for i, l := range s.All() {
		sz := opts.size(l.Kind)
		b := Block{
			ID:     l.ID,
			Kind:   l.Kind,
			Index:  i,
			Left:   centre - sz.W/2,
			Right:  centre + sz.W/2,
			Top:    y,
			Bottom: y + sz.H,
			Z:      -i,
			Offset: offsets[i],
		}
		blocks = append(blocks, b)
		minTop = math.Min(minTop, b.Top)
		y = b.Bottom + float64(offsets[i])
		end = math.Max(end, math.Max(b.Bottom, y))
	}

	shift := opts.Margin - minTop
	for i := range blocks {
		blocks[i].Top += shift
		blocks[i].Bottom += shift
	}

	return Layout{
		FrameWidth:  width,
		FrameHeight: end - minTop + 2*opts.Margin,
		Margin:      opts.Margin,
		Blocks:      blocks,
	}
}

// DrawOrder returns the blocks ordered for painting: lowest Z first, so the
// first layer ends up on top.
func (l Layout) DrawOrder() []Block {
	out := make([]Block, len(l.Blocks))
	for i, b := range l.Blocks {
		out[len(l.Blocks)-1-i] = b
	}
	return out
}
