package sink

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/render/column/layout"
	"github.com/matzehuels/stackbuilder/pkg/render/column/styles"
)

// pixelsPerCell is the horizontal scale from layout units to terminal cells.
const pixelsPerCell = 10.0

var (
	termImage  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("255")).Background(lipgloss.Color("52")).Align(lipgloss.Center)
	termLabel  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("52")).Background(lipgloss.Color("230")).Align(lipgloss.Center)
	termSpacer = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Align(lipgloss.Center)
	termOffset = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	termEmpty  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("240"))
)

// TermOption configures terminal rendering.
type TermOption func(*termRenderer)

type termRenderer struct {
	offsets bool
	empty   string
}

// WithTermOffsets appends the spacing offset after each block.
func WithTermOffsets() TermOption { return func(r *termRenderer) { r.offsets = true } }

// WithEmptyText sets the placeholder shown for an empty stack.
func WithEmptyText(s string) TermOption { return func(r *termRenderer) { r.empty = s } }

// RenderTerm draws the layout as coloured terminal cells. Overlaps cannot be
// shown in a terminal, so blocks are simply stacked in order with their
// widths scaled down.
func RenderTerm(l layout.Layout, opts ...TermOption) string {
	r := termRenderer{empty: "(empty stack)"}
	for _, opt := range opts {
		opt(&r)
	}

	frame := cells(l.FrameWidth)
	if len(l.Blocks) == 0 {
		return lipgloss.PlaceHorizontal(frame, lipgloss.Center, termEmpty.Render(r.empty))
	}

	rows := make([]string, 0, len(l.Blocks))
	for _, b := range l.Blocks {
		block := lipgloss.PlaceHorizontal(frame, lipgloss.Center, termBlock(b))
		if r.offsets {
			block = lipgloss.JoinHorizontal(lipgloss.Bottom, block, termOffset.Render(fmt.Sprintf(" %+d", b.Offset)))
		}
		rows = append(rows, block)
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func termBlock(b layout.Block) string {
	w := cells(b.Width())
	label := styles.Label(b.Kind)
	switch b.Kind {
	case layer.TopImage, layer.BottomImage:
		return termImage.Width(w).Render(strings.Repeat(" ", w) + "\n" + label)
	case layer.LabelImage:
		return termLabel.Width(w).Render(label)
	default:
		return termSpacer.Width(w).Render(label)
	}
}

func cells(px float64) int {
	return max(1, int(px/pixelsPerCell+0.5))
}
