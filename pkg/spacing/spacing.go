// Package spacing resolves the vertical offset applied after each layer of a
// stack, based on its kind and the kind of the layer that follows it.
//
// Negative offsets pull the following layer up so the two overlap; positive
// offsets push it down. The values are in rendering units (CSS pixels) and
// form a closed lookup table. Rules are checked in order and the first match
// wins:
//
//	#  current        next           offset
//	1  top|bottom     top|bottom     -136
//	2  top|bottom     label          -108
//	3  label          label          -100
//	4  label          top|bottom     -118
//	5  spacer         (none)          +60
//	6  spacer         any               0
//	7  any            (none)            0
//	8  anything else                 -100
//
// There is no interpolation: a new layer kind has to be placed in this table
// explicitly.
package spacing

import (
	"fmt"

	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// Offset is a signed vertical distance in rendering units.
type Offset int

// Rule identifies which row of the table produced an offset.
type Rule int

const (
	RuleImageImage Rule = iota + 1
	RuleImageLabel
	RuleLabelLabel
	RuleLabelImage
	RuleSpacerLast
	RuleSpacer
	RuleLast
	RuleFallback
)

var ruleNames = map[Rule]string{
	RuleImageImage: "image→image",
	RuleImageLabel: "image→label",
	RuleLabelLabel: "label→label",
	RuleLabelImage: "label→image",
	RuleSpacerLast: "spacer at end",
	RuleSpacer:     "spacer",
	RuleLast:       "last layer",
	RuleFallback:   "fallback",
}

func (r Rule) String() string {
	if name, ok := ruleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("rule(%d)", int(r))
}

const (
	imageImage  Offset = -136
	imageLabel  Offset = -108
	labelLabel  Offset = -100
	labelImage  Offset = -118
	spacerLast  Offset = 60
	noOffset    Offset = 0
	fallbackOff Offset = -100
)

// Resolve returns the offset after a layer of kind current. hasNext is false
// when current is the last layer, in which case next is ignored.
func Resolve(current, next layer.Kind, hasNext bool) Offset {
	off, _ := Explain(current, next, hasNext)
	return off
}

// ResolveNext is Resolve with the following kind given as a pointer; nil
// means current is the last layer.
func ResolveNext(current layer.Kind, next *layer.Kind) Offset {
	if next == nil {
		return Resolve(current, 0, false)
	}
	return Resolve(current, *next, true)
}

// Explain returns the offset together with the rule that matched.
func Explain(current, next layer.Kind, hasNext bool) (Offset, Rule) {
	switch {
	case current.IsImage() && hasNext && next.IsImage():
		return imageImage, RuleImageImage
	case current.IsImage() && hasNext && next == layer.LabelImage:
		return imageLabel, RuleImageLabel
	case current == layer.LabelImage && hasNext && next == layer.LabelImage:
		return labelLabel, RuleLabelLabel
	case current == layer.LabelImage && hasNext && next.IsImage():
		return labelImage, RuleLabelImage
	case current == layer.Spacer && !hasNext:
		return spacerLast, RuleSpacerLast
	case current == layer.Spacer:
		return noOffset, RuleSpacer
	case !hasNext:
		return noOffset, RuleLast
	default:
		return fallbackOff, RuleFallback
	}
}

// Offsets resolves the offset after every layer of s, in order.
func Offsets(s stack.Stack) []Offset {
	offsets := make([]Offset, s.Len())
	for i, l := range s.All() {
		next, ok := s.NextKind(i)
		offsets[i] = Resolve(l.Kind, next, ok)
	}
	return offsets
}

// Entry is one row of the expanded table.
type Entry struct {
	Current layer.Kind
	Next    layer.Kind
	HasNext bool
	Offset  Offset
	Rule    Rule
}

// NextString renders the next kind, or "(end)" when there is none.
func (e Entry) NextString() string {
	if !e.HasNext {
		return "(end)"
	}
	return e.Next.String()
}

// Table enumerates every (current, next) combination, with "no next layer"
// listed last for each current kind.
func Table() []Entry {
	kinds := layer.Kinds()
	entries := make([]Entry, 0, len(kinds)*(len(kinds)+1))
	for _, cur := range kinds {
		for _, next := range kinds {
			off, rule := Explain(cur, next, true)
			entries = append(entries, Entry{Current: cur, Next: next, HasNext: true, Offset: off, Rule: rule})
		}
		off, rule := Explain(cur, 0, false)
		entries = append(entries, Entry{Current: cur, Offset: off, Rule: rule})
	}
	return entries
}
