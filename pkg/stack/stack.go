// Package stack implements the ordered layer sequence at the heart of
// stackbuilder and the state container that owns it.
//
// # Stack values
//
// A [Stack] is an immutable ordered sequence of [layer.Layer]. Every
// operation returns a new Stack and leaves the receiver untouched, so any
// value handed to a renderer or kept in history stays valid forever:
//
//	s := stack.Empty()
//	s = s.AppendTop().AppendLabel().AppendBottom()
//	s.Kinds() // [top label bottom]
//	s = s.RemoveFromTail()
//	s.Kinds() // [top label]
//
// Layers are only ever appended at the tail or removed from either end; the
// relative order of the remaining layers never changes. Removing from an
// empty stack is a no-op, not an error.
//
// # Actions
//
// The six operations are also available as [Action] values so that UI
// controls, scripts and HTTP routes can be bound to them uniformly. [Reduce]
// applies an action to a stack.
//
// # Store
//
// A [Store] holds the current stack for one session, applies actions via
// [Store.Dispatch], keeps an undo/redo history, and notifies subscribers after
// every change. It is not safe for concurrent use; the owner of the event
// loop serialises access.
package stack

import (
	"encoding/json"
	"iter"
	"slices"

	"github.com/matzehuels/stackbuilder/pkg/layer"
)

// Stack is an immutable ordered sequence of layers. The zero value is an
// empty stack.
//
// Appends always copy into a fresh backing array. Removals may share the
// receiver's array, which is safe because nothing ever writes into an array
// after it has been handed out.
type Stack struct {
	layers []layer.Layer
}

// Empty returns a stack with no layers.
func Empty() Stack {
	return Stack{}
}

// Of returns a stack holding copies of the given layers in order. Callers are
// responsible for ID uniqueness.
func Of(layers ...layer.Layer) Stack {
	return Stack{layers: slices.Clone(layers)}
}

// OfKinds builds a stack with one layer per kind, IDs drawn from gen.
func OfKinds(gen layer.IDGenerator, kinds ...layer.Kind) Stack {
	s := Empty()
	for _, k := range kinds {
		s = s.Append(k, gen)
	}
	return s
}

// Len returns the number of layers.
func (s Stack) Len() int { return len(s.layers) }

// IsEmpty reports whether the stack has no layers.
func (s Stack) IsEmpty() bool { return len(s.layers) == 0 }

// At returns the layer at index i. It panics if i is out of range.
func (s Stack) At(i int) layer.Layer { return s.layers[i] }

// First returns the first layer, or false if the stack is empty.
func (s Stack) First() (layer.Layer, bool) {
	if s.IsEmpty() {
		return layer.Layer{}, false
	}
	return s.layers[0], true
}

// Last returns the last layer, or false if the stack is empty.
func (s Stack) Last() (layer.Layer, bool) {
	if s.IsEmpty() {
		return layer.Layer{}, false
	}
	return s.layers[len(s.layers)-1], true
}

// NextKind returns the kind of the layer following index i, or false when i
// is the last index.
func (s Stack) NextKind(i int) (layer.Kind, bool) {
	if i+1 >= len(s.layers) {
		return 0, false
	}
	return s.layers[i+1].Kind, true
}

// Layers returns a copy of the layers in order.
func (s Stack) Layers() []layer.Layer {
	return slices.Clone(s.layers)
}

// All iterates over the layers with their indices.
func (s Stack) All() iter.Seq2[int, layer.Layer] {
	return func(yield func(int, layer.Layer) bool) {
		for i, l := range s.layers {
			if !yield(i, l) {
				return
			}
		}
	}
}

// Kinds returns the kind of every layer in order.
func (s Stack) Kinds() []layer.Kind {
	kinds := make([]layer.Kind, len(s.layers))
	for i, l := range s.layers {
		kinds[i] = l.Kind
	}
	return kinds
}

// Equal reports whether both stacks hold the same layers in the same order.
func (s Stack) Equal(o Stack) bool {
	return slices.Equal(s.layers, o.layers)
}

// Append returns a new stack with a layer of the given kind added at the
// tail. The ID comes from gen, or a random UUID when gen is nil.
func (s Stack) Append(kind layer.Kind, gen layer.IDGenerator) Stack {
	next := make([]layer.Layer, len(s.layers), len(s.layers)+1)
	copy(next, s.layers)
	return Stack{layers: append(next, layer.NewWith(kind, gen))}
}

// AppendTop appends a top image layer.
func (s Stack) AppendTop() Stack { return s.Append(layer.TopImage, nil) }

// AppendBottom appends a bottom image layer.
func (s Stack) AppendBottom() Stack { return s.Append(layer.BottomImage, nil) }

// AppendLabel appends a label image layer.
func (s Stack) AppendLabel() Stack { return s.Append(layer.LabelImage, nil) }

// AppendSpace appends a spacer layer.
func (s Stack) AppendSpace() Stack { return s.Append(layer.Spacer, nil) }

// RemoveFromHead returns a stack without its first layer. An empty stack is
// returned unchanged.
func (s Stack) RemoveFromHead() Stack {
	if s.IsEmpty() {
		return s
	}
	return Stack{layers: s.layers[1:]}
}

// RemoveFromTail returns a stack without its last layer. An empty stack is
// returned unchanged.
func (s Stack) RemoveFromTail() Stack {
	if s.IsEmpty() {
		return s
	}
	return Stack{layers: s.layers[:len(s.layers)-1]}
}

// MarshalJSON encodes the stack as an array of layers.
func (s Stack) MarshalJSON() ([]byte, error) {
	if s.layers == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s.layers)
}
