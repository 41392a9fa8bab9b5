// Package layer defines the building blocks of a stack: the four layer kinds
// and the Layer value that carries a kind together with a stable identifier.
//
// # Kinds
//
// The set of kinds is closed:
//   - [TopImage]: the upper wafer image
//   - [BottomImage]: the lower wafer image
//   - [LabelImage]: the cream/label image placed between wafers
//   - [Spacer]: an empty gap
//
// Code that switches on [Kind] is expected to handle all four. Adding a kind
// means revisiting every such switch, most notably the spacing table in
// [github.com/matzehuels/stackbuilder/pkg/spacing].
//
// # Identity
//
// Every [Layer] gets an opaque ID when it is created. IDs are random UUIDs and
// exist only to key rendered elements; two layers of the same kind are still
// distinct layers.
package layer

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/matzehuels/stackbuilder/pkg/errors"
)

// Kind identifies the visual role of a layer.
type Kind int

const (
	TopImage Kind = iota
	BottomImage
	LabelImage
	Spacer
)

var kindNames = [...]string{
	TopImage:    "top",
	BottomImage: "bottom",
	LabelImage:  "label",
	Spacer:      "spacer",
}

// aliases maps user-facing tokens to kinds. "re" and "&" match the button
// captions shown in the browser front-end.
var aliases = map[string]Kind{
	"top":          TopImage,
	"top_image":    TopImage,
	"o-top":        TopImage,
	"bottom":       BottomImage,
	"bottom_image": BottomImage,
	"o-bottom":     BottomImage,
	"label":        LabelImage,
	"label_image":  LabelImage,
	"re":           LabelImage,
	"spacer":       Spacer,
	"space":        Spacer,
	"&":            Spacer,
}

// Kinds returns all kinds in declaration order.
func Kinds() []Kind {
	return []Kind{TopImage, BottomImage, LabelImage, Spacer}
}

// String returns the canonical lowercase name of the kind.
func (k Kind) String() string {
	if k.Valid() {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Valid reports whether k is one of the four known kinds.
func (k Kind) Valid() bool {
	return k >= TopImage && k <= Spacer
}

// IsImage reports whether k is one of the two wafer images.
func (k Kind) IsImage() bool {
	return k == TopImage || k == BottomImage
}

// MarshalText encodes the kind as its canonical name.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidKind, "unknown layer kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from any accepted name or alias.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseKind resolves a kind from its canonical name or an alias.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseKind(s string) (Kind, error) {
	if k, ok := aliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return k, nil
	}
	return 0, errors.New(errors.ErrCodeInvalidKind, "unknown layer kind %q (want top, bottom, label or spacer)", s)
}

// Layer is one element of a stack.
type Layer struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
}

// IDGenerator produces layer identifiers. Implementations must not repeat
// an ID within the lifetime of a stack.
type IDGenerator func() string

// NewID returns a random UUID string.
func NewID() string {
	return uuid.NewString()
}

// New creates a layer of the given kind with a fresh random ID.
func New(kind Kind) Layer {
	return Layer{ID: NewID(), Kind: kind}
}

// NewWith creates a layer using gen for the ID. A nil gen falls back to NewID.
func NewWith(kind Kind, gen IDGenerator) Layer {
	if gen == nil {
		gen = NewID
	}
	return Layer{ID: gen(), Kind: kind}
}

// SequentialIDs returns a generator yielding prefix-1, prefix-2, and so on.
// It is deterministic and intended for tests and reproducible renders.
func SequentialIDs(prefix string) IDGenerator {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}
