package stack

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/layer"
)

// Action is one of the six stack operations.
type Action int

const (
	AddTop Action = iota
	AddBottom
	AddLabel
	AddSpace
	RemoveHead
	RemoveTail
)

var actionNames = [...]string{
	AddTop:     "add-top",
	AddBottom:  "add-bottom",
	AddLabel:   "add-label",
	AddSpace:   "add-space",
	RemoveHead: "remove-head",
	RemoveTail: "remove-tail",
}

// removeTokens lists the tokens accepted for the two removals. Append tokens
// are the layer kind names and aliases.
var removeTokens = map[string]Action{
	"remove-head":   RemoveHead,
	"pop-head":      RemoveHead,
	"shift":         RemoveHead,
	"remove-top":    RemoveHead,
	"remove-tail":   RemoveTail,
	"pop-tail":      RemoveTail,
	"pop":           RemoveTail,
	"remove-bottom": RemoveTail,
}

// Actions returns all actions in declaration order.
func Actions() []Action {
	return []Action{AddTop, AddBottom, AddLabel, AddSpace, RemoveHead, RemoveTail}
}

// AddAction returns the action that appends a layer of kind k.
func AddAction(k layer.Kind) Action {
	switch k {
	case layer.TopImage:
		return AddTop
	case layer.BottomImage:
		return AddBottom
	case layer.LabelImage:
		return AddLabel
	default:
		return AddSpace
	}
}

// String returns the canonical action name, e.g. "add-top".
func (a Action) String() string {
	if a.Valid() {
		return actionNames[a]
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	return a >= AddTop && a <= RemoveTail
}

// Kind returns the layer kind an append action creates. It returns false for
// the removals.
func (a Action) Kind() (layer.Kind, bool) {
	switch a {
	case AddTop:
		return layer.TopImage, true
	case AddBottom:
		return layer.BottomImage, true
	case AddLabel:
		return layer.LabelImage, true
	case AddSpace:
		return layer.Spacer, true
	}
	return 0, false
}

// IsAppend reports whether a appends a layer.
func (a Action) IsAppend() bool {
	_, ok := a.Kind()
	return ok
}

// MarshalText encodes the action as its canonical name.
func (a Action) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidAction, "unknown action %d", int(a))
	}
	return []byte(a.String()), nil
}

// UnmarshalText decodes an action from any accepted token.
func (a *Action) UnmarshalText(text []byte) error {
	parsed, err := ParseAction(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAction resolves a user token to an action. Canonical names
// ("add-top"), layer kind names and aliases ("top", "re", "&") and removal
// tokens ("pop", "shift", "remove-tail") are accepted, case-insensitively.
func ParseAction(token string) (Action, error) {
	t := strings.ToLower(strings.TrimSpace(token))
	for i, name := range actionNames {
		if t == name {
			return Action(i), nil
		}
	}
	if a, ok := removeTokens[t]; ok {
		return a, nil
	}
	if k, err := layer.ParseKind(strings.TrimPrefix(t, "add-")); err == nil {
		return AddAction(k), nil
	}
	return 0, errors.New(errors.ErrCodeInvalidAction,
		"unknown action %q (want top, bottom, label, space, remove-head or remove-tail)", token)
}

// ParseActions parses every token, stopping at the first invalid one.
func ParseActions(tokens []string) ([]Action, error) {
	actions := make([]Action, 0, len(tokens))
	for i, tok := range tokens {
		a, err := ParseAction(tok)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidAction, err, "token %d", i+1)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// ParseScript reads actions from r. Tokens are separated by whitespace or
// commas; everything after a '#' on a line is ignored.
func ParseScript(r io.Reader) ([]Action, error) {
	var actions []Action
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.FieldsFunc(text, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		for _, f := range fields {
			a, err := ParseAction(f)
			if err != nil {
				return nil, errors.Wrap(errors.ErrCodeInvalidAction, err, "line %d", line)
			}
			actions = append(actions, a)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read script")
	}
	return actions, nil
}

// Reduce applies a to s and returns the resulting stack. New layer IDs come
// from gen (random UUIDs when nil). Unknown actions leave s unchanged.
func Reduce(s Stack, a Action, gen layer.IDGenerator) Stack {
	switch a {
	case AddTop, AddBottom, AddLabel, AddSpace:
		k, _ := a.Kind()
		return s.Append(k, gen)
	case RemoveHead:
		return s.RemoveFromHead()
	case RemoveTail:
		return s.RemoveFromTail()
	default:
		return s
	}
}

// Apply folds actions over s from left to right.
func Apply(s Stack, gen layer.IDGenerator, actions ...Action) Stack {
	for _, a := range actions {
		s = Reduce(s, a, gen)
	}
	return s
}
