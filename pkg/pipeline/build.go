package pipeline

import (
	"strings"

	"github.com/matzehuels/stackbuilder/pkg/errors"
	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/stack"
)

// ParseActions collects the actions named by opts: first the script, then
// the individual tokens.
func ParseActions(opts Options) ([]stack.Action, error) {
	var actions []stack.Action
	if opts.Script != "" {
		parsed, err := stack.ParseScript(strings.NewReader(opts.Script))
		if err != nil {
			return nil, err
		}
		actions = append(actions, parsed...)
	}
	parsed, err := stack.ParseActions(opts.Actions)
	if err != nil {
		return nil, err
	}
	return append(actions, parsed...), nil
}

// Build folds the actions of opts into a stack. Layer ids are sequential
// ("layer-1", "layer-2", ...) so that identical input yields identical
// artifacts and cache keys.
func Build(opts Options) (stack.Stack, []stack.Action, error) {
	if opts.MaxLayers < 0 {
		return stack.Stack{}, nil, errors.New(errors.ErrCodeInvalidInput, "max layers must not be negative")
	}
	actions, err := ParseActions(opts)
	if err != nil {
		return stack.Stack{}, nil, err
	}

	store := stack.NewStore(
		stack.WithIDGenerator(layer.SequentialIDs(IDPrefix)),
		stack.WithMaxLayers(opts.MaxLayers),
		stack.WithHistoryLimit(0),
	)
	return store.DispatchAll(actions...), actions, nil
}
