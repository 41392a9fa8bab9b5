package stack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/stackbuilder/pkg/layer"
	"github.com/matzehuels/stackbuilder/pkg/observability"
)

func newTestStore(opts ...Option) *Store {
	return NewStore(append([]Option{WithIDGenerator(layer.SequentialIDs("s"))}, opts...)...)
}

func TestStoreStartsEmpty(t *testing.T) {
	s := NewStore()
	assert.True(t, s.State().IsEmpty())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
}

func TestStoreDispatchNotifies(t *testing.T) {
	s := newTestStore()
	var changes []Change
	s.Subscribe(func(c Change) { changes = append(changes, c) })

	s.Dispatch(AddTop)
	s.Dispatch(AddLabel)

	require.Len(t, changes, 2)
	assert.Equal(t, CauseDispatch, changes[1].Cause)
	assert.Equal(t, AddLabel, changes[1].Action)
	assert.Equal(t, 1, changes[1].Previous.Len())
	assert.Equal(t, 2, changes[1].Current.Len())
	assert.True(t, changes[1].Current.Equal(s.State()))
}

func TestStoreNoopRemovalDoesNotNotify(t *testing.T) {
	s := newTestStore()
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	got := s.Dispatch(RemoveHead)
	assert.True(t, got.IsEmpty())
	s.Dispatch(RemoveTail)

	assert.Equal(t, 0, calls)
	assert.False(t, s.CanUndo())
}

func TestStoreKeepsPreviousStatesIntact(t *testing.T) {
	s := newTestStore()
	first := s.Dispatch(AddTop)
	second := s.Dispatch(AddBottom)
	s.Dispatch(RemoveTail)
	s.Dispatch(AddSpace)

	assert.Equal(t, []layer.Kind{layer.TopImage}, first.Kinds())
	assert.Equal(t, []layer.Kind{layer.TopImage, layer.BottomImage}, second.Kinds())
	assert.Equal(t, []layer.Kind{layer.TopImage, layer.Spacer}, s.State().Kinds())
}

func TestStoreMaxLayers(t *testing.T) {
	s := newTestStore(WithMaxLayers(2))
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	s.DispatchAll(AddTop, AddLabel, AddBottom)
	assert.Equal(t, 2, s.State().Len())
	assert.True(t, s.Full())
	assert.Equal(t, 2, calls)

	s.Dispatch(RemoveTail)
	assert.False(t, s.Full())
	s.Dispatch(AddSpace)
	assert.Equal(t, []layer.Kind{layer.TopImage, layer.Spacer}, s.State().Kinds())
}

func TestStoreUndoRedo(t *testing.T) {
	s := newTestStore()
	s.DispatchAll(AddTop, AddLabel, AddBottom)
	full := s.State()

	var causes []Cause
	s.Subscribe(func(c Change) { causes = append(causes, c.Cause) })

	require.True(t, s.Undo())
	assert.Equal(t, []layer.Kind{layer.TopImage, layer.LabelImage}, s.State().Kinds())
	require.True(t, s.Redo())
	assert.True(t, s.State().Equal(full))
	assert.False(t, s.CanRedo())

	require.True(t, s.Undo())
	require.True(t, s.Undo())
	require.True(t, s.Undo())
	assert.True(t, s.State().IsEmpty())
	assert.False(t, s.Undo())

	assert.Equal(t, []Cause{CauseUndo, CauseRedo, CauseUndo, CauseUndo, CauseUndo}, causes)
}

func TestStoreDispatchClearsRedo(t *testing.T) {
	s := newTestStore()
	s.DispatchAll(AddTop, AddBottom)
	require.True(t, s.Undo())
	require.True(t, s.CanRedo())

	s.Dispatch(AddLabel)
	assert.False(t, s.CanRedo())
	assert.False(t, s.Redo())
}

func TestStoreHistoryLimit(t *testing.T) {
	s := newTestStore(WithHistoryLimit(2))
	s.DispatchAll(AddTop, AddTop, AddTop, AddTop)

	assert.True(t, s.Undo())
	assert.True(t, s.Undo())
	assert.False(t, s.Undo())
	assert.Equal(t, 2, s.State().Len())
}

func TestStoreHistoryDisabled(t *testing.T) {
	s := newTestStore(WithHistoryLimit(0))
	s.Dispatch(AddTop)
	assert.False(t, s.CanUndo())
}

func TestStoreReset(t *testing.T) {
	s := newTestStore()
	calls := 0
	s.Subscribe(func(Change) { calls++ })

	s.Reset()
	assert.Equal(t, 0, calls)

	s.DispatchAll(AddTop, AddBottom)
	s.Reset()
	assert.True(t, s.State().IsEmpty())
	assert.Equal(t, 3, calls)

	require.True(t, s.Undo())
	assert.Equal(t, 2, s.State().Len())
}

func TestStoreUnsubscribe(t *testing.T) {
	s := newTestStore()
	var a, b int
	unsubA := s.Subscribe(func(Change) { a++ })
	s.Subscribe(func(Change) { b++ })

	s.Dispatch(AddTop)
	unsubA()
	unsubA()
	s.Dispatch(AddTop)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestStoreUnsubscribeDuringNotify(t *testing.T) {
	s := newTestStore()
	var calls int
	var unsub func()
	unsub = s.Subscribe(func(Change) {
		calls++
		unsub()
	})
	other := 0
	s.Subscribe(func(Change) { other++ })

	s.Dispatch(AddTop)
	s.Dispatch(AddTop)

	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, other)
}

func TestStoreWithInitial(t *testing.T) {
	seed := OfKinds(layer.SequentialIDs("seed"), layer.TopImage, layer.BottomImage)
	s := newTestStore(WithInitial(seed))
	assert.True(t, s.State().Equal(seed))
	assert.False(t, s.CanUndo())
}

type recordingStackHooks struct {
	observability.NoopStackHooks
	dispatched []string
	history    []string
}

func (r *recordingStackHooks) OnDispatch(action string, before, after int) {
	r.dispatched = append(r.dispatched, action)
}

func (r *recordingStackHooks) OnHistory(op string, ok bool) {
	if ok {
		r.history = append(r.history, op)
	}
}

func TestStoreEmitsHooks(t *testing.T) {
	hooks := &recordingStackHooks{}
	observability.SetStackHooks(hooks)
	defer observability.Reset()

	s := newTestStore()
	s.DispatchAll(AddTop, RemoveHead, RemoveHead)
	s.Undo()
	s.Redo()

	assert.Equal(t, []string{"add-top", "remove-head", "remove-head"}, hooks.dispatched)
	assert.Equal(t, []string{"undo", "redo"}, hooks.history)
}
