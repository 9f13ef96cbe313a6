package domain

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorApply(t *testing.T) {
	e := NewEditor()
	initial := &Link{Href: "https://old.example"}

	ch, err := e.Open(initial, EditorOptions{EnabledLinkOptions: []LinkOption{LinkOptionTitle, LinkOptionTargetBlank}})
	require.NoError(t, err)

	state := e.State()
	assert.True(t, state.IsOpen)
	assert.Equal(t, initial, state.InitialValue)

	applied, err := e.Apply(Link{
		Href:    "https://new.example",
		Options: LinkOptions{Title: "New", TargetBlank: true, Anchor: "a"},
	}, []LinkOption{LinkOptionTitle, LinkOptionAnchor})
	require.NoError(t, err)
	assert.Equal(t, LinkOptions{Title: "New"}, applied.Options)

	res := <-ch
	assert.True(t, res.Change)
	require.NotNil(t, res.Value)
	assert.Equal(t, "https://new.example", res.Value.Href)

	state = e.State()
	assert.False(t, state.IsOpen)
	assert.Equal(t, "https://new.example", state.Value.Href)
}

func TestEditorUnsetAndDismiss(t *testing.T) {
	e := NewEditor()

	ch, err := e.Open(&Link{Href: "https://x"}, EditorOptions{})
	require.NoError(t, err)
	require.NoError(t, e.Unset())
	res := <-ch
	assert.True(t, res.Change)
	assert.Nil(t, res.Value)
	assert.Nil(t, e.State().Value)

	ch, err = e.Open(nil, EditorOptions{})
	require.NoError(t, err)
	assert.Equal(t, AllLinkOptions, e.State().EnabledLinkOptions)
	require.NoError(t, e.Dismiss())
	res = <-ch
	assert.False(t, res.Change)
}

func TestEditorTransactionsRequireOpen(t *testing.T) {
	e := NewEditor()

	_, err := e.Apply(Link{Href: "https://x"}, AllLinkOptions)
	assert.ErrorIs(t, err, ErrEditorNotOpen)
	assert.ErrorIs(t, e.Unset(), ErrEditorNotOpen)
	assert.ErrorIs(t, e.Dismiss(), ErrEditorNotOpen)

	_, err = e.Open(nil, EditorOptions{})
	require.NoError(t, err)
	_, err = e.Open(nil, EditorOptions{})
	assert.ErrorIs(t, err, ErrEditorOpen)
}

func TestEditorEditLinkBlocksUntilResolved(t *testing.T) {
	e := NewEditor()

	opened := make(chan struct{})
	unsubscribe := e.Subscribe(func(s EditorState) {
		if s.IsOpen {
			close(opened)
		}
	})
	defer unsubscribe()

	go func() {
		<-opened
		_, _ = e.Apply(Link{Href: "https://applied"}, AllLinkOptions)
	}()

	res, err := e.EditLink(context.Background(), nil, EditorOptions{})
	require.NoError(t, err)
	assert.True(t, res.Change)
	assert.Equal(t, "https://applied", res.Value.Href)
}

func TestEditorEditLinkCancelDismisses(t *testing.T) {
	e := NewEditor()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := e.EditLink(ctx, &Link{Href: "https://x"}, EditorOptions{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, e.State().IsOpen)
}

func TestEditorEditLinkKeepsResultOnCancel(t *testing.T) {
	for i := 0; i < 50; i++ {
		e := NewEditor()
		ctx, cancel := context.WithCancel(context.Background())

		// the edit is applied and ctx cancelled before EditLink selects, so both cases are ready
		unsubscribe := e.Subscribe(func(s EditorState) {
			if s.IsOpen {
				_, _ = e.Apply(Link{Href: "https://applied"}, AllLinkOptions)
				cancel()
			}
		})

		res, err := e.EditLink(ctx, nil, EditorOptions{})
		unsubscribe()
		cancel()

		require.NoError(t, err)
		assert.True(t, res.Change)
		require.NotNil(t, res.Value)
		assert.Equal(t, "https://applied", res.Value.Href)
	}
}

func TestEditorApplyFromCarriesLinkType(t *testing.T) {
	e := NewEditor()

	ch, err := e.Open(nil, EditorOptions{})
	require.NoError(t, err)
	_, err = e.ApplyFrom("Fns.LinkEditor:Web", Link{Href: "https://x"}, AllLinkOptions)
	require.NoError(t, err)
	assert.Equal(t, "Fns.LinkEditor:Web", (<-ch).LinkTypeID)

	ch, err = e.Open(nil, EditorOptions{})
	require.NoError(t, err)
	require.NoError(t, e.Dismiss())
	_, err = e.ApplyFrom("Fns.LinkEditor:Web", Link{Href: "https://x"}, AllLinkOptions)
	assert.ErrorIs(t, err, ErrEditorNotOpen)
	assert.Empty(t, (<-ch).LinkTypeID)
}

func TestEditorSubscribe(t *testing.T) {
	e := NewEditor()

	var mu sync.Mutex
	var states []EditorState
	unsubscribe := e.Subscribe(func(s EditorState) {
		mu.Lock()
		states = append(states, s)
		mu.Unlock()
	})

	_, err := e.Open(nil, EditorOptions{})
	require.NoError(t, err)
	require.NoError(t, e.Dismiss())

	unsubscribe()
	unsubscribe()

	_, err = e.Open(nil, EditorOptions{})
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, states, 2)
	assert.True(t, states[0].IsOpen)
	assert.False(t, states[1].IsOpen)
}

func TestStatusFromResult(t *testing.T) {
	assert.Equal(t, EditorSessionDismissed, StatusFromResult(EditResult{}))
	assert.Equal(t, EditorSessionUnset, StatusFromResult(EditResult{Change: true}))
	assert.Equal(t, EditorSessionApplied, StatusFromResult(EditResult{Change: true, Value: &Link{Href: "x"}}))
	assert.True(t, EditorSessionExpired.IsClosed())
	assert.False(t, EditorSessionOpen.IsClosed())
}
