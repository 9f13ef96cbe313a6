package domain

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

var (
	// ErrEditorOpen is returned when opening an editor that is already open
	ErrEditorOpen = errors.New("editor is already open")
	// ErrEditorNotOpen is returned for transactions on a closed editor
	ErrEditorNotOpen = errors.New("editor is not open")
)

// EditorOptions 编辑器选项
type EditorOptions struct {
	// EnabledLinkOptions 编辑器中可编辑的链接选项，为空表示全部
	EnabledLinkOptions []LinkOption `json:"enabledLinkOptions,omitempty"`
}

func (o EditorOptions) enabled() []LinkOption {
	if len(o.EnabledLinkOptions) == 0 {
		return AllLinkOptions
	}
	return o.EnabledLinkOptions
}

// EditorState 编辑器状态
type EditorState struct {
	IsOpen             bool         `json:"isOpen"`
	InitialValue       *Link        `json:"initialValue"`
	Value              *Link        `json:"value"`
	EnabledLinkOptions []LinkOption `json:"enabledLinkOptions"`
}

// EditResult is how an edit ended: Change=false when dismissed, Change=true with a nil
// Value when the link was removed, Change=true with a Value when a link was applied.
// EditResult 编辑结果
type EditResult struct {
	Change bool  `json:"change"`
	Value  *Link `json:"value"`

	// LinkTypeID names the link type that produced Value, set only by ApplyFrom
	LinkTypeID string `json:"linkTypeId,omitempty"`
}

// Editor is the transactional state of one link editor
// Editor 单个链接编辑器的事务状态
type Editor struct {
	mu      sync.Mutex
	state   EditorState
	pending chan EditResult
	subs    map[int]func(EditorState)
	nextSub int
}

// NewEditor 创建编辑器
func NewEditor() *Editor {
	return &Editor{subs: make(map[int]func(EditorState))}
}

// State returns a snapshot of the current state
func (e *Editor) State() EditorState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshot()
}

func (e *Editor) snapshot() EditorState {
	s := e.state
	s.EnabledLinkOptions = append([]LinkOption(nil), e.state.EnabledLinkOptions...)
	return s
}

// Subscribe registers fn for every state change and returns a function removing it.
// fn is called outside the editor lock.
func (e *Editor) Subscribe(fn func(EditorState)) func() {
	e.mu.Lock()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = fn
	e.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			e.mu.Lock()
			delete(e.subs, id)
			e.mu.Unlock()
		})
	}
}

// Open starts an edit and returns the channel that receives its single result
// Open 打开编辑器，返回接收唯一编辑结果的通道
func (e *Editor) Open(initial *Link, opts EditorOptions) (<-chan EditResult, error) {
	e.mu.Lock()
	if e.state.IsOpen {
		e.mu.Unlock()
		return nil, ErrEditorOpen
	}
	var init *Link
	if initial != nil {
		l := *initial
		init = &l
	}
	e.state = EditorState{
		IsOpen:             true,
		InitialValue:       init,
		Value:              init,
		EnabledLinkOptions: append([]LinkOption(nil), opts.enabled()...),
	}
	ch := make(chan EditResult, 1)
	e.pending = ch
	e.notifyLocked()
	return ch, nil
}

// EditLink opens the editor and blocks until the edit is applied, unset or dismissed.
// Cancelling ctx dismisses the edit unless a transaction already closed it, in which case
// that transaction's result is returned.
// EditLink 打开编辑器并阻塞直到编辑完成，ctx 取消时视为放弃编辑
func (e *Editor) EditLink(ctx context.Context, initial *Link, opts EditorOptions) (EditResult, error) {
	ch, err := e.Open(initial, opts)
	if err != nil {
		return EditResult{}, err
	}
	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		if err := e.Dismiss(); err == nil {
			<-ch
			return EditResult{}, ctx.Err()
		}
		return <-ch, nil
	}
}

// Apply closes the edit with a new link. Link options are reduced to the options that are
// both enabled in the editor and supported by the link type that produced the link.
// Apply 应用新链接并关闭编辑
func (e *Editor) Apply(link Link, supported []LinkOption) (Link, error) {
	return e.ApplyFrom("", link, supported)
}

// ApplyFrom is Apply for a link produced by the given link type; the id travels with the result
func (e *Editor) ApplyFrom(linkTypeID string, link Link, supported []LinkOption) (Link, error) {
	e.mu.Lock()
	if !e.state.IsOpen {
		e.mu.Unlock()
		return Link{}, ErrEditorNotOpen
	}
	allowed := IntersectLinkOptions(e.state.EnabledLinkOptions, supported)
	link.Options = link.Options.Filter(allowed)
	applied := link
	e.resolveLocked(EditResult{Change: true, Value: &applied, LinkTypeID: linkTypeID})
	return link, nil
}

// Unset closes the edit removing the link
// Unset 移除链接并关闭编辑
func (e *Editor) Unset() error {
	e.mu.Lock()
	if !e.state.IsOpen {
		e.mu.Unlock()
		return ErrEditorNotOpen
	}
	e.resolveLocked(EditResult{Change: true})
	return nil
}

// Dismiss closes the edit without changes
// Dismiss 放弃编辑
func (e *Editor) Dismiss() error {
	e.mu.Lock()
	if !e.state.IsOpen {
		e.mu.Unlock()
		return ErrEditorNotOpen
	}
	e.resolveLocked(EditResult{Change: false})
	return nil
}

// resolveLocked must be called with e.mu held; it releases the lock
func (e *Editor) resolveLocked(res EditResult) {
	e.state.IsOpen = false
	if res.Change {
		e.state.Value = res.Value
	}
	ch := e.pending
	e.pending = nil
	ch <- res
	e.notifyLocked()
}

// notifyLocked must be called with e.mu held; it releases the lock before calling subscribers
func (e *Editor) notifyLocked() {
	state := e.snapshot()
	subs := make([]func(EditorState), 0, len(e.subs))
	for _, fn := range e.subs {
		subs = append(subs, fn)
	}
	e.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}
