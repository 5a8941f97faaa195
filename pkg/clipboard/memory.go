package clipboard

import (
	"context"
	"slices"
	"sync"
)

// Op names a clipboard operation for failure injection and call counting.
type Op string

// Clipboard operations.
const (
	OpRead      Op = "read"
	OpReadText  Op = "read_text"
	OpWrite     Op = "write"
	OpWriteText Op = "write_text"
)

// Memory is an in-process clipboard. It is safe for concurrent use.
// It implements the Clipboard interface.
type Memory struct {
	mu       sync.RWMutex
	items    []Item
	failures map[Op]error
	calls    map[Op]int
}

// NewMemory creates a Memory clipboard holding items.
func NewMemory(items ...Item) *Memory {
	return &Memory{
		items:    slices.Clone(items),
		failures: make(map[Op]error),
		calls:    make(map[Op]int),
	}
}

// Fail makes every later call of op return err. A nil err clears it.
func (m *Memory) Fail(op Op, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how often op was invoked.
func (m *Memory) Calls(op Op) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls[op]
}

// Items returns a copy of the current content.
func (m *Memory) Items() []Item {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.items)
}

// Read returns every representation.
func (m *Memory) Read(ctx context.Context) ([]Item, error) {
	if err := m.begin(ctx, OpRead); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.items) == 0 {
		return nil, ErrEmpty
	}
	return slices.Clone(m.items), nil
}

// ReadText returns the plain text representation.
func (m *Memory) ReadText(ctx context.Context) (string, error) {
	if err := m.begin(ctx, OpReadText); err != nil {
		return "", err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := Find(m.items, TypePlain)
	if !ok {
		return "", ErrEmpty
	}
	return text, nil
}

// Write replaces the content with items.
func (m *Memory) Write(ctx context.Context, items ...Item) error {
	if err := m.begin(ctx, OpWrite); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = slices.Clone(items)
	return nil
}

// WriteText replaces the content with plain text.
func (m *Memory) WriteText(ctx context.Context, text string) error {
	if err := m.begin(ctx, OpWriteText); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = []Item{{Type: TypePlain, Data: text}}
	return nil
}

// begin counts the call and returns the context or injected error.
func (m *Memory) begin(ctx context.Context, op Op) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls[op]++
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.failures[op]
}
