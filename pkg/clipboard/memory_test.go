package clipboard

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ Clipboard = (*Memory)(nil)
	_ Clipboard = (*System)(nil)
)

func TestMemory_ReadWrite(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	_, err := m.Read(ctx)
	assert.ErrorIs(t, err, ErrEmpty)
	_, err = m.ReadText(ctx)
	assert.ErrorIs(t, err, ErrEmpty)

	require.NoError(t, m.Write(ctx, Item{Type: TypeHTML, Data: "<b>x</b>"}, Item{Type: TypePlain, Data: "x"}))
	items, err := m.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	text, err := m.ReadText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "x", text)

	require.NoError(t, m.WriteText(ctx, "plain"))
	assert.Equal(t, []Item{{Type: TypePlain, Data: "plain"}}, m.Items())
}

func TestMemory_ReadReturnsCopy(t *testing.T) {
	m := NewMemory(Item{Type: TypePlain, Data: "a"})
	items, err := m.Read(context.Background())
	require.NoError(t, err)
	items[0].Data = "changed"

	assert.Equal(t, "a", m.Items()[0].Data)
}

func TestMemory_FailuresAndCalls(t *testing.T) {
	ctx := context.Background()
	m := NewMemory(Item{Type: TypePlain, Data: "a"})
	boom := errors.New("boom")

	m.Fail(OpRead, boom)
	m.Fail(OpWriteText, ErrPermission)

	_, err := m.Read(ctx)
	assert.ErrorIs(t, err, boom)
	_, err = m.Read(ctx)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, m.WriteText(ctx, "b"), ErrPermission)

	text, err := m.ReadText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", text)

	assert.Equal(t, 2, m.Calls(OpRead))
	assert.Equal(t, 1, m.Calls(OpReadText))
	assert.Equal(t, 1, m.Calls(OpWriteText))
	assert.Zero(t, m.Calls(OpWrite))

	m.Fail(OpRead, nil)
	_, err = m.Read(ctx)
	assert.NoError(t, err)
}

func TestMemory_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	m := NewMemory(Item{Type: TypePlain, Data: "a"})
	_, err := m.ReadText(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, m.Write(ctx), context.Canceled)
}

func TestMemory_Concurrent(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = m.WriteText(ctx, "x")
		}()
		go func() {
			defer wg.Done()
			_, _ = m.Read(ctx)
		}()
	}
	wg.Wait()

	assert.Equal(t, 16, m.Calls(OpWriteText))
	assert.Equal(t, 16, m.Calls(OpRead))
}

func TestFind(t *testing.T) {
	items := []Item{{Type: TypeHTML, Data: "<p>h</p>"}, {Type: TypePlain, Data: "p"}}

	data, ok := Find(items, TypePlain)
	assert.True(t, ok)
	assert.Equal(t, "p", data)

	_, ok = Find(items, "image/png")
	assert.False(t, ok)
}

func TestSystem_StructuredUnsupportedWithoutTools(t *testing.T) {
	sys := newSystem(nil)
	_, err := sys.Read(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
	assert.ErrorIs(t, sys.Write(context.Background(), Item{Type: TypeHTML, Data: "x"}), ErrUnsupported)
}
