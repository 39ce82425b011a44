package ring

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBuffer_TableDriven(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		run      func(t *testing.T, b *Buffer[int])
	}{
		{
			name:     "new buffer is empty",
			capacity: 3,
			run: func(t *testing.T, b *Buffer[int]) {
				require.True(t, b.Empty())
				require.False(t, b.Full())
				require.Equal(t, 0, b.Len())
				require.Equal(t, 3, b.Cap())
				_, ok := b.Pop()
				require.False(t, ok)
			},
		},
		{
			name:     "push rejects when full",
			capacity: 2,
			run: func(t *testing.T, b *Buffer[int]) {
				require.True(t, b.Push(1))
				require.True(t, b.Push(2))
				require.True(t, b.Full())
				require.False(t, b.Push(3))
				require.Equal(t, 2, b.Len())
			},
		},
		{
			name:     "pop returns elements in push order",
			capacity: 4,
			run: func(t *testing.T, b *Buffer[int]) {
				for i := 1; i <= 4; i++ {
					require.True(t, b.Push(i))
				}
				for i := 1; i <= 4; i++ {
					v, ok := b.Pop()
					require.True(t, ok)
					require.Equal(t, i, v)
				}
				require.True(t, b.Empty())
			},
		},
		{
			name:     "order survives wraparound",
			capacity: 3,
			run: func(t *testing.T, b *Buffer[int]) {
				next, want := 0, 0
				for round := 0; round < 10; round++ {
					for !b.Full() {
						b.Push(next)
						next++
					}
					// drain two, leave one behind so head keeps moving
					for i := 0; i < 2; i++ {
						v, ok := b.Pop()
						require.True(t, ok)
						require.Equal(t, want, v)
						want++
					}
				}
				for !b.Empty() {
					v, _ := b.Pop()
					require.Equal(t, want, v)
					want++
				}
				require.Equal(t, next, want)
			},
		},
		{
			name:     "single slot alternates",
			capacity: 1,
			run: func(t *testing.T, b *Buffer[int]) {
				for i := 0; i < 5; i++ {
					require.True(t, b.Push(i))
					require.False(t, b.Push(i+100))
					v, ok := b.Pop()
					require.True(t, ok)
					require.Equal(t, i, v)
					require.True(t, b.Empty())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.run(t, New[int](tt.capacity))
		})
	}
}

func TestBuffer_PopClearsSlot(t *testing.T) {
	b := New[*int](2)
	v := 7
	b.Push(&v)
	_, ok := b.Pop()
	require.True(t, ok)
	require.Nil(t, b.items[0])
}

func TestNew_NonPositiveCapacityPanics(t *testing.T) {
	require.Panics(t, func() { New[int](0) })
	require.Panics(t, func() { New[int](-1) })
}
