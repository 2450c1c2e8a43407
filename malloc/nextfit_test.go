/*
 * Copyright 2026 CloudWeGo Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package malloc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudwego/memalloc/internal/freelist"
)

func TestNewNextFit(t *testing.T) {
	a := newTestNextFit(t, 256)
	assert.Equal(t, 256, a.Len())
	assert.Equal(t, 1, a.FreeCount())
	assert.Equal(t, 0, a.Cursor())

	a = newTestNextFit(t, 1024)
	assert.Equal(t, 1024, a.Len())
	assert.Equal(t, 0, a.Cursor())

	_, err := NewNextFit(make([]byte, ffh-1))
	assert.ErrorIs(t, err, ErrArenaTooSmall)
}

func TestNextFitAllocate(t *testing.T) {
	a := newTestNextFit(t, 256)
	b := a.Allocate(32)
	require.NotNil(t, b)
	assert.Equal(t, ffh, a.OffsetOf(b))
	assert.Equal(t, 32+2*ffh, a.Allocated())
	assert.Equal(t, 1, a.FreeCount())
	assert.Equal(t, a.OffsetOf(b)+32, a.Cursor())
}

func TestNextFitAllocateNothing(t *testing.T) {
	a := newTestNextFit(t, 256)
	cursor, allocated := a.Cursor(), a.Allocated()
	assert.Nil(t, a.Allocate(0))
	assert.Equal(t, allocated, a.Allocated())
	assert.Equal(t, cursor, a.Cursor())
}

func TestNextFitAllocate3Times(t *testing.T) {
	a := newTestNextFit(t, 256)
	b1 := a.Allocate(32)
	a.Allocate(32)
	a.Allocate(32)
	assert.Equal(t, 96+4*ffh, a.Allocated())
	assert.Equal(t, 1, a.FreeCount())
	assert.Equal(t, a.OffsetOf(b1)+96+2*ffh, a.Cursor())
}

func TestNextFitAllocateWholeBlock(t *testing.T) {
	tests := []struct {
		name       string
		n          int
		wantCount  int
		wantCursor int
	}{
		{"no_node_space", 256 - ffh, 0, freelist.None},
		{"half_node_space", 256 - ffh - ffh/2, 0, freelist.None},
		{"zero_node", 256 - 2*ffh, 1, 256 - ffh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestNextFit(t, 256)
			require.NotNil(t, a.Allocate(tt.n))
			assert.Equal(t, a.Len(), a.Allocated())
			assert.Equal(t, tt.wantCount, a.FreeCount())
			assert.Equal(t, tt.wantCursor, a.Cursor())
			assert.NoError(t, a.Validate())
		})
	}
}

func TestNextFitAllocateNoSpace(t *testing.T) {
	a := newTestNextFit(t, 256)
	a.Allocate(80)
	b2 := a.Allocate(80)
	assert.Nil(t, a.Allocate(80))
	assert.Equal(t, 160+3*ffh, a.Allocated())
	assert.Equal(t, a.OffsetOf(b2)+80, a.Cursor())
}

func TestNextFitDeallocateOnlyBlock(t *testing.T) {
	a := newTestNextFit(t, 256)
	b := a.Allocate(32)
	a.Deallocate(b)
	assert.Equal(t, ffh, a.Allocated())
	assert.Equal(t, []Block{{Offset: 0, Size: 256 - ffh}}, a.FreeBlocks())
	assert.Equal(t, a.OffsetOf(b)-ffh, a.Cursor(), "cursor follows the block it pointed at into the merge")
}

func TestNextFitDeallocateFullArena(t *testing.T) {
	// eight 8-byte blocks fill the arena exactly, leaving the cursor unset
	newFull := func(t *testing.T) (*NextFit, [][]byte) {
		a := newTestNextFit(t, 8*(8+ffh))
		var blocks [][]byte
		for i := 0; i < 8; i++ {
			b := a.Allocate(8)
			require.NotNil(t, b)
			blocks = append(blocks, b)
		}
		require.Equal(t, freelist.None, a.Cursor())
		require.Equal(t, 0, a.FreeCount())
		return a, blocks
	}

	t.Run("one_block", func(t *testing.T) {
		a, blocks := newFull(t)
		a.Deallocate(blocks[3])
		assert.Equal(t, 1, a.FreeCount())
		assert.Equal(t, a.OffsetOf(blocks[3])-ffh, a.Cursor())
	})
	t.Run("two_blocks_ascending", func(t *testing.T) {
		a, blocks := newFull(t)
		a.Deallocate(blocks[1])
		a.Deallocate(blocks[6])
		assert.Equal(t, 2, a.FreeCount())
		assert.Equal(t, a.OffsetOf(blocks[1])-ffh, a.Cursor())
	})
	t.Run("two_blocks_descending", func(t *testing.T) {
		a, blocks := newFull(t)
		a.Deallocate(blocks[6])
		a.Deallocate(blocks[1])
		assert.Equal(t, 2, a.FreeCount())
		assert.Equal(t, a.OffsetOf(blocks[6])-ffh, a.Cursor())
	})
}

func TestNextFitReallocate(t *testing.T) {
	a := newTestNextFit(t, 256)
	b1 := a.Allocate(32)
	b2 := a.Allocate(32)
	a.Deallocate(b1)

	b3 := a.Allocate(40)
	assert.Equal(t, a.OffsetOf(b2)+ffh+32, a.OffsetOf(b3))
	assert.Equal(t, 2, a.FreeCount())
	assert.Equal(t, 32, a.FreeBlocks()[0].Size)
	assert.Equal(t, a.OffsetOf(b3)+40, a.Cursor())
}

func TestNextFitWrapsAround(t *testing.T) {
	a := newTestNextFit(t, 4*(ffh+32))
	blocks := [][]byte{a.Allocate(32), a.Allocate(32), a.Allocate(32)}
	require.NotNil(t, blocks[2])

	// the cursor sits on the last free block; free the first one too
	a.Deallocate(blocks[0])
	last := a.Cursor()
	require.Equal(t, 3*(ffh+32), last)

	// a request too large for the last block wraps to the first
	a.Deallocate(blocks[1])
	b := a.Allocate(60)
	require.NotNil(t, b)
	assert.Equal(t, ffh, a.OffsetOf(b))

	// after a wrap the search continues from the new position, not the head
	assert.Equal(t, ffh+60, a.Cursor())
	assert.NoError(t, a.Validate())
}

func TestNextFitDiffersFromFirstFit(t *testing.T) {
	run := func(a Allocator) int {
		b1 := a.Allocate(64)
		a.Allocate(64)
		a.Deallocate(b1)
		b := a.Allocate(16)
		return a.(interface{ OffsetOf([]byte) int }).OffsetOf(b)
	}
	ff := newTestFirstFit(t, 1024)
	nf := newTestNextFit(t, 1024)
	assert.Equal(t, ffh, run(ff), "first-fit reuses the lowest hole")
	assert.Equal(t, 2*(ffh+64)+ffh, run(nf), "next-fit keeps moving forward")
}

func TestNextFitOrders(t *testing.T) {
	for _, order := range permutations(4) {
		a := newTestNextFit(t, 512)
		blocks := [][]byte{a.Allocate(24), a.Allocate(48), a.Allocate(16), a.Allocate(64)}
		for _, i := range order {
			a.Deallocate(blocks[i])
			require.NoError(t, a.Validate(), "order %v", order)
		}
		assert.Equal(t, []Block{{Offset: 0, Size: 512 - ffh}}, a.FreeBlocks(), "order %v", order)
		assert.Equal(t, 0, a.Cursor(), "order %v", order)
	}
}

func newTestNextFit(t *testing.T, size int) *NextFit {
	t.Helper()
	a, err := NewNextFit(make([]byte, size))
	require.NoError(t, err)
	return a
}

func BenchmarkNextFitAllocate(b *testing.B) {
	a, _ := NewNextFit(make([]byte, 1<<20))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		block := a.Allocate(256)
		if block != nil {
			a.Deallocate(block)
		}
	}
}
