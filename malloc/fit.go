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
	"github.com/pkg/errors"

	"github.com/cloudwego/memalloc/internal/freelist"
)

// FitHeaderSize is the header in front of every FirstFit and NextFit block.
const FitHeaderSize = freelist.DoublyHeaderSize

// fitArena is the shared state of FirstFit and NextFit: one doubly linked
// free list of variable-sized blocks that split on allocation and coalesce
// with their neighbours on release.
type fitArena struct {
	base
	free freelist.List
}

func (a *fitArena) init(arena []byte, name string) error {
	if len(arena) < FitHeaderSize {
		return errors.Wrapf(ErrArenaTooSmall, "%s needs at least %d bytes, got %d", name, FitHeaderSize, len(arena))
	}
	a.reset()
	return nil
}

func (a *fitArena) reset() {
	a.free.Init(a.mem)
	a.free.SetSize(0, len(a.mem)-FitHeaderSize)
	a.free.InsertAfter(0, freelist.None)
	a.allocated = FitHeaderSize
}

// take allocates n bytes from the free block at off, which must hold at
// least n. A block with room for another header splits, the remainder
// taking the block's place in the list; otherwise the whole block is used
// and keeps its size. take returns the node that now follows off in list
// order: the remainder, or off's former successor.
func (a *fitArena) take(off, n int) int {
	s := a.free.Size(off)
	if s >= n+FitHeaderSize {
		prev := a.free.Prev(off)
		a.free.Remove(off)
		rem := off + FitHeaderSize + n
		a.free.SetSize(rem, s-n-FitHeaderSize)
		a.free.InsertAfter(rem, prev)
		a.free.SetSize(off, n)
		a.allocated += n + FitHeaderSize
		return rem
	}
	next := a.free.Next(off)
	a.free.Remove(off)
	a.allocated += s
	return next
}

// release frees the block at off and coalesces it with free neighbours that
// touch it. It returns the node that holds the freed bytes afterwards and
// the free node that merged into it, or None.
func (a *fitArena) release(off int) (survivor, absorbed int) {
	size := a.free.Size(off)
	a.free.Insert(off)
	prev, next := a.free.Prev(off), a.free.Next(off)

	prevAdj := prev != freelist.None && prev+FitHeaderSize+a.free.Size(prev) == off
	nextAdj := next != freelist.None && off+FitHeaderSize+size == next

	switch {
	case prevAdj && nextAdj:
		nextSize := a.free.Size(next)
		a.free.Remove(off)
		a.free.Remove(next)
		a.free.SetSize(prev, a.free.Size(prev)+2*FitHeaderSize+size+nextSize)
		a.allocated -= 2*FitHeaderSize + size
		return prev, next
	case nextAdj:
		nextSize := a.free.Size(next)
		a.free.Remove(next)
		a.free.SetSize(off, size+FitHeaderSize+nextSize)
		a.allocated -= FitHeaderSize + size
		return off, next
	case prevAdj:
		a.free.Remove(off)
		a.free.SetSize(prev, a.free.Size(prev)+FitHeaderSize+size)
		a.allocated -= FitHeaderSize + size
		return prev, freelist.None
	default:
		a.allocated -= size
		return off, freelist.None
	}
}

// FreeBlocks returns every free block ordered by offset.
func (a *fitArena) FreeBlocks() []Block { return a.free.Blocks() }

// FreeCount returns the number of free blocks.
func (a *fitArena) FreeCount() int { return a.free.Len() }

// HeaderSize returns FitHeaderSize.
func (a *fitArena) HeaderSize() int { return FitHeaderSize }

// OffsetOf returns the arena offset of a block returned by Allocate, or -1.
func (a *fitArena) OffsetOf(block []byte) int { return a.dataOffset(block, FitHeaderSize) }

// Validate checks the free list links and that free blocks tile the arena
// with allocated bytes, with no two free blocks touching.
func (a *fitArena) Validate() error {
	if err := a.free.Verify(); err != nil {
		return err
	}
	blocks := a.free.Blocks()
	if err := checkLayout(blocks, FitHeaderSize, len(a.mem)); err != nil {
		return err
	}
	for i := 1; i < len(blocks); i++ {
		if end(blocks[i-1], FitHeaderSize) == blocks[i].Offset {
			return errors.Errorf("malloc: free blocks at %d and %d are not coalesced", blocks[i-1].Offset, blocks[i].Offset)
		}
	}
	return checkTiling(a.allocated, blocks, len(a.mem))
}
