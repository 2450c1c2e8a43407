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
	"log/slog"

	"github.com/cloudwego/memalloc/internal/freelist"
)

// NextFit serves each request from the first fitting free block at or after
// the cursor, wrapping to the lowest address once. The cursor is left on
// the block that follows the last allocation.
type NextFit struct {
	fitArena
	cursor int
}

// NewNextFit creates a NextFit allocator owning arena. The arena must hold
// at least one header.
func NewNextFit(arena []byte) (*NextFit, error) {
	return newNextFit(arena, nil)
}

func newNextFit(arena []byte, logger *slog.Logger) (*NextFit, error) {
	a := &NextFit{}
	a.base.init(arena, logger)
	if err := a.fitArena.init(arena, "next-fit"); err != nil {
		return nil, err
	}
	a.cursor = a.free.Head()
	a.logPartition(NextFitStrategy, a.free.Len())
	return a, nil
}

// Allocate returns n bytes from the next free block that fits, or nil after
// every free block has been tried once.
func (a *NextFit) Allocate(n int) []byte {
	if n <= 0 || a.free.Len() == 0 {
		return nil
	}
	off := a.cursor
	if off == freelist.None {
		off = a.free.Head()
	}
	for i, count := 0, a.free.Len(); i < count; i++ {
		if a.free.Size(off) >= n {
			a.cursor = a.take(off, n)
			return a.slice(off, FitHeaderSize, n, a.free.Size(off))
		}
		if off = a.free.Next(off); off == freelist.None {
			off = a.free.Head()
		}
	}
	return nil
}

// Deallocate frees a block returned by Allocate. Slices that do not start
// inside the arena are ignored.
func (a *NextFit) Deallocate(block []byte) {
	if off := a.dataOffset(block, FitHeaderSize); off >= 0 {
		a.DeallocateAt(off)
	}
}

// DeallocateAt frees the block whose data starts at dataOffset.
func (a *NextFit) DeallocateAt(dataOffset int) {
	survivor, absorbed := a.release(dataOffset - FitHeaderSize)
	if a.cursor == freelist.None || a.cursor == absorbed {
		a.cursor = survivor
	}
}

// Cursor returns the header offset the next search starts from, or -1 when
// it will start from the lowest free block.
func (a *NextFit) Cursor() int { return a.cursor }

// Reset frees every block and moves the cursor back to the start.
func (a *NextFit) Reset() {
	a.reset()
	a.cursor = a.free.Head()
	a.logPartition(NextFitStrategy, a.free.Len())
}
