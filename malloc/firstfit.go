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

// FirstFit serves each request from the lowest-addressed free block that
// can hold it.
type FirstFit struct {
	fitArena
}

// NewFirstFit creates a FirstFit allocator owning arena. The arena must hold
// at least one header.
func NewFirstFit(arena []byte) (*FirstFit, error) {
	return newFirstFit(arena, nil)
}

func newFirstFit(arena []byte, logger *slog.Logger) (*FirstFit, error) {
	a := &FirstFit{}
	a.base.init(arena, logger)
	if err := a.fitArena.init(arena, "first-fit"); err != nil {
		return nil, err
	}
	a.logPartition(FirstFitStrategy, a.free.Len())
	return a, nil
}

// Allocate returns n bytes from the first free block that fits, or nil.
func (a *FirstFit) Allocate(n int) []byte {
	if n <= 0 {
		return nil
	}
	for off := a.free.Head(); off != freelist.None; off = a.free.Next(off) {
		if size := a.free.Size(off); size >= n {
			a.take(off, n)
			return a.slice(off, FitHeaderSize, n, a.free.Size(off))
		}
	}
	return nil
}

// Deallocate frees a block returned by Allocate. Slices that do not start
// inside the arena are ignored.
func (a *FirstFit) Deallocate(block []byte) {
	if off := a.dataOffset(block, FitHeaderSize); off >= 0 {
		a.release(off - FitHeaderSize)
	}
}

// DeallocateAt frees the block whose data starts at dataOffset.
func (a *FirstFit) DeallocateAt(dataOffset int) {
	a.release(dataOffset - FitHeaderSize)
}

// Reset frees every block, leaving a single free block spanning the arena.
func (a *FirstFit) Reset() {
	a.reset()
	a.logPartition(FirstFitStrategy, a.free.Len())
}
