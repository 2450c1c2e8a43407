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

// Package malloc provides allocators that carve one caller-supplied,
// fixed-size []byte arena into blocks.
//
// All bookkeeping lives inside the arena itself: free blocks carry a small
// header linking them into address-ordered free lists, and allocated blocks
// keep the header in front of the returned bytes. Four strategies share the
// Allocator interface:
//
//   - FirstFit returns the first free block large enough.
//   - NextFit resumes the search where the previous one stopped.
//   - Buddy serves four size tiers that split and merge in pairs.
//   - Pool hands out uniform fixed-size slots.
//
// None of the allocators are safe for concurrent use.
package malloc

import (
	"log/slog"

	"github.com/cloudwego/memalloc/internal/freelist"
	"github.com/cloudwego/memalloc/unsafex"
)

// Allocator manages the blocks of a single arena.
type Allocator interface {
	// Allocate returns a block of n bytes, or nil if n is not positive or
	// no free block can hold it. cap of the result is the block's full
	// payload.
	Allocate(n int) []byte

	// Deallocate returns a block obtained from Allocate. The slice must not
	// be resliced from the front. Double frees and blocks of another
	// allocator are not detected.
	Deallocate(block []byte)

	// Allocated returns the bytes in use, headers of every carved block
	// included.
	Allocated() int

	// Len returns the arena length.
	Len() int

	// Reset drops every outstanding block and restores the initial layout.
	Reset()
}

// Inspector exposes the free-list layout for diagnostics and tests.
type Inspector interface {
	// FreeBlocks returns every free block ordered by offset.
	FreeBlocks() []Block

	// Validate walks the allocator's structures and reports the first
	// inconsistency found.
	Validate() error
}

// Block describes a free block: the offset of its header and its payload size.
type Block = freelist.Block

var (
	_ Allocator = (*FirstFit)(nil)
	_ Allocator = (*NextFit)(nil)
	_ Allocator = (*Pool)(nil)
	_ Allocator = (*Buddy)(nil)

	_ Inspector = (*FirstFit)(nil)
	_ Inspector = (*NextFit)(nil)
	_ Inspector = (*Pool)(nil)
	_ Inspector = (*Buddy)(nil)
)

// base holds what every strategy keeps: the arena, the running allocated
// counter and the logger.
type base struct {
	mem       []byte
	allocated int
	logger    *slog.Logger
}

func (b *base) init(mem []byte, logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	b.mem = mem
	b.logger = logger
}

// Allocated returns the bytes in use, headers included.
func (b *base) Allocated() int { return b.allocated }

// Len returns the arena length.
func (b *base) Len() int { return len(b.mem) }

// SetLogger replaces the logger used for partition events. nil restores
// slog.Default().
func (b *base) SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.Default()
	}
	b.logger = l
}

// dataOffset returns the arena offset of block's first byte, or -1 when the
// slice does not start inside the arena after a header of hdr bytes.
func (b *base) dataOffset(block []byte, hdr int) int {
	off := unsafex.Offset(b.mem, block)
	if off < hdr {
		return -1
	}
	return off
}

// slice returns the payload of the block whose header sits at off.
func (b *base) slice(off, hdr, n, size int) []byte {
	p := off + hdr
	return b.mem[p : p+n : p+size]
}

func (b *base) logPartition(s Strategy, blocks int) {
	b.logger.Debug("malloc: arena partitioned",
		slog.String("strategy", s.String()),
		slog.Int("len", len(b.mem)),
		slog.Int("allocated", b.allocated),
		slog.Int("free_blocks", blocks))
}
