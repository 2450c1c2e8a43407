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

	"github.com/pkg/errors"

	"github.com/cloudwego/memalloc/internal/freelist"
)

// PoolHeaderSize is the header in front of every Pool slot.
const PoolHeaderSize = freelist.SinglyHeaderSize

// Pool partitions the arena into equal slots and serves any request no
// larger than a slot in O(1). Slots never split or merge; any tail shorter
// than a slot stays unused.
type Pool struct {
	base
	free      freelist.SList
	blockSize int
	total     int
}

// NewPool creates a Pool of blockSize-byte slots over arena. The arena must
// hold at least one slot and its header.
func NewPool(arena []byte, blockSize int) (*Pool, error) {
	return newPool(arena, blockSize, nil)
}

func newPool(arena []byte, blockSize int, logger *slog.Logger) (*Pool, error) {
	if blockSize <= 0 {
		return nil, errors.Wrapf(ErrInvalidBlockSize, "pool block size %d", blockSize)
	}
	if blockSize+PoolHeaderSize > len(arena) {
		return nil, errors.Wrapf(ErrArenaTooSmall, "pool of %d-byte blocks needs at least %d bytes, got %d",
			blockSize, blockSize+PoolHeaderSize, len(arena))
	}
	p := &Pool{blockSize: blockSize}
	p.init(arena, logger)
	p.Reset()
	return p, nil
}

// Allocate returns n bytes from the lowest free slot, or nil when n exceeds
// the slot size or every slot is taken.
func (p *Pool) Allocate(n int) []byte {
	if n <= 0 || n > p.blockSize {
		return nil
	}
	off := p.free.Pop()
	if off == freelist.None {
		return nil
	}
	p.allocated += p.blockSize
	return p.slice(off, PoolHeaderSize, n, p.blockSize)
}

// AllocateBlock returns a whole slot, or nil when none is free.
func (p *Pool) AllocateBlock() []byte { return p.Allocate(p.blockSize) }

// Deallocate returns a slot obtained from Allocate. Slices that do not start
// inside the arena are ignored.
func (p *Pool) Deallocate(block []byte) {
	if off := p.dataOffset(block, PoolHeaderSize); off >= 0 {
		p.DeallocateAt(off)
	}
}

// DeallocateAt returns the slot whose data starts at dataOffset.
func (p *Pool) DeallocateAt(dataOffset int) {
	off := dataOffset - PoolHeaderSize
	p.free.SetSize(off, p.blockSize)
	p.free.Insert(off)
	p.allocated -= p.blockSize
}

// OffsetOf returns the arena offset of a slot returned by Allocate, or -1.
func (p *Pool) OffsetOf(block []byte) int { return p.dataOffset(block, PoolHeaderSize) }

// Reset frees every slot.
func (p *Pool) Reset() {
	p.free.Init(p.mem)
	stride := PoolHeaderSize + p.blockSize
	last := freelist.None
	for off := 0; off+stride <= len(p.mem); off += stride {
		p.free.SetSize(off, p.blockSize)
		p.free.InsertAfter(off, last)
		last = off
	}
	p.total = p.free.Len()
	p.allocated = p.total * PoolHeaderSize
	p.logPartition(PoolStrategy, p.total)
}

// BlockLen returns the slot payload size.
func (p *Pool) BlockLen() int { return p.blockSize }

// TotalBlocks returns the number of slots carved from the arena.
func (p *Pool) TotalBlocks() int { return p.total }

// AllocatedBlocks returns the number of slots in use.
func (p *Pool) AllocatedBlocks() int { return p.total - p.free.Len() }

// FreeCount returns the number of free slots.
func (p *Pool) FreeCount() int { return p.free.Len() }

// HeaderSize returns PoolHeaderSize.
func (p *Pool) HeaderSize() int { return PoolHeaderSize }

// FreeBlocks returns every free slot ordered by offset.
func (p *Pool) FreeBlocks() []Block { return p.free.Blocks() }

// Validate checks the free list and that every free slot is slot-aligned,
// slot-sized and accounted for.
func (p *Pool) Validate() error {
	if err := p.free.Verify(); err != nil {
		return err
	}
	blocks := p.free.Blocks()
	stride := PoolHeaderSize + p.blockSize
	for _, b := range blocks {
		if b.Offset%stride != 0 || b.Offset/stride >= p.total {
			return errors.Errorf("malloc: pool slot at %d is not a slot boundary", b.Offset)
		}
		if b.Size != p.blockSize {
			return errors.Errorf("malloc: pool slot at %d has size %d, want %d", b.Offset, b.Size, p.blockSize)
		}
	}
	return checkTiling(p.allocated, blocks, p.total*stride)
}
