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
	"sort"

	"github.com/pkg/errors"

	"github.com/cloudwego/memalloc/internal/freelist"
)

const (
	// BuddyHeaderSize is the header in front of every Buddy block.
	BuddyHeaderSize = freelist.SinglyHeaderSize

	// Tiers is the number of Buddy size tiers.
	Tiers = 4
)

// Buddy serves requests from four tiers of block sizes. Tier 1 holds blocks
// of the configured minimum size; each larger tier holds two blocks of the
// tier below plus the header the pair no longer needs:
//
//	tier(k+1) = 2*tier(k) + BuddyHeaderSize
//
// An empty tier borrows by splitting a block of the tier above, and a freed
// block merges with an address-adjacent free block of its tier, climbing
// tiers while merges succeed. A block's size word doubles as its tier stamp.
type Buddy struct {
	base
	sizes  [Tiers]int
	tiers  [Tiers]freelist.SList
	carved int // bytes covered by the initial partition
}

// NewBuddy creates a Buddy allocator over arena with minBlock-byte tier 1
// blocks. The arena is carved greedily from offset 0 into as many tier 4
// blocks as fit, then tier 3, 2 and 1; the remainder stays unused.
func NewBuddy(arena []byte, minBlock int) (*Buddy, error) {
	return newBuddy(arena, minBlock, nil)
}

func newBuddy(arena []byte, minBlock int, logger *slog.Logger) (*Buddy, error) {
	if minBlock <= 0 {
		return nil, errors.Wrapf(ErrInvalidBlockSize, "buddy minimum block size %d", minBlock)
	}
	if minBlock+BuddyHeaderSize > len(arena) {
		return nil, errors.Wrapf(ErrArenaTooSmall, "buddy with %d-byte blocks needs at least %d bytes, got %d",
			minBlock, minBlock+BuddyHeaderSize, len(arena))
	}
	a := &Buddy{}
	a.init(arena, logger)
	a.sizes[0] = minBlock
	for k := 1; k < Tiers; k++ {
		a.sizes[k] = 2*a.sizes[k-1] + BuddyHeaderSize
	}
	a.Reset()
	return a, nil
}

// Allocate returns n bytes from the smallest tier that holds n, splitting
// larger blocks when that tier is empty. It returns nil when n exceeds the
// largest tier or nothing can be split.
func (a *Buddy) Allocate(n int) []byte {
	if n <= 0 {
		return nil
	}
	k := a.Tier(n)
	if k < 0 {
		return nil
	}
	if a.tiers[k].Len() == 0 && !a.divide(k+1) {
		return nil
	}
	off := a.tiers[k].Pop()
	a.allocated += a.sizes[k]
	return a.slice(off, BuddyHeaderSize, n, a.sizes[k])
}

// divide splits the head of tier k into two blocks of tier k-1, first
// refilling tier k from above when it is empty.
func (a *Buddy) divide(k int) bool {
	if k >= Tiers {
		return false
	}
	if a.tiers[k].Len() == 0 && !a.divide(k+1) {
		return false
	}
	off := a.tiers[k].Pop()
	l, small := &a.tiers[k-1], a.sizes[k-1]
	buddy := off + BuddyHeaderSize + small
	l.SetSize(off, small)
	l.SetSize(buddy, small)
	l.Insert(off)
	l.InsertAfter(buddy, off)
	a.allocated += BuddyHeaderSize
	return true
}

// Deallocate frees a block returned by Allocate. Slices that do not start
// inside the arena are ignored.
func (a *Buddy) Deallocate(block []byte) {
	if off := a.dataOffset(block, BuddyHeaderSize); off >= 0 {
		a.DeallocateAt(off)
	}
}

// DeallocateAt frees the block whose data starts at dataOffset. A header
// whose size matches no tier is left alone.
func (a *Buddy) DeallocateAt(dataOffset int) {
	off := dataOffset - BuddyHeaderSize
	size := a.tiers[0].Size(off)
	for k, s := range a.sizes {
		if s == size {
			a.allocated -= size
			a.merge(off, k)
			return
		}
	}
}

// merge links the free block at off into tier k, first joining it with a
// touching neighbour of the same tier as long as one exists below tier 4.
func (a *Buddy) merge(off, k int) {
	for ; k < Tiers-1; k++ {
		l := &a.tiers[k]
		span := BuddyHeaderSize + a.sizes[k]
		prev := l.FindPrev(off)
		next := l.Head()
		if prev != freelist.None {
			next = l.Next(prev)
		}
		switch {
		case prev != freelist.None && prev+span == off:
			l.Remove(prev)
			off = prev
		case next != freelist.None && off+span == next:
			l.Remove(next)
		default:
			l.InsertAfter(off, prev)
			return
		}
		a.allocated -= BuddyHeaderSize
		l.SetSize(off, a.sizes[k+1])
	}
	a.tiers[Tiers-1].Insert(off)
}

// Tier returns the index (0 for tier 1) of the smallest tier holding n
// bytes, or -1 when n exceeds the largest tier.
func (a *Buddy) Tier(n int) int {
	for k, s := range a.sizes {
		if n <= s {
			return k
		}
	}
	return -1
}

// BlockLens returns the payload size of each tier, smallest first.
func (a *Buddy) BlockLens() [Tiers]int { return a.sizes }

// TierLen returns the number of free blocks in tier index k.
func (a *Buddy) TierLen(k int) int { return a.tiers[k].Len() }

// TierBlocks returns the free blocks of tier index k ordered by offset.
func (a *Buddy) TierBlocks(k int) []Block { return a.tiers[k].Blocks() }

// FreeCount returns the number of free blocks across all tiers.
func (a *Buddy) FreeCount() int {
	n := 0
	for k := range a.tiers {
		n += a.tiers[k].Len()
	}
	return n
}

// HeaderSize returns BuddyHeaderSize.
func (a *Buddy) HeaderSize() int { return BuddyHeaderSize }

// OffsetOf returns the arena offset of a block returned by Allocate, or -1.
func (a *Buddy) OffsetOf(block []byte) int { return a.dataOffset(block, BuddyHeaderSize) }

// FreeBlocks returns the free blocks of every tier ordered by offset.
func (a *Buddy) FreeBlocks() []Block {
	var blocks []Block
	for k := range a.tiers {
		blocks = append(blocks, a.tiers[k].Blocks()...)
	}
	sort.Slice(blocks, func(i, j int) bool { return blocks[i].Offset < blocks[j].Offset })
	return blocks
}

// Reset frees every block and carves the arena again.
func (a *Buddy) Reset() {
	for k := range a.tiers {
		a.tiers[k].Init(a.mem)
	}
	a.allocated = 0
	off := 0
	for k := Tiers - 1; k >= 0; k-- {
		stride := BuddyHeaderSize + a.sizes[k]
		last := freelist.None
		for ; off+stride <= len(a.mem); off += stride {
			a.tiers[k].SetSize(off, a.sizes[k])
			a.tiers[k].InsertAfter(off, last)
			last = off
			a.allocated += BuddyHeaderSize
		}
	}
	a.carved = off
	a.logPartition(BuddyStrategy, a.FreeCount())
}

// Validate checks every tier list, that each free block carries its tier's
// size, and that free blocks tile the carved region with allocated bytes.
func (a *Buddy) Validate() error {
	for k := range a.tiers {
		if err := a.tiers[k].Verify(); err != nil {
			return errors.Wrapf(err, "tier %d", k+1)
		}
		for _, b := range a.tiers[k].Blocks() {
			if b.Size != a.sizes[k] {
				return errors.Errorf("malloc: tier %d block at %d has size %d, want %d", k+1, b.Offset, b.Size, a.sizes[k])
			}
		}
	}
	blocks := a.FreeBlocks()
	if err := checkLayout(blocks, BuddyHeaderSize, a.carved); err != nil {
		return err
	}
	return checkTiling(a.allocated, blocks, a.carved)
}
