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

// Package freelist implements address-ordered free lists whose nodes live
// inside the memory they describe.
//
// A node is identified by its byte offset in the arena. Its header is a run
// of little-endian 8-byte words starting at that offset:
//
//	word 0: payload size in bytes, header excluded
//	word 1: offset of the next node, or None
//	word 2: offset of the previous node, or None (List only)
package freelist

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// None marks the absence of a node.
const None = -1

const wordSize = 8

const (
	// SinglyHeaderSize is the header size of an SList node.
	SinglyHeaderSize = 2 * wordSize
	// DoublyHeaderSize is the header size of a List node.
	DoublyHeaderSize = 3 * wordSize
)

const (
	sizeWord = iota
	nextWord
	prevWord
)

// Block is a read-only view of one free node.
type Block struct {
	Offset int
	Size   int
}

// chain holds what both list flavours share: the arena, the head and the
// node count, plus the size and next words of every header.
type chain struct {
	mem   []byte
	head  int
	count int
}

func (c *chain) init(mem []byte) {
	c.mem = mem
	c.head = None
	c.count = 0
}

func (c *chain) word(n, i int) int {
	return int(int64(binary.LittleEndian.Uint64(c.mem[n+i*wordSize:])))
}

func (c *chain) putWord(n, i, v int) {
	binary.LittleEndian.PutUint64(c.mem[n+i*wordSize:], uint64(int64(v)))
}

// Head returns the lowest-addressed node, or None.
func (c *chain) Head() int { return c.head }

// Len returns the number of linked nodes.
func (c *chain) Len() int { return c.count }

// Size returns the size word of the header at n.
func (c *chain) Size(n int) int { return c.word(n, sizeWord) }

// SetSize stamps the size word of the header at n. n need not be linked.
func (c *chain) SetSize(n, size int) { c.putWord(n, sizeWord, size) }

// Next returns the successor of n, or None.
func (c *chain) Next(n int) int { return c.word(n, nextWord) }

func (c *chain) setNext(n, next int) { c.putWord(n, nextWord, next) }

// FindPrev returns the last linked node below offset n, or None.
func (c *chain) FindPrev(n int) int {
	prev := None
	for cur := c.head; cur != None && cur < n; cur = c.Next(cur) {
		prev = cur
	}
	return prev
}

// Blocks returns a snapshot of the list from head to tail. The walk stops
// after Len nodes, or at the first link that leaves the arena.
func (c *chain) Blocks() []Block {
	blocks := make([]Block, 0, c.count)
	for cur, i := c.head, 0; cur != None && i < c.count; cur, i = c.Next(cur), i+1 {
		if cur < 0 || cur+SinglyHeaderSize > len(c.mem) {
			break
		}
		blocks = append(blocks, Block{Offset: cur, Size: c.Size(cur)})
	}
	return blocks
}

func (c *chain) verify(hdr int, prevOf func(int) int) error {
	last, i := None, 0
	for cur := c.head; cur != None; cur = c.Next(cur) {
		if i == c.count {
			return errors.Errorf("freelist: more than %d nodes reachable from head %d", c.count, c.head)
		}
		if cur < 0 || cur+hdr > len(c.mem) {
			return errors.Errorf("freelist: node %d outside arena of %d bytes", cur, len(c.mem))
		}
		if last != None && cur <= last {
			return errors.Errorf("freelist: node %d follows node %d", cur, last)
		}
		if prevOf != nil && prevOf(cur) != last {
			return errors.Errorf("freelist: node %d has prev %d, want %d", cur, prevOf(cur), last)
		}
		last = cur
		i++
	}
	if i != c.count {
		return errors.Errorf("freelist: %d nodes reachable, count is %d", i, c.count)
	}
	return nil
}

// List is a doubly linked free list ordered by ascending offset.
type List struct {
	chain
}

// Init binds l to mem and empties it.
func (l *List) Init(mem []byte) { l.init(mem) }

// Prev returns the predecessor of n, or None.
func (l *List) Prev(n int) int { return l.word(n, prevWord) }

func (l *List) setPrev(n, prev int) { l.putWord(n, prevWord, prev) }

// InsertAfter links n right after the node after, or as the new head when
// after is None. The caller keeps the list ordered.
func (l *List) InsertAfter(n, after int) {
	var next int
	if after == None {
		next = l.head
		l.head = n
	} else {
		next = l.Next(after)
		l.setNext(after, n)
	}
	l.setNext(n, next)
	l.setPrev(n, after)
	if next != None {
		l.setPrev(next, n)
	}
	l.count++
}

// Insert links n at its address-ordered position.
func (l *List) Insert(n int) { l.InsertAfter(n, l.FindPrev(n)) }

// Remove unlinks n in O(1). It reports false, leaving the list untouched,
// when the list is empty or n lies below the head.
func (l *List) Remove(n int) bool {
	if l.count == 0 || n < l.head {
		return false
	}
	prev, next := l.Prev(n), l.Next(n)
	if prev == None {
		l.head = next
	} else {
		l.setNext(prev, next)
	}
	if next != None {
		l.setPrev(next, prev)
	}
	l.count--
	return true
}

// Verify walks the list checking ordering, bounds, back links and count.
func (l *List) Verify() error { return l.verify(DoublyHeaderSize, l.Prev) }

// SList is a singly linked free list ordered by ascending offset.
type SList struct {
	chain
}

// Init binds l to mem and empties it.
func (l *SList) Init(mem []byte) { l.init(mem) }

// InsertAfter links n right after the node after, or as the new head when
// after is None.
func (l *SList) InsertAfter(n, after int) {
	if after == None {
		l.setNext(n, l.head)
		l.head = n
	} else {
		l.setNext(n, l.Next(after))
		l.setNext(after, n)
	}
	l.count++
}

// Insert links n at its address-ordered position.
func (l *SList) Insert(n int) { l.InsertAfter(n, l.FindPrev(n)) }

// Remove unlinks n, scanning for its predecessor. It reports false when n
// is not linked.
func (l *SList) Remove(n int) bool {
	if l.count == 0 || n < l.head {
		return false
	}
	if n == l.head {
		l.head = l.Next(n)
		l.count--
		return true
	}
	prev := l.FindPrev(n)
	if prev == None || l.Next(prev) != n {
		return false
	}
	l.setNext(prev, l.Next(n))
	l.count--
	return true
}

// Pop unlinks and returns the head, or None when empty.
func (l *SList) Pop() int {
	n := l.head
	if n == None {
		return None
	}
	l.head = l.Next(n)
	l.count--
	return n
}

// Verify walks the list checking ordering, bounds and count.
func (l *SList) Verify() error { return l.verify(SinglyHeaderSize, nil) }
