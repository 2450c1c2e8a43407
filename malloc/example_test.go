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
	"fmt"
	"log/slog"
	"os"
)

func Example() {
	arena := make([]byte, 4096)
	a, _ := NewBuddy(arena, 32)

	b1 := a.Allocate(20)  // tier 1
	b2 := a.Allocate(100) // tier 3

	fmt.Println("tiers:", a.BlockLens())
	fmt.Printf("b1: len=%d cap=%d\n", len(b1), cap(b1))
	fmt.Printf("b2: len=%d cap=%d\n", len(b2), cap(b2))

	a.Deallocate(b1)
	a.Deallocate(b2)

	// Output:
	// tiers: [32 80 176 368]
	// b1: len=20 cap=32
	// b2: len=100 cap=176
}

func ExampleNew() {
	opt := DefaultOption()
	opt.Strategy, _ = ParseStrategy("first-fit")

	a, err := New(make([]byte, 1000), opt)
	if err != nil {
		panic(err)
	}
	b := a.Allocate(100)
	fmt.Println(StatsOf(a))
	a.Deallocate(b)
	fmt.Println(StatsOf(a))

	// Output:
	// len=1.0 kB allocated=148 B free=852 B in 1 blocks (largest 852 B) utilization=14.8%
	// len=1.0 kB allocated=24 B free=976 B in 1 blocks (largest 976 B) utilization=2.4%
}

func ExampleDebugLog() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	}))

	p, _ := NewPool(make([]byte, 3*(16+PoolHeaderSize)), 16)
	p.AllocateBlock()
	DebugLog(logger, p)

	// Output:
	// level=DEBUG msg="malloc: free block" offset=32 size=16
	// level=DEBUG msg="malloc: free block" offset=64 size=16
	// level=DEBUG msg="malloc: free list" blocks=2
}
