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

	"github.com/dustin/go-humanize"
)

// Stats summarises the occupancy of an allocator.
type Stats struct {
	Length      int
	Allocated   int
	Free        int // free payload bytes
	FreeBlocks  int
	LargestFree int
	Utilization float64 // Allocated / Length
}

// StatsOf collects Stats from a. Free block figures need a to implement
// Inspector; otherwise Free is Length minus Allocated and the block counts
// stay zero.
func StatsOf(a Allocator) Stats {
	s := Stats{Length: a.Len(), Allocated: a.Allocated()}
	if in, ok := a.(Inspector); ok {
		for _, b := range in.FreeBlocks() {
			s.Free += b.Size
			s.FreeBlocks++
			if b.Size > s.LargestFree {
				s.LargestFree = b.Size
			}
		}
	} else {
		s.Free = s.Length - s.Allocated
	}
	if s.Length > 0 {
		s.Utilization = float64(s.Allocated) / float64(s.Length)
	}
	return s
}

func (s Stats) String() string {
	return fmt.Sprintf("len=%s allocated=%s free=%s in %d blocks (largest %s) utilization=%.1f%%",
		humanize.Bytes(uint64(s.Length)), humanize.Bytes(uint64(s.Allocated)),
		humanize.Bytes(uint64(s.Free)), s.FreeBlocks, humanize.Bytes(uint64(s.LargestFree)),
		s.Utilization*100)
}
