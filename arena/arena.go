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

// Package arena obtains byte slices to hand to the allocators in malloc.
//
// The allocators write every header before reading it, so none of the
// arenas here need to be zeroed.
package arena

import (
	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/bytedance/gopkg/lang/mcache"
)

// New returns a heap arena of size bytes without zeroing it.
func New(size int) []byte {
	return dirtmake.Bytes(size, size)
}

// Borrow returns an arena of size bytes from a process-wide pool. The
// contents are undefined. Return it with Release once no allocator uses it.
func Borrow(size int) []byte {
	return mcache.Malloc(size)
}

// Release returns an arena obtained from Borrow to the pool.
func Release(buf []byte) {
	mcache.Free(buf)
}
