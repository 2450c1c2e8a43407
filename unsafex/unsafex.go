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

package unsafex

import "unsafe"

// Offset returns the position of b's first byte inside base without
// comparing contents, or -1 if b does not start within base.
//
// b may have zero length as long as its capacity is non-zero.
func Offset(base, b []byte) int {
	if cap(b) == 0 || len(base) == 0 {
		return -1
	}
	start := uintptr(unsafe.Pointer(unsafe.SliceData(base)))
	p := uintptr(unsafe.Pointer(unsafe.SliceData(b)))
	if p < start || p >= start+uintptr(len(base)) {
		return -1
	}
	return int(p - start)
}

// Within reports whether b lies entirely inside base, capacity included.
func Within(base, b []byte) bool {
	off := Offset(base, b)
	return off >= 0 && off+cap(b) <= len(base)
}
