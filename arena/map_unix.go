//go:build unix

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

package arena

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// Map returns an anonymous private mapping of size bytes outside the Go
// heap, and a function that unmaps it. Calling unmap more than once is a
// no-op.
func Map(size int) (buf []byte, unmap func() error, err error) {
	if size <= 0 {
		return nil, nil, errors.Errorf("arena: invalid mapping size %d", size)
	}
	buf, err = unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "arena: map %d bytes", size)
	}
	mapped := buf
	unmap = func() error {
		if mapped == nil {
			return nil
		}
		err := unix.Munmap(mapped)
		mapped = nil
		return errors.Wrap(err, "arena: unmap")
	}
	return buf, unmap, nil
}
