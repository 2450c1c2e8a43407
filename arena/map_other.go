//go:build !unix

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

import "github.com/pkg/errors"

// Map returns a heap arena of size bytes on platforms without anonymous
// mappings. unmap does nothing.
func Map(size int) (buf []byte, unmap func() error, err error) {
	if size <= 0 {
		return nil, nil, errors.Errorf("arena: invalid mapping size %d", size)
	}
	return New(size), func() error { return nil }, nil
}
