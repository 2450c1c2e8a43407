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

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOffset(t *testing.T) {
	base := make([]byte, 128)
	assert.Equal(t, 0, Offset(base, base))
	assert.Equal(t, 40, Offset(base, base[40:48]))
	assert.Equal(t, 40, Offset(base, base[40:40:48]), "empty slice with capacity")
	assert.Equal(t, 127, Offset(base, base[127:]))

	other := make([]byte, 16)
	assert.Equal(t, -1, Offset(base, other))
	assert.Equal(t, -1, Offset(base, nil))
	assert.Equal(t, -1, Offset(nil, base))
	assert.Equal(t, -1, Offset(base[:64], base[64:]), "past the end of base")
}

func TestWithin(t *testing.T) {
	base := make([]byte, 128)
	assert.True(t, Within(base, base[16:32:64]))
	assert.True(t, Within(base[:64], base[16:32:64]))
	assert.False(t, Within(base[:32], base[16:32:64]), "capacity overruns base")
	assert.False(t, Within(base, make([]byte, 4)))
}

func BenchmarkOffset(b *testing.B) {
	base := make([]byte, 4096)
	x := base[1024:2048]
	for i := 0; i < b.N; i++ {
		_ = Offset(base, x)
	}
}
