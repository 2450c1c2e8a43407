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
	"context"
	"encoding/binary"
	"log/slog"

	"github.com/bytedance/gopkg/util/xxhash3"
	"github.com/pkg/errors"
)

func end(b Block, hdr int) int { return b.Offset + hdr + b.Size }

// checkLayout reports free blocks that overrun limit, overlap or are out of
// address order.
func checkLayout(blocks []Block, hdr, limit int) error {
	for i, b := range blocks {
		if b.Offset < 0 || b.Size < 0 || end(b, hdr) > limit {
			return errors.Errorf("malloc: free block at %d (size %d) overruns %d bytes", b.Offset, b.Size, limit)
		}
		if i > 0 && b.Offset < end(blocks[i-1], hdr) {
			return errors.Errorf("malloc: free block at %d overlaps block at %d", b.Offset, blocks[i-1].Offset)
		}
	}
	return nil
}

// checkTiling reports a mismatch between allocated plus free payload and
// the carved length.
func checkTiling(allocated int, blocks []Block, carved int) error {
	free := 0
	for _, b := range blocks {
		free += b.Size
	}
	if allocated+free != carved {
		return errors.Errorf("malloc: allocated %d + free %d != %d carved bytes", allocated, free, carved)
	}
	return nil
}

// Digest fingerprints the free-list layout of a. Two allocators in the same
// state, such as one fresh and one Reset, have equal digests.
func Digest(a Inspector) uint64 {
	blocks := a.FreeBlocks()
	buf := make([]byte, 0, 16*len(blocks))
	for _, b := range blocks {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(b.Offset))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(b.Size))
	}
	return xxhash3.Hash(buf)
}

// DebugLog writes every free block of a to l at debug level.
func DebugLog(l *slog.Logger, a Inspector) {
	if !l.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	blocks := a.FreeBlocks()
	for _, b := range blocks {
		l.Debug("malloc: free block", slog.Int("offset", b.Offset), slog.Int("size", b.Size))
	}
	l.Debug("malloc: free list", slog.Int("blocks", len(blocks)))
}
