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
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Strategy selects an allocator implementation.
type Strategy int

const (
	FirstFitStrategy Strategy = iota
	NextFitStrategy
	PoolStrategy
	BuddyStrategy
)

var strategyNames = [...]string{
	FirstFitStrategy: "firstfit",
	NextFitStrategy:  "nextfit",
	PoolStrategy:     "pool",
	BuddyStrategy:    "buddy",
}

func (s Strategy) String() string {
	if s < 0 || int(s) >= len(strategyNames) {
		return "Strategy(" + strconv.Itoa(int(s)) + ")"
	}
	return strategyNames[s]
}

// ParseStrategy maps a name such as "first-fit", "NextFit" or "buddy" to its
// Strategy. Case, '-' and '_' are ignored.
func ParseStrategy(name string) (Strategy, error) {
	key := strings.ToLower(strings.NewReplacer("-", "", "_", "").Replace(name))
	for i, n := range strategyNames {
		if n == key {
			return Strategy(i), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownStrategy, "%q", name)
}

// Option configures New.
type Option struct {
	// Strategy picks the allocator.
	Strategy Strategy

	// BlockSize is the slot payload for PoolStrategy and the smallest tier
	// for BuddyStrategy. The fit strategies ignore it.
	BlockSize int

	// Logger receives partition events. nil means slog.Default().
	Logger *slog.Logger
}

// DefaultOption returns the default values of Option.
func DefaultOption() *Option {
	return &Option{
		Strategy:  FirstFitStrategy,
		BlockSize: 64,
	}
}

// New builds the allocator described by o over arena. A nil o means
// DefaultOption().
func New(arena []byte, o *Option) (Allocator, error) {
	if o == nil {
		o = DefaultOption()
	}
	var (
		a   Allocator
		err error
	)
	switch o.Strategy {
	case FirstFitStrategy:
		a, err = newFirstFit(arena, o.Logger)
	case NextFitStrategy:
		a, err = newNextFit(arena, o.Logger)
	case PoolStrategy:
		a, err = newPool(arena, o.BlockSize, o.Logger)
	case BuddyStrategy:
		a, err = newBuddy(arena, o.BlockSize, o.Logger)
	default:
		return nil, errors.Wrapf(ErrUnknownStrategy, "%v", o.Strategy)
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
