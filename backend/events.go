// Copyright 2024 The forksim Authors
// This file is part of the forksim library.
//
// The forksim library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The forksim library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the forksim library. If not, see <http://www.gnu.org/licenses/>.

package backend

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
)

// CacheFillKind identifies which of the backend's three request kinds
// populated the shared cache.
type CacheFillKind int

const (
	BasicFill CacheFillKind = iota
	StorageFill
	BlockHashFill
)

// CacheFillEvent is broadcast on the backend's feed every time a completed
// fetch writes into the shared cache. Address is the zero value for a
// BlockHashFill, and Number is meaningless otherwise. A caller that only
// wants to watch the cache warm up (logging, metrics, a UI) subscribes to
// this rather than driving reads itself.
type CacheFillEvent struct {
	Kind    CacheFillKind
	Address common.Address
	Number  uint64
}

// SubscribeCacheFill registers ch to receive every CacheFillEvent the
// backend sends from then on, mirroring the teacher's event.Feed-based
// subscription pattern for broadcasting internal state changes to
// uncoupled observers.
func (b *Backend) SubscribeCacheFill(ch chan<- CacheFillEvent) event.Subscription {
	return b.cacheFill.Subscribe(ch)
}
