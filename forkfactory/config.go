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

package forkfactory

import (
	"github.com/cionn3/forksim/account"
	"github.com/ethereum/go-ethereum/rpc"
)

const defaultQueueCapacity = 256

// Config parameterizes New. PinnedBlock is required; InitialCache and
// QueueCapacity are optional.
type Config struct {
	// PinnedBlock is the single historical block every fetch through this
	// Factory's Backend is pinned to, for the lifetime of the Factory.
	PinnedBlock rpc.BlockNumberOrHash

	// InitialCache seeds the Factory's template cache before New returns.
	// Nil starts empty.
	InitialCache *account.Cache

	// QueueCapacity bounds the Backend's inbound request channel. A request
	// issued against a full channel fails with backend.ErrChannelFull
	// rather than blocking. Zero selects the default of 256.
	QueueCapacity int
}

func (c Config) queueCapacity() int {
	if c.QueueCapacity > 0 {
		return c.QueueCapacity
	}
	return defaultQueueCapacity
}
