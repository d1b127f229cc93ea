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

// Package forkfactory builds and owns the Global Backend, accepts
// imperative seeding operations against a template cache, and mints Fork
// DB snapshots from it.
package forkfactory

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/cionn3/forksim/account"
	"github.com/cionn3/forksim/backend"
	"github.com/cionn3/forksim/provider"
	"github.com/cionn3/forksim/statedb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/holiman/uint256"
)

// Factory owns the running Backend and a template cache that every newly
// minted ForkDB snapshots from. Seeding operations (InsertAccountInfo,
// InsertAccountStorage) mutate the template directly, bypassing the
// Backend entirely, per §4.1.
type Factory struct {
	mu       sync.Mutex
	template *account.Cache

	backend     *backend.Backend
	client      *backend.Client
	pinnedBlock rpc.BlockNumberOrHash
}

// New starts a Backend bound to cfg.PinnedBlock and returns a Factory
// holding its send endpoint. prov must be non-nil: a nil provider is a
// programmer error, not a runtime condition, and panics rather than
// returning an error (matching "only programmer errors may panic").
func New(prov provider.Provider, cfg Config) (*Factory, error) {
	if prov == nil {
		panic("forkfactory: nil provider")
	}
	num, ok := cfg.PinnedBlock.Number()
	if !ok {
		return nil, fmt.Errorf("forkfactory: pinned block must be specified by number, not hash")
	}
	blockNumber := big.NewInt(num.Int64())

	template := cfg.InitialCache
	if template == nil {
		template = account.NewCache()
	}

	b := backend.New(context.Background(), prov, blockNumber, account.NewCache(), cfg.queueCapacity())
	return &Factory{
		template:    template,
		backend:     b,
		client:      b.Client(),
		pinnedBlock: cfg.PinnedBlock,
	}, nil
}

// Block returns the block this Factory's Backend is pinned to.
func (f *Factory) Block() rpc.BlockNumberOrHash {
	return f.pinnedBlock
}

// InsertAccountInfo installs an override into the Factory's template cache.
// It does not go through the Backend.
func (f *Factory) InsertAccountInfo(address common.Address, info account.Info) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.template.SetInfo(address, info)
}

// InsertAccountStorage installs a storage override into the Factory's
// template cache. It fails with *account.MissingError if address has no
// basic info entry yet — seed the account first with InsertAccountInfo.
func (f *Factory) InsertAccountStorage(address common.Address, slot, value uint256.Int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.template.SetStorage(address, slot, value)
}

// NewFork snapshots the current template cache and pairs it with a clone of
// the Backend's send endpoint to produce a ForkDB. Cheap, and may be called
// any number of times; later seeding calls never perturb forks already
// minted (R1).
func (f *Factory) NewFork() *statedb.ForkDB {
	f.mu.Lock()
	snapshot := f.template.Clone()
	f.mu.Unlock()
	return statedb.New(f.client, snapshot)
}

// Close stops the Backend and releases every ForkDB still waiting on a
// reply with backend.ErrClosed.
func (f *Factory) Close() {
	f.backend.Close()
}
