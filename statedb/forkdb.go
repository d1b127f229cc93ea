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

package statedb

import (
	"context"

	"github.com/cionn3/forksim/account"
	"github.com/cionn3/forksim/backend"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ForkDB is one simulation's private view of forked chain state: a local
// cache plus a handle onto the shared backend for misses. It is not
// goroutine-safe by design, matching revm's CacheDB — one goroutine per
// simulation owns one ForkDB; concurrent simulations share only the
// Factory's backend client, never a ForkDB.
type ForkDB struct {
	cache  *account.Cache
	client *backend.Client
}

// New wraps client with a local cache. A nil initial starts empty;
// otherwise initial becomes the ForkDB's own cache — callers that want an
// isolated starting point should pass initial.Clone().
func New(client *backend.Client, initial *account.Cache) *ForkDB {
	if initial == nil {
		initial = account.NewCache()
	}
	return &ForkDB{cache: initial, client: client}
}

var (
	_ Database  = (*ForkDB)(nil)
	_ Reader    = (*ForkDB)(nil)
	_ Committer = (*ForkDB)(nil)
)

// Basic returns address's basic info, fetching through the backend on a
// miss and caching the result locally.
func (f *ForkDB) Basic(ctx context.Context, address common.Address) (*account.Info, error) {
	if acc, ok := f.cache.Account(address); ok {
		info := acc.Info.Clone()
		return &info, nil
	}
	info, err := f.client.Basic(ctx, address)
	if err != nil {
		return nil, err
	}
	f.cache.SetInfo(address, info)
	return &info, nil
}

// Storage returns the value at (address, slot). A miss first ensures
// address's basic info is cached (mirroring the original's "fetch basic
// before storage" ordering) and then fetches the slot itself, caching both.
func (f *ForkDB) Storage(ctx context.Context, address common.Address, slot uint256.Int) (uint256.Int, error) {
	if v, ok := f.cache.Storage(address, slot); ok {
		return v, nil
	}
	if _, err := f.Basic(ctx, address); err != nil {
		return uint256.Int{}, err
	}
	value, err := f.client.Storage(ctx, address, slot)
	if err != nil {
		return uint256.Int{}, err
	}
	f.cache.SetStorageForce(address, slot, value)
	return value, nil
}

// BlockHash returns the hash of block number, fetching through the backend
// and caching on a miss.
func (f *ForkDB) BlockHash(ctx context.Context, number uint64) (common.Hash, error) {
	if h, ok := f.cache.BlockHash(number); ok {
		return h, nil
	}
	hash, err := f.client.BlockHash(ctx, number)
	if err != nil {
		return common.Hash{}, err
	}
	f.cache.SetBlockHash(number, hash)
	return hash, nil
}

// CodeByHash never reaches the backend: code only ever arrives as a side
// effect of a Basic fetch, so a miss here means the code was never loaded.
func (f *ForkDB) CodeByHash(hash common.Hash) ([]byte, error) {
	code, ok := f.cache.CodeByHash(hash)
	if !ok {
		return nil, &MissingCodeError{Hash: hash}
	}
	return code, nil
}

// BasicRef is Basic's read-only counterpart: a miss still reaches the
// backend (and benefits from its coalescing), but the result is not written
// into this ForkDB's local cache.
func (f *ForkDB) BasicRef(ctx context.Context, address common.Address) (*account.Info, error) {
	if acc, ok := f.cache.Account(address); ok {
		info := acc.Info.Clone()
		return &info, nil
	}
	info, err := f.client.Basic(ctx, address)
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// StorageRef is Storage's read-only counterpart.
func (f *ForkDB) StorageRef(ctx context.Context, address common.Address, slot uint256.Int) (uint256.Int, error) {
	if v, ok := f.cache.Storage(address, slot); ok {
		return v, nil
	}
	return f.client.Storage(ctx, address, slot)
}

// BlockHashRef is BlockHash's read-only counterpart.
func (f *ForkDB) BlockHashRef(ctx context.Context, number uint64) (common.Hash, error) {
	if h, ok := f.cache.BlockHash(number); ok {
		return h, nil
	}
	return f.client.BlockHash(ctx, number)
}

// CodeByHashRef mirrors CodeByHash; there is no separate "don't cache"
// behavior to apply since code is never written by the Ref path anyway.
func (f *ForkDB) CodeByHashRef(hash common.Hash) ([]byte, error) {
	return f.CodeByHash(hash)
}

// Commit applies a batch of post-execution account changes to the local
// cache: each address's new Info replaces the old, and every touched slot is
// overwritten. An update marked SelfDestructed instead clears the address's
// cached storage and resets its Info, rather than merging — a destroyed
// account's prior slots must never resurface as stale reads. Addresses not
// present in changes are untouched.
func (f *ForkDB) Commit(changes map[common.Address]AccountUpdate) {
	for addr, update := range changes {
		if update.SelfDestructed {
			f.cache.SelfDestruct(addr)
			continue
		}
		f.cache.SetInfo(addr, update.Info)
		for slot, value := range update.Storage {
			f.cache.SetStorageForce(addr, slot, value)
		}
	}
}

// Clone returns a ForkDB with a physically independent local cache sharing
// the same backend client, per §3's ownership/lifecycle bullet: cloning
// forks the local cache copy-on-write logically, but is a deep copy
// physically.
func (f *ForkDB) Clone() *ForkDB {
	return &ForkDB{cache: f.cache.Clone(), client: f.client}
}
