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

// Package statedb implements the Fork DB: a per-simulation, demand-paged
// cache that an EVM interpreter reads and writes through. It is the Go
// analogue of revm's Database/DatabaseRef/DatabaseCommit traits, scoped
// deliberately narrower than go-ethereum's own core/vm.StateDB — see
// SPEC_FULL.md §1 and §6 for why that larger contract is out of scope here.
package statedb

import (
	"context"

	"github.com/cionn3/forksim/account"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Database is the mutating read surface an interpreter drives a single step
// of execution through: every miss is fetched from the backend and the
// result is written into the ForkDB's local cache before being returned, so
// the next read of the same key is local. The Go analogue of revm's
// Database trait.
type Database interface {
	Basic(ctx context.Context, address common.Address) (*account.Info, error)
	Storage(ctx context.Context, address common.Address, slot uint256.Int) (uint256.Int, error)
	BlockHash(ctx context.Context, number uint64) (common.Hash, error)
	CodeByHash(hash common.Hash) ([]byte, error)
}

// Reader is the read-only counterpart: a miss still reaches the backend (an
// interpreter may call it from a context where mutating the local cache
// isn't wanted, e.g. a dry-run gas estimate), but the result is not written
// back. The Go analogue of revm's DatabaseRef trait.
type Reader interface {
	BasicRef(ctx context.Context, address common.Address) (*account.Info, error)
	StorageRef(ctx context.Context, address common.Address, slot uint256.Int) (uint256.Int, error)
	BlockHashRef(ctx context.Context, number uint64) (common.Hash, error)
	CodeByHashRef(hash common.Hash) ([]byte, error)
}

// AccountUpdate is what an interpreter hands to Commit for one touched
// address at the end of a simulated transaction: new basic info plus every
// storage slot it wrote. The Go analogue of revm's primitives::Account.
// SelfDestructed marks an address that was destroyed during execution: its
// cached storage is cleared and Info reset rather than merged, matching
// revm's CacheDB::commit handling of Account::is_selfdestructed.
type AccountUpdate struct {
	Info           account.Info
	Storage        map[uint256.Int]uint256.Int
	SelfDestructed bool
}

// Committer applies a batch of post-execution account changes to the local
// cache in one call. The Go analogue of revm's DatabaseCommit trait.
type Committer interface {
	Commit(changes map[common.Address]AccountUpdate)
}
