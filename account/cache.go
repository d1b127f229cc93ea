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

package account

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// MissingError is returned when a storage write is attempted against an
// address that has no Info entry yet.
type MissingError struct {
	Address common.Address
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("account %s: no basic info seeded yet", e.Address)
}

// Account pairs an address's basic info with whatever storage slots have
// been read or written for it so far. Absence from Cache.accounts means
// nothing is known about the address. A bucket that SetStorageForce creates
// for an unseen address holds a zero Info (nil Balance, zero CodeHash) until
// SetInfo replaces it.
type Account struct {
	Info    Info
	Storage map[uint256.Int]uint256.Int
}

func (a *Account) clone() *Account {
	out := &Account{Info: a.Info.Clone(), Storage: make(map[uint256.Int]uint256.Int, len(a.Storage))}
	for k, v := range a.Storage {
		out.Storage[k] = v
	}
	return out
}

// Cache is the in-memory account/storage/block-hash store that backs both
// the backend's shared, monotone cache (§I1) and every ForkDB/Factory
// template's local cache. It has no network awareness of its own and is not
// safe for concurrent use — each owner (the backend's event-loop goroutine,
// or a single ForkDB's owning goroutine) accesses its own Cache instance
// single-threaded, matching revm's CacheDB.
type Cache struct {
	accounts    map[common.Address]*Account
	blockHashes map[uint64]common.Hash
}

// NewCache returns an empty cache, ready to seed or fork from.
func NewCache() *Cache {
	return &Cache{
		accounts:    make(map[common.Address]*Account),
		blockHashes: make(map[uint64]common.Hash),
	}
}

// Account returns the account record at addr, or ok=false if nothing has
// been fetched or seeded for it yet.
func (c *Cache) Account(addr common.Address) (*Account, bool) {
	acc, ok := c.accounts[addr]
	return acc, ok
}

// Storage returns the known value of (addr, slot), or ok=false if the slot
// has never been read or written on this cache. A present zero value is
// "known zero", distinct from absence.
func (c *Cache) Storage(addr common.Address, slot uint256.Int) (uint256.Int, bool) {
	acc, ok := c.accounts[addr]
	if !ok {
		return uint256.Int{}, false
	}
	v, ok := acc.Storage[slot]
	return v, ok
}

// BlockHash returns the known hash for number, or ok=false on a miss.
func (c *Cache) BlockHash(number uint64) (common.Hash, bool) {
	h, ok := c.blockHashes[number]
	return h, ok
}

// SetInfo installs or overwrites addr's basic info, creating its storage
// bucket if this is the first time addr has been seen.
func (c *Cache) SetInfo(addr common.Address, info Info) {
	if acc, ok := c.accounts[addr]; ok {
		acc.Info = info
		return
	}
	c.accounts[addr] = &Account{Info: info, Storage: make(map[uint256.Int]uint256.Int)}
}

// SetStorage records a storage value for addr at slot. It fails with
// *MissingError if addr has no Info entry yet — callers must seed the
// account first, mirroring the Factory's insert_account_storage contract.
func (c *Cache) SetStorage(addr common.Address, slot, value uint256.Int) error {
	acc, ok := c.accounts[addr]
	if !ok {
		return &MissingError{Address: addr}
	}
	acc.Storage[slot] = value
	return nil
}

// SetStorageForce records a storage value for addr at slot, creating a
// zero-Info account bucket first if addr has never been seen. Used where a
// storage slot can legitimately arrive before the account's basic info does
// (the backend's own Storage dispatch fetches a slot without first fetching
// Basic, per §4.2) and by a ForkDB's read path once it has already ensured
// Basic is cached. Seeding through the Factory instead goes through
// SetStorage, which enforces the AccountMissing precondition.
func (c *Cache) SetStorageForce(addr common.Address, slot, value uint256.Int) {
	acc, ok := c.accounts[addr]
	if !ok {
		acc = &Account{Storage: make(map[uint256.Int]uint256.Int)}
		c.accounts[addr] = acc
	}
	acc.Storage[slot] = value
}

// CodeByHash scans the cache for an account whose code hash matches hash,
// returning its code. The empty-code hash always matches with a nil slice.
// This is a linear scan rather than a secondary index — the cache is
// expected to hold at most a handful of touched accounts per simulation, so
// the index's bookkeeping cost is not worth paying.
func (c *Cache) CodeByHash(hash common.Hash) ([]byte, bool) {
	if hash == EmptyCodeHash {
		return nil, true
	}
	for _, acc := range c.accounts {
		if acc.Info.CodeHash == hash {
			return acc.Info.Code, true
		}
	}
	return nil, false
}

// SelfDestruct clears addr's storage bucket and resets its Info to the zero
// account, matching revm's CacheDB::commit handling of a self-destructed
// account: the bucket is not merged with prior state, it is replaced.
func (c *Cache) SelfDestruct(addr common.Address) {
	c.accounts[addr] = &Account{
		Info:    NewInfo(uint256.NewInt(0), 0, nil),
		Storage: make(map[uint256.Int]uint256.Int),
	}
}

// SetBlockHash records the hash of block number.
func (c *Cache) SetBlockHash(number uint64, hash common.Hash) {
	c.blockHashes[number] = hash
}

// Clone performs the deep, physical copy described by the Fork DB ownership
// model: the returned Cache shares no mutable state with c.
func (c *Cache) Clone() *Cache {
	out := &Cache{
		accounts:    make(map[common.Address]*Account, len(c.accounts)),
		blockHashes: make(map[uint64]common.Hash, len(c.blockHashes)),
	}
	for addr, acc := range c.accounts {
		out.accounts[addr] = acc.clone()
	}
	for num, hash := range c.blockHashes {
		out.blockHashes[num] = hash
	}
	return out
}
