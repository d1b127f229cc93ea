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

// Package backend implements the Global Backend: a single goroutine that
// owns the shared account/storage/block-hash cache and multiplexes every
// ForkDB's cache-miss onto the underlying provider, coalescing concurrent
// misses for the same key into one RPC call.
package backend

import (
	"context"
	"math/big"
	"sync"

	"github.com/cionn3/forksim/account"
	"github.com/cionn3/forksim/provider"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/log"
	"github.com/holiman/uint256"
	"golang.org/x/sync/errgroup"
)

// Backend is the event-loop goroutine's state. It is never touched outside
// run(); everything else talks to it through a Client and the incoming
// channel, matching the teacher's habit of confining a subsystem's mutable
// state to the goroutine that owns it rather than guarding it with a mutex.
type Backend struct {
	cache       *account.Cache
	provider    provider.Provider
	blockNumber *big.Int

	incoming chan fetchRequest

	accountWaiters map[common.Address][]chan<- basicReply
	storageWaiters map[storageKey][]chan<- storageReply
	blockWaiters   map[uint64][]chan<- blockHashReply

	basicDone     chan basicCompletion
	storageDone   chan storageCompletion
	blockHashDone chan blockHashCompletion

	cacheFill event.Feed

	ctx    context.Context
	cancel context.CancelFunc
	stop   chan struct{}

	closeOnce sync.Once
}

// New starts the backend's event loop in a new goroutine and returns the
// running Backend. blockNumber pins every fetch to a single historical
// block, per §3's "one pinned block per Factory" invariant. cache is the
// backend's own shared cache (§I1) — distinct from any ForkDB's local one.
func New(ctx context.Context, prov provider.Provider, blockNumber *big.Int, cache *account.Cache, queueCapacity int) *Backend {
	ctx, cancel := context.WithCancel(ctx)
	b := &Backend{
		cache:          cache,
		provider:       prov,
		blockNumber:    blockNumber,
		incoming:       make(chan fetchRequest, queueCapacity),
		accountWaiters: make(map[common.Address][]chan<- basicReply),
		storageWaiters: make(map[storageKey][]chan<- storageReply),
		blockWaiters:   make(map[uint64][]chan<- blockHashReply),
		basicDone:      make(chan basicCompletion),
		storageDone:    make(chan storageCompletion),
		blockHashDone:  make(chan blockHashCompletion),
		ctx:            ctx,
		cancel:         cancel,
		stop:           make(chan struct{}),
	}
	go b.run()
	return b
}

// Client returns a new handle onto the backend. Handles are cheap and safe
// to hand out to every ForkDB and the owning Factory; none of them block
// the event loop on each other.
func (b *Backend) Client() *Client {
	return &Client{incoming: b.incoming, stop: b.stop}
}

// Close stops the event loop and releases every outstanding waiter with
// ErrClosed. It is idempotent.
func (b *Backend) Close() {
	b.closeOnce.Do(func() {
		close(b.stop)
		b.cancel()
	})
}

func (b *Backend) run() {
	defer b.drain()
	for {
		select {
		case req := <-b.incoming:
			switch r := req.(type) {
			case basicRequest:
				b.dispatchBasic(r)
			case storageRequest:
				b.dispatchStorage(r)
			case blockHashRequest:
				b.dispatchBlockHash(r)
			}
		case c := <-b.basicDone:
			b.completeBasic(c)
		case c := <-b.storageDone:
			b.completeStorage(c)
		case c := <-b.blockHashDone:
			b.completeBlockHash(c)
		case <-b.stop:
			return
		}
	}
}

// drain releases every waiter still registered when the loop exits, so a
// Close never leaves a ForkDB blocked forever on a reply that will never
// come.
func (b *Backend) drain() {
	for addr, waiters := range b.accountWaiters {
		for _, w := range waiters {
			w <- basicReply{err: ErrClosed}
		}
		delete(b.accountWaiters, addr)
	}
	for key, waiters := range b.storageWaiters {
		for _, w := range waiters {
			w <- storageReply{err: ErrClosed}
		}
		delete(b.storageWaiters, key)
	}
	for num, waiters := range b.blockWaiters {
		for _, w := range waiters {
			w <- blockHashReply{err: ErrClosed}
		}
		delete(b.blockWaiters, num)
	}
}

// dispatchBasic serves addr from cache if present, otherwise attaches the
// reply to an in-flight fetch or starts a new one — the coalescing policy
// of §4.2 P1. A bucket that a storage fetch created (zero Info, nil
// Balance) is not a basic-info hit.
func (b *Backend) dispatchBasic(r basicRequest) {
	if acc, ok := b.cache.Account(r.address); ok && acc.Info.Balance != nil {
		r.reply <- basicReply{info: acc.Info.Clone()}
		return
	}
	waiters := b.accountWaiters[r.address]
	alreadyFetching := len(waiters) > 0
	b.accountWaiters[r.address] = append(waiters, r.reply)
	if alreadyFetching {
		log.Trace("forksim: coalescing basic fetch", "address", r.address, "waiters", len(b.accountWaiters[r.address]))
		return
	}
	go b.fetchBasic(r.address)
}

func (b *Backend) dispatchStorage(r storageRequest) {
	if v, ok := b.cache.Storage(r.address, r.slot); ok {
		r.reply <- storageReply{value: v}
		return
	}
	key := storageKey{address: r.address, slot: r.slot}
	waiters := b.storageWaiters[key]
	alreadyFetching := len(waiters) > 0
	b.storageWaiters[key] = append(waiters, r.reply)
	if alreadyFetching {
		log.Trace("forksim: coalescing storage fetch", "address", r.address, "slot", r.slot.Hex(), "waiters", len(b.storageWaiters[key]))
		return
	}
	go b.fetchStorage(r.address, r.slot)
}

func (b *Backend) dispatchBlockHash(r blockHashRequest) {
	if h, ok := b.cache.BlockHash(r.number); ok {
		r.reply <- blockHashReply{hash: h}
		return
	}
	waiters := b.blockWaiters[r.number]
	alreadyFetching := len(waiters) > 0
	b.blockWaiters[r.number] = append(waiters, r.reply)
	if alreadyFetching {
		log.Trace("forksim: coalescing block hash fetch", "number", r.number, "waiters", len(b.blockWaiters[r.number]))
		return
	}
	go b.fetchBlockHash(r.number)
}

// fetchBasic joins get_balance, get_nonce and get_code into a single RPC
// round-trip using errgroup, the Go analogue of tokio::try_join!: a failure
// in any one call cancels the others and surfaces as a single wrapped error.
func (b *Backend) fetchBasic(addr common.Address) {
	var (
		balance *big.Int
		nonce   uint64
		code    []byte
	)
	g, gctx := errgroup.WithContext(b.ctx)
	g.Go(func() error {
		var err error
		balance, err = b.provider.BalanceAt(gctx, addr, b.blockNumber)
		return err
	})
	g.Go(func() error {
		var err error
		nonce, err = b.provider.NonceAt(gctx, addr, b.blockNumber)
		return err
	})
	g.Go(func() error {
		var err error
		code, err = b.provider.CodeAt(gctx, addr, b.blockNumber)
		return err
	})

	comp := basicCompletion{address: addr}
	if err := g.Wait(); err != nil {
		log.Warn("forksim: account fetch failed", "address", addr, "err", err)
		comp.err = &GetAccountError{Address: addr, Cause: err}
	} else {
		bal, overflow := uint256.FromBig(balance)
		if overflow {
			log.Warn("forksim: balance overflowed uint256, clamping", "address", addr)
		}
		comp.info = account.NewInfo(bal, nonce, code)
	}
	select {
	case b.basicDone <- comp:
	case <-b.stop:
	}
}

func (b *Backend) fetchStorage(addr common.Address, slot uint256.Int) {
	hash := common.Hash(slot.Bytes32())
	raw, err := b.provider.StorageAt(b.ctx, addr, hash, b.blockNumber)

	comp := storageCompletion{address: addr, slot: slot}
	if err != nil {
		log.Warn("forksim: storage fetch failed", "address", addr, "slot", slot.Hex(), "err", err)
		comp.err = &GetStorageError{Address: addr, Slot: slot, Cause: err}
	} else {
		comp.value.SetBytes(raw)
	}
	select {
	case b.storageDone <- comp:
	case <-b.stop:
	}
}

// fetchBlockHash always queries the Factory's pinned block, per §I3: number
// is only the cache/waiter key, never the RPC argument, mirroring
// global_backend.rs's "let block_id = self.block_num.unwrap()". A block that
// the provider reports as absent resolves to EmptyCodeHash rather than an
// error, matching the original's Ok(None) => Ok(KECCAK_EMPTY) fallback.
func (b *Backend) fetchBlockHash(number uint64) {
	block, err := b.provider.BlockByNumber(b.ctx, b.blockNumber)

	comp := blockHashCompletion{number: number}
	switch {
	case err != nil:
		log.Warn("forksim: block hash fetch failed", "number", number, "err", err)
		comp.err = &GetBlockHashError{Number: number, Cause: err}
	case block == nil:
		comp.hash = account.EmptyCodeHash
	default:
		comp.hash = block.Hash()
	}
	select {
	case b.blockHashDone <- comp:
	case <-b.stop:
	}
}

// completeBasic writes the fetched info into the shared cache and fans the
// result out to every waiter queued behind it. The cache is left untouched
// on failure, so a transient RPC error never poisons a key — the next
// caller's request starts a fresh fetch (§4.2 scenario 5).
func (b *Backend) completeBasic(c basicCompletion) {
	waiters := b.accountWaiters[c.address]
	delete(b.accountWaiters, c.address)
	if c.err != nil {
		for _, w := range waiters {
			w <- basicReply{err: c.err}
		}
		return
	}
	b.cache.SetInfo(c.address, c.info)
	log.Debug("forksim: basic fetch completed", "address", c.address, "waiters", len(waiters))
	b.cacheFill.Send(CacheFillEvent{Kind: BasicFill, Address: c.address})
	for _, w := range waiters {
		w <- basicReply{info: c.info.Clone()}
	}
}

func (b *Backend) completeStorage(c storageCompletion) {
	key := storageKey{address: c.address, slot: c.slot}
	waiters := b.storageWaiters[key]
	delete(b.storageWaiters, key)
	if c.err != nil {
		for _, w := range waiters {
			w <- storageReply{err: c.err}
		}
		return
	}
	b.cache.SetStorageForce(c.address, c.slot, c.value)
	log.Debug("forksim: storage fetch completed", "address", c.address, "slot", c.slot.Hex(), "waiters", len(waiters))
	b.cacheFill.Send(CacheFillEvent{Kind: StorageFill, Address: c.address})
	for _, w := range waiters {
		w <- storageReply{value: c.value}
	}
}

func (b *Backend) completeBlockHash(c blockHashCompletion) {
	waiters := b.blockWaiters[c.number]
	delete(b.blockWaiters, c.number)
	if c.err != nil {
		for _, w := range waiters {
			w <- blockHashReply{err: c.err}
		}
		return
	}
	b.cache.SetBlockHash(c.number, c.hash)
	log.Debug("forksim: block hash fetch completed", "number", c.number, "waiters", len(waiters))
	b.cacheFill.Send(CacheFillEvent{Kind: BlockHashFill, Number: c.number})
	for _, w := range waiters {
		w <- blockHashReply{hash: c.hash}
	}
}
