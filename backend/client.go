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
	"context"

	"github.com/cionn3/forksim/account"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// Client is a cheap, cloneable handle onto a running Backend. Every ForkDB
// and the owning Factory hold one; none of their calls block each other,
// since each just posts a request and waits on its own private reply
// channel.
type Client struct {
	incoming chan<- fetchRequest
	stop     <-chan struct{}
}

// send enqueues req without blocking: a full channel reports ErrChannelFull
// immediately rather than applying backpressure, matching §4.2's "transient,
// retryable" treatment of a saturated queue.
func (c *Client) send(req fetchRequest) error {
	select {
	case c.incoming <- req:
		return nil
	case <-c.stop:
		return ErrClosed
	default:
		return ErrChannelFull
	}
}

// Basic fetches addr's balance, nonce and code, coalescing with any other
// caller already waiting on the same address.
func (c *Client) Basic(ctx context.Context, addr common.Address) (account.Info, error) {
	reply := make(chan basicReply, 1)
	if err := c.send(basicRequest{address: addr, reply: reply}); err != nil {
		return account.Info{}, err
	}
	select {
	case r := <-reply:
		return r.info, r.err
	case <-ctx.Done():
		return account.Info{}, ctx.Err()
	case <-c.stop:
		return account.Info{}, ErrClosed
	}
}

// Storage fetches a single slot of addr.
func (c *Client) Storage(ctx context.Context, addr common.Address, slot uint256.Int) (uint256.Int, error) {
	reply := make(chan storageReply, 1)
	if err := c.send(storageRequest{address: addr, slot: slot, reply: reply}); err != nil {
		return uint256.Int{}, err
	}
	select {
	case r := <-reply:
		return r.value, r.err
	case <-ctx.Done():
		return uint256.Int{}, ctx.Err()
	case <-c.stop:
		return uint256.Int{}, ErrClosed
	}
}

// BlockHash fetches the hash of block number.
func (c *Client) BlockHash(ctx context.Context, number uint64) (common.Hash, error) {
	reply := make(chan blockHashReply, 1)
	if err := c.send(blockHashRequest{number: number, reply: reply}); err != nil {
		return common.Hash{}, err
	}
	select {
	case r := <-reply:
		return r.hash, r.err
	case <-ctx.Done():
		return common.Hash{}, ctx.Err()
	case <-c.stop:
		return common.Hash{}, ErrClosed
	}
}
