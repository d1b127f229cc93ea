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
	"github.com/cionn3/forksim/account"
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// fetchRequest is the sum type the event loop dispatches on — exactly the
// three request kinds §4.2 names: Basic, Storage, BlockHash.
type fetchRequest interface {
	isFetchRequest()
}

type basicRequest struct {
	address common.Address
	reply   chan<- basicReply
}

func (basicRequest) isFetchRequest() {}

type basicReply struct {
	info account.Info
	err  error
}

type storageRequest struct {
	address common.Address
	slot    uint256.Int
	reply   chan<- storageReply
}

func (storageRequest) isFetchRequest() {}

type storageReply struct {
	value uint256.Int
	err   error
}

type blockHashRequest struct {
	number uint64
	reply  chan<- blockHashReply
}

func (blockHashRequest) isFetchRequest() {}

type blockHashReply struct {
	hash common.Hash
	err  error
}

type storageKey struct {
	address common.Address
	slot    uint256.Int
}

// basicCompletion, storageCompletion and blockHashCompletion are what a
// fetch goroutine reports back to the event loop once its RPC future
// resolves — the Go analogue of polling pending_requests to Poll::Ready.
type basicCompletion struct {
	address common.Address
	info    account.Info
	err     error
}

type storageCompletion struct {
	address common.Address
	slot    uint256.Int
	value   uint256.Int
	err     error
}

type blockHashCompletion struct {
	number uint64
	hash   common.Hash
	err    error
}
