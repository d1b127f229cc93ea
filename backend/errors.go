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
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// ErrChannelFull is returned when the backend's inbound request channel is
// at capacity. It is transient backpressure; the caller may retry.
var ErrChannelFull = errors.New("backend: request channel full")

// ErrClosed is returned to a waiter whose reply never arrived because the
// backend was closed (Backend.Close stopped the event loop).
var ErrClosed = errors.New("backend: closed without reply")

// GetAccountError wraps a transport failure encountered while fetching an
// address's balance, nonce or code.
type GetAccountError struct {
	Address common.Address
	Cause   error
}

func (e *GetAccountError) Error() string {
	return fmt.Sprintf("get account %s: %v", e.Address, e.Cause)
}

func (e *GetAccountError) Unwrap() error { return e.Cause }

// GetStorageError wraps a transport failure encountered while fetching a
// storage slot.
type GetStorageError struct {
	Address common.Address
	Slot    uint256.Int
	Cause   error
}

func (e *GetStorageError) Error() string {
	return fmt.Sprintf("get storage %s[%s]: %v", e.Address, e.Slot.Hex(), e.Cause)
}

func (e *GetStorageError) Unwrap() error { return e.Cause }

// GetBlockHashError wraps a transport failure encountered while fetching a
// block's hash.
type GetBlockHashError struct {
	Number uint64
	Cause  error
}

func (e *GetBlockHashError) Error() string {
	return fmt.Sprintf("get block hash %d: %v", e.Number, e.Cause)
}

func (e *GetBlockHashError) Unwrap() error { return e.Cause }
