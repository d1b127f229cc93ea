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

// Package provider declares the narrow RPC surface the backend needs from
// an archive node. It does not implement a JSON-RPC transport itself — that
// is the job of github.com/ethereum/go-ethereum/ethclient, which
// NewEthClient below adapts to this interface.
package provider

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// Provider is everything the backend needs from an archive node, pinned to
// whatever block the caller passes. It mirrors the subset of
// ethclient.Client's method set used by §6 of the design: BalanceAt,
// NonceAt, CodeAt, StorageAt, BlockByNumber.
type Provider interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	NonceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (uint64, error)
	CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error)
	StorageAt(ctx context.Context, account common.Address, key common.Hash, blockNumber *big.Int) ([]byte, error)
	BlockByNumber(ctx context.Context, number *big.Int) (*types.Block, error)
}
