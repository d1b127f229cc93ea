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

// Package account holds the data model shared by the backend's shared cache
// and every ForkDB's local cache: account records, storage entries and the
// cache that stores them.
package account

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// EmptyCodeHash is the keccak256 digest of an empty byte string, the
// canonical code hash for an externally owned account. The backend also
// reuses it as the sentinel for a block the provider reports as absent,
// mirroring the original's reuse of the same KECCAK_EMPTY constant for both.
var EmptyCodeHash = crypto.Keccak256Hash(nil)

// Info is the per-address record the backend assembles from a joined
// get_balance/get_nonce/get_code RPC call. CodeHash always satisfies
// CodeHash = keccak256(Code), or EmptyCodeHash when Code is empty.
type Info struct {
	Balance  *uint256.Int
	Nonce    uint64
	CodeHash common.Hash
	Code     []byte
}

// NewInfo builds an Info from raw RPC results, deriving CodeHash per the
// invariant above. Pass nil or empty code for an EOA.
func NewInfo(balance *uint256.Int, nonce uint64, code []byte) Info {
	if len(code) == 0 {
		return Info{Balance: balance, Nonce: nonce, CodeHash: EmptyCodeHash}
	}
	return Info{
		Balance:  balance,
		Nonce:    nonce,
		CodeHash: crypto.Keccak256Hash(code),
		Code:     code,
	}
}

// Clone returns a deep copy so two ForkDBs never alias the same Balance
// pointer or Code slice.
func (a Info) Clone() Info {
	out := a
	if a.Balance != nil {
		out.Balance = new(uint256.Int).Set(a.Balance)
	}
	if a.Code != nil {
		out.Code = append([]byte(nil), a.Code...)
	}
	return out
}
