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

package account_test

import (
	"testing"

	"github.com/cionn3/forksim/account"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestNewInfoEmptyCodeUsesEmptyCodeHash(t *testing.T) {
	info := account.NewInfo(uint256.NewInt(1), 0, nil)
	require.Equal(t, account.EmptyCodeHash, info.CodeHash)
}

func TestNewInfoCodeHashMatchesKeccak(t *testing.T) {
	code := []byte{0x60, 0x00}
	info := account.NewInfo(uint256.NewInt(0), 0, code)
	require.Equal(t, crypto.Keccak256Hash(code), info.CodeHash)
}

func TestCloneDoesNotAliasBalanceOrCode(t *testing.T) {
	balance := uint256.NewInt(5)
	code := []byte{0x01, 0x02}
	info := account.NewInfo(balance, 0, code)

	clone := info.Clone()
	clone.Balance.AddUint64(clone.Balance, 1)
	clone.Code[0] = 0xff

	require.EqualValues(t, 5, balance.Uint64())
	require.Equal(t, byte(0x01), code[0])
}
