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
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func TestSetStorageFailsWithoutInfo(t *testing.T) {
	c := account.NewCache()
	addr := common.HexToAddress("0x01")

	err := c.SetStorage(addr, *uint256.NewInt(1), *uint256.NewInt(2))
	require.Error(t, err)
	var missing *account.MissingError
	require.ErrorAs(t, err, &missing)
	require.Equal(t, addr, missing.Address)
}

func TestSetStorageSucceedsAfterInfo(t *testing.T) {
	c := account.NewCache()
	addr := common.HexToAddress("0x02")
	c.SetInfo(addr, account.NewInfo(uint256.NewInt(0), 0, nil))

	require.NoError(t, c.SetStorage(addr, *uint256.NewInt(1), *uint256.NewInt(2)))
	v, ok := c.Storage(addr, *uint256.NewInt(1))
	require.True(t, ok)
	require.EqualValues(t, 2, v.Uint64())
}

func TestSetStorageForceCreatesBucket(t *testing.T) {
	c := account.NewCache()
	addr := common.HexToAddress("0x03")

	c.SetStorageForce(addr, *uint256.NewInt(1), *uint256.NewInt(9))
	_, ok := c.Account(addr)
	require.True(t, ok)
	v, ok := c.Storage(addr, *uint256.NewInt(1))
	require.True(t, ok)
	require.EqualValues(t, 9, v.Uint64())
}

func TestCloneIsDeepCopy(t *testing.T) {
	c := account.NewCache()
	addr := common.HexToAddress("0x04")
	c.SetInfo(addr, account.NewInfo(uint256.NewInt(10), 0, nil))
	c.SetStorageForce(addr, *uint256.NewInt(1), *uint256.NewInt(5))

	clone := c.Clone()
	clone.SetInfo(addr, account.NewInfo(uint256.NewInt(999), 1, nil))
	require.NoError(t, clone.SetStorage(addr, *uint256.NewInt(1), *uint256.NewInt(777)))

	original, ok := c.Account(addr)
	require.True(t, ok)
	require.EqualValues(t, 10, original.Info.Balance.Uint64())
	v, _ := c.Storage(addr, *uint256.NewInt(1))
	require.EqualValues(t, 5, v.Uint64())
}

func TestCodeByHashEmptyMatchesAlways(t *testing.T) {
	c := account.NewCache()
	code, ok := c.CodeByHash(account.EmptyCodeHash)
	require.True(t, ok)
	require.Nil(t, code)
}

func TestCodeByHashFindsSeededContract(t *testing.T) {
	c := account.NewCache()
	addr := common.HexToAddress("0x05")
	code := []byte{0x60, 0x01}
	info := account.NewInfo(uint256.NewInt(0), 0, code)
	c.SetInfo(addr, info)

	found, ok := c.CodeByHash(info.CodeHash)
	require.True(t, ok)
	require.Equal(t, code, found)
}

func TestBlockHashRoundTrip(t *testing.T) {
	c := account.NewCache()
	hash := common.HexToHash("0xabc")
	c.SetBlockHash(100, hash)

	got, ok := c.BlockHash(100)
	require.True(t, ok)
	require.Equal(t, hash, got)

	_, ok = c.BlockHash(101)
	require.False(t, ok)
}
