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

package statedb_test

import (
	"context"
	"math/big"
	"testing"

	"github.com/cionn3/forksim/account"
	fbackend "github.com/cionn3/forksim/backend"
	"github.com/cionn3/forksim/statedb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

type noopProvider struct{}

func (noopProvider) BalanceAt(context.Context, common.Address, *big.Int) (*big.Int, error) {
	return big.NewInt(0), nil
}
func (noopProvider) NonceAt(context.Context, common.Address, *big.Int) (uint64, error) {
	return 0, nil
}
func (noopProvider) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return nil, nil
}
func (noopProvider) StorageAt(context.Context, common.Address, common.Hash, *big.Int) ([]byte, error) {
	return nil, nil
}
func (noopProvider) BlockByNumber(context.Context, *big.Int) (*types.Block, error) {
	return types.NewBlockWithHeader(&types.Header{}), nil
}

func newClient(t *testing.T) *fbackend.Client {
	t.Helper()
	b := fbackend.New(context.Background(), noopProvider{}, big.NewInt(1), account.NewCache(), 16)
	t.Cleanup(b.Close)
	return b.Client()
}

// P3/R2/scenario 6: committing a change on one fork does not perturb a
// sibling fork cloned from the same starting cache.
func TestCommitIsolatedAcrossForks(t *testing.T) {
	client := newClient(t)

	base := account.NewCache()
	addr := common.HexToAddress("0x1111111111111111111111111111111111111111")
	base.SetInfo(addr, account.NewInfo(uint256.NewInt(100), 0, nil))

	forkA := statedb.New(client, base.Clone())
	forkB := forkA.Clone()

	forkA.Commit(map[common.Address]statedb.AccountUpdate{
		addr: {Info: account.NewInfo(uint256.NewInt(999), 1, nil)},
	})

	infoA, err := forkA.Basic(context.Background(), addr)
	require.NoError(t, err)
	require.EqualValues(t, 999, infoA.Balance.Uint64())

	infoB, err := forkB.Basic(context.Background(), addr)
	require.NoError(t, err)
	require.EqualValues(t, 100, infoB.Balance.Uint64())
}

// A self-destructed account's stale storage must never resurface: Commit
// clears the bucket and resets Info rather than merging.
func TestCommitSelfDestructClearsStorage(t *testing.T) {
	client := newClient(t)
	addr := common.HexToAddress("0x4444444444444444444444444444444444444444")

	base := account.NewCache()
	base.SetInfo(addr, account.NewInfo(uint256.NewInt(500), 2, nil))
	require.NoError(t, base.SetStorage(addr, *uint256.NewInt(1), *uint256.NewInt(42)))

	db := statedb.New(client, base)
	db.Commit(map[common.Address]statedb.AccountUpdate{
		addr: {SelfDestructed: true},
	})

	info, err := db.Basic(context.Background(), addr)
	require.NoError(t, err)
	require.True(t, info.Balance.IsZero())
	require.Equal(t, uint64(0), info.Nonce)

	v, err := db.Storage(context.Background(), addr, *uint256.NewInt(1))
	require.NoError(t, err)
	require.True(t, v.IsZero(), "self-destructed account's prior storage must not resurface")
}

func TestStorageFetchesBasicFirstThenCachesSlot(t *testing.T) {
	client := newClient(t)
	local := account.NewCache()
	db := statedb.New(client, local)

	addr := common.HexToAddress("0x2222222222222222222222222222222222222222")
	slot := *uint256.NewInt(7)

	v, err := db.Storage(context.Background(), addr, slot)
	require.NoError(t, err)
	require.True(t, v.IsZero())

	// Storage's miss path fetched Basic first, so both the account and the
	// slot are now in the ForkDB's local cache.
	info, err := db.Basic(context.Background(), addr)
	require.NoError(t, err)
	require.NotNil(t, info)
	_, ok := local.Account(addr)
	require.True(t, ok)
	cached, ok := local.Storage(addr, slot)
	require.True(t, ok)
	require.True(t, cached.IsZero())
}

func TestCodeByHashMissing(t *testing.T) {
	client := newClient(t)
	db := statedb.New(client, nil)

	_, err := db.CodeByHash(common.HexToHash("0xdeadbeef"))
	require.Error(t, err)
	var missing *statedb.MissingCodeError
	require.ErrorAs(t, err, &missing)
}

func TestCodeByHashEmptyAlwaysResolves(t *testing.T) {
	client := newClient(t)
	db := statedb.New(client, nil)

	code, err := db.CodeByHash(account.EmptyCodeHash)
	require.NoError(t, err)
	require.Nil(t, code)
}

// BasicRef still benefits from an address already present in the local
// cache (e.g. seeded, or written by a prior mutating Basic call).
func TestBasicRefServesLocalCacheHit(t *testing.T) {
	client := newClient(t)
	base := account.NewCache()
	addr := common.HexToAddress("0x3333333333333333333333333333333333333333")
	base.SetInfo(addr, account.NewInfo(uint256.NewInt(55), 3, nil))

	db := statedb.New(client, base)
	info, err := db.BasicRef(context.Background(), addr)
	require.NoError(t, err)
	require.EqualValues(t, 55, info.Balance.Uint64())
	require.Equal(t, uint64(3), info.Nonce)
}
