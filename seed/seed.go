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

// Package seed implements the account seeding protocol: injecting synthetic
// EOAs and contracts, funded in ETH and WETH, into a Factory's template
// cache before any Fork DB reads them.
package seed

import (
	"context"
	"fmt"

	"github.com/cionn3/forksim/account"
	"github.com/cionn3/forksim/forkfactory"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// WETH and USDC are the well-known mainnet addresses the seeding helpers
// below are pre-wired for.
var (
	WETH = common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2")
	USDC = common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48")
)

// wethBalanceSlotIndex is WETH's storage slot for the balanceOf mapping.
const wethBalanceSlotIndex = 3

// AccountType distinguishes a seeded externally-owned account from a
// seeded contract.
type AccountType interface {
	code() []byte
}

// EOA is a seeded account with no code.
type EOA struct{}

func (EOA) code() []byte { return nil }

// Contract is a seeded account whose code is Code.
type Contract struct {
	Code []byte
}

func (c Contract) code() []byte { return c.Code }

// DummyAccount describes a synthetic account to inject into a Factory:
// account_type, an ETH balance, and a WETH balance to fund via the
// well-known balanceOf storage slot.
type DummyAccount struct {
	AccountType AccountType
	Balance     uint256.Int
	WETHBalance uint256.Int
	Address     common.Address
}

// NewDummyAccount builds a DummyAccount with a freshly generated address,
// mirroring the original's PrivateKeySigner::random().
func NewDummyAccount(accountType AccountType, balance, wethBalance uint256.Int) (*DummyAccount, error) {
	key, err := crypto.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("seed: generate address: %w", err)
	}
	return &DummyAccount{
		AccountType: accountType,
		Balance:     balance,
		WETHBalance: wethBalance,
		Address:     crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

// ERC20BalanceSlot derives the storage slot holding holder's balance in an
// ERC-20 token whose balanceOf mapping lives at slotIndex, using the
// standard Solidity mapping layout: keccak256(pad32(holder) ++
// pad32(slotIndex)).
func ERC20BalanceSlot(holder common.Address, slotIndex uint64) uint256.Int {
	var key [64]byte
	copy(key[12:32], holder.Bytes())
	slotBytes := new(uint256.Int).SetUint64(slotIndex).Bytes32()
	copy(key[32:64], slotBytes[:])
	hash := crypto.Keccak256(key[:])
	var slot uint256.Int
	slot.SetBytes(hash)
	return slot
}

// WETHBalanceSlot is ERC20BalanceSlot pre-wired to WETH's balanceOf slot.
func WETHBalanceSlot(holder common.Address) uint256.Int {
	return ERC20BalanceSlot(holder, wethBalanceSlotIndex)
}

// InsertDummyAccount seeds the account's basic info, then funds its WETH
// balance by writing directly into WETH's balanceOf storage slot. Because a
// storage write needs the target account's basic info in the template, it
// first copies WETH's info into the template: the template's own entry if
// present, otherwise the one read through the Backend (an RPC failure there
// is returned).
func InsertDummyAccount(f *forkfactory.Factory, acct *DummyAccount) error {
	info := account.NewInfo(new(uint256.Int).Set(&acct.Balance), 0, acct.AccountType.code())
	f.InsertAccountInfo(acct.Address, info)

	weth, err := f.NewFork().BasicRef(context.Background(), WETH)
	if err != nil {
		return fmt.Errorf("seed: load WETH account: %w", err)
	}
	f.InsertAccountInfo(WETH, *weth)

	slot := WETHBalanceSlot(acct.Address)
	if err := f.InsertAccountStorage(WETH, slot, acct.WETHBalance); err != nil {
		return fmt.Errorf("seed: fund WETH balance for %s: %w", acct.Address, err)
	}
	return nil
}
