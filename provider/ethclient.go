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

package provider

import (
	"github.com/ethereum/go-ethereum/ethclient"
)

// EthClient adapts *ethclient.Client to Provider. ethclient.Client already
// implements every method Provider declares with matching signatures, so
// this wrapper exists only to keep the backend's import surface limited to
// the narrow Provider interface rather than the whole ethclient package.
type EthClient struct {
	*ethclient.Client
}

// NewEthClient wraps an already-dialled client. Dialling itself (e.g.
// ethclient.DialContext(ctx, "wss://eth.merkle.io")) is the caller's concern;
// this library treats the RPC transport as an external collaborator.
func NewEthClient(c *ethclient.Client) *EthClient {
	return &EthClient{Client: c}
}

var _ Provider = (*EthClient)(nil)
