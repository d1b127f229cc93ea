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

package statedb

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// MissingCodeError is returned by CodeByHash/CodeByHashRef when hash is not
// present in the ForkDB's local cache. Unlike Basic/Storage/BlockHash, a
// code lookup never reaches out to the backend — code arrives only as a
// side effect of a prior Basic fetch, per §4.3.
type MissingCodeError struct {
	Hash common.Hash
}

func (e *MissingCodeError) Error() string {
	return fmt.Sprintf("code for hash %s not present in local cache", e.Hash)
}
