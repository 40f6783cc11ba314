// Copyright (C) 2024 Helix Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package types

import (
	"fmt"
	"time"

	"code.helixprotocol.io/helix/libs/num"
)

// CollateralToken describes a token accepted as collateral and the
// haircut applied to its value when computing ratios.
type CollateralToken struct {
	ID     string
	Symbol string
	Factor uint64 // collateral factor, basis points <= 10000
	Active bool
}

func (t CollateralToken) DeepClone() *CollateralToken {
	return &t
}

// CollateralPosition is the record backing synthetic debt minted by one
// owner against one collateral token. One position exists per
// (owner, asset, token) triple.
type CollateralPosition struct {
	Owner      string
	Asset      string // synthetic asset symbol
	Token      string // collateral token ID
	Collateral *num.Uint
	Minted     *num.Uint
	UpdatedAt  time.Time
}

func (p CollateralPosition) DeepClone() *CollateralPosition {
	cpy := p
	cpy.Collateral = p.Collateral.Clone()
	cpy.Minted = p.Minted.Clone()
	return &cpy
}

// PositionKey returns the stable key a position is stored under.
func PositionKey(owner, asset, token string) string {
	return owner + "|" + asset + "|" + token
}

// PositionState is the liquidation state machine state of a position.
type PositionState int

const (
	PositionStateHealthy PositionState = iota
	PositionStateAtRisk
	PositionStateLiquidating
	PositionStateClosed
)

func (s PositionState) String() string {
	switch s {
	case PositionStateHealthy:
		return "healthy"
	case PositionStateAtRisk:
		return "at-risk"
	case PositionStateLiquidating:
		return "liquidating"
	case PositionStateClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// TransferType tags ledger entries with the operation that produced them.
type TransferType int

const (
	TransferTypeDeposit TransferType = iota
	TransferTypeWithdraw
	TransferTypeMint
	TransferTypeBurn
	TransferTypeLiquidationRepay
	TransferTypeLiquidationSeize
	TransferTypeInsurancePenalty
	TransferTypeLiquidatorReward
	TransferTypeInsuranceWithdrawal
)

func (t TransferType) String() string {
	switch t {
	case TransferTypeDeposit:
		return "deposit"
	case TransferTypeWithdraw:
		return "withdraw"
	case TransferTypeMint:
		return "mint"
	case TransferTypeBurn:
		return "burn"
	case TransferTypeLiquidationRepay:
		return "liquidation-repay"
	case TransferTypeLiquidationSeize:
		return "liquidation-seize"
	case TransferTypeInsurancePenalty:
		return "insurance-penalty"
	case TransferTypeLiquidatorReward:
		return "liquidator-reward"
	case TransferTypeInsuranceWithdrawal:
		return "insurance-withdrawal"
	default:
		return fmt.Sprintf("unknown(%d)", int(t))
	}
}

// LedgerEntry records a single balance movement between two logical
// accounts, emitted for every successful mutation so downstream
// consumers can audit the full flow of funds.
type LedgerEntry struct {
	FromAccount string
	ToAccount   string
	Token       string
	Amount      *num.Uint
	Type        TransferType
	Timestamp   int64
}

func (l LedgerEntry) DeepClone() *LedgerEntry {
	cpy := l
	cpy.Amount = l.Amount.Clone()
	return &cpy
}

// Logical account names used in ledger entries. Owner accounts are
// derived from the owner ID, these cover the protocol-side accounts.
const (
	AccountExternal  = "external"
	AccountInsurance = "insurance"
	AccountSynthetic = "synthetic-supply"
)

// OwnerAccount derives the logical general account name for an owner
// and collateral token.
func OwnerAccount(owner, token string) string {
	return owner + "|" + token + "|general"
}
