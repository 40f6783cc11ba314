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

package events

import (
	"context"

	"code.helixprotocol.io/helix/core/types"
	"code.helixprotocol.io/helix/libs/num"
)

// PositionState is emitted when the liquidation state of a position
// changes.
type PositionState struct {
	*Base
	position *types.CollateralPosition
	state    types.PositionState
}

func NewPositionState(ctx context.Context, position *types.CollateralPosition, state types.PositionState) *PositionState {
	return &PositionState{
		Base:     newBase(ctx, PositionStateEvent),
		position: position.DeepClone(),
		state:    state,
	}
}

func (p PositionState) Position() *types.CollateralPosition {
	return p.position.DeepClone()
}

func (p PositionState) State() types.PositionState {
	return p.state
}

// Liquidation is emitted on every executed liquidation with the full
// repay/seize/penalty breakdown.
type Liquidation struct {
	*Base
	owner      string
	asset      string
	token      string
	liquidator string
	repaid     *num.Uint
	seized     *num.Uint
	insurance  *num.Uint
	reward     *num.Uint
	closed     bool
}

func NewLiquidation(ctx context.Context, owner, asset, token, liquidator string, repaid, seized, insurance, reward *num.Uint, closed bool) *Liquidation {
	return &Liquidation{
		Base:       newBase(ctx, LiquidationEvent),
		owner:      owner,
		asset:      asset,
		token:      token,
		liquidator: liquidator,
		repaid:     repaid.Clone(),
		seized:     seized.Clone(),
		insurance:  insurance.Clone(),
		reward:     reward.Clone(),
		closed:     closed,
	}
}

func (l Liquidation) Owner() string         { return l.owner }
func (l Liquidation) Asset() string         { return l.asset }
func (l Liquidation) Token() string         { return l.token }
func (l Liquidation) Liquidator() string    { return l.liquidator }
func (l Liquidation) Repaid() *num.Uint     { return l.repaid.Clone() }
func (l Liquidation) Seized() *num.Uint     { return l.seized.Clone() }
func (l Liquidation) Insurance() *num.Uint  { return l.insurance.Clone() }
func (l Liquidation) Reward() *num.Uint     { return l.reward.Clone() }
func (l Liquidation) PositionClosed() bool  { return l.closed }

// LedgerMovement groups the ledger entries produced by one atomic
// operation.
type LedgerMovement struct {
	*Base
	entries []*types.LedgerEntry
}

func NewLedgerMovement(ctx context.Context, entries []*types.LedgerEntry) *LedgerMovement {
	cpy := make([]*types.LedgerEntry, 0, len(entries))
	for _, e := range entries {
		cpy = append(cpy, e.DeepClone())
	}
	return &LedgerMovement{
		Base:    newBase(ctx, LedgerMovementEvent),
		entries: cpy,
	}
}

func (l LedgerMovement) Entries() []*types.LedgerEntry {
	out := make([]*types.LedgerEntry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e.DeepClone())
	}
	return out
}
