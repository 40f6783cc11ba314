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

package roles

import "errors"

// ErrUnauthorized is returned by any privileged operation when the
// caller does not hold the required role.
var ErrUnauthorized = errors.New("caller is not authorised to perform this action")

// Role names a capability checked by the engines. Every privileged entry
// point takes an explicit caller identity and checks it against the
// table, there is no global mutable owner.
type Role string

const (
	// RoleController is the governance identity allowed to administer
	// the oracle registry, asset parameters, circuit breakers and the
	// insurance fund.
	RoleController Role = "controller"
)

// Table is the role table shared by all engines. It is mutated only
// through the operations below, all of which are themselves gated on
// the controller role.
type Table struct {
	roles map[Role]map[string]struct{}
}

// NewTable builds a role table with the given initial controller.
func NewTable(controller string) *Table {
	return &Table{
		roles: map[Role]map[string]struct{}{
			RoleController: {controller: {}},
		},
	}
}

// Has returns whether the party holds the role.
func (t *Table) Has(role Role, party string) bool {
	parties, ok := t.roles[role]
	if !ok {
		return false
	}
	_, ok = parties[party]
	return ok
}

// Ensure returns ErrUnauthorized unless the party holds the role.
func (t *Table) Ensure(role Role, party string) error {
	if !t.Has(role, party) {
		return ErrUnauthorized
	}
	return nil
}

// Grant gives a role to a party. Only a controller may grant roles.
func (t *Table) Grant(caller string, role Role, party string) error {
	if err := t.Ensure(RoleController, caller); err != nil {
		return err
	}
	parties, ok := t.roles[role]
	if !ok {
		parties = map[string]struct{}{}
		t.roles[role] = parties
	}
	parties[party] = struct{}{}
	return nil
}

// Revoke removes a role from a party. Only a controller may revoke
// roles. Revoking a role the party does not hold is a no-op.
func (t *Table) Revoke(caller string, role Role, party string) error {
	if err := t.Ensure(RoleController, caller); err != nil {
		return err
	}
	if parties, ok := t.roles[role]; ok {
		delete(parties, party)
	}
	return nil
}

// TransferController hands the controller role over to a new identity
// and drops it from the caller, the single-owner ownership-transfer
// semantics expressed on the role table.
func (t *Table) TransferController(caller, newController string) error {
	if err := t.Ensure(RoleController, caller); err != nil {
		return err
	}
	t.roles[RoleController][newController] = struct{}{}
	if caller != newController {
		delete(t.roles[RoleController], caller)
	}
	return nil
}
