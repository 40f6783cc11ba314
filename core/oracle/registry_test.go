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

package oracle_test

import (
	"context"
	"testing"

	bmocks "code.helixprotocol.io/helix/core/broker/mocks"
	"code.helixprotocol.io/helix/core/oracle"
	"code.helixprotocol.io/helix/core/roles"
	"code.helixprotocol.io/helix/logging"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const controller = "gov-party-1"

type tstRegistry struct {
	*oracle.Registry
	ctrl   *gomock.Controller
	broker *bmocks.MockInterface
	roles  *roles.Table
}

func getTestRegistry(t *testing.T) *tstRegistry {
	t.Helper()
	ctrl := gomock.NewController(t)
	brokerMock := bmocks.NewMockInterface(ctrl)
	roleTable := roles.NewTable(controller)
	reg := oracle.NewRegistry(logging.NewTestLogger(), oracle.NewDefaultConfig(), roleTable, brokerMock)
	return &tstRegistry{
		Registry: reg,
		ctrl:     ctrl,
		broker:   brokerMock,
		roles:    roleTable,
	}
}

func (r *tstRegistry) Finish() {
	r.ctrl.Finish()
}

func TestRegistration(t *testing.T) {
	t.Run("register requires the controller", testRegisterUnauthorized)
	t.Run("register rejects duplicate providers", testRegisterDuplicate)
	t.Run("register rejects out of range reliability", testRegisterBadReliability)
	t.Run("registered providers are authorised", testRegisterAuthorised)
}

func testRegisterUnauthorized(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()

	err := reg.Register(context.Background(), "random-party", "provider-1", "Provider One", 5000)
	require.ErrorIs(t, err, roles.ErrUnauthorized)
	assert.False(t, reg.IsAuthorized("provider-1"))
}

func testRegisterDuplicate(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()
	ctx := context.Background()

	reg.broker.EXPECT().Send(gomock.Any()).Times(1)
	require.NoError(t, reg.Register(ctx, controller, "provider-1", "Provider One", 5000))
	err := reg.Register(ctx, controller, "provider-1", "Provider One again", 1000)
	require.ErrorIs(t, err, oracle.ErrProviderAlreadyRegistered)

	// the original record is untouched
	p, err := reg.Provider("provider-1")
	require.NoError(t, err)
	assert.Equal(t, "Provider One", p.Name)
	assert.EqualValues(t, 5000, p.Reliability)
}

func testRegisterBadReliability(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()

	err := reg.Register(context.Background(), controller, "provider-1", "Provider One", 10001)
	require.ErrorIs(t, err, oracle.ErrInvalidReliability)
}

func testRegisterAuthorised(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()
	ctx := context.Background()

	reg.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, reg.Register(ctx, controller, "provider-1", "Provider One", 5000))
	require.NoError(t, reg.Register(ctx, controller, "provider-2", "Provider Two", 7000))

	assert.True(t, reg.IsAuthorized("provider-1"))
	assert.True(t, reg.IsAuthorized("provider-2"))
	assert.False(t, reg.IsAuthorized("provider-3"))

	// active providers come back in registration order
	active := reg.ActiveProviders()
	require.Len(t, active, 2)
	assert.Equal(t, "provider-1", active[0].ID)
	assert.Equal(t, "provider-2", active[1].ID)
	assert.Less(t, active[0].Sequence, active[1].Sequence)
}

func TestDeactivation(t *testing.T) {
	t.Run("deactivate excludes the provider", testDeactivate)
	t.Run("deactivate twice is idempotent", testDeactivateIdempotent)
	t.Run("reactivate re-admits the provider", testReactivate)
	t.Run("deactivate unknown provider fails", testDeactivateUnknown)
}

func testDeactivate(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()
	ctx := context.Background()

	reg.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, reg.Register(ctx, controller, "provider-1", "Provider One", 5000))
	require.NoError(t, reg.Deactivate(ctx, controller, "provider-1"))

	assert.False(t, reg.IsAuthorized("provider-1"))
	assert.Len(t, reg.ActiveProviders(), 0)

	// the record is kept for auditability
	p, err := reg.Provider("provider-1")
	require.NoError(t, err)
	assert.False(t, p.Active)
}

func testDeactivateIdempotent(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()
	ctx := context.Background()

	// one event for the registration, one for the first deactivation,
	// none for the second
	reg.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, reg.Register(ctx, controller, "provider-1", "Provider One", 5000))
	require.NoError(t, reg.Deactivate(ctx, controller, "provider-1"))
	require.NoError(t, reg.Deactivate(ctx, controller, "provider-1"))
	assert.False(t, reg.IsAuthorized("provider-1"))
}

func testReactivate(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()
	ctx := context.Background()

	reg.broker.EXPECT().Send(gomock.Any()).Times(3)
	require.NoError(t, reg.Register(ctx, controller, "provider-1", "Provider One", 5000))
	require.NoError(t, reg.Deactivate(ctx, controller, "provider-1"))
	require.NoError(t, reg.Reactivate(ctx, controller, "provider-1"))
	assert.True(t, reg.IsAuthorized("provider-1"))
}

func testDeactivateUnknown(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()

	err := reg.Deactivate(context.Background(), controller, "provider-1")
	require.ErrorIs(t, err, oracle.ErrUnknownProvider)
}

func TestReliabilityAndOwnership(t *testing.T) {
	t.Run("reliability updates apply to the record", testSetReliability)
	t.Run("reliability update on unknown provider fails", testSetReliabilityUnknown)
	t.Run("ownership transfer moves the controller role", testTransferOwnership)
}

func testSetReliability(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()
	ctx := context.Background()

	reg.broker.EXPECT().Send(gomock.Any()).Times(2)
	require.NoError(t, reg.Register(ctx, controller, "provider-1", "Provider One", 5000))
	require.NoError(t, reg.SetReliability(ctx, controller, "provider-1", 9000))

	p, err := reg.Provider("provider-1")
	require.NoError(t, err)
	assert.EqualValues(t, 9000, p.Reliability)

	err = reg.SetReliability(ctx, controller, "provider-1", 10001)
	require.ErrorIs(t, err, oracle.ErrInvalidReliability)
}

func testSetReliabilityUnknown(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()

	err := reg.SetReliability(context.Background(), controller, "nope", 100)
	require.ErrorIs(t, err, oracle.ErrUnknownProvider)
}

func testTransferOwnership(t *testing.T) {
	reg := getTestRegistry(t)
	defer reg.Finish()
	ctx := context.Background()

	require.NoError(t, reg.TransferOwnership(controller, "gov-party-2"))

	// the old controller lost its capability
	err := reg.Register(ctx, controller, "provider-1", "Provider One", 5000)
	require.ErrorIs(t, err, roles.ErrUnauthorized)

	reg.broker.EXPECT().Send(gomock.Any()).Times(1)
	require.NoError(t, reg.Register(ctx, "gov-party-2", "provider-1", "Provider One", 5000))
}
