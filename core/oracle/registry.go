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

package oracle

import (
	"context"
	"errors"
	"time"

	"code.helixprotocol.io/helix/core/broker"
	"code.helixprotocol.io/helix/core/events"
	"code.helixprotocol.io/helix/core/roles"
	"code.helixprotocol.io/helix/core/types"
	"code.helixprotocol.io/helix/logging"
)

var (
	// ErrProviderAlreadyRegistered is returned when registering a provider ID twice.
	ErrProviderAlreadyRegistered = errors.New("oracle provider already registered")
	// ErrUnknownProvider is returned when the provider ID is not in the registry.
	ErrUnknownProvider = errors.New("unknown oracle provider")
	// ErrInvalidReliability is returned when a reliability weight exceeds 10000 basis points.
	ErrInvalidReliability = errors.New("reliability weight out of range")
)

// Registry tracks which data providers may submit prices and their
// reliability weight. Providers are never deleted, deactivation keeps
// the record (and its submission history) auditable.
type Registry struct {
	log *logging.Logger
	Config

	roles  *roles.Table
	broker broker.Interface

	// provider ID -> record, plus the registration-ordered view the
	// aggregation tie-break depends on
	providers map[string]*types.OracleProvider
	ordered   []*types.OracleProvider

	nextSeq uint64
	now     time.Time
}

// NewRegistry instantiates the oracle registry.
func NewRegistry(log *logging.Logger, config Config, roleTable *roles.Table, broker broker.Interface) *Registry {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Registry{
		log:       log,
		Config:    config,
		roles:     roleTable,
		broker:    broker,
		providers: map[string]*types.OracleProvider{},
		ordered:   []*types.OracleProvider{},
	}
}

// OnTick notifies the registry of the current transaction-log time.
func (r *Registry) OnTick(_ context.Context, t time.Time) {
	r.now = t
}

// Register adds a new provider to the registry. Controller only.
func (r *Registry) Register(ctx context.Context, caller, id, name string, reliability uint64) error {
	if err := r.roles.Ensure(roles.RoleController, caller); err != nil {
		return err
	}
	if reliability > types.BasisPoints {
		return ErrInvalidReliability
	}
	if _, ok := r.providers[id]; ok {
		return ErrProviderAlreadyRegistered
	}

	p := &types.OracleProvider{
		ID:          id,
		Name:        name,
		Reliability: reliability,
		Active:      true,
		Sequence:    r.nextSeq,
	}
	r.nextSeq++
	r.providers[id] = p
	r.ordered = append(r.ordered, p)

	r.log.Info("oracle provider registered",
		logging.String("provider", id),
		logging.Uint64("reliability", reliability))
	r.broker.Send(events.NewProvider(ctx, p))
	return nil
}

// Deactivate excludes a provider from future aggregation rounds until
// reactivated. Deactivating an already inactive provider is a no-op.
func (r *Registry) Deactivate(ctx context.Context, caller, id string) error {
	if err := r.roles.Ensure(roles.RoleController, caller); err != nil {
		return err
	}
	p, ok := r.providers[id]
	if !ok {
		return ErrUnknownProvider
	}
	if !p.Active {
		return nil
	}
	p.Active = false
	r.broker.Send(events.NewProvider(ctx, p))
	return nil
}

// Reactivate re-admits a previously deactivated provider. Reactivating
// an active provider is a no-op.
func (r *Registry) Reactivate(ctx context.Context, caller, id string) error {
	if err := r.roles.Ensure(roles.RoleController, caller); err != nil {
		return err
	}
	p, ok := r.providers[id]
	if !ok {
		return ErrUnknownProvider
	}
	if p.Active {
		return nil
	}
	p.Active = true
	r.broker.Send(events.NewProvider(ctx, p))
	return nil
}

// SetReliability updates the weight of a provider. The change applies
// to subsequent aggregation rounds only, never retroactively.
func (r *Registry) SetReliability(ctx context.Context, caller, id string, reliability uint64) error {
	if err := r.roles.Ensure(roles.RoleController, caller); err != nil {
		return err
	}
	if reliability > types.BasisPoints {
		return ErrInvalidReliability
	}
	p, ok := r.providers[id]
	if !ok {
		return ErrUnknownProvider
	}
	p.Reliability = reliability
	r.broker.Send(events.NewProvider(ctx, p))
	return nil
}

// TransferOwnership hands the controller role to a new identity.
func (r *Registry) TransferOwnership(caller, newController string) error {
	return r.roles.TransferController(caller, newController)
}

// IsAuthorized returns whether the provider may currently submit prices.
func (r *Registry) IsAuthorized(id string) bool {
	p, ok := r.providers[id]
	return ok && p.Active
}

// Provider returns a copy of a provider record.
func (r *Registry) Provider(id string) (*types.OracleProvider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return p.DeepClone(), nil
}

// ActiveProviders returns the active providers in registration order.
func (r *Registry) ActiveProviders() []*types.OracleProvider {
	out := make([]*types.OracleProvider, 0, len(r.ordered))
	for _, p := range r.ordered {
		if p.Active {
			out = append(out, p.DeepClone())
		}
	}
	return out
}

// MarkSubmission records the time of the last accepted submission for a
// provider, called by the price aggregation engine.
func (r *Registry) MarkSubmission(id string, t time.Time) {
	if p, ok := r.providers[id]; ok {
		p.LastSubmission = t
	}
}
