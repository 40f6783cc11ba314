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

package assets

import (
	"errors"

	"code.helixprotocol.io/helix/core/roles"
	"code.helixprotocol.io/helix/core/types"
	"code.helixprotocol.io/helix/libs/config/encoding"
	"code.helixprotocol.io/helix/logging"
)

const namedLogger = "assets"

var (
	// ErrUnknownAsset is returned when the symbol has no registered parameters.
	ErrUnknownAsset = errors.New("unknown asset")
	// ErrAssetAlreadyRegistered is returned when registering a symbol twice.
	ErrAssetAlreadyRegistered = errors.New("asset already registered")
	// ErrInvalidAssetParams is returned when thresholds are inconsistent.
	ErrInvalidAssetParams = errors.New("invalid asset parameters")
)

// Config is the configuration of the assets service.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level: encoding.LogLevel{Level: logging.InfoLevel},
	}
}

// Service is the keyed record store for synthetic asset risk parameters.
// The settlement core reads it on every ratio computation, governance
// writes to it through the controller capability.
type Service struct {
	log *logging.Logger
	Config

	roles  *roles.Table
	params map[string]*types.AssetParams
}

// New instantiates the assets service.
func New(log *logging.Logger, config Config, roleTable *roles.Table) *Service {
	log = log.Named(namedLogger)
	log.SetLevel(config.Level.Get())

	return &Service{
		log:    log,
		Config: config,
		roles:  roleTable,
		params: map[string]*types.AssetParams{},
	}
}

// Register adds parameters for a new synthetic asset. Controller only.
func (s *Service) Register(caller string, params *types.AssetParams) error {
	if err := s.roles.Ensure(roles.RoleController, caller); err != nil {
		return err
	}
	if err := validate(params); err != nil {
		return err
	}
	if _, ok := s.params[params.Symbol]; ok {
		return ErrAssetAlreadyRegistered
	}
	s.params[params.Symbol] = params.DeepClone()
	s.log.Info("asset registered", logging.String("asset", params.Symbol))
	return nil
}

// Update replaces the parameters of a registered asset. Controller only.
func (s *Service) Update(caller string, params *types.AssetParams) error {
	if err := s.roles.Ensure(roles.RoleController, caller); err != nil {
		return err
	}
	if err := validate(params); err != nil {
		return err
	}
	if _, ok := s.params[params.Symbol]; !ok {
		return ErrUnknownAsset
	}
	s.params[params.Symbol] = params.DeepClone()
	return nil
}

// Params returns a copy of the parameters for a symbol.
func (s *Service) Params(symbol string) (*types.AssetParams, error) {
	p, ok := s.params[symbol]
	if !ok {
		return nil, ErrUnknownAsset
	}
	return p.DeepClone(), nil
}

func validate(params *types.AssetParams) error {
	if params == nil || params.Symbol == "" {
		return ErrInvalidAssetParams
	}
	// liquidation must fire before the position falls below the minimum
	// collateralisation a mint requires
	if params.LiquidationThreshold >= params.MinCollateralRatio {
		return ErrInvalidAssetParams
	}
	if params.MaxSupply == nil || params.MaxSupply.IsZero() {
		return ErrInvalidAssetParams
	}
	return nil
}
