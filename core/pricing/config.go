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

package pricing

import (
	"time"

	"code.helixprotocol.io/helix/libs/config/encoding"
	"code.helixprotocol.io/helix/logging"
)

const (
	// namedLogger is the identifier for package and should ideally match the package name
	// this is simply emitted as a hierarchical label e.g. 'core.pricing'.
	namedLogger = "pricing"

	defaultHeartbeat       = 5 * time.Minute
	defaultBreakerCooldown = 10 * time.Minute
)

// Config is the configuration of the price aggregation engine.
type Config struct {
	Level encoding.LogLevel `long:"log-level"`

	// Heartbeat is the freshness window, submissions older than this do
	// not participate in aggregation.
	Heartbeat encoding.Duration `long:"heartbeat"`
	// MinProviders is the quorum of independent active providers with
	// fresh data required to produce an aggregated price.
	MinProviders int `long:"min-providers"`
	// DeviationThreshold is the relative change between two consecutive
	// aggregated prices that trips the circuit breaker, in basis points.
	DeviationThreshold uint64 `long:"deviation-threshold"`
	// BreakerCooldown is the minimum time the circuit breaker stays
	// triggered before confirming submissions can clear it.
	BreakerCooldown encoding.Duration `long:"breaker-cooldown"`
	// RequiredConfirmations is the number of consecutive in-threshold
	// aggregations needed, after the cooldown, to clear the breaker.
	RequiredConfirmations int `long:"required-confirmations"`
	// HistoryDepth is the per-asset price history ring capacity.
	HistoryDepth int `long:"history-depth"`
}

// NewDefaultConfig creates an instance of the package specific configuration.
func NewDefaultConfig() Config {
	return Config{
		Level:                 encoding.LogLevel{Level: logging.InfoLevel},
		Heartbeat:             encoding.Duration{Duration: defaultHeartbeat},
		MinProviders:          3,
		DeviationThreshold:    500, // 5%
		BreakerCooldown:       encoding.Duration{Duration: defaultBreakerCooldown},
		RequiredConfirmations: 3,
		HistoryDepth:          1024,
	}
}
