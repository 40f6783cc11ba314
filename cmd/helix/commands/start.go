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

package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"code.helixprotocol.io/helix/config"
	"code.helixprotocol.io/helix/core/assets"
	"code.helixprotocol.io/helix/core/broker"
	"code.helixprotocol.io/helix/core/collateral"
	"code.helixprotocol.io/helix/core/liquidation"
	"code.helixprotocol.io/helix/core/oracle"
	"code.helixprotocol.io/helix/core/pricing"
	"code.helixprotocol.io/helix/core/roles"
	"code.helixprotocol.io/helix/logging"
	"code.helixprotocol.io/helix/metrics"

	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the settlement core",
	RunE:  runStart,
}

// ticker interval driving engine time between transactions.
const tickInterval = time.Second

type timeAware interface {
	OnTick(ctx context.Context, t time.Time)
}

func runStart(_ *cobra.Command, _ []string) error {
	cfg, err := config.Read(homeFlag)
	if err != nil {
		return err
	}

	log := logging.NewLogger(cfg.Logging)
	defer log.AtExit()
	log.Info("starting helix settlement core", logging.String("home", homeFlag))

	roleTable := roles.NewTable(cfg.Controller)
	evtBroker := broker.New(log)

	registry := oracle.NewRegistry(log, cfg.Oracle, roleTable, evtBroker)
	priceEngine := pricing.NewEngine(log, cfg.Pricing, registry, roleTable, evtBroker)
	assetService := assets.New(log, cfg.Assets, roleTable)
	colEngine := collateral.New(log, cfg.Collateral, assetService, priceEngine, roleTable, evtBroker)
	liqEngine := liquidation.New(log, cfg.Liquidation, colEngine, assetService, priceEngine, evtBroker)

	metrics.Start(cfg.Metrics)

	engines := []timeAware{registry, priceEngine, colEngine, liqEngine}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case t := <-ticker.C:
			for _, e := range engines {
				e.OnTick(ctx, t)
			}
		case s := <-sig:
			log.Info("shutting down", logging.String("signal", s.String()))
			return nil
		}
	}
}
