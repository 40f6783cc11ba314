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

package metrics

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	// Gauge ...
	Gauge instrument = iota
	// Counter ...
	Counter
)

var (
	// ErrInstrumentNotSupported signals the specified instrument is not yet supported.
	ErrInstrumentNotSupported = errors.New("instrument type unsupported")
	// ErrInstrumentTypeMismatch signal the type of the instrument is not expected.
	ErrInstrumentTypeMismatch = errors.New("instrument is not of the expected type")
)

var (
	engineTime             *prometheus.CounterVec
	priceSubmissionCounter *prometheus.CounterVec
	quorumFailureCounter   *prometheus.CounterVec
	liquidationCounter     *prometheus.CounterVec
	circuitBreakerGauge    *prometheus.GaugeVec
)

// abstract prometheus types.
type instrument int

// combine the prometheus options plus a way to differentiate between
// regular or vector instruments.
type instrumentOpts struct {
	opts    prometheus.Opts
	vectors []string
}

type mi struct {
	gaugeV   *prometheus.GaugeVec
	gauge    prometheus.Gauge
	counterV *prometheus.CounterVec
	counter  prometheus.Counter
}

// InstrumentOption - vararg for instrument options setting.
type InstrumentOption func(o *instrumentOpts)

// Vectors - configuration used to create a vector of a given interface, slice of label names.
func Vectors(labels ...string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.vectors = labels
	}
}

// Help - set the help field on instrument.
func Help(help string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Help = help
	}
}

// Namespace - set namespace.
func Namespace(ns string) InstrumentOption {
	return func(o *instrumentOpts) {
		o.opts.Namespace = ns
	}
}

// AddInstrument configures and registers a new metrics instrument.
func AddInstrument(t instrument, name string, opts ...InstrumentOption) (*mi, error) {
	var col prometheus.Collector
	ret := mi{}
	opt := instrumentOpts{
		opts: prometheus.Opts{
			Name: name,
		},
	}
	for _, o := range opts {
		o(&opt)
	}
	switch t {
	case Gauge:
		o := opt.gauge()
		if len(opt.vectors) == 0 {
			ret.gauge = prometheus.NewGauge(o)
			col = ret.gauge
		} else {
			ret.gaugeV = prometheus.NewGaugeVec(o, opt.vectors)
			col = ret.gaugeV
		}
	case Counter:
		o := opt.counter()
		if len(opt.vectors) == 0 {
			ret.counter = prometheus.NewCounter(o)
			col = ret.counter
		} else {
			ret.counterV = prometheus.NewCounterVec(o, opt.vectors)
			col = ret.counterV
		}
	default:
		return nil, ErrInstrumentNotSupported
	}
	if err := prometheus.Register(col); err != nil {
		return nil, err
	}
	return &ret, nil
}

// Start enables the metrics endpoint (given config).
func Start(conf Config) {
	if !conf.Enabled {
		return
	}
	if err := setupMetrics(); err != nil {
		panic("could not set up metrics")
	}
	http.Handle(conf.Path, promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(fmt.Sprintf(":%d", conf.Port), nil))
	}()
}

func (i instrumentOpts) gauge() prometheus.GaugeOpts {
	return prometheus.GaugeOpts(i.opts)
}

func (i instrumentOpts) counter() prometheus.CounterOpts {
	return prometheus.CounterOpts(i.opts)
}

// Gauge returns a prometheus Gauge instrument.
func (m mi) Gauge() (prometheus.Gauge, error) {
	if m.gauge == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gauge, nil
}

// GaugeVec returns a prometheus GaugeVec instrument.
func (m mi) GaugeVec() (*prometheus.GaugeVec, error) {
	if m.gaugeV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.gaugeV, nil
}

// Counter returns a prometheus Counter instrument.
func (m mi) Counter() (prometheus.Counter, error) {
	if m.counter == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counter, nil
}

// CounterVec returns a prometheus CounterVec instrument.
func (m mi) CounterVec() (*prometheus.CounterVec, error) {
	if m.counterV == nil {
		return nil, ErrInstrumentTypeMismatch
	}
	return m.counterV, nil
}

func setupMetrics() error {
	h, err := AddInstrument(
		Counter,
		"engine_seconds_total",
		Namespace("helix"),
		Vectors("engine", "fn"),
		Help("Total time spent in engine"),
	)
	if err != nil {
		return err
	}
	est, err := h.CounterVec()
	if err != nil {
		return err
	}
	engineTime = est

	h, err = AddInstrument(
		Counter,
		"price_submissions_total",
		Namespace("helix"),
		Vectors("asset"),
		Help("Number of accepted price submissions per asset"),
	)
	if err != nil {
		return err
	}
	psc, err := h.CounterVec()
	if err != nil {
		return err
	}
	priceSubmissionCounter = psc

	h, err = AddInstrument(
		Counter,
		"quorum_failures_total",
		Namespace("helix"),
		Vectors("asset"),
		Help("Number of aggregation rounds skipped for lack of provider quorum"),
	)
	if err != nil {
		return err
	}
	qfc, err := h.CounterVec()
	if err != nil {
		return err
	}
	quorumFailureCounter = qfc

	h, err = AddInstrument(
		Counter,
		"liquidations_total",
		Namespace("helix"),
		Vectors("asset"),
		Help("Number of executed liquidations per asset"),
	)
	if err != nil {
		return err
	}
	lc, err := h.CounterVec()
	if err != nil {
		return err
	}
	liquidationCounter = lc

	h, err = AddInstrument(
		Gauge,
		"circuit_breaker",
		Namespace("helix"),
		Vectors("asset"),
		Help("Circuit breaker state per asset, 1 when triggered"),
	)
	if err != nil {
		return err
	}
	cbg, err := h.GaugeVec()
	if err != nil {
		return err
	}
	circuitBreakerGauge = cbg

	return nil
}

// EngineTimeCounterAdd adds the time elapsed since start to the engine
// time counter, used with defer at the top of engine entry points.
func EngineTimeCounterAdd(start time.Time, engine, fn string) {
	if engineTime == nil {
		return
	}
	engineTime.WithLabelValues(engine, fn).Add(time.Since(start).Seconds())
}

// PriceSubmissionCounterInc increments the submission counter for an asset.
func PriceSubmissionCounterInc(asset string) {
	if priceSubmissionCounter == nil {
		return
	}
	priceSubmissionCounter.WithLabelValues(asset).Inc()
}

// QuorumFailureCounterInc increments the quorum failure counter for an asset.
func QuorumFailureCounterInc(asset string) {
	if quorumFailureCounter == nil {
		return
	}
	quorumFailureCounter.WithLabelValues(asset).Inc()
}

// LiquidationCounterInc increments the liquidation counter for an asset.
func LiquidationCounterInc(asset string) {
	if liquidationCounter == nil {
		return
	}
	liquidationCounter.WithLabelValues(asset).Inc()
}

// CircuitBreakerGaugeSet records the circuit breaker state for an asset.
func CircuitBreakerGaugeSet(asset string, triggered bool) {
	if circuitBreakerGauge == nil {
		return
	}
	v := 0.0
	if triggered {
		v = 1.0
	}
	circuitBreakerGauge.WithLabelValues(asset).Set(v)
}
