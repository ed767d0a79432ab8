package sink

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/voltlab/battsim/core/model"
	"github.com/voltlab/battsim/infra/logger"
)

// PromSink exposes the latest battery state as Prometheus gauges.
type PromSink struct {
	voltage  *prometheus.GaugeVec
	current  *prometheus.GaugeVec
	soc      *prometheus.GaugeVec
	temp     *prometheus.GaugeVec
	capacity *prometheus.GaugeVec
	cycles   *prometheus.GaugeVec
}

// NewPromSink registers the battery gauges on the provided registerer. If
// reg is nil, the default registerer is used. Already registered
// collectors are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		voltage:  newGauge("battsim_pack_voltage_volts", "Pack terminal voltage"),
		current:  newGauge("battsim_pack_current_amperes", "Commanded pack current"),
		soc:      newGauge("battsim_soc_ratio", "Pack state of charge"),
		temp:     newGauge("battsim_temperature_celsius", "Lumped node temperature"),
		capacity: newGauge("battsim_capacity_amperehours", "Cell capacity after fade"),
		cycles:   newGauge("battsim_cycles_total", "Cumulative equivalent cycles"),
	}
	for _, g := range []*prometheus.GaugeVec{s.voltage, s.current, s.soc, s.temp, s.capacity, s.cycles} {
		if err := register(reg, g); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func newGauge(name, help string) *prometheus.GaugeVec {
	return prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: name, Help: help}, []string{"device"})
}

func register(reg prometheus.Registerer, g *prometheus.GaugeVec) error {
	if err := reg.Register(g); err != nil {
		if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
			return nil
		}
		return err
	}
	return nil
}

// Write implements RecordSink by updating the gauges.
func (s *PromSink) Write(rec model.StateRecord) error {
	s.voltage.WithLabelValues(rec.Device).Set(rec.PackVolt)
	s.current.WithLabelValues(rec.Device).Set(rec.PackAmp)
	s.soc.WithLabelValues(rec.Device).Set(rec.SoC)
	s.temp.WithLabelValues(rec.Device).Set(rec.TempC)
	s.capacity.WithLabelValues(rec.Device).Set(rec.CapacityAh)
	s.cycles.WithLabelValues(rec.Device).Set(rec.Cycles)
	return nil
}

// Flush is a no-op; gauges are scraped, not pushed.
func (s *PromSink) Flush() error { return nil }

// StartPromServer exposes /metrics on the given address until the context
// is cancelled. A dedicated ServeMux avoids interfering with other
// handlers.
func StartPromServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.New("prom-server").Errorf("shutdown: %v", err)
		}
		cancel()
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
