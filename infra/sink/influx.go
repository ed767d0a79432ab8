package sink

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/voltlab/battsim/core/model"
	"github.com/voltlab/battsim/infra/logger"
)

// InfluxConfig configures the InfluxDB record sink.
type InfluxConfig struct {
	URL    string `json:"url"`
	Token  string `json:"token"`
	Org    string `json:"org"`
	Bucket string `json:"bucket"`
}

// InfluxSink writes state records to an InfluxDB instance using the
// official client. Records are buffered and written in batches on Flush.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger

	start   time.Time
	pending []*write.Point
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint. Record
// timestamps are derived from the wall-clock start of the run plus the
// simulated elapsed time.
func NewInfluxSink(cfg InfluxConfig) *InfluxSink {
	base := strings.TrimSuffix(cfg.URL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.Token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.Org, cfg.Bucket),
		log:      logger.New("influx-sink"),
		start:    time.Now(),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing database never blocks a
// simulation run.
func NewInfluxSinkWithFallback(cfg InfluxConfig) RecordSink {
	sink := NewInfluxSink(cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return NopSink{}
	}
	return sink
}

// Write buffers the record as a point in the battery_state measurement.
func (s *InfluxSink) Write(rec model.StateRecord) error {
	p := write.NewPointWithMeasurement("battery_state").
		AddTag("device", rec.Device).
		AddTag("run_id", rec.RunID).
		AddTag("tier", strconv.Itoa(int(rec.Tier))).
		AddTag("mode", rec.Mode).
		AddField("pack_current_a", round3(rec.PackAmp)).
		AddField("pack_voltage_v", round3(rec.PackVolt)).
		AddField("soc", rec.SoC).
		AddField("capacity_ah", rec.CapacityAh).
		AddField("temp_c", round3(rec.TempC)).
		AddField("cycles", rec.Cycles).
		AddField("energy_charging_ws", rec.EnergyChgWs).
		AddField("energy_discharging_ws", rec.EnergyDisWs).
		SetTime(s.start.Add(time.Duration(rec.TimeS * float64(time.Second))))
	s.pending = append(s.pending, p)
	return nil
}

// Flush writes buffered points in one batch.
func (s *InfluxSink) Flush() error {
	if len(s.pending) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.writeAPI.WritePoint(ctx, s.pending...); err != nil {
		return err
	}
	s.pending = s.pending[:0]
	return nil
}

// Close flushes remaining points and releases the client.
func (s *InfluxSink) Close() error {
	err := s.Flush()
	s.client.Close()
	return err
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
