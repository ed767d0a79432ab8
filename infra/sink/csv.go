package sink

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/voltlab/battsim/core/model"
)

// CSVSink appends records to a CSV file, one row per record. Rows are
// buffered in the csv writer and pushed to disk on Flush, which the engine
// calls at the configured dump interval.
type CSVSink struct {
	file   *os.File
	writer *csv.Writer
}

var csvHeader = []string{
	"run_id", "device", "tier", "step", "time_s",
	"pack_current_a", "pack_voltage_v", "soc", "capacity_ah",
	"temp_c", "cycles", "mode", "energy_charging_ws", "energy_discharging_ws",
}

// NewCSVSink opens (or creates) the file and writes the header when the
// file is empty.
func NewCSVSink(path string) (*CSVSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open csv sink: %w", err)
	}
	s := &CSVSink{file: f, writer: csv.NewWriter(f)}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat csv sink: %w", err)
	}
	if info.Size() == 0 {
		if err := s.writer.Write(csvHeader); err != nil {
			f.Close()
			return nil, fmt.Errorf("write csv header: %w", err)
		}
	}
	return s, nil
}

// Write implements RecordSink.
func (s *CSVSink) Write(rec model.StateRecord) error {
	row := []string{
		rec.RunID,
		rec.Device,
		strconv.Itoa(int(rec.Tier)),
		strconv.FormatInt(rec.Step, 10),
		formatFloat(rec.TimeS),
		formatFloat(rec.PackAmp),
		formatFloat(rec.PackVolt),
		formatFloat(rec.SoC),
		formatFloat(rec.CapacityAh),
		formatFloat(rec.TempC),
		formatFloat(rec.Cycles),
		rec.Mode,
		formatFloat(rec.EnergyChgWs),
		formatFloat(rec.EnergyDisWs),
	}
	return s.writer.Write(row)
}

// Flush pushes buffered rows to the file.
func (s *CSVSink) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes and closes the file.
func (s *CSVSink) Close() error {
	if err := s.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
