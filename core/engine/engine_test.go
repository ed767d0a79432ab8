package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/voltlab/battsim/core/model"
	"github.com/voltlab/battsim/core/profile"
	"github.com/voltlab/battsim/core/sim"
	"github.com/voltlab/battsim/infra/logger"
)

// memorySink collects records for assertions.
type memorySink struct {
	records []model.StateRecord
	flushes int
}

func (m *memorySink) Write(rec model.StateRecord) error {
	m.records = append(m.records, rec)
	return nil
}

func (m *memorySink) Flush() error {
	m.flushes++
	return nil
}

func testCell() model.CellParams {
	return model.CellParams{
		CapacityAh: 0.5,
		SeriesOhm:  0.05,
		RCOhm:      0.02,
		RCFarad:    500,
		OCV: []model.CurvePoint{
			{X: 0, Y: 2.5},
			{X: 0.5, Y: 3.6},
			{X: 1, Y: 4.2},
		},
		ThermalMass: 42,
		SurfaceM2:   0.0042,
		HeatTransW:  50,
		NominalAmp:  1.625,
		ChargeAmp:   5,
	}
}

func testConfig() Config {
	return Config{
		DTSeconds:  60,
		SimTimeS:   4 * 3600,
		Device:     "test",
		InitialSoC: 0.9,
		Lvl1Steps:  1,
		Lvl2Steps:  12,
		Lvl3Steps:  24,
		DumpSteps:  100,
	}
}

func newTestEngine(t *testing.T, seed uint64, sinkDst RecordSink, resume *model.SimulationState) *Engine {
	t.Helper()
	cell := testCell()
	pack := model.PackConfig{Series: 4, Parallel: 2}
	sampler := sim.NewSampler(seed)

	ocv, err := sim.NewCurve(cell.OCV)
	require.NoError(t, err)
	ecm := sim.NewECM(cell, ocv, nil)
	thermal := sim.NewThermal(cell, 20)
	degrade := sim.NewDegradation(sim.LinearFade{CapPerCycle: 0.001, ResPerCycle: 0.001, TempRefC: 25})

	pulse, err := profile.NewPulse(profile.PulseConfig{
		LenMinSteps: 2,
		LenMaxSteps: 10,
		CMin:        -4,
		CMax:        1,
		CMean:       -2.5,
	}, sampler, pack.CapacityAh(cell.CapacityAh))
	require.NoError(t, err)

	governor, err := profile.NewGovernor(pulse, sampler,
		profile.Limits{DischargeMean: 0.2, ChargeMean: 0.95},
		cell.ChargeAmp*float64(pack.Parallel))
	require.NoError(t, err)

	eng, err := New(testConfig(), pack, cell, ecm, thermal, degrade, governor, sampler,
		sinkDst, logger.NopLogger{}, resume)
	require.NoError(t, err)
	return eng
}

func TestRunEmitsRecords(t *testing.T) {
	sink := &memorySink{}
	eng := newTestEngine(t, 42, sink, nil)
	require.NoError(t, eng.Run(context.Background()))

	require.NotEmpty(t, sink.records)
	require.Greater(t, sink.flushes, 0)

	steps := int64(testConfig().SimTimeS / testConfig().DTSeconds)
	tier1 := 0
	for _, r := range sink.records {
		if r.Tier == model.Tier1 {
			tier1++
		}
		require.GreaterOrEqual(t, r.SoC, 0.0)
		require.LessOrEqual(t, r.SoC, 1.0)
		require.GreaterOrEqual(t, r.TempC, 20.0)
		require.NotEmpty(t, r.RunID)
		require.Equal(t, "test", r.Device)
	}
	require.Equal(t, int(steps), tier1)
}

func TestRunDeterministicUnderFixedSeed(t *testing.T) {
	a := &memorySink{}
	require.NoError(t, newTestEngine(t, 7, a, nil).Run(context.Background()))
	b := &memorySink{}
	require.NoError(t, newTestEngine(t, 7, b, nil).Run(context.Background()))

	// Run IDs differ per run; everything else must match byte for byte.
	require.Equal(t, len(a.records), len(b.records))
	for i := range a.records {
		ra, rb := a.records[i], b.records[i]
		ra.RunID, rb.RunID = "", ""
		require.Equal(t, ra, rb, "record %d", i)
	}
}

func TestRunCyclesAndDegrades(t *testing.T) {
	sink := &memorySink{}
	eng := newTestEngine(t, 42, sink, nil)
	require.NoError(t, eng.Run(context.Background()))

	final := eng.State()
	require.Equal(t, model.ModeFinished, final.Mode)
	require.Greater(t, final.Cell.Cycles, 0.0, "no cycle boundary reached")
	require.Less(t, final.Cell.CapacityAh, testCell().CapacityAh)
	require.Greater(t, final.Cell.SeriesOhm, testCell().SeriesOhm)
	require.Greater(t, final.EnergyDisWs, 0.0)
	require.Greater(t, final.EnergyChgWs, 0.0)

	// Cycle count is monotonic over the emitted sequence.
	prev := 0.0
	for _, r := range sink.records {
		require.GreaterOrEqual(t, r.Cycles, prev)
		prev = r.Cycles
	}
}

func TestRunHonorsContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &memorySink{}
	eng := newTestEngine(t, 1, sink, nil)
	require.ErrorIs(t, eng.Run(ctx), context.Canceled)
}

func TestResumeRejectsMismatchedTopology(t *testing.T) {
	bad := &model.SimulationState{
		Device:    "test",
		Series:    8,
		Parallel:  2,
		NominalAh: testCell().CapacityAh,
	}
	cell := testCell()
	pack := model.PackConfig{Series: 4, Parallel: 2}
	sampler := sim.NewSampler(1)
	ocv, err := sim.NewCurve(cell.OCV)
	require.NoError(t, err)
	pulse, err := profile.NewPulse(profile.PulseConfig{LenMinSteps: 2, LenMaxSteps: 10, CMin: -4, CMax: 1, CMean: -2.5},
		sampler, pack.CapacityAh(cell.CapacityAh))
	require.NoError(t, err)
	governor, err := profile.NewGovernor(pulse, sampler,
		profile.Limits{DischargeMean: 0.2, ChargeMean: 0.95}, 10)
	require.NoError(t, err)

	_, err = New(testConfig(), pack, cell, sim.NewECM(cell, ocv, nil), sim.NewThermal(cell, 20),
		sim.NewDegradation(sim.LinearFade{}), governor, sampler, &memorySink{}, logger.NopLogger{}, bad)
	require.ErrorIs(t, err, sim.ErrCheckpoint)
}

func TestResumeContinuesFromState(t *testing.T) {
	sink := &memorySink{}
	eng := newTestEngine(t, 42, sink, nil)
	require.NoError(t, eng.Run(context.Background()))
	saved := eng.State()

	resumed := newTestEngine(t, 43, &memorySink{}, &saved)
	st := resumed.State()
	require.Equal(t, saved.TimeS, st.TimeS)
	require.Equal(t, saved.Cell.Cycles, st.Cell.Cycles)
	require.Equal(t, model.ModeDischarging, st.Mode, "finished checkpoint resumes in discharge")
}

func TestConfigValidate(t *testing.T) {
	cfg := testConfig()
	cfg.DTSeconds = 0
	require.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.InitialSoC = 1.5
	require.Error(t, cfg.Validate())

	cfg = testConfig()
	cfg.PauseMinS = 10
	cfg.PauseMaxS = 5
	require.Error(t, cfg.Validate())
}
