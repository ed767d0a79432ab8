// Package checkpoint persists the simulation state between runs, keyed by
// device name. The store is read once at startup and written once at
// shutdown; the core only ever sees the state value itself.
package checkpoint

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/voltlab/battsim/core/model"
)

// Store reads and writes JSON checkpoints under a directory.
type Store struct {
	dir string
}

// NewStore creates the directory if needed.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) path(device string) string {
	return filepath.Join(s.dir, device+".json")
}

// Load returns the persisted state for the device, or (nil, nil) when no
// checkpoint exists, meaning a fresh start.
func (s *Store) Load(device string) (*model.SimulationState, error) {
	data, err := os.ReadFile(s.path(device))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read checkpoint %s: %w", device, err)
	}
	var state model.SimulationState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode checkpoint %s: %w", device, err)
	}
	return &state, nil
}

// Save atomically replaces the checkpoint for the device. The write goes
// through a temp file and rename so an interrupted shutdown never leaves a
// corrupted checkpoint behind.
func (s *Store) Save(state model.SimulationState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encode checkpoint %s: %w", state.Device, err)
	}
	tmp, err := os.CreateTemp(s.dir, state.Device+".*.tmp")
	if err != nil {
		return fmt.Errorf("create checkpoint temp: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write checkpoint %s: %w", state.Device, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close checkpoint temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(state.Device)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace checkpoint %s: %w", state.Device, err)
	}
	return nil
}
