package library

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/tessro/crate/internal/core"
	crateerrors "github.com/tessro/crate/internal/errors"
)

// State is the session data kept between runs.
type State struct {
	// Current is the name of the selected playlist, empty if none.
	Current string              `toml:"current"`
	History []core.HistoryEntry `toml:"history"`
}

// StatePath returns the path of the state file.
func (l *Library) StatePath() string {
	return filepath.Join(l.dir, StateFile)
}

// LoadState restores the current selection and history into reg and
// history. A missing state file leaves both untouched. An unknown
// playlist name selects the first playlist.
func (l *Library) LoadState(reg *core.Registry, history *core.History) error {
	st, err := l.readState()
	if err != nil {
		return err
	}
	st.apply(reg, history)
	return nil
}

// SaveState writes the current selection and history.
func (l *Library) SaveState(reg *core.Registry, history *core.History) error {
	return l.writeState(capture(reg, history))
}

func (l *Library) readState() (*State, error) {
	var st State
	_, err := toml.DecodeFile(l.StatePath(), &st)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &State{}, nil
		}
		return nil, fmt.Errorf("%w: read state: %w", crateerrors.ErrPersistence, err)
	}
	return &st, nil
}

func (l *Library) writeState(st *State) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("%w: create library directory: %w", crateerrors.ErrPersistence, err)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(st); err != nil {
		return fmt.Errorf("%w: encode state: %w", crateerrors.ErrPersistence, err)
	}
	if err := os.WriteFile(l.StatePath(), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("%w: write state: %w", crateerrors.ErrPersistence, err)
	}
	return nil
}

func capture(reg *core.Registry, history *core.History) *State {
	st := &State{History: history.Entries()}
	if p, ok := reg.Current(); ok {
		st.Current = p.Name()
	}
	return st
}

func (st *State) apply(reg *core.Registry, history *core.History) {
	if st.Current != "" && reg.Len() > 0 {
		idx, _, err := reg.Lookup(st.Current)
		if err != nil {
			idx = 1
		}
		_ = reg.SwitchTo(idx)
	}
	if len(st.History) > 0 {
		history.Restore(st.History)
	}
}
