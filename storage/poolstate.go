package storage

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// LastPayout is the checkpoint of the delegate's cumulative counters at the
// most recent run which saw new rewards.
type LastPayout struct {
	Date           int64 `json:"date"`
	Rewards        int64 `json:"rewards"`
	ProducedBlocks int64 `json:"producedBlocks"`
}

type HistoryEntry struct {
	Date     int64 `json:"date"`
	UserPaid int   `json:"userPaid"`
	Rewards  int64 `json:"rewards"`
}

// PoolState is carried across runs. Balances are in beddows, keyed by voter address.
type PoolState struct {
	LastPayout LastPayout       `json:"lastPayout"`
	Pending    map[string]int64 `json:"pending"`
	Paid       map[string]int64 `json:"paid"`
	History    []HistoryEntry   `json:"history"`
}

func NewPoolState() *PoolState {
	return &PoolState{
		Pending: make(map[string]int64),
		Paid:    make(map[string]int64),
		History: make([]HistoryEntry, 0),
	}
}

// Clone returns a deep copy of s
func (s *PoolState) Clone() *PoolState {

	c := &PoolState{
		LastPayout: s.LastPayout,
		Pending:    make(map[string]int64, len(s.Pending)),
		Paid:       make(map[string]int64, len(s.Paid)),
		History:    make([]HistoryEntry, len(s.History)),
	}

	for k, v := range s.Pending {
		c.Pending[k] = v
	}

	for k, v := range s.Paid {
		c.Paid[k] = v
	}

	copy(c.History, s.History)

	return c
}

// LoadPoolState reads the state file at path. A missing or undecodable file
// is returned as an error; callers decide whether to start fresh.
func LoadPoolState(path string) (*PoolState, error) {

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read pool state %s", path)
	}

	state := NewPoolState()
	if err := json.Unmarshal(data, state); err != nil {
		return nil, errors.Wrapf(err, "Unable to decode pool state %s", path)
	}

	// Explicit nulls in the file
	if state.Pending == nil {
		state.Pending = make(map[string]int64)
	}

	if state.Paid == nil {
		state.Paid = make(map[string]int64)
	}

	if state.History == nil {
		state.History = make([]HistoryEntry, 0)
	}

	return state, nil
}

// SavePoolState overwrites path with the pretty-printed state. The new content
// goes to a temp file in the same directory which is then renamed over path.
func SavePoolState(path string, state *PoolState) error {

	data, err := json.MarshalIndent(state, "", "    ")
	if err != nil {
		return errors.Wrap(err, "Unable to encode pool state")
	}

	return writeFileAtomic(path, data, 0644)
}

func writeFileAtomic(path string, data []byte, perm os.FileMode) error {

	tmp, err := ioutil.TempFile(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrap(err, "Unable to create temp file")
	}
	tmpName := tmp.Name()

	// Remove the temp file on any failure below; after a successful rename this is a noop
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "Unable to write temp file")
	}

	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.Wrap(err, "Unable to sync temp file")
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "Unable to close temp file")
	}

	if err := os.Chmod(tmpName, perm); err != nil {
		return errors.Wrap(err, "Unable to set permissions on temp file")
	}

	if err := os.Rename(tmpName, path); err != nil {
		return errors.Wrapf(err, "Unable to replace %s", path)
	}

	return nil
}
