package storage

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolStateRoundTrip(t *testing.T) {

	p := filepath.Join(t.TempDir(), "poolstate.json")

	state := NewPoolState()
	state.LastPayout = LastPayout{Date: 1620000000, Rewards: 5000000000, ProducedBlocks: 12}
	state.Pending["lskA"] = 100
	state.Paid["lskB"] = 200
	state.History = append(state.History, HistoryEntry{Date: 1620000000, UserPaid: 1, Rewards: 300})

	require.NoError(t, SavePoolState(p, state))

	loaded, err := LoadPoolState(p)
	require.NoError(t, err)
	assert.Equal(t, state, loaded)

	// Pretty printed with 4 spaces, no temp files left behind
	data, err := ioutil.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"lastPayout\": {")

	entries, err := ioutil.ReadDir(filepath.Dir(p))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLoadPoolStateErrors(t *testing.T) {

	dir := t.TempDir()

	_, err := LoadPoolState(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	corrupt := filepath.Join(dir, "corrupt.json")
	require.NoError(t, ioutil.WriteFile(corrupt, []byte("{nope"), 0644))
	_, err = LoadPoolState(corrupt)
	assert.Error(t, err)
}

func TestLoadPoolStateNulls(t *testing.T) {

	p := filepath.Join(t.TempDir(), "poolstate.json")
	require.NoError(t, ioutil.WriteFile(p, []byte(`{"lastPayout":{"date":0,"rewards":0,"producedBlocks":0},"pending":null,"paid":null,"history":null}`), 0644))

	state, err := LoadPoolState(p)
	require.NoError(t, err)

	// Maps must be writable
	state.Pending["lskA"] += 1
	state.Paid["lskA"] += 1
	assert.NotNil(t, state.History)
}

func openTestStorage(t *testing.T) *Storage {

	s, err := InitStorage(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s
}

func TestPayoutRuns(t *testing.T) {

	s := openTestStorage(t)

	run1 := &PayoutRun{Date: 1, Delegate: "bacon", UserPaid: 2, Total: 300}
	id1, err := s.SavePayoutRun(run1, []PayoutEntry{
		{Address: "lskA", Amount: 100},
		{Address: "lskB", Amount: 200},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, id1)

	id2, err := s.SavePayoutRun(&PayoutRun{Date: 2, Delegate: "bacon", UserPaid: 1, Total: 50}, []PayoutEntry{
		{Address: "lskA", Amount: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, id2)

	runs, err := s.GetPayoutRunsAll()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, int64(1), runs[0].Date)
	assert.Equal(t, 2, runs[1].ID)

	run, records, err := s.GetPayoutRun(id1)
	require.NoError(t, err)
	assert.Equal(t, 2, run.UserPaid)
	assert.Equal(t, int64(200), records["lskB"].Amount)
	assert.Len(t, records, 2)

	_, _, err = s.GetPayoutRun(99)
	assert.True(t, errors.Is(err, ErrRunNotFound))

	payouts, err := s.GetAddressPayouts("lskA")
	require.NoError(t, err)
	assert.Equal(t, map[int]PayoutEntry{
		1: {Address: "lskA", Amount: 100},
		2: {Address: "lskA", Amount: 50},
	}, payouts)
}

func TestItob(t *testing.T) {
	assert.Equal(t, 4096, Btoi(Itob(4096)))
	assert.Len(t, Itob(1), 8)
}

func TestWriteFileAtomicBadDir(t *testing.T) {
	err := writeFileAtomic(filepath.Join(t.TempDir(), "nodir", "f.json"), []byte("{}"), 0644)
	assert.Error(t, err)
}

func TestPoolStateClone(t *testing.T) {

	s := NewPoolState()
	s.Pending["lskA"] = 1
	s.History = append(s.History, HistoryEntry{UserPaid: 1})

	c := s.Clone()
	c.Pending["lskA"] = 5
	c.Paid["lskB"] = 5
	c.History[0].UserPaid = 9

	assert.Equal(t, int64(1), s.Pending["lskA"])
	assert.NotContains(t, s.Paid, "lskB")
	assert.Equal(t, 1, s.History[0].UserPaid)
}
