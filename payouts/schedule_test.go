package payouts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liskpool/storage"
)

func TestNewScheduler(t *testing.T) {

	cfg := testConfig(t)
	h, _ := newTestHandler(t, cfg, runSource(), RunOptions{})

	_, err := NewScheduler(context.Background(), h, "every tuesday")
	assert.Error(t, err)

	s, err := NewScheduler(context.Background(), h, "0 */6 * * *")
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 1)

	cfg.Interactive = true
	_, err = NewScheduler(context.Background(), h, "0 */6 * * *")
	assert.Error(t, err)
}

func TestSchedulerRunOnce(t *testing.T) {

	cfg := testConfig(t)
	h, _ := newTestHandler(t, cfg, runSource(), RunOptions{OnlyUpdate: true})

	s, err := NewScheduler(context.Background(), h, "@hourly")
	require.NoError(t, err)

	s.runOnce()
	s.runOnce()
	assert.Equal(t, 2, s.runs)

	state, err := storage.LoadPoolState(cfg.PoolState)
	require.NoError(t, err)

	// Second run saw no new rewards
	assert.Equal(t, int64(750000000), state.Pending[addr("x")])
}
