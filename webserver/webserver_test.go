package webserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"liskpool/storage"
)

func newTestServer(t *testing.T, withLedger bool) *WebServer {

	dir := t.TempDir()
	stateFile := filepath.Join(dir, "poolstate.json")

	state := storage.NewPoolState()
	state.LastPayout = storage.LastPayout{Date: 100, Rewards: 5000, ProducedBlocks: 3}
	state.Pending["lska"] = 10
	state.Pending["lskb"] = 300000000
	state.Pending["lskc"] = 0
	state.Paid["lskd"] = 42
	state.History = append(state.History, storage.HistoryEntry{Date: 100, UserPaid: 1, Rewards: 42})
	require.NoError(t, storage.SavePoolState(stateFile, state))

	args := WebServerArgs{
		Delegate:      "bacon",
		Network:       "mainnet",
		PoolStateFile: stateFile,
	}

	if withLedger {
		ledger, err := storage.InitStorage(filepath.Join(dir, "ledger.db"))
		require.NoError(t, err)
		t.Cleanup(func() { ledger.Close() })

		_, err = ledger.SavePayoutRun(&storage.PayoutRun{Date: 100, Delegate: "bacon", UserPaid: 2, Total: 30},
			[]storage.PayoutEntry{{Address: "lska", Amount: 10}, {Address: "lskb", Amount: 20}})
		require.NoError(t, err)

		_, err = ledger.SavePayoutRun(&storage.PayoutRun{Date: 200, Delegate: "bacon", UserPaid: 1, Total: 5},
			[]storage.PayoutEntry{{Address: "lska", Amount: 5}})
		require.NoError(t, err)

		args.Ledger = ledger
	}

	return New(args)
}

func doGet(t *testing.T, ws *WebServer, path string) (int, map[string]interface{}) {

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()

	ws.Handler().ServeHTTP(rec, req)

	body := make(map[string]interface{})
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())

	return rec.Code, body
}

func TestHealth(t *testing.T) {

	ws := newTestServer(t, false)

	code, body := doGet(t, ws, "/api/health")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["ok"])
}

func TestStatus(t *testing.T) {

	ws := newTestServer(t, false)

	code, body := doGet(t, ws, "/api/status")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "bacon", body["delegate"])
	assert.Equal(t, false, body["ledger"])
}

func TestPoolState(t *testing.T) {

	ws := newTestServer(t, false)

	code, body := doGet(t, ws, "/api/poolstate")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(5000), body["lastPayout"].(map[string]interface{})["rewards"])
	assert.Equal(t, float64(42), body["paid"].(map[string]interface{})["lskd"])

	code, body = doGet(t, ws, "/api/history")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["history"], 1)
}

func TestPending(t *testing.T) {

	ws := newTestServer(t, false)

	code, body := doGet(t, ws, "/api/pending")
	assert.Equal(t, http.StatusOK, code)

	pending := body["pending"].([]interface{})
	require.Len(t, pending, 2)

	first := pending[0].(map[string]interface{})
	assert.Equal(t, "lskb", first["address"])
	assert.Equal(t, "3.00000000", first["lsk"])
}

func TestPoolStateMissing(t *testing.T) {

	ws := New(WebServerArgs{PoolStateFile: filepath.Join(t.TempDir(), "missing.json")})

	code, body := doGet(t, ws, "/api/poolstate")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body["error"], "Unable to load pool state")
}

func TestPayoutRuns(t *testing.T) {

	ws := newTestServer(t, true)

	code, body := doGet(t, ws, "/api/runs")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["runs"], 2)

	code, body = doGet(t, ws, "/api/runs/1")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(30), body["metadata"].(map[string]interface{})["total"])
	assert.Len(t, body["payouts"], 2)

	code, _ = doGet(t, ws, "/api/runs/99")
	assert.Equal(t, http.StatusNotFound, code)
}

func TestAddressPayouts(t *testing.T) {

	ws := newTestServer(t, true)

	code, body := doGet(t, ws, "/api/payouts/lska")
	assert.Equal(t, http.StatusOK, code)
	assert.Len(t, body["payouts"], 2)
	assert.Equal(t, float64(15), body["total"])

	code, body = doGet(t, ws, "/api/payouts/lskz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, float64(0), body["total"])
}

func TestNoLedger(t *testing.T) {

	ws := newTestServer(t, false)

	for _, path := range []string{"/api/runs", "/api/runs/1", "/api/payouts/lska"} {
		code, body := doGet(t, ws, path)
		assert.Equal(t, http.StatusServiceUnavailable, code, path)
		assert.Equal(t, errNoLedger.Error(), body["error"], path)
	}
}
