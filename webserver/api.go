package webserver

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"liskpool/storage"
	"liskpool/util"
)

var (
	errNoLedger = errors.New("Payout ledger is not enabled")
)

type pendingBalance struct {
	Address string `json:"address"`
	Amount  int64  `json:"amount"`
	LSK     string `json:"lsk"`
}

func (ws *WebServer) getStatus(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getStatus")

	apiReturnJSON(map[string]interface{}{
		"delegate": ws.delegate,
		"network":  ws.network,
		"ledger":   ws.ledger != nil,
		"ts":       time.Now().Unix(),
	}, w)
}

func (ws *WebServer) loadPoolState(w http.ResponseWriter) (*storage.PoolState, bool) {

	state, err := storage.LoadPoolState(ws.poolStateFile)
	if err != nil {
		log.WithError(err).Error("API - loadPoolState")
		apiErrorStatus(errors.Wrap(err, "Unable to load pool state"), http.StatusServiceUnavailable, w)

		return nil, false
	}

	return state, true
}

func (ws *WebServer) getPoolState(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getPoolState")

	state, ok := ws.loadPoolState(w)
	if !ok {
		return
	}

	apiReturnJSON(state, w)
}

// getPending lists the non-zero pending balances, largest first
func (ws *WebServer) getPending(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getPending")

	state, ok := ws.loadPoolState(w)
	if !ok {
		return
	}

	balances := make([]pendingBalance, 0, len(state.Pending))
	for address, amount := range state.Pending {
		if amount == 0 {
			continue
		}
		balances = append(balances, pendingBalance{address, amount, util.FormatLSK(amount)})
	}

	sort.Slice(balances, func(i, j int) bool {
		if balances[i].Amount == balances[j].Amount {
			return balances[i].Address < balances[j].Address
		}
		return balances[i].Amount > balances[j].Amount
	})

	apiReturnJSON(map[string]interface{}{
		"lastPayout": state.LastPayout,
		"pending":    balances,
	}, w)
}

func (ws *WebServer) getHistory(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getHistory")

	state, ok := ws.loadPoolState(w)
	if !ok {
		return
	}

	apiReturnJSON(map[string]interface{}{
		"history": state.History,
	}, w)
}

func (ws *WebServer) getPayoutRuns(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getPayoutRuns")

	if ws.ledger == nil {
		apiErrorStatus(errNoLedger, http.StatusServiceUnavailable, w)
		return
	}

	runs, err := ws.ledger.GetPayoutRunsAll()
	if err != nil {
		log.WithError(err).Error("API - getPayoutRuns")
		apiError(errors.Wrap(err, "Unable to get payout runs from DB"), w)

		return
	}

	apiReturnJSON(map[string]interface{}{
		"runs": runs,
	}, w)
}

// getPayoutRun returns a run's metadata along with each address paid
func (ws *WebServer) getPayoutRun(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getPayoutRun")

	if ws.ledger == nil {
		apiErrorStatus(errNoLedger, http.StatusServiceUnavailable, w)
		return
	}

	runID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		apiError(errors.Wrap(err, "Unable to parse run id"), w)
		return
	}

	run, entries, err := ws.ledger.GetPayoutRun(runID)
	if err != nil {
		if errors.Is(err, storage.ErrRunNotFound) {
			apiErrorStatus(err, http.StatusNotFound, w)
			return
		}

		log.WithError(err).Error("API - getPayoutRun")
		apiError(errors.Wrap(err, "Unable to get payout run from DB"), w)

		return
	}

	apiReturnJSON(map[string]interface{}{
		"metadata": run,
		"payouts":  entries,
	}, w)
}

// getAddressPayouts returns every ledger entry for one address, keyed by run id
func (ws *WebServer) getAddressPayouts(w http.ResponseWriter, r *http.Request) {

	log.Trace("API - getAddressPayouts")

	if ws.ledger == nil {
		apiErrorStatus(errNoLedger, http.StatusServiceUnavailable, w)
		return
	}

	address := mux.Vars(r)["address"]

	payouts, err := ws.ledger.GetAddressPayouts(address)
	if err != nil {
		log.WithError(err).WithField("Address", address).Error("API - getAddressPayouts")
		apiError(errors.Wrap(err, "Unable to get address payouts from DB"), w)

		return
	}

	var total int64
	for _, p := range payouts {
		total += p.Amount
	}

	apiReturnJSON(map[string]interface{}{
		"address": address,
		"payouts": payouts,
		"total":   total,
	}, w)
}
