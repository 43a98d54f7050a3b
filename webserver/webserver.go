package webserver

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"liskpool/storage"
)

type WebServer struct {
	delegate      string
	network       string
	poolStateFile string
	ledger        *storage.Storage

	router  http.Handler
	httpSvr *http.Server
}

type WebServerArgs struct {
	Delegate        string
	Network         string
	PoolStateFile   string
	Ledger          *storage.Storage // Optional; ledger endpoints report an error without it
	BindAddr        string
	BindPort        int
	ShutdownChannel <-chan interface{}
	WG              *sync.WaitGroup
}

// New builds the read-only API over the pool state file and payout ledger
func New(args WebServerArgs) *WebServer {

	ws := &WebServer{
		delegate:      args.Delegate,
		network:       args.Network,
		poolStateFile: args.PoolStateFile,
		ledger:        args.Ledger,
	}

	router := mux.NewRouter()
	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		apiReturnOk(w)
	})

	apiRouter := router.PathPrefix("/api").Methods(http.MethodGet).Subrouter()
	apiRouter.HandleFunc("/status", ws.getStatus)
	apiRouter.HandleFunc("/poolstate", ws.getPoolState)
	apiRouter.HandleFunc("/pending", ws.getPending)
	apiRouter.HandleFunc("/history", ws.getHistory)
	apiRouter.HandleFunc("/runs", ws.getPayoutRuns)
	apiRouter.HandleFunc("/runs/{id:[0-9]+}", ws.getPayoutRun)
	apiRouter.HandleFunc("/payouts/{address}", ws.getAddressPayouts)

	// Any UI served from another origin is read-only
	ws.router = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodOptions}),
	)(router)

	return ws
}

// Start listens on BindAddr:BindPort in the background until ShutdownChannel closes
func Start(args WebServerArgs) (*WebServer, error) {

	ws := New(args)

	httpAddr := net.JoinHostPort(args.BindAddr, strconv.Itoa(args.BindPort))

	// Bind now so that address errors are returned to the caller
	listener, err := net.Listen("tcp", httpAddr)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to bind webserver to %s", httpAddr)
	}

	ws.httpSvr = &http.Server{
		Handler:      ws.router,
		Addr:         httpAddr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}

	log.WithField("Addr", httpAddr).Info("Pool WebUI Listening")

	// Launch webserver in background
	go func() {
		if err := ws.httpSvr.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Errorf("Httpserver: Serve()")
		}
		log.Info("Httpserver: Shutdown")
	}()

	// Wait for shutdown signal on channel
	go func() {
		<-args.ShutdownChannel

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := ws.httpSvr.Shutdown(ctx); err != nil {
			log.WithError(err).Errorf("Httpserver: Shutdown()")
		}

		if args.WG != nil {
			args.WG.Done()
		}
	}()

	return ws, nil
}

func (ws *WebServer) Handler() http.Handler {
	return ws.router
}

type ApiError struct {
	Error string `json:"error"`
}

func apiError(err error, w http.ResponseWriter) {
	apiErrorStatus(err, http.StatusBadRequest, w)
}

func apiErrorStatus(err error, status int, w http.ResponseWriter) {
	e, _ := json.Marshal(ApiError{err.Error()})
	http.Error(w, string(e), status)
}

func apiReturnOk(w http.ResponseWriter) {
	apiReturnJSON(map[string]string{"ok": "ok"}, w)
}

func apiReturnJSON(v interface{}, w http.ResponseWriter) {

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("UI Return Encode Failure")
	}
}
