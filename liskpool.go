package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	log "github.com/sirupsen/logrus"

	"liskpool/config"
	"liskpool/lskclient"
	"liskpool/notifications"
	"liskpool/payouts"
	"liskpool/storage"
	"liskpool/webserver"
)

var (
	version    = "1.0.0"
	commitHash = "dev"
)

// Flags command line flags
type Flags struct {
	configFile   string
	alwaysYes    bool
	dryRun       bool
	onlyUpdate   bool
	minPayout    *decimal.Decimal
	logDebug     bool
	serve        bool
	printVersion bool
}

func main() {

	flags, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		// Usage already printed by the flagset
		os.Exit(2)
	}

	// Handle print version and exit
	if flags.printVersion {
		fmt.Printf("liskpool %s (%s)\n", version, commitHash)
		os.Exit(0)
	}

	os.Exit(run(flags))
}

func parseArgs(args []string, output io.Writer) (*Flags, error) {

	var (
		f         Flags
		minPayout string
	)

	fs := flag.NewFlagSet("liskpool", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&f.configFile, "c", config.DEFAULT_CONFIG_FILE, "Path to the pool config file")
	fs.BoolVar(&f.alwaysYes, "y", false, "Assume yes; never ask for confirmation")
	fs.BoolVar(&f.dryRun, "dry-run", false, "Compute and print, but don't write any file")
	fs.BoolVar(&f.onlyUpdate, "only-update", false, "Update pending balances, but don't pay")
	fs.StringVar(&minPayout, "min-payout", "", "Override minPayout, in LSK")

	fs.BoolVar(&f.logDebug, "debug", false, "Enable debug-level logging")
	fs.BoolVar(&f.serve, "serve", false, "After the run, serve the pool API until interrupted")
	fs.BoolVar(&f.printVersion, "version", false, "Show version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if minPayout != "" {
		mp, err := decimal.NewFromString(minPayout)
		if err != nil {
			fmt.Fprintf(output, "Invalid -min-payout '%s'\n", minPayout)
			fs.Usage()
			return nil, errors.Wrap(err, "Unable to parse min-payout")
		}
		f.minPayout = &mp
	}

	return &f, nil
}

// run executes one payout cycle and, with -serve, keeps the API up until a
// signal arrives. Returns the process exit code.
func run(flags *Flags) int {

	var wg sync.WaitGroup

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		log.WithError(err).Error("Unable to load config")
		return 1
	}

	cfg.ApplyOverrides(config.Overrides{
		MinPayout: flags.minPayout,
		AlwaysYes: flags.alwaysYes,
	})

	if err := cfg.Validate(); err != nil {
		log.WithError(err).Error("Invalid config")
		return 1
	}

	// Logging
	setupLogging(flags.logDebug, cfg.LogFile)
	defer closeLogging()

	log.Infof("=== liskpool %s (%s) ===", version, commitHash)
	log.Infof("=== Network: %s, Delegate: %s ===", cfg.Network, cfg.DelegateName)

	// Clean exits
	shutdownChannel := setupCloseChannel()

	ctx, ctxCancel := context.WithCancel(context.Background())
	defer ctxCancel()

	go func() {
		<-shutdownChannel
		ctxCancel()
	}()

	// Ledger is optional
	var ledger *storage.Storage
	if cfg.LedgerFile != "" {
		ledger, err = storage.InitStorage(cfg.LedgerFile)
		if err != nil {
			log.WithError(err).Error("Could not open payout ledger")
			return 1
		}
		defer ledger.Close()
	}

	notificationHandler, err := notifications.NewHandler(cfg.Notifications)
	if err != nil {
		log.WithError(err).Error("Unable to load notifiers")
	}

	payoutsHandler, err := payouts.NewPayoutsHandler(payouts.HandlerArgs{
		Config:        cfg,
		Source:        lskclient.New(cfg.APIEndpoint),
		Ledger:        ledger,
		Notifications: notificationHandler,
		Confirmer:     payouts.NewTerminalConfirmer(),
		Options: payouts.RunOptions{
			DryRun:     flags.dryRun,
			OnlyUpdate: flags.onlyUpdate,
		},
	})
	if err != nil {
		log.WithError(err).Error("Cannot create payouts handler")
		return 1
	}

	res, err := payoutsHandler.Run(ctx)
	if err != nil {
		log.WithError(err).Error("Payout run failed")
		return 1
	}

	log.WithFields(log.Fields{
		"ToPay": res.ToPay, "RewardPool": res.RewardPool, "Payouts": len(res.Payouts), "Confirmed": res.Confirmed,
	}).Info("Payout run complete")

	if !flags.serve {
		return 0
	}

	// Start web UI
	wg.Add(1)
	_, err = webserver.Start(webserver.WebServerArgs{
		Delegate:        cfg.DelegateName,
		Network:         cfg.Network,
		PoolStateFile:   cfg.PoolState,
		Ledger:          ledger,
		BindAddr:        cfg.WebUI.Addr,
		BindPort:        cfg.WebUI.Port,
		ShutdownChannel: shutdownChannel,
		WG:              &wg,
	})
	if err != nil {
		log.WithError(err).Error("Unable to start webserver")
		return 1
	}

	notificationHandler.SendNotification(fmt.Sprintf("%s pool API started on %s:%d",
		cfg.DelegateName, cfg.WebUI.Addr, cfg.WebUI.Port), notifications.STARTUP)

	// Repeat the run while serving
	var scheduler *payouts.Scheduler
	if cfg.Schedule != "" {
		scheduler, err = payouts.NewScheduler(ctx, payoutsHandler, cfg.Schedule)
		if err != nil {
			log.WithError(err).Error("Unable to schedule payouts")
			return 1
		}
		scheduler.Start()
	}

	<-shutdownChannel
	log.Warn("Shutting things down...")

	if scheduler != nil {
		scheduler.Stop()
	}

	// Wait for webserver to finish
	wg.Wait()

	return 0
}

func setupCloseChannel() chan interface{} {

	// Create channels for signals
	signalChan := make(chan os.Signal, 1)
	closingChan := make(chan interface{}, 1)

	signal.Notify(signalChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-signalChan
		close(closingChan)
	}()

	return closingChan
}
