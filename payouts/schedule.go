package payouts

import (
	"context"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	log "github.com/sirupsen/logrus"
)

// Scheduler repeats Run on a cron schedule. Runs never overlap; a run still
// in progress when the next one is due causes that one to be skipped.
type Scheduler struct {
	cron    *cron.Cron
	handler *PayoutsHandler
	ctx     context.Context
	runs    int
}

// NewScheduler registers h.Run under spec, a standard 5 field cron expression
func NewScheduler(ctx context.Context, h *PayoutsHandler, spec string) (*Scheduler, error) {

	if h.config.Interactive {
		return nil, errors.New("Scheduled payouts cannot be interactive; set interactive=false or use -y")
	}

	logger := cron.PrintfLogger(log.StandardLogger())

	s := &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(logger))),
		handler: h,
		ctx:     ctx,
	}

	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, errors.Wrapf(err, "Unable to parse schedule '%s'", spec)
	}

	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.WithField("Next", s.cron.Entries()[0].Next).Info("Payout scheduler started")
}

// Stop waits for a run in progress to finish
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Payout scheduler stopped")
}

func (s *Scheduler) runOnce() {

	s.runs++

	res, err := s.handler.Run(s.ctx)
	if err != nil {
		log.WithError(err).WithField("Run", s.runs).Error("Scheduled payout run failed")
		return
	}

	log.WithFields(log.Fields{
		"Run": s.runs, "ToPay": res.ToPay, "Payouts": len(res.Payouts),
	}).Info("Scheduled payout run complete")
}
