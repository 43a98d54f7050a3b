package payouts

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"liskpool/config"
	"liskpool/lskclient"
	"liskpool/notifications"
	"liskpool/payments"
	"liskpool/storage"
	"liskpool/util"
)

// RunOptions are fixed for the lifetime of a handler
type RunOptions struct {
	DryRun     bool // Never write files; print the payments script instead
	OnlyUpdate bool // Accumulate pending balances and move the checkpoint, never pay
}

type PayoutsHandler struct {
	config        *config.Config
	constants     *util.NetworkConstants
	source        lskclient.DataSource
	ledger        *storage.Storage
	notifications *notifications.NotificationHandler
	confirmer     Confirmer
	opts          RunOptions

	out io.Writer
	now func() time.Time
}

// HandlerArgs bundles the collaborators of a PayoutsHandler. Ledger,
// Notifications and Confirmer are optional.
type HandlerArgs struct {
	Config        *config.Config
	Source        lskclient.DataSource
	Ledger        *storage.Storage
	Notifications *notifications.NotificationHandler
	Confirmer     Confirmer
	Options       RunOptions
	Out           io.Writer
}

func NewPayoutsHandler(args HandlerArgs) (*PayoutsHandler, error) {

	if args.Config == nil || args.Source == nil {
		return nil, errors.New("Config and data source are required")
	}

	nc, err := util.GetNetworkConstants(args.Config.Network)
	if err != nil {
		return nil, err
	}

	out := args.Out
	if out == nil {
		out = os.Stdout
	}

	return &PayoutsHandler{
		config:        args.Config,
		constants:     nc,
		source:        args.Source,
		ledger:        args.Ledger,
		notifications: args.Notifications,
		confirmer:     args.Confirmer,
		opts:          args.Options,
		out:           out,
		now:           time.Now,
	}, nil
}

// PayPendings moves every pending balance strictly above minPayout into paid and
// returns those transfers, ordered by address. In only-update mode nothing is due.
func (p *PayoutsHandler) PayPendings(state *storage.PoolState) (*storage.PoolState, []storage.PayoutEntry) {

	paylist := make([]storage.PayoutEntry, 0)
	threshold := util.ToBeddows(p.config.MinPayout)

	addresses := make([]string, 0, len(state.Pending))
	for address := range state.Pending {
		addresses = append(addresses, address)
	}
	sort.Strings(addresses)

	for _, address := range addresses {

		pending := state.Pending[address]
		if pending == 0 || p.opts.OnlyUpdate {
			continue
		}

		if pending > threshold {
			paylist = append(paylist, storage.PayoutEntry{
				Address: address,
				Amount:  pending,
			})

			state.Paid[address] += pending
			state.Pending[address] = 0
		}
	}

	return state, paylist
}

// Result summarizes a single Run
type Result struct {
	ToPay          int64
	ProducedBlocks int64
	RewardPool     int64
	Payouts        []storage.PayoutEntry
	Confirmed      bool
	Script         string
	RunID          int
}

// Run performs one fetch, compute, persist cycle.
//
// The reward checkpoint and pending balances are saved even when payouts are
// declined; only the move of due balances into paid is discarded in that case.
func (p *PayoutsHandler) Run(ctx context.Context) (*Result, error) {

	state := p.loadPoolState()

	votes, err := p.GetVotesPercentages(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to get votes")
	}

	forged, err := p.GetForgedSinceLastPayout(ctx, state)
	if err != nil {
		return nil, errors.Wrap(err, "Unable to get forged rewards")
	}

	res := &Result{
		ToPay:          forged.ToPay,
		ProducedBlocks: forged.ProducedBlocks,
		RewardPool:     p.SharedRewards(forged.ToPay),
	}

	state = p.CalculateRewards(state, votes, res.RewardPool)

	// Selection happens on a copy so that a declined run keeps balances pending
	accrued := state
	state, res.Payouts = p.PayPendings(state.Clone())

	if len(res.Payouts) == 0 {
		if err := p.savePoolState(state); err != nil {
			return res, err
		}
		log.Info("Nothing to pay. Exiting...")

		return res, nil
	}

	var total int64

	fmt.Fprintln(p.out, "===========")
	for _, po := range res.Payouts {
		fmt.Fprintf(p.out, "%s => %s %s\n", po.Address, util.FormatLSK(po.Amount), p.constants.TokenSymbol)
		total += po.Amount
	}
	fmt.Fprintln(p.out, "===========")

	// Ask confirmation for payments
	res.Confirmed = true
	if p.config.Interactive && p.confirmer != nil {
		res.Confirmed, err = p.confirmer.Confirm("Confirm? y/n: ")
		if err != nil {
			log.WithError(err).Warn("Unable to read confirmation")
			res.Confirmed = false
		}
	}

	if !res.Confirmed {
		log.Warn("Not confirmed. Aborting...")

		if err := p.savePoolState(accrued); err != nil {
			return res, err
		}

		return res, nil
	}

	res.Script, err = p.renderPayments(forged.Account, res.Payouts)
	if err != nil {
		return res, err
	}

	if err := p.savePayments(res.Script); err != nil {
		return res, err
	}

	state.History = append(state.History, storage.HistoryEntry{
		Date:     p.now().Unix(),
		UserPaid: len(res.Payouts),
		Rewards:  res.RewardPool,
	})

	if err := p.savePoolState(state); err != nil {
		return res, err
	}

	res.RunID, err = p.recordPayoutRun(res, total)
	if err != nil {
		// Script and state are already written; the ledger is informational
		log.WithError(err).Error("Unable to record payout run to ledger")
	}

	p.notifications.SendNotification(fmt.Sprintf("%s: %d payouts totalling %s %s written to %s",
		p.config.DelegateName, len(res.Payouts), util.FormatLSK(total), p.constants.TokenSymbol, p.config.PaymentsFile), notifications.PAYOUTS)

	return res, nil
}

func (p *PayoutsHandler) loadPoolState() *storage.PoolState {

	state, err := storage.LoadPoolState(p.config.PoolState)
	if err == nil {
		return state
	}

	log.WithError(err).Warn("Unable to load pool state. Initializing...")

	state = storage.NewPoolState()
	if err := p.savePoolState(state); err != nil {
		log.WithError(err).Error("Unable to write initial pool state")
	}

	p.notifications.SendNotification(fmt.Sprintf("%s: pool state %s was reinitialized",
		p.config.DelegateName, p.config.PoolState), notifications.STATE)

	return state
}

func (p *PayoutsHandler) savePoolState(state *storage.PoolState) error {

	if p.opts.DryRun {
		return nil
	}

	if err := storage.SavePoolState(p.config.PoolState, state); err != nil {
		return err
	}
	log.WithField("File", p.config.PoolState).Info("Saved pool state")

	return nil
}

func (p *PayoutsHandler) renderPayments(acc *lskclient.Account, payouts []storage.PayoutEntry) (string, error) {

	from := p.config.FromAddress
	if from == "" {
		from = acc.Address
	}

	return payments.RenderScript(payments.ScriptOptions{
		DelegateName:      p.config.DelegateName,
		NetworkIdentifier: p.constants.NetworkIdentifier,
		Fee:               p.constants.TransferFee,
		FromAddress:       from,
		MultiSignature:    p.config.MultiSignature,
	}, payouts)
}

func (p *PayoutsHandler) savePayments(script string) error {

	if p.opts.DryRun {
		fmt.Fprint(p.out, script)
		return nil
	}

	if err := payments.SaveScript(p.config.PaymentsFile, script); err != nil {
		return err
	}
	log.WithField("File", p.config.PaymentsFile).Info("Saved payments")

	return nil
}

func (p *PayoutsHandler) recordPayoutRun(res *Result, total int64) (int, error) {

	if p.ledger == nil || p.opts.DryRun {
		return 0, nil
	}

	hash, err := util.ScriptFingerprint(res.Script)
	if err != nil {
		return 0, err
	}

	run := &storage.PayoutRun{
		Date:       p.now().Unix(),
		Network:    p.constants.Name,
		Delegate:   p.config.DelegateName,
		UserPaid:   len(res.Payouts),
		Rewards:    res.RewardPool,
		Total:      total,
		ScriptFile: p.config.PaymentsFile,
		ScriptHash: hash,
	}

	id, err := p.ledger.SavePayoutRun(run, res.Payouts)
	if err != nil {
		return 0, err
	}

	log.WithFields(log.Fields{
		"RunID": id, "ScriptHash": hash,
	}).Info("Recorded payout run")

	return id, nil
}
