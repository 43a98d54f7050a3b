package payouts

import (
	"context"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	log "github.com/sirupsen/logrus"

	"liskpool/lskclient"
	"liskpool/storage"
	"liskpool/util"
)

var (
	ErrZeroTotalVotes = errors.New("Total votes is zero; cannot compute percentages")
)

// VoteRecord is a voter's stake and its share of the total, in percent (0-100)
type VoteRecord struct {
	Address    string  `json:"address"`
	Username   string  `json:"username,omitempty"`
	Amount     int64   `json:"amount"`
	Percentage float64 `json:"percentage"`
}

// Forged is the outcome of comparing the delegate's counters with the checkpoint
type Forged struct {
	ToPay          int64
	ProducedBlocks int64
	Account        *lskclient.Account
}

// GetForgedSinceLastPayout fetches the delegate's cumulative rewards and produced blocks
// and returns the increase of both since the state's checkpoint. If either did not
// increase, both are reported as 0 and the checkpoint is left alone; otherwise the
// checkpoint moves to the fetched values.
func (p *PayoutsHandler) GetForgedSinceLastPayout(ctx context.Context, state *storage.PoolState) (*Forged, error) {

	acc, err := p.source.GetAccount(ctx, p.config.DelegateName)
	if err != nil {
		return nil, err
	}

	toPay := acc.Rewards - state.LastPayout.Rewards
	dBlocks := acc.ProducedBlocks - state.LastPayout.ProducedBlocks

	if toPay <= 0 || dBlocks <= 0 {
		toPay = 0
		dBlocks = 0
	} else {
		state.LastPayout = storage.LastPayout{
			Date:           p.now().Unix(),
			Rewards:        acc.Rewards,
			ProducedBlocks: acc.ProducedBlocks,
		}
	}

	log.Infof("%d produced blocks since last payout, %s %s to pay", dBlocks, util.FormatLSK(toPay), p.constants.TokenSymbol)

	return &Forged{
		ToPay:          toPay,
		ProducedBlocks: dBlocks,
		Account:        acc,
	}, nil
}

// GetVotesPercentages fetches the delegate's voters, drops the self vote (unless
// includeSelfStake) and blacklisted addresses, and computes each remaining
// voter's percentage of the remaining stake. Order is kept.
func (p *PayoutsHandler) GetVotesPercentages(ctx context.Context) ([]VoteRecord, error) {

	votes, err := p.source.GetVotes(ctx, p.config.DelegateName)
	if err != nil {
		return nil, err
	}

	records := make([]VoteRecord, 0, len(votes))

	var totalVotes int64

	for _, v := range votes {

		if !p.config.IncludeSelfStake && v.Username != "" && v.Username == p.config.DelegateName {
			log.WithField("Address", v.Address).Debug("Skipping self stake")
			continue
		}

		if p.config.IsBlackListed(v.Address) {
			log.WithField("Address", v.Address).Debug("Skipping blacklisted voter")
			continue
		}

		records = append(records, VoteRecord{
			Address:  v.Address,
			Username: v.Username,
			Amount:   int64(v.Amount),
		})

		totalVotes += int64(v.Amount)
	}

	if totalVotes == 0 {
		return nil, ErrZeroTotalVotes
	}

	for i := range records {
		records[i].Percentage = float64(records[i].Amount) * 100. / float64(totalVotes)
	}

	log.WithFields(log.Fields{
		"Voters": len(records), "Ignored": len(votes) - len(records), "TotalVotes": util.FormatLSK(totalVotes),
	}).Info("Loaded votes")

	return records, nil
}

// SharedRewards is the part of toPay which the delegate distributes, per sharingPercentage.
// Truncated to whole beddows.
func (p *PayoutsHandler) SharedRewards(toPay int64) int64 {
	return decimal.NewFromInt(toPay).
		Mul(decimal.NewFromFloat(p.config.SharingPercentage)).
		Div(decimal.NewFromInt(100)).
		IntPart()
}

// CalculateRewards splits rewardPool among votes by percentage. Each share is
// truncated to whole beddows; the remainder is not redistributed. The delegate's
// own share is credited straight to paid, every other share to pending.
func (p *PayoutsHandler) CalculateRewards(state *storage.PoolState, votes []VoteRecord, rewardPool int64) *storage.PoolState {

	for _, v := range votes {

		share := int64(float64(rewardPool) * v.Percentage / 100.)

		if v.Username != "" && v.Username == p.config.DelegateName {
			log.Infof("Delegate %s got %s %s of reward", v.Username, util.FormatLSK(share), p.constants.TokenSymbol)

			state.Paid[v.Address] += share

			continue
		}

		state.Pending[v.Address] += share
	}

	return state
}
