package lskclient

import (
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
)

// Amount is a beddows quantity. Lisk Service returns these as JSON
// strings, and occasionally as plain numbers.
type Amount int64

func (a *Amount) UnmarshalJSON(b []byte) error {

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		// Not a string, try as number
		var n json.Number
		if err := json.Unmarshal(b, &n); err != nil {
			return errors.Wrap(err, "Unable to decode amount")
		}
		s = n.String()
	}

	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return errors.Wrapf(err, "Unable to parse amount '%s'", s)
	}

	*a = Amount(v)

	return nil
}

// Vote is a single (aggregated) vote received by the delegate
type Vote struct {
	Address  string `json:"address"`
	Username string `json:"username,omitempty"`
	Amount   Amount `json:"amount"`
}

type votesResponse struct {
	Data struct {
		Votes []Vote `json:"votes"`
	} `json:"data"`
	Meta struct {
		Count  int `json:"count"`
		Offset int `json:"offset"`
		Total  int `json:"total"`
	} `json:"meta"`
}

// Account holds the delegate's own address and its cumulative forging counters
type Account struct {
	Address        string
	Username       string
	Rewards        int64
	ProducedBlocks int64
}

type accountsResponse struct {
	Data []struct {
		Summary struct {
			Address  string `json:"address"`
			Username string `json:"username"`
		} `json:"summary"`
		Dpos struct {
			Delegate struct {
				Rewards        Amount `json:"rewards"`
				ProducedBlocks Amount `json:"producedBlocks"`
			} `json:"delegate"`
		} `json:"dpos"`
	} `json:"data"`
}
