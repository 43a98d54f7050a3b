package lskclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"
)

const (
	VOTES_PAGE_LIMIT = 100
)

var (
	ErrDelegateNotFound = errors.New("Delegate account not found")
)

// DataSource is anything that can provide the delegate's voters and
// forging counters. The HTTP Client is the production implementation.
type DataSource interface {
	GetVotes(ctx context.Context, delegateName string) ([]Vote, error)
	GetAccount(ctx context.Context, delegateName string) (*Account, error)
}

type Client struct {
	Endpoint string
	client   *http.Client
}

var _ DataSource = (*Client)(nil)

func New(endpoint string) *Client {

	// Requests are built as endpoint + path
	if !strings.HasSuffix(endpoint, "/") {
		endpoint += "/"
	}

	return &Client{
		Endpoint: endpoint,
		client: &http.Client{
			Timeout: time.Second * 30,
			Transport: &http.Transport{
				Dial: (&net.Dialer{
					Timeout: 10 * time.Second,
				}).Dial,
				TLSHandshakeTimeout: 10 * time.Second,
			},
		},
	}
}

// GetVotes returns every aggregated vote received by delegateName, walking all pages
func (c *Client) GetVotes(ctx context.Context, delegateName string) ([]Vote, error) {

	votes := make([]Vote, 0)
	offset := 0

	for {

		q := url.Values{}
		q.Set("limit", fmt.Sprintf("%d", VOTES_PAGE_LIMIT))
		q.Set("offset", fmt.Sprintf("%d", offset))
		q.Set("aggregate", "true")
		q.Set("username", delegateName)

		var page votesResponse
		if err := c.get(ctx, "votes_received", q, &page); err != nil {
			return nil, errors.Wrap(err, "Unable to fetch votes")
		}

		votes = append(votes, page.Data.Votes...)
		offset += len(page.Data.Votes)

		log.WithFields(log.Fields{
			"Fetched": offset, "Total": page.Meta.Total,
		}).Debug("Fetched votes page")

		if len(page.Data.Votes) == 0 || offset >= page.Meta.Total {
			break
		}
	}

	return votes, nil
}

// GetAccount returns the delegate's address and cumulative rewards/blocks
func (c *Client) GetAccount(ctx context.Context, delegateName string) (*Account, error) {

	q := url.Values{}
	q.Set("username", delegateName)

	var resp accountsResponse
	if err := c.get(ctx, "accounts", q, &resp); err != nil {
		return nil, errors.Wrap(err, "Unable to fetch delegate account")
	}

	if len(resp.Data) == 0 {
		return nil, errors.Wrapf(ErrDelegateNotFound, "Username '%s'", delegateName)
	}

	acc := resp.Data[0]

	return &Account{
		Address:        acc.Summary.Address,
		Username:       acc.Summary.Username,
		Rewards:        int64(acc.Dpos.Delegate.Rewards),
		ProducedBlocks: int64(acc.Dpos.Delegate.ProducedBlocks),
	}, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {

	uri := c.Endpoint + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return errors.Wrap(err, "Unable to create request")
	}
	req.Header.Set("Accept", "application/json")

	log.WithField("URI", uri).Trace("API Request")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "Request failed: %s", uri)
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "Unable to read response body")
	}

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return errors.Wrapf(err, "Unable to decode response from %s", path)
	}

	return nil
}
