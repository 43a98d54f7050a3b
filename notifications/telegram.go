package notifications

import (
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"

	log "github.com/sirupsen/logrus"

	"liskpool/config"
)

const (
	TELEGRAM_API = "https://api.telegram.org"
)

type NotifyTelegram struct {
	ChatIDs []int
	APIKey  string
	Enabled bool

	apiBase string
	client  *http.Client
}

// NewTelegram creates a new NotifyTelegram object from the pool config
func NewTelegram(tc config.TelegramConfig) (*NotifyTelegram, error) {

	if tc.APIKey == "" {
		return nil, errors.New("No telegram API key")
	}

	if tc.Enabled && len(tc.ChatIDs) == 0 {
		log.Warn("Telegram enabled without any chat ids")
	}

	return &NotifyTelegram{
		ChatIDs: tc.ChatIDs,
		APIKey:  tc.APIKey,
		Enabled: tc.Enabled,
		apiBase: TELEGRAM_API,

		// HTTP client 10s timeout
		client: &http.Client{
			Timeout: time.Second * 10,
		},
	}, nil
}

func (n *NotifyTelegram) IsEnabled() bool {
	return n.Enabled
}

func (n *NotifyTelegram) Send(msg string) error {
	// curl -G \
	//  --data-urlencode "chat_id=111112233" \
	//  --data-urlencode "text=$message" \
	//  https://api.telegram.org/bot${TOKEN}/sendMessage

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.APIKey)

	// Loop over chatIds, sending message
	for _, id := range n.ChatIDs {

		q := url.Values{}
		q.Set("chat_id", strconv.Itoa(id))
		q.Set("text", msg)

		if err := n.sendMessage(endpoint + "?" + q.Encode()); err != nil {
			return errors.Wrapf(err, "Unable to send telegram message to %d", id)
		}
	}

	log.WithField("MSG", msg).Info("Sent Telegram Message(s)")

	return nil
}

func (n *NotifyTelegram) sendMessage(uri string) error {

	resp, err := n.client.Get(uri)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "Unable to read telegram response")
	}

	log.WithField("Resp", string(body)).Debug("Telegram Reply")

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("Telegram API status %d", resp.StatusCode)
	}

	return nil
}
