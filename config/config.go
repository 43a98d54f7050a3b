package config

import (
	"encoding/json"
	"io/ioutil"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"liskpool/util"
)

const (
	DEFAULT_CONFIG_FILE   = "config.json"
	DEFAULT_POOL_STATE    = "poolstate.json"
	DEFAULT_PAYMENTS_FILE = "payments.sh"
	DEFAULT_WEBUI_ADDR    = "127.0.0.1"
	DEFAULT_WEBUI_PORT    = 8082
)

type TelegramConfig struct {
	ChatIDs []int  `json:"chatids"`
	APIKey  string `json:"apikey"`
	Enabled bool   `json:"enabled"`
}

type NotificationsConfig struct {
	Telegram TelegramConfig `json:"telegram"`
}

type WebUIConfig struct {
	Addr string `json:"addr"`
	Port int    `json:"port"`
}

// Config is the pool configuration as read from config.json
type Config struct {
	APIEndpoint       string          `json:"apiEndpoint"`
	DelegateName      string          `json:"delegateName"`
	MinPayout         decimal.Decimal `json:"minPayout"` // Whole LSK
	SharingPercentage float64         `json:"sharingPercentage"`
	IncludeSelfStake  bool            `json:"includeSelfStake"`
	BlackList         []string        `json:"blackList"`
	MultiSignature    bool            `json:"multiSignature"`
	FromAddress       string          `json:"fromAddress"`
	Network           string          `json:"network"`
	Interactive       bool            `json:"interactive"`
	PoolState         string          `json:"poolState"`
	PaymentsFile      string          `json:"paymentsFile"`

	LedgerFile    string              `json:"ledgerFile"`
	Schedule      string              `json:"schedule"` // cron expression; with -serve, repeat the run
	LogFile       string              `json:"logFile"`
	Notifications NotificationsConfig `json:"notifications"`
	WebUI         WebUIConfig         `json:"webui"`
}

// Load reads and decodes the JSON config file at path, filling in defaults
// for anything not present.
func Load(path string) (*Config, error) {

	data, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Unable to read config file %s", path)
	}

	cfg := &Config{
		Network:     util.NETWORK_MAINNET,
		Interactive: true,
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "Unable to parse config file %s", path)
	}

	cfg.setDefaults()

	return cfg, nil
}

func (c *Config) setDefaults() {

	if c.PoolState == "" {
		c.PoolState = DEFAULT_POOL_STATE
	}

	if c.PaymentsFile == "" {
		c.PaymentsFile = DEFAULT_PAYMENTS_FILE
	}

	if c.APIEndpoint == "" {
		if nc, err := util.GetNetworkConstants(c.Network); err == nil {
			c.APIEndpoint = nc.DefaultAPI
		}
	}

	if c.WebUI.Addr == "" {
		c.WebUI.Addr = DEFAULT_WEBUI_ADDR
	}

	if c.WebUI.Port == 0 {
		c.WebUI.Port = DEFAULT_WEBUI_PORT
	}
}

// Overrides are command line values which take precedence over the file
type Overrides struct {
	MinPayout *decimal.Decimal
	AlwaysYes bool
}

func (c *Config) ApplyOverrides(o Overrides) {

	if o.MinPayout != nil {
		c.MinPayout = *o.MinPayout
	}

	if o.AlwaysYes {
		c.Interactive = false
	}
}

// Validate checks that required fields are set and values are within range
func (c *Config) Validate() error {

	if c.DelegateName == "" {
		return errors.New("delegateName is required")
	}

	if c.APIEndpoint == "" {
		return errors.New("apiEndpoint is required")
	}

	if !util.IsValidNetwork(c.Network) {
		return errors.Errorf("Unknown network '%s'; available: %s", c.Network, util.AvailableNetworks())
	}

	if c.SharingPercentage < 0 || c.SharingPercentage > 100 {
		return errors.Errorf("sharingPercentage must be within 0-100, got %.2f", c.SharingPercentage)
	}

	if c.MinPayout.IsNegative() {
		return errors.New("minPayout cannot be negative")
	}

	if c.Schedule != "" && c.Interactive {
		return errors.New("schedule requires interactive=false (or -y)")
	}

	if c.FromAddress != "" {
		if _, err := util.AddressToBinary(c.FromAddress); err != nil {
			return errors.Wrap(err, "Invalid fromAddress")
		}
	}

	return nil
}

// IsBlackListed returns true if address appears in the configured blacklist
func (c *Config) IsBlackListed(address string) bool {

	for _, b := range c.BlackList {
		if b == address {
			return true
		}
	}

	return false
}
