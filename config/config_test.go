package config

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {

	p := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, ioutil.WriteFile(p, []byte(body), 0600))

	return p
}

func TestLoad(t *testing.T) {

	p := writeConfig(t, `{
		"apiEndpoint": "https://service.lisk.com/api/v2/",
		"delegateName": "bacon",
		"minPayout": 0.5,
		"sharingPercentage": 80,
		"includeSelfStake": false,
		"blackList": ["lskA"],
		"network": "testnet",
		"interactive": false
	}`)

	cfg, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "bacon", cfg.DelegateName)
	assert.True(t, cfg.MinPayout.Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, 80.0, cfg.SharingPercentage)
	assert.False(t, cfg.Interactive)
	assert.Equal(t, DEFAULT_POOL_STATE, cfg.PoolState)
	assert.Equal(t, DEFAULT_PAYMENTS_FILE, cfg.PaymentsFile)
	assert.True(t, cfg.IsBlackListed("lskA"))
	assert.False(t, cfg.IsBlackListed("lskB"))
}

func TestLoadErrors(t *testing.T) {

	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, `{"delegateName": `))
	assert.Error(t, err)
}

func TestOverrides(t *testing.T) {

	cfg, err := Load(writeConfig(t, `{"delegateName": "bacon", "minPayout": 1}`))
	require.NoError(t, err)
	assert.True(t, cfg.Interactive)

	mp := decimal.RequireFromString("2.5")
	cfg.ApplyOverrides(Overrides{MinPayout: &mp, AlwaysYes: true})

	assert.True(t, cfg.MinPayout.Equal(mp))
	assert.False(t, cfg.Interactive)
}

func TestValidate(t *testing.T) {

	cfg, err := Load(writeConfig(t, `{"delegateName": "bacon"}`))
	require.NoError(t, err)

	// Endpoint defaults from the network
	assert.NotEmpty(t, cfg.APIEndpoint)
	require.NoError(t, cfg.Validate())

	cfg.SharingPercentage = 101
	assert.Error(t, cfg.Validate())
	cfg.SharingPercentage = 50

	cfg.Network = "betanet"
	assert.Error(t, cfg.Validate())
	cfg.Network = "mainnet"

	cfg.FromAddress = "nope"
	assert.Error(t, cfg.Validate())
	cfg.FromAddress = "lsks4bdyynsyxxrxxgractch2v6jen8xxsrmc47b8"
	assert.NoError(t, cfg.Validate())

	// Scheduled runs cannot prompt
	cfg.Schedule = "@daily"
	assert.Error(t, cfg.Validate())
	cfg.ApplyOverrides(Overrides{AlwaysYes: true})
	assert.NoError(t, cfg.Validate())

	cfg.DelegateName = ""
	assert.Error(t, cfg.Validate())
}
