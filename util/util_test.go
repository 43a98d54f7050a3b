package util

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressToBinary(t *testing.T) {

	bin, err := AddressToBinary("lsks4bdyynsyxxrxxgractch2v6jen8xxsrmc47b8")
	require.NoError(t, err)
	assert.Equal(t, "da4da8c4fb88432087f2c8e63ee04ae58ef08772", bin)
}

func TestAddressToBinaryInvalid(t *testing.T) {

	// 'i' and 'l' are not part of the alphabet
	_, err := AddressToBinary("lskiiiiiiiiiiiiiiiiiiiiiiiiiiiiiiiiiiiiiiii")
	assert.True(t, errors.Is(err, ErrInvalidAddress))

	_, err = AddressToBinary("lsk123")
	assert.True(t, errors.Is(err, ErrInvalidAddress))

	// Body is 5 characters; not a valid base32 length
	_, err = AddressToBinary("lskzxvcp123456")
	assert.Error(t, err)
}

func TestNetworkConstants(t *testing.T) {

	nc, err := GetNetworkConstants(NETWORK_MAINNET)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), nc.TransferFee)
	assert.Len(t, nc.NetworkIdentifier, 64)

	_, err = GetNetworkConstants("betanet")
	assert.Error(t, err)

	assert.True(t, IsValidNetwork(NETWORK_TESTNET))
	assert.False(t, IsValidNetwork("betanet"))
}

func TestAmounts(t *testing.T) {

	assert.Equal(t, int64(10000000), ToBeddows(decimal.RequireFromString("0.1")))
	assert.Equal(t, int64(2500000000), ToBeddows(decimal.NewFromInt(25)))
	assert.Equal(t, int64(1), ToBeddows(decimal.RequireFromString("0.000000019")))

	assert.Equal(t, "1.50000000", FormatLSK(150000000))
	assert.Equal(t, "0.00000001", FormatLSK(1))
}

func TestScriptFingerprint(t *testing.T) {

	a, err := ScriptFingerprint("echo hello")
	require.NoError(t, err)
	assert.Len(t, a, 64)

	b, err := ScriptFingerprint("echo hello ")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
