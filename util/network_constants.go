package util

import (
	"fmt"
)

const (
	NETWORK_MAINNET = "mainnet"
	NETWORK_TESTNET = "testnet"

	// 1 LSK = 10^8 beddows
	BEDDOWS_PER_LSK = 100000000
)

type NetworkConstants struct {
	Name              string
	NetworkIdentifier string
	TokenSymbol       string
	TransferFee       int64 // Flat fee, in beddows, of a token transfer (module 2, asset 0)
	DefaultAPI        string
}

// For updating, the identifier can be read from a running node
// curl -Ss http://localhost:4000/api/node/info | jq -r .data.networkIdentifier

func GetNetworkConstants(network string) (*NetworkConstants, error) {

	switch network {
	case NETWORK_MAINNET:
		return &NetworkConstants{
			NETWORK_MAINNET,
			"4c09e6a781fc4c7bdb936ee815de8f94190f8a7519becd9de2081832be309a99",
			"lsk", 100000, "https://service.lisk.com/api/v2/",
		}, nil
	case NETWORK_TESTNET:
		return &NetworkConstants{
			NETWORK_TESTNET,
			"15f0dacc1060e91818224a94286b13aa04279c640bd5d6f193182031d133df7c",
			"lsk", 100000, "https://testnet-service.lisk.com/api/v2/",
		}, nil
	}

	// Unknown network
	return nil, fmt.Errorf("No such network '%s' exists", network)
}

func IsValidNetwork(maybeNetwork string) bool {
	return maybeNetwork == NETWORK_MAINNET || maybeNetwork == NETWORK_TESTNET
}
