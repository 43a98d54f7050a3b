package util

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"
)

// CryptoGenericHash returns the 32 byte blake2b digest of bufferBytes
func CryptoGenericHash(bufferBytes []byte) ([]byte, error) {

	// Generic hash of 32 bytes
	bufferBytesHashGen, err := blake2b.New(32, []byte{})
	if err != nil {
		return nil, errors.Wrap(err, "Unable create blake2b hash object")
	}

	// Write buffer bytes to hash
	if _, err = bufferBytesHashGen.Write(bufferBytes); err != nil {
		return nil, errors.Wrap(err, "Unable write buffer bytes to hash function")
	}

	return bufferBytesHashGen.Sum([]byte{}), nil
}

// ScriptFingerprint is the hex encoded generic hash of a generated payments script.
// Stored alongside each payout run so an operator can match a script file to its run.
func ScriptFingerprint(script string) (string, error) {

	h, err := CryptoGenericHash([]byte(script))
	if err != nil {
		return "", err
	}

	return hex.EncodeToString(h), nil
}

func AvailableNetworks() string {
	return strings.Join([]string{NETWORK_MAINNET, NETWORK_TESTNET}, ",")
}
