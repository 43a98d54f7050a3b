package payments

import (
	"fmt"
	"io/ioutil"
	"strings"

	"github.com/pkg/errors"

	"liskpool/storage"
	"liskpool/util"
)

const (
	LISK_CORE = "lisk-core"

	// token:transfer
	TRANSFER_MODULE_ID = 2
	TRANSFER_ASSET_ID  = 0

	// Appended to the script name once it has run
	DONE_SUFFIX = ".done"
)

// ScriptOptions are the per-pool values embedded in every command
type ScriptOptions struct {
	DelegateName      string
	NetworkIdentifier string
	Fee               int64
	FromAddress       string // lisk32 address whose nonce is used
	MultiSignature    bool
}

// PaymentCommand renders the shell block which creates, optionally co-signs, and sends
// one transfer. Relies on $NONCE and $PASSPHRASE (and $PASSPHRASE1/2 for multisig)
// being set by the script header.
func PaymentCommand(opts ScriptOptions, address string, amount int64) (string, error) {

	recipient, err := util.AddressToBinary(address)
	if err != nil {
		return "", errors.Wrapf(err, "Unable to convert recipient %s", address)
	}

	asset := fmt.Sprintf(`{"data": "%s payouts", "amount":%d,"recipientAddress":"%s"}`,
		opts.DelegateName, amount, recipient)

	lines := []string{
		fmt.Sprintf("TXC=`%s transaction:create %d %d %d --offline --network-identifier=%s --nonce=\\`echo $NONCE\\` --passphrase=\"\\`echo $PASSPHRASE\\`\" --asset='%s'`",
			LISK_CORE, TRANSFER_MODULE_ID, TRANSFER_ASSET_ID, opts.Fee, opts.NetworkIdentifier, asset),
	}

	if opts.MultiSignature {
		for _, p := range []string{"PASSPHRASE1", "PASSPHRASE2"} {
			lines = append(lines, fmt.Sprintf("TXC=`%s transaction:sign \\`echo $TXC|jq .transaction -r\\` --offline --network-identifier=%s --passphrase=\"\\`echo $%s\\`\"`",
				LISK_CORE, opts.NetworkIdentifier, p))
		}
	}

	lines = append(lines,
		"echo $TXC",
		"NONCE=$(($NONCE+1))",
		fmt.Sprintf("%s transaction:send `echo $TXC|jq .transaction -r`", LISK_CORE),
	)

	return strings.Join(lines, "\n"), nil
}

// RenderScript builds the complete payments script for the given payouts, in order
func RenderScript(opts ScriptOptions, payouts []storage.PayoutEntry) (string, error) {

	fromBinary, err := util.AddressToBinary(opts.FromAddress)
	if err != nil {
		return "", errors.Wrap(err, "Unable to convert sender address")
	}

	st := []string{
		"#!/bin/bash",
		"echo Write passphrase: ",
		"read -s PASSPHRASE",
	}

	if opts.MultiSignature {
		st = append(st,
			"echo Write first mandatory passphrase: ",
			"read -s PASSPHRASE1",
			"echo Write second mandatory passphrase: ",
			"read -s PASSPHRASE2",
		)
	}

	// Calculate initial nonce
	st = append(st, fmt.Sprintf("NONCE=`%s account:get %s | jq \".sequence.nonce\" -r`", LISK_CORE, fromBinary))

	for _, p := range payouts {
		cmd, err := PaymentCommand(opts, p.Address, p.Amount)
		if err != nil {
			return "", err
		}
		st = append(st, cmd)
	}

	// Never run the same payments twice
	st = append(st, fmt.Sprintf("mv \"$0\" \"$0%s\"", DONE_SUFFIX))

	return strings.Join(st, "\n") + "\n", nil
}

// SaveScript writes the script to path as an executable file
func SaveScript(path, script string) error {

	if err := ioutil.WriteFile(path, []byte(script), 0700); err != nil {
		return errors.Wrapf(err, "Unable to write payments to %s", path)
	}

	return nil
}
