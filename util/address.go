package util

import (
	"encoding/base32"
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

const (
	// Human readable addresses are <prefix><body><checksum>, ie: lsk + 32 + 6
	ADDRESS_PREFIX_LEN   = 3
	ADDRESS_CHECKSUM_LEN = 6

	b32Standard = "ABCDEFGHIJKLMNOPQRSTUVWXYZ234567"
	b32Lisk     = "zxvcpmbn3465o978uyrtkqew2adsjhfg"
)

var (
	ErrInvalidAddress = errors.New("Invalid address")
)

// AddressToBinary converts a base32 (lisk32) address into the hex encoding of
// its 20 byte binary form, as expected by lisk-core's recipientAddress field.
// Checksum characters are dropped, not verified.
func AddressToBinary(address string) (string, error) {

	if len(address) <= ADDRESS_PREFIX_LEN+ADDRESS_CHECKSUM_LEN {
		return "", errors.Wrapf(ErrInvalidAddress, "Address '%s' too short", address)
	}

	body := address[ADDRESS_PREFIX_LEN : len(address)-ADDRESS_CHECKSUM_LEN]

	// Substitute each character of the lisk alphabet with the
	// character at the same index of the RFC 4648 alphabet
	var sb strings.Builder
	sb.Grow(len(body))

	for _, c := range body {
		idx := strings.IndexRune(b32Lisk, c)
		if idx < 0 {
			return "", errors.Wrapf(ErrInvalidAddress, "Character '%c' not in alphabet", c)
		}
		sb.WriteByte(b32Standard[idx])
	}

	decoded, err := base32.StdEncoding.DecodeString(sb.String())
	if err != nil {
		return "", errors.Wrapf(err, "Unable to decode address '%s'", address)
	}

	return hex.EncodeToString(decoded), nil
}
