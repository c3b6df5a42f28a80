package identity

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"dao-governance/internal/governance"
)

// messageDigest hashes a message the way browser wallets do for
// personal_sign, so signatures produced by a real wallet verify here too.
func messageDigest(message string) []byte {
	prefixed := "\x19Ethereum Signed Message:\n" + strconv.Itoa(len(message)) + message
	return crypto.Keccak256([]byte(prefixed))
}

// Sign produces a hex-encoded 65-byte recoverable signature over the
// message.
func (u UserKeys) Sign(message string) (string, error) {
	if !u.Valid() {
		return "", errors.New("signing requires a loaded private key")
	}

	sig, err := crypto.Sign(messageDigest(message), u.privateKey.ToECDSA())
	if err != nil {
		return "", errors.New("failed to sign the message: " + err.Error())
	}
	return hex.EncodeToString(sig), nil
}

// RecoverAddress returns the address that signed the message. A malformed
// or mismatching signature yields an error, never a wrong address silently
// accepted.
func RecoverAddress(message, sigHex string) (common.Address, error) {
	sig, err := hex.DecodeString(sigHex)
	if err != nil {
		return common.Address{}, errors.New("failed to decode the signature: " + err.Error())
	}
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, errors.New("signature must be 65 bytes")
	}

	pub, err := crypto.SigToPub(messageDigest(message), sig)
	if err != nil {
		return common.Address{}, errors.New("failed to recover the public key: " + err.Error())
	}
	return crypto.PubkeyToAddress(*pub), nil
}

// ParseAddress validates and normalizes a hex address.
func ParseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w: %q", governance.ErrInvalidAddress, s)
	}
	return common.HexToAddress(s), nil
}
