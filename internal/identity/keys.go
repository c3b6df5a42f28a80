package identity

import (
	"encoding/hex"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// UserKeys holds a secp256k1 keypair for one wallet identity.
type UserKeys struct {
	privateKey *secp256k1.PrivateKey
}

// GenerateKeys creates a fresh keypair.
func GenerateKeys() (UserKeys, error) {
	key, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return UserKeys{}, errors.New("failed to generate the keys: " + err.Error())
	}
	return UserKeys{privateKey: key}, nil
}

// KeysFromHex loads a keypair from a hex-encoded 32-byte private key.
func KeysFromHex(privHex string) (UserKeys, error) {
	raw, err := hex.DecodeString(privHex)
	if err != nil {
		return UserKeys{}, errors.New("failed to decode the private key: " + err.Error())
	}
	if len(raw) != secp256k1.PrivKeyBytesLen {
		return UserKeys{}, errors.New("private key must be 32 bytes")
	}
	return UserKeys{privateKey: secp256k1.PrivKeyFromBytes(raw)}, nil
}

func (u UserKeys) Valid() bool {
	return u.privateKey != nil
}

// Address derives the Ethereum-style address of the public key.
func (u UserKeys) Address() common.Address {
	return crypto.PubkeyToAddress(u.privateKey.ToECDSA().PublicKey)
}

// PrivateHex returns the hex-encoded private key for persisting to a key
// file.
func (u UserKeys) PrivateHex() string {
	return hex.EncodeToString(u.privateKey.Serialize())
}
