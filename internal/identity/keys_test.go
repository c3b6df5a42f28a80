package identity_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dao-governance/internal/identity"
)

func TestGenerateKeys(t *testing.T) {
	keys, err := identity.GenerateKeys()
	require.NoError(t, err)
	assert.True(t, keys.Valid())

	address := keys.Address().Hex()
	assert.True(t, strings.HasPrefix(address, "0x"))
	assert.Len(t, address, 42)

	// a different keypair derives a different address
	other, err := identity.GenerateKeys()
	require.NoError(t, err)
	assert.NotEqual(t, address, other.Address().Hex())
}

func TestKeysFromHexRoundtrip(t *testing.T) {
	keys, err := identity.GenerateKeys()
	require.NoError(t, err)

	loaded, err := identity.KeysFromHex(keys.PrivateHex())
	require.NoError(t, err)
	assert.Equal(t, keys.Address(), loaded.Address())

	_, err = identity.KeysFromHex("not-hex")
	assert.Error(t, err)

	_, err = identity.KeysFromHex("abcd")
	assert.Error(t, err, "too short to be a private key")
}

func TestSignAndRecover(t *testing.T) {
	keys, err := identity.GenerateKeys()
	require.NoError(t, err)

	message := "Sign in to the DAO governance dashboard\nNonce: abc"
	signature, err := keys.Sign(message)
	require.NoError(t, err)

	recovered, err := identity.RecoverAddress(message, signature)
	require.NoError(t, err)
	assert.Equal(t, keys.Address(), recovered)

	// a different message does not recover the signer's address
	other, err := identity.RecoverAddress("tampered message", signature)
	if err == nil {
		assert.NotEqual(t, keys.Address(), other)
	}

	_, err = identity.RecoverAddress(message, "zzzz")
	assert.Error(t, err)

	_, err = identity.RecoverAddress(message, "abcd")
	assert.Error(t, err, "signature too short")
}

func TestSignRequiresKey(t *testing.T) {
	var empty identity.UserKeys
	assert.False(t, empty.Valid())

	_, err := empty.Sign("msg")
	assert.Error(t, err)
}

func TestParseAddress(t *testing.T) {
	address, err := identity.ParseAddress("0x90F79bf6EB2c4f870365E785982E1f101E93b906")
	require.NoError(t, err)
	assert.Equal(t, "0x90F79bf6EB2c4f870365E785982E1f101E93b906", address.Hex())

	// lowercase input normalizes to the checksummed form
	address, err = identity.ParseAddress("0x90f79bf6eb2c4f870365e785982e1f101e93b906")
	require.NoError(t, err)
	assert.Equal(t, "0x90F79bf6EB2c4f870365E785982E1f101E93b906", address.Hex())

	_, err = identity.ParseAddress("hello")
	assert.Error(t, err)

	_, err = identity.ParseAddress("0x1234")
	assert.Error(t, err)
}
