package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeout(t *testing.T) {
	viper.Set("REQ_TIMEOUT", "")
	timeout := GetRequestTimeout()
	assert.Equal(t, timeout, defaultRequestTimeout)

	viper.Set("REQ_TIMEOUT", "14s")
	timeout = GetRequestTimeout()
	assert.Equal(t, timeout, 14*time.Second)

	viper.Set("REQ_TIMEOUT", "not-a-duration")
	assert.Equal(t, defaultRequestTimeout, GetRequestTimeout())

	viper.Set("REQ_TIMEOUT", "")
}

func TestPort(t *testing.T) {
	viper.Set("PORT", "")
	assert.Equal(t, defaultLocalPort, GetPort())

	viper.Set("PORT", "9001")
	assert.Equal(t, ":9001", GetPort())

	viper.Set("PORT", "")
}

func TestJournalBackend(t *testing.T) {
	viper.Set("JOURNAL_BACKEND", "")
	assert.Equal(t, "memory", GetJournalBackend())

	viper.Set("JOURNAL_BACKEND", "mongodb")
	assert.Equal(t, "mongodb", GetJournalBackend())

	viper.Set("JOURNAL_BACKEND", "")
}

func TestEventsBindAddr(t *testing.T) {
	viper.Set("EVENTS_BIND_ADDR", "")
	viper.Set("EVENTS_DISABLED", "")
	assert.Equal(t, defaultEventsAddr, GetEventsBindAddr())

	viper.Set("EVENTS_BIND_ADDR", "tcp://0.0.0.0:7777")
	assert.Equal(t, "tcp://0.0.0.0:7777", GetEventsBindAddr())

	viper.Set("EVENTS_DISABLED", "true")
	assert.Equal(t, "", GetEventsBindAddr())

	viper.Set("EVENTS_BIND_ADDR", "")
	viper.Set("EVENTS_DISABLED", "")
}

func TestParseGenesis(t *testing.T) {
	raw := []byte(`
owner: "0x90F79bf6EB2c4f870365E785982E1f101E93b906"
members:
  - "0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65"
initialBalance: "2500"
`)

	genesis, err := ParseGenesis(raw)
	require.NoError(t, err)
	assert.Equal(t, "0x90F79bf6EB2c4f870365E785982E1f101E93b906", genesis.Owner.Hex())
	require.Len(t, genesis.Members, 1)
	assert.Equal(t, "0x15d34AAf54267DB7D7c367839AAf71A00a2C6A65", genesis.Members[0].Hex())
	require.NotNil(t, genesis.InitialBalance)
	assert.Equal(t, "2500", genesis.InitialBalance.String())
}

func TestParseGenesisRejectsBadInput(t *testing.T) {
	_, err := ParseGenesis([]byte(`owner: "not-an-address"`))
	assert.Error(t, err)

	_, err = ParseGenesis([]byte(`
owner: "0x90F79bf6EB2c4f870365E785982E1f101E93b906"
members: ["xyz"]
`))
	assert.Error(t, err)

	_, err = ParseGenesis([]byte(`
owner: "0x90F79bf6EB2c4f870365E785982E1f101E93b906"
initialBalance: "1.5"
`))
	assert.Error(t, err)

	_, err = ParseGenesis([]byte("owner: [broken"))
	assert.Error(t, err)
}
