// Package cli implements the daoctl command tree: a terminal client for
// every operation the governance API exposes.
package cli

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"dao-governance/internal/identity"
)

const defaultServerURL = "http://localhost:8077"

var (
	flagServerURL string
	flagKeyHex    string
	flagKeyFile   string
)

func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "daoctl",
		Short:         "Command-line client for the DAO governance service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env is optional, flags and env vars win over it
			_ = godotenv.Load()
		},
	}

	root.PersistentFlags().StringVar(&flagServerURL, "server", "", "governance server URL (env DAOCTL_URL)")
	root.PersistentFlags().StringVar(&flagKeyHex, "key", "", "hex private key (env DAOCTL_KEY)")
	root.PersistentFlags().StringVar(&flagKeyFile, "keyfile", "", "path to a key file (env DAOCTL_KEYFILE)")

	root.AddCommand(
		newKeygenCmd(),
		newSessionCmd(),
		newMemberCmd(),
		newProposalCmd(),
		newTreasuryCmd(),
		newStatsCmd(),
	)

	return root
}

func serverURL() string {
	if flagServerURL != "" {
		return flagServerURL
	}
	if url := os.Getenv("DAOCTL_URL"); url != "" {
		return url
	}
	return defaultServerURL
}

// loadKeys resolves the signing key from flag, env or key file. Commands
// that only read the API tolerate a missing key.
func loadKeys() (identity.UserKeys, error) {
	keyHex := flagKeyHex
	if keyHex == "" {
		keyHex = os.Getenv("DAOCTL_KEY")
	}
	if keyHex != "" {
		return identity.KeysFromHex(strings.TrimSpace(keyHex))
	}

	keyFile := flagKeyFile
	if keyFile == "" {
		keyFile = os.Getenv("DAOCTL_KEYFILE")
	}
	if keyFile != "" {
		raw, err := os.ReadFile(keyFile)
		if err != nil {
			return identity.UserKeys{}, errors.New("failed to read the key file: " + err.Error())
		}
		return identity.KeysFromHex(strings.TrimSpace(string(raw)))
	}

	return identity.UserKeys{}, nil
}

func newAPIClient() (*Client, error) {
	keys, err := loadKeys()
	if err != nil {
		return nil, err
	}
	return NewClient(serverURL(), keys), nil
}
