package cli

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"dao-governance/internal/identity"
)

func newKeygenCmd() *cobra.Command {
	var outFile string

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a wallet keypair and print its address",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys, err := identity.GenerateKeys()
			if err != nil {
				return err
			}

			cmd.Printf("address: %s\n", keys.Address().Hex())

			if outFile == "" {
				cmd.Printf("private: %s\n", keys.PrivateHex())
				return nil
			}

			if _, err := os.Stat(outFile); err == nil {
				return errors.New("refusing to overwrite existing key file: " + outFile)
			}
			if err := os.WriteFile(outFile, []byte(keys.PrivateHex()+"\n"), 0o600); err != nil {
				return errors.New("failed to write the key file: " + err.Error())
			}

			cmd.Printf("private key written to %s\n", outFile)
			return nil
		},
	}

	cmd.Flags().StringVar(&outFile, "out", "", "write the private key to this file instead of stdout")
	return cmd
}

func newSessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Open a session and print the resolved caller context",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			session, err := client.Session()
			if err != nil {
				return err
			}

			cmd.Printf("address:  %s\nisOwner:  %v\nisMember: %v\ntoken:    %s\n",
				session.Address, session.IsOwner, session.IsMember, session.Token)
			return nil
		},
	}
}

func newStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the DAO aggregate stats",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			stats, err := client.Stats()
			if err != nil {
				return err
			}

			cmd.Printf("proposals:      %d\nactive:         %d\nmembers:        %d\nparticipation:  %d%%\n",
				stats.TotalProposals, stats.ActiveProposals, stats.TotalMembers, stats.AvgParticipation)
			return nil
		},
	}
}
