package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newMemberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "member",
		Short: "Inspect and manage DAO membership",
	}
	cmd.AddCommand(
		newMemberListCmd(),
		newMemberAddCmd(),
		newMemberShowCmd(),
		newMemberVotesCmd(),
	)
	return cmd
}

func newMemberListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all members",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			view, err := client.Members()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Address", "Role"})
			for _, member := range view.Members {
				role := "member"
				if member.IsOwner {
					role = "owner"
				}
				t.AppendRow(table.Row{member.Address, role})
			}
			t.Render()
			return nil
		},
	}
}

func newMemberAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <address>",
		Short: "Authorize a new member (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			if err := client.AddMember(args[0]); err != nil {
				return err
			}

			cmd.Printf("member %s added\n", args[0])
			return nil
		},
	}
}

func newMemberShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <address>",
		Short: "Show the membership flags of an address",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			member, err := client.Member(args[0])
			if err != nil {
				return err
			}

			cmd.Printf("address:  %s\nisMember: %v\nisOwner:  %v\n",
				member.Address, member.IsMember, member.IsOwner)
			return nil
		},
	}
}

func newMemberVotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "votes <address>",
		Short: "Show the proposals an address has voted on",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			history, err := client.VotingHistory(args[0])
			if err != nil {
				return err
			}

			if len(history) == 0 {
				cmd.Println("no votes cast")
				return nil
			}
			for _, id := range history {
				fmt.Fprintf(cmd.OutOrStdout(), "proposal %d\n", id)
			}
			return nil
		},
	}
}
