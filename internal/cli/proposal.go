package cli

import (
	"errors"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newProposalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "proposal",
		Short: "Create, inspect, vote on and execute proposals",
	}
	cmd.AddCommand(
		newProposalCreateCmd(),
		newProposalListCmd(),
		newProposalShowCmd(),
		newProposalVoteCmd(),
		newProposalExecuteCmd(),
	)
	return cmd
}

func newProposalCreateCmd() *cobra.Command {
	var (
		title    string
		short    string
		details  string
		propType uint8
		days     uint32
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new proposal",
		RunE: func(cmd *cobra.Command, args []string) error {
			if title == "" {
				return errors.New("--title is required")
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			id, err := client.CreateProposal(createProposalParams{
				Title:            title,
				ShortDesc:        short,
				DetailedDesc:     details,
				Type:             propType,
				VotingPeriodDays: days,
			})
			if err != nil {
				return err
			}

			cmd.Printf("proposal %d created\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "proposal title")
	cmd.Flags().StringVar(&short, "short", "", "short description")
	cmd.Flags().StringVar(&details, "details", "", "detailed description")
	cmd.Flags().Uint8Var(&propType, "type", 0, "proposal type: 0 general, 1 funding, 2 governance")
	cmd.Flags().Uint32Var(&days, "days", 7, "voting period in days")

	return cmd
}

func newProposalListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all proposals",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			proposals, err := client.Proposals()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"ID", "Title", "Type", "For", "Against", "Deadline", "Status"})
			for _, p := range proposals {
				t.AppendRow(table.Row{
					p.ID, p.Title, p.Type, p.VotesFor, p.VotesAgainst,
					p.VotingDeadline.Format("2006-01-02 15:04"), colorStatus(p.Status),
				})
			}
			t.Render()
			return nil
		},
	}
}

func newProposalShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show one proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			p, err := client.Proposal(id)
			if err != nil {
				return err
			}

			cmd.Printf("#%d %s [%s]\n", p.ID, p.Title, colorStatus(p.Status))
			cmd.Printf("type:      %s\n", p.Type)
			cmd.Printf("proposer:  %s\n", p.Proposer)
			cmd.Printf("created:   %s\n", p.CreatedAt.Format("2006-01-02 15:04:05"))
			cmd.Printf("deadline:  %s\n", p.VotingDeadline.Format("2006-01-02 15:04:05"))
			cmd.Printf("votes:     %d for / %d against\n", p.VotesFor, p.VotesAgainst)
			if p.ShortDesc != "" {
				cmd.Printf("summary:   %s\n", p.ShortDesc)
			}
			if p.DetailedDesc != "" {
				cmd.Printf("\n%s\n", p.DetailedDesc)
			}
			return nil
		},
	}
}

func newProposalVoteCmd() *cobra.Command {
	var against bool

	cmd := &cobra.Command{
		Use:   "vote <id>",
		Short: "Cast a vote on a proposal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			if err := client.Vote(id, !against); err != nil {
				return err
			}

			if against {
				cmd.Printf("voted against proposal %d\n", id)
			} else {
				cmd.Printf("voted for proposal %d\n", id)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&against, "against", false, "vote against instead of for")
	return cmd
}

func newProposalExecuteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "execute <id>",
		Short: "Execute a proposal whose voting period has ended (owner only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseProposalID(args[0])
			if err != nil {
				return err
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			if err := client.Execute(id); err != nil {
				return err
			}

			cmd.Printf("proposal %d executed\n", id)
			return nil
		},
	}
}

func parseProposalID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New("proposal id must be a non-negative integer: " + raw)
	}
	return id, nil
}

func colorStatus(status string) string {
	switch status {
	case "active":
		return color.GreenString(status)
	case "readyForExecution":
		return color.YellowString(status)
	case "executed":
		return color.CyanString(status)
	}
	return status
}
