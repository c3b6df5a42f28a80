package cli

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func newTreasuryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treasury",
		Short: "Inspect and move treasury funds",
	}
	cmd.AddCommand(
		newTreasuryInfoCmd(),
		newTreasuryHistoryCmd(),
		newTreasuryDepositCmd(),
		newTreasuryWithdrawCmd(),
	)
	return cmd
}

func newTreasuryInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show balance and cumulative flows",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			info, err := client.Treasury()
			if err != nil {
				return err
			}

			cmd.Printf("balance: %s\ninflow:  %s\noutflow: %s\n",
				info.Balance, info.Inflow, info.Outflow)
			return nil
		},
	}
}

func newTreasuryHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show the balance snapshots, oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			history, err := client.TreasuryHistory()
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(os.Stdout)
			t.AppendHeader(table.Row{"Time", "Balance"})
			for _, snapshot := range history {
				t.AppendRow(table.Row{snapshot.At.Format("2006-01-02 15:04:05"), snapshot.Balance})
			}
			t.Render()
			return nil
		},
	}
}

func newTreasuryDepositCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deposit <amount>",
		Short: "Deposit to the treasury (smallest unit)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			if err := client.Deposit(args[0]); err != nil {
				return err
			}

			cmd.Printf("deposited %s\n", args[0])
			return nil
		},
	}
}

func newTreasuryWithdrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "withdraw <amount> <recipient>",
		Short: "Withdraw from the treasury (owner only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			if err := client.Withdraw(args[0], args[1]); err != nil {
				return err
			}

			cmd.Printf("withdrew %s to %s\n", args[0], args[1])
			return nil
		},
	}
}
