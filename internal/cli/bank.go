package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mcoot/energyofmoney/internal/api/request"
	"github.com/mcoot/energyofmoney/internal/api/response"
	"github.com/mcoot/energyofmoney/internal/model"
)

// History is the response for the bank history endpoint
type History struct {
	Entries []model.LedgerEntry `json:"entries"`
}

func newBankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bank",
		Short: "Bank and ledger commands",
	}

	cmd.AddCommand(newBankTransferCmd())
	cmd.AddCommand(newBankAmountCmd("credit", "Borrow from the bank"))
	cmd.AddCommand(newBankAmountCmd("repay", "Repay outstanding credit"))
	cmd.AddCommand(newBankHistoryCmd())

	return cmd
}

func parseAmount(s string) (int64, error) {
	amount, err := strconv.ParseInt(s, 10, 64)
	if err != nil || amount <= 0 {
		return 0, fmt.Errorf("amount must be a positive integer, got %q", s)
	}
	return amount, nil
}

func newBankTransferCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "transfer <id> <recipient> <amount>",
		Short: "Pay another member by display name",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}

			var result response.Account
			req := request.TransferRequest{Recipient: args[1], Amount: amount}
			if err := client.Post(roomPath(args[0], "bank", "transfer"), req, &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}
}

func newBankAmountCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}

			var result response.Account
			req := request.AmountRequest{Amount: amount}
			if err := client.Post(roomPath(args[0], "bank", action), req, &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}
}

func newBankHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show your ledger history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result History

			if err := client.Get(roomPath(args[0], "bank", "history"), &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}
}
