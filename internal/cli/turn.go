package cli

import (
	"github.com/spf13/cobra"

	"github.com/mcoot/energyofmoney/internal/api/response"
)

func newTurnCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "turn",
		Short: "Turn actions",
	}

	cmd.AddCommand(newTurnActionCmd("roll", "Roll the die"))
	cmd.AddCommand(newTurnActionCmd("pass", "End your turn"))

	return cmd
}

func newTurnActionCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Post(roomPath(args[0], "turn", action), nil, &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}
}
