package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/mcoot/energyofmoney/internal/api/request"
	"github.com/mcoot/energyofmoney/internal/api/response"
)

func roomPath(id string, parts ...string) string {
	p := "/api/v1/rooms/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomListCmd())
	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomGetCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomLeaveCmd())
	cmd.AddCommand(newRoomReadyCmd())
	cmd.AddCommand(newRoomStartCmd())

	return cmd
}

func newRoomListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List open rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.RoomList

			if err := client.Get("/api/v1/rooms", &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}
}

func newRoomCreateCmd() *cobra.Command {
	var req request.CreateRoomRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room and join it",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Post("/api/v1/rooms", req, &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "Room name")
	cmd.Flags().StringVar(&req.Password, "password", "", "Password required to join")
	cmd.Flags().IntVar(&req.MaxPlayers, "max-players", 0, "Capacity, 2 to 10 (default: server default)")
	cmd.Flags().IntVar(&req.TurnDurationSeconds, "turn-seconds", 0, "Seconds per turn (default: server default)")
	cmd.Flags().IntVar(&req.GameDurationSeconds, "game-seconds", 0, "Seconds per game (default: server default)")
	cmd.Flags().Int64Var(&req.StartingBalance, "starting-balance", 0, "Balance each member starts with")
	cmd.Flags().BoolVar(&req.ManualStart, "manual-start", false, "Only the creator starts the game")
	cmd.Flags().Int64Var(&req.WinPassiveIncome, "win-passive-income", 0, "Passive income that wins the game (0 disables)")

	return cmd
}

func newRoomGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Get room details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Get(roomPath(args[0]), &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}
}

func newRoomJoinCmd() *cobra.Command {
	var password string

	cmd := &cobra.Command{
		Use:   "join <id>",
		Short: "Join a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			req := request.JoinRoomRequest{Password: password}
			if err := client.Post(roomPath(args[0], "join"), req, &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "Room password")

	return cmd
}

func newRoomLeaveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "leave <id>",
		Short: "Leave a room",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]

			if err := client.Post(roomPath(id, "leave"), nil, nil); err != nil {
				return err
			}

			out := output(cmd)
			out.PrintMessage(fmt.Sprintf("Left room %s", id))
			return nil
		},
	}
}

func newRoomReadyCmd() *cobra.Command {
	var notReady bool

	cmd := &cobra.Command{
		Use:   "ready <id>",
		Short: "Mark yourself ready to start",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			ready := !notReady
			req := request.ReadyRequest{Ready: &ready}
			if err := client.Post(roomPath(args[0], "ready"), req, &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}

	cmd.Flags().BoolVar(&notReady, "not", false, "Withdraw readiness instead")

	return cmd
}

func newRoomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <id>",
		Short: "Start the game (creator only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result response.Room

			if err := client.Post(roomPath(args[0], "start"), nil, &result); err != nil {
				return err
			}

			out := output(cmd)
			out.Print(result)
			return nil
		},
	}
}
