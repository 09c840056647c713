package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rendezvous/internal/domain"
)

// startSessionCmd fetches and verifies a peer's current pre-key bundle and
// pins their identity key on trust-on-first-use.
func startSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-session <peer>",
		Short: "Pin a peer's identity key on first contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			peerUsername := domain.Username(args[0])

			if _, err := appCtx.SessionService.InitiateSession(
				cmd.Context(),
				domain.Username(username),
				peerUsername,
			); err != nil {
				return fmt.Errorf("starting session with %q: %w", peerUsername, err)
			}

			fmt.Printf("Session created with %s\n", peerUsername)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "your registered username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
