package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rendezvous/internal/domain"
)

// sendCmd performs a fresh X3DH handshake against the recipient's current
// pre-key bundle and relays a single sealed envelope.
func sendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "send <peer> <message>",
		Short: "Send an encrypted message to a peer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			peerUsername := domain.Username(args[0])
			plaintext := []byte(args[1])

			if err := appCtx.MessageService.SendMessage(
				cmd.Context(),
				passphrase,
				domain.Username(username),
				peerUsername,
				plaintext,
			); err != nil {
				return fmt.Errorf("sending message to %q: %w", peerUsername, err)
			}

			fmt.Println("Message sent")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "your registered username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
