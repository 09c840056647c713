package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rendezvous/internal/domain"
)

// recvCmd drains whatever messages are queued for the caller and prints
// each decrypted plaintext.
func recvCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recv",
		Short: "Receive and decrypt pending messages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := appCtx.MessageService.ReceiveMessage(
				cmd.Context(),
				passphrase,
				domain.Username(username),
				0,
			)
			if err != nil {
				return fmt.Errorf("receiving messages: %w", err)
			}

			for _, msg := range messages {
				fmt.Printf("[%s] %s\n", msg.From, msg.Plaintext)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "your registered username")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
