package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"rendezvous/internal/domain"
)

// oneTimePreKeyBatchSize is how many one-time pre-keys register mints per call.
const oneTimePreKeyBatchSize = 10

// registerCmd mints a signed pre-key and a batch of one-time pre-keys,
// signs them, and publishes the bundle to the relay.
func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <username>",
		Short: "Publish your pre-key bundle to the relay",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			usernameValue := domain.Username(args[0])

			if err := appCtx.PreKeyService.GenerateAndRegister(
				cmd.Context(),
				passphrase,
				usernameValue,
				oneTimePreKeyBatchSize,
			); err != nil {
				return fmt.Errorf("registering bundle: %w", err)
			}

			fmt.Println("Registered pre-keys with relay")
			return nil
		},
	}
}
