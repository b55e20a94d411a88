package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"example.com/roster/internal/client"
	"example.com/roster/internal/domain"
)

type mutation func(c *client.Client, ctx context.Context, activity domain.ActivityName, email string) (string, error)

func newSignUpCmd(newClient func() *client.Client) *cobra.Command {
	return newMutationCmd("signup", "Sign a student up for an activity", newClient, (*client.Client).SignUp)
}

func newUnregisterCmd(newClient func() *client.Client) *cobra.Command {
	return newMutationCmd("unregister", "Remove a student from an activity", newClient, (*client.Client).Unregister)
}

func newMutationCmd(use, short string, newClient func() *client.Client, run mutation) *cobra.Command {
	var email string

	mutationCmd := &cobra.Command{
		Use:   use + " ACTIVITY",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := run(newClient(), cmd.Context(), domain.ActivityName(args[0]), email)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), msg)
			return nil
		},
	}
	mutationCmd.Flags().StringVarP(&email, "email", "e", "", "student email")
	_ = mutationCmd.MarkFlagRequired("email")
	return mutationCmd
}
