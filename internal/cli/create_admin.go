package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"todo-planner/internal/service"
)

// NewCreateAdminCommand creates the create-admin command. Admin accounts cannot be registered over
// HTTP.
func NewCreateAdminCommand(rootOpts *RootOptions) *cobra.Command {
	var in service.RegisterInput

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an administrator account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(rootOpts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			user, err := a.userSvc.CreateAdmin(cmd.Context(), in)
			if err != nil {
				return fmt.Errorf("create admin: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (id %d)\n", user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&in.Email, "email", "", "admin email")
	cmd.Flags().StringVar(&in.Name, "name", "Admin", "display name")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (at least 8 characters)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}
