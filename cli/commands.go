package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCommand(app *App) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <account>",
		Short: "Delete an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDelete(cmd, app, args[0], yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "delete without asking for confirmation")
	return cmd
}

func runDelete(cmd *cobra.Command, app *App, name string, yes bool) error {
	out := cmd.OutOrStdout()
	v, s, err := app.readVault()
	if err != nil {
		return err
	}
	if _, ok := s.Secret(name); !ok {
		return fmt.Errorf("account %s is not found", name)
	}

	if !yes {
		ok, err := confirm(app.reader, out, "Are you sure you want to delete "+name)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(out, "Abort.")
			return nil
		}
	}

	s.Remove(name)
	ok, err := v.Save(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Account %s %s.\n", name, result(ok, "has been deleted", "deleted failed"))
	return nil
}

func newPasswordCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "password",
		Short: "Change password",
		Long:  "Change the vault password. An empty password stores the vault without one.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, s, err := app.readVault()
			if err != nil {
				return err
			}
			if _, err := v.InitPassword(s); err != nil {
				return err
			}
			ok, err := v.Save(s)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Change password %s\n", result(ok, "successfully", "failed"))
			return nil
		},
	}
}

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List account names",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, s, err := app.readVault()
			if err != nil {
				return err
			}
			if len(s.Accounts) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No accounts")
				return nil
			}
			printAccounts(cmd.OutOrStdout(), s.Names())
			return nil
		},
	}
}
