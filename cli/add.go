package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fahmaliyi/otpvault/totp"
	"github.com/fahmaliyi/otpvault/vault"
)

func newAddCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add <account> <key>|[account] <otpauth-uri>",
		Short: "Add a new account",
		Long: "Add a new account from a Base32 secret key or an otpauth://totp URI.\n" +
			"The first add also sets the vault password; leave it empty to skip.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, secret, err := parseAddArgs(args)
			if err != nil {
				return err
			}
			return runAdd(cmd, app, name, secret)
		},
	}
}

func parseAddArgs(args []string) (name, secret string, err error) {
	last := args[len(args)-1]
	if totp.IsURI(last) {
		name, secret, err = totp.ParseURI(last)
		if err != nil {
			return "", "", err
		}
		if len(args) == 2 {
			name = args[0]
		}
		if name == "" {
			return "", "", errors.New("the uri has no account name, pass one explicitly")
		}
		if err := vault.ValidateAccount(name, secret); err != nil {
			return "", "", err
		}
		return name, secret, nil
	}

	if len(args) != 2 {
		return "", "", errors.New("requires an account name and a secret key")
	}
	secret = totp.NormalizeSecret(args[1])
	if err := totp.ValidateSecret(secret); err != nil {
		return "", "", fmt.Errorf("the key is not a valid base32 encoding: %w", err)
	}
	if err := vault.ValidateAccount(args[0], secret); err != nil {
		return "", "", err
	}
	return args[0], secret, nil
}

func runAdd(cmd *cobra.Command, app *App, name, secret string) error {
	v, s, err := app.readVault()
	if err != nil {
		return err
	}
	if s.Empty {
		if _, err := v.InitPassword(s); err != nil {
			return err
		}
	}

	if _, exists := s.Secret(name); exists {
		app.Log.Info("replacing account", slog.String("account", name))
		fmt.Fprintf(cmd.OutOrStdout(), "Replacing existing account %s\n", name)
	}
	s.Add(name, secret)

	ok, err := v.Save(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", result(ok, "successfully", "failed"))
	return nil
}

func result(ok bool, success, failure string) string {
	if ok {
		return success
	}
	return failure
}
