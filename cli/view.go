package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/fahmaliyi/otpvault/logger"
	"github.com/fahmaliyi/otpvault/totp"
)

var errNoAccounts = errors.New("add an account before viewing")

type viewOptions struct {
	watch  bool
	plain  bool
	digits int
}

func bindViewFlags(cmd *cobra.Command, opts *viewOptions, digits int) {
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "keep refreshing the code every second")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "use numbered prompts instead of the interactive screen")
	cmd.Flags().IntVarP(&opts.digits, "digits", "d", digits, "number of digits in the code")
}

func newViewCommand(app *App) *cobra.Command {
	opts := &viewOptions{}
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show the code of an account and copy it to the clipboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, app, opts)
		},
	}
	bindViewFlags(cmd, opts, app.Config.Digits)
	return cmd
}

func runView(cmd *cobra.Command, app *App, opts *viewOptions) error {
	if opts.digits < 0 {
		return fmt.Errorf("digits must not be negative, got %d", opts.digits)
	}
	out := cmd.OutOrStdout()
	_, s, err := app.readVault()
	if err != nil {
		return err
	}
	if len(s.Accounts) == 0 {
		return errNoAccounts
	}

	names := s.Names()
	interactive := app.Interactive && !opts.plain

	var name string
	switch {
	case len(names) == 1:
		name = names[0]
	case interactive:
		chosen, ok, err := selectAccount(names, app.In, out)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		name = chosen
	default:
		printAccounts(out, names)
		idx, err := promptSelect(app.reader, out, len(names))
		if err != nil {
			return err
		}
		name = names[idx-1]
	}

	secret, _ := s.Secret(name)
	gen, err := totp.New(secret, totp.WithDigits(opts.digits))
	if err != nil {
		return err
	}

	if interactive && opts.watch {
		return runWatch(name, gen, app, out)
	}
	return streamCodes(cmd.Context(), out, gen, app.Clipboard, app.Log, opts.watch)
}

// streamCodes prints the current code, copying it whenever it changes. With
// watch set it refreshes once a second until ctx is done.
func streamCodes(ctx context.Context, w io.Writer, gen *totp.Generator, clip Clipboard, log *slog.Logger, watch bool) error {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var last string
	for {
		code, remain := gen.Generate()
		if code != last {
			last = code
			if err := clip.WriteAll(code); err != nil {
				log.Warn("clipboard unavailable", logger.Error(err))
			}
		}
		fmt.Fprintf(w, "\r%s (remain %ds) ", code, remain)
		if !watch {
			fmt.Fprintln(w)
			return nil
		}
		select {
		case <-ctx.Done():
			fmt.Fprintln(w)
			return nil
		case <-ticker.C:
		}
	}
}
