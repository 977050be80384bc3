package cli

import (
	"bufio"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/fahmaliyi/otpvault/config"
	"github.com/fahmaliyi/otpvault/logger"
	"github.com/fahmaliyi/otpvault/vault"
)

// App carries what every command needs. Zero-valued fields are filled in by
// NewRootCommand.
type App struct {
	Config    *config.Config
	Log       *slog.Logger
	In        io.Reader
	Out       io.Writer
	Prompter  vault.Prompter
	Clipboard Clipboard
	// Interactive enables the bubbletea screens.
	Interactive bool

	reader *bufio.Reader
}

func (a *App) init() {
	if a.Config == nil {
		a.Config = &config.Config{File: config.DefaultFileName, Digits: 6}
	}
	if a.Log == nil {
		a.Log = slog.New(slog.DiscardHandler)
	}
	if a.In == nil {
		a.In = os.Stdin
		a.Interactive = isTerminal(os.Stdin)
	}
	if a.Out == nil {
		a.Out = os.Stdout
	}
	a.reader = bufio.NewReader(a.In)
	if a.Prompter == nil {
		a.Prompter = newLinePrompter(a.reader, a.In, a.Out)
	}
	if a.Clipboard == nil {
		a.Clipboard = systemClipboard{}
	}
}

func (a *App) openVault() (*vault.Vault, error) {
	path, err := a.Config.VaultPath()
	if err != nil {
		return nil, err
	}
	a.Log.Debug("using vault", logger.Path(path))
	return vault.NewVault(path, a.Prompter, vault.WithLogger(a.Log)), nil
}

// readVault opens the container and returns the handle with its state.
func (a *App) readVault() (*vault.Vault, *vault.State, error) {
	v, err := a.openVault()
	if err != nil {
		return nil, nil, err
	}
	s, err := v.Read()
	if err != nil {
		return nil, nil, err
	}
	return v, s, nil
}

// NewRootCommand builds the otpvault command tree. Running it without a
// subcommand shows a code, like "view".
func NewRootCommand(app *App) *cobra.Command {
	app.init()

	opts := &viewOptions{}
	root := &cobra.Command{
		Use:           "otpvault",
		Short:         "Password protected TOTP authenticator",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runView(cmd, app, opts)
		},
	}
	root.SetIn(app.In)
	root.SetOut(app.Out)
	bindViewFlags(root, opts, app.Config.Digits)

	root.AddCommand(
		newViewCommand(app),
		newAddCommand(app),
		newDeleteCommand(app),
		newPasswordCommand(app),
		newListCommand(app),
	)
	return root
}
