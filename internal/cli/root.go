package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/config"
	"github.com/secureshell/passman/internal/logging"
	"github.com/secureshell/passman/internal/passman"
	"github.com/secureshell/passman/internal/store"
)

const version = "1.0.0"

// app carries the state shared by every command of one invocation.
// The manager is created once, on first use, and handed to each command.
type app struct {
	cfg      *config.Config
	cfgFile  string
	dataDir  string
	verbose  bool
	prompter Prompter
	logger   *slog.Logger

	store   *store.FileStore
	journal *store.Journal
	manager *passman.Manager
}

// NewRootCommand builds the command tree. A nil cfg is loaded from --config,
// and a nil prompter reads from the terminal.
func NewRootCommand(cfg *config.Config, p Prompter) *cobra.Command {
	return newRootCommand(newApp(cfg, p))
}

func newApp(cfg *config.Config, p Prompter) *app {
	if p == nil {
		p = newTerminalPrompter(os.Stdin, os.Stderr)
	}
	return &app{cfg: cfg, prompter: p, logger: logging.Discard()}
}

func newRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passman",
		Short: "A local, file-backed password manager",
		Long: `Passman keeps service credentials in a single encrypted vault file,
unlocked by one master password. Everything stays on this machine.

Data lives in the data directory (see --data-dir or data_dir in the config):
  master.txt     master password hash and salt
  passwords.txt  the encrypted vault
  journal.db     audit log and previous versions of the vault

Set PASSMAN_MASTER to supply the master password without a prompt.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default is $HOME/.config/passman/config.yaml)")
	cmd.PersistentFlags().StringVar(&a.dataDir, "data-dir", "", "directory holding the master and vault files")
	cmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(
		newInitCommand(a),
		newAddCommand(a),
		newGetCommand(a),
		newListCommand(a),
		newRemoveCommand(a),
		newUpdateCommand(a),
		newRotateCommand(a),
		newPasswdCommand(a),
		newPassgenCommand(a),
		newFileCommand(a),
		newHistoryCommand(a),
		newRestoreCommand(a),
		newAuditLogCommand(a),
		newExportCommand(a),
		newImportCommand(a),
		newStatusCommand(a),
		newDoctorCommand(a),
	)
	return cmd
}

// Execute runs the command line tool.
func Execute() error {
	a := newApp(nil, nil)
	defer a.close()
	return newRootCommand(a).Execute()
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.cfg == nil {
		path := a.cfgFile
		if path == "" {
			p, err := config.DefaultConfigPath()
			if err != nil {
				return err
			}
			path = p
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		a.cfg = cfg
	}
	if a.dataDir != "" {
		a.cfg.DataDir = a.dataDir
	}

	logger, err := logging.New(cmd.ErrOrStderr(), a.cfg.Log.Level, a.cfg.Log.Format, a.verbose)
	if err != nil {
		return fmt.Errorf("invalid log config: %w", err)
	}
	a.logger = logger
	return nil
}

// openStore opens the journal and the file store without reading the vault.
func (a *app) openStore() *store.FileStore {
	if a.store != nil {
		return a.store
	}

	opts := []store.FileStoreOption{
		store.WithFileNames(a.cfg.MasterFile, a.cfg.VaultFile),
		store.WithStoreLogger(a.logger),
	}
	if err := os.MkdirAll(a.cfg.DataDir, 0o700); err != nil {
		a.logger.Warn("failed to create data directory", "path", a.cfg.DataDir, "error", err)
	} else if j, err := store.OpenJournal(a.cfg.JournalPath()); err != nil {
		a.logger.Warn("journal unavailable, continuing without history", "path", a.cfg.JournalPath(), "error", err)
	} else {
		a.journal = j
		opts = append(opts, store.WithJournal(j, a.cfg.HistoryLimit))
	}

	a.store = store.NewFileStore(a.cfg.DataDir, opts...)
	return a.store
}

// openVault returns the manager, loading the master credential and entries on first use.
func (a *app) openVault() (*passman.Manager, error) {
	if a.manager != nil {
		return a.manager, nil
	}

	s := a.openStore()
	opts := []passman.Option{
		passman.WithLogger(a.logger),
		passman.WithSaltLength(a.cfg.SaltLength),
	}
	if a.journal != nil {
		opts = append(opts, passman.WithAuditor(a.journal))
	}

	m := passman.New(s, opts...)
	if err := m.Load(); err != nil {
		return nil, err
	}
	a.manager = m
	return m, nil
}

// unlock loads the vault and checks the master password.
// It returns the manager and the password that unlocked it.
func (a *app) unlock() (*passman.Manager, string, error) {
	m, err := a.openVault()
	if err != nil {
		return nil, "", err
	}
	if !m.HasMasterPassword() {
		return nil, "", fmt.Errorf("%w: run 'passman init' first", passman.ErrNoMaster)
	}

	pw, err := a.masterPassword("Master password: ")
	if err != nil {
		return nil, "", err
	}
	if !m.Authenticate(pw) {
		a.logger.Debug("master password rejected")
		return nil, "", passman.ErrAuthFailed
	}
	return m, pw, nil
}

// close releases the journal. It is safe to call more than once.
func (a *app) close() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.logger.Warn("failed to close journal", "error", err)
		}
	}
	a.journal = nil
	a.store = nil
	a.manager = nil
}
