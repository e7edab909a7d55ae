package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/domain"
	"github.com/secureshell/passman/internal/passman"
	"github.com/secureshell/passman/internal/store"
)

func newExportCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export the vault to an encrypted backup",
		Long: `Write every entry to an age-encrypted backup protected by a passphrase of
its own. The backup does not depend on the master password.

Example:
  passman export backup.age`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, a, args[0])
		},
	}
	return cmd
}

func runExport(cmd *cobra.Command, a *app, path string) (err error) {
	m, _, err := a.unlock()
	if err != nil {
		return err
	}

	passphrase, err := a.newPassword("Backup passphrase: ", "")
	if err != nil {
		return err
	}

	defer func() { a.audit(domain.OpExport, "", path, err) }()

	backup, err := collectBackup(m)
	if err != nil {
		return err
	}

	aw, err := store.NewAtomicWriter(path)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}
	if err := store.ExportBackup(aw, passphrase, a.cfg.Backup.ScryptWorkFactor, backup); err != nil {
		_ = aw.Abort()
		return err
	}
	if err := aw.Commit(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}

	return writeOutput(cmd.OutOrStdout(), "✓ Exported %d entries to %s\n", len(backup.Entries), path)
}

func collectBackup(m *passman.Manager) (*store.Backup, error) {
	b := &store.Backup{Version: store.BackupVersion}
	for _, service := range m.ListServices() {
		entry, err := m.GetEntry(service)
		if err != nil {
			return nil, err
		}
		password, err := m.GetPassword(service)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", service, err)
		}
		b.Entries = append(b.Entries, store.BackupRecord{
			Service:     entry.Service,
			Username:    entry.Username,
			Password:    password,
			ServiceLink: entry.ServiceLink,
		})
	}
	return b, nil
}
