package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/domain"
	"github.com/secureshell/passman/internal/passman"
	"github.com/secureshell/passman/internal/store"
)

func newImportCommand(a *app) *cobra.Command {
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import entries from an encrypted backup",
		Long: `Read a backup written by 'passman export' and add its entries to the vault.
Entries whose service already exists (ignoring case) are skipped unless
--overwrite is given.

Example:
  passman import backup.age
  passman import backup.age --overwrite`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, a, args[0], overwrite)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing entries")
	return cmd
}

type importResult struct {
	added, replaced, skipped int
}

func runImport(cmd *cobra.Command, a *app, path string, overwrite bool) (err error) {
	m, _, err := a.unlock()
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}
	defer f.Close()

	passphrase, err := a.prompter.Password("Backup passphrase: ")
	if err != nil {
		return err
	}

	var res importResult
	defer func() {
		a.audit(domain.OpImport, "", fmt.Sprintf("%s: %d added, %d replaced, %d skipped", path, res.added, res.replaced, res.skipped), err)
	}()

	backup, err := store.ImportBackup(f, passphrase)
	if err != nil {
		return err
	}

	res, err = importEntries(m, backup.Entries, overwrite)
	if err != nil {
		return err
	}

	return writeOutput(cmd.OutOrStdout(), "✓ Imported %s: %d added, %d replaced, %d skipped\n", path, res.added, res.replaced, res.skipped)
}

func importEntries(m *passman.Manager, records []store.BackupRecord, overwrite bool) (importResult, error) {
	var res importResult
	for _, rec := range records {
		existing, err := m.GetEntry(rec.Service)
		switch {
		case err == nil && !overwrite:
			res.skipped++
		case err == nil:
			if err := m.UpdateEntry(existing.Service, rec.Username, rec.Password, passman.WithServiceLink(rec.ServiceLink)); err != nil {
				return res, fmt.Errorf("entry %q: %w", rec.Service, err)
			}
			res.replaced++
		default:
			if err := m.AddEntry(rec.Service, rec.Username, rec.Password, passman.WithServiceLink(rec.ServiceLink)); err != nil {
				return res, fmt.Errorf("entry %q: %w", rec.Service, err)
			}
			res.added++
		}
	}
	return res, nil
}
