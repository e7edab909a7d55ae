package cli

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/crypto"
)

// errDoctorIssues is returned when at least one check failed
var errDoctorIssues = errors.New("health check found issues")

type doctorReport struct {
	out      io.Writer
	issues   int
	warnings int
}

func (r *doctorReport) ok(format string, args ...interface{}) {
	_ = writeOutput(r.out, "   ✓ "+format+"\n", args...)
}

func (r *doctorReport) warn(format string, args ...interface{}) {
	r.warnings++
	_ = writeOutput(r.out, "   ! "+format+"\n", args...)
}

func (r *doctorReport) fail(format string, args ...interface{}) {
	r.issues++
	_ = writeOutput(r.out, "   ✗ "+format+"\n", args...)
}

func (r *doctorReport) section(title string) {
	_ = writeOutput(r.out, "\n%s\n", title)
}

func newDoctorCommand(a *app) *cobra.Command {
	var fix bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Perform health checks",
		Long: `Check the data files and the journal.

This command checks:
- File permissions of the master and vault files
- That the vault decrypts under the stored master hash
- That every stored password decodes
- Journal audit records and version digests

No password is needed. With --fix, loose file permissions are tightened.

Example:
  passman doctor
  passman doctor --fix`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd, a, fix)
		},
	}

	cmd.Flags().BoolVar(&fix, "fix", false, "Tighten file permissions")
	return cmd
}

func runDoctor(cmd *cobra.Command, a *app, fix bool) error {
	s := a.openStore()
	r := &doctorReport{out: cmd.OutOrStdout()}

	_ = writeOutput(r.out, "Passman Health Check\n")
	_ = writeOutput(r.out, "====================\n")

	r.section("1. File Permissions")
	if fix {
		if err := s.CheckPermissions(); err != nil {
			r.fail("Could not fix permissions: %v", err)
		}
	}
	for _, p := range []string{s.MasterPath(), s.VaultPath()} {
		checkFileMode(r, p)
	}

	r.section("2. Master Credential")
	cred, hasMaster, err := s.LoadMaster()
	switch {
	case err != nil:
		r.fail("Master file unreadable: %v", err)
	case hasMaster:
		r.ok("Master file present")
	default:
		r.warn("No master password set (run 'passman init')")
	}

	r.section("3. Vault Contents")
	if hasMaster {
		entries, err := s.LoadEntries(cred.Hash)
		if err != nil {
			r.fail("Vault does not decrypt under the stored master hash: %v", err)
		} else {
			r.ok("Vault decrypts (%d entries)", len(entries))
			bad := 0
			for service, e := range entries {
				if _, err := crypto.OpenPassword(e.EncryptedPassword, cred.Hash); err != nil {
					r.fail("Entry %q has a malformed password: %v", service, err)
					bad++
				}
			}
			if bad == 0 && len(entries) > 0 {
				r.ok("All stored passwords decode")
			}
		}
	} else if s.HasVault() {
		r.warn("Vault file exists without a master password")
	} else {
		r.ok("No vault yet")
	}

	r.section("4. Journal")
	if j := s.Journal(); j == nil {
		r.warn("Journal unavailable, history and audit log are disabled")
	} else if err := j.VerifyIntegrity(); err != nil {
		r.fail("Journal integrity check failed: %v", err)
	} else {
		r.ok("Journal intact (%s)", j.Path())
	}

	r.section("5. Clipboard")
	if clipboardIsAvailable() {
		r.ok("Clipboard available")
	} else {
		r.warn("Clipboard unavailable, --copy will not work")
	}

	_ = writeOutput(r.out, "\n%d issue(s), %d warning(s)\n", r.issues, r.warnings)
	if r.issues > 0 {
		return fmt.Errorf("%w: %d issue(s)", errDoctorIssues, r.issues)
	}
	return nil
}

func checkFileMode(r *doctorReport, path string) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		r.ok("%s not created yet", path)
		return
	}
	if err != nil {
		r.fail("Cannot check %s: %v", path, err)
		return
	}

	perm := info.Mode().Perm()
	switch {
	case perm == 0o600:
		r.ok("%s permissions: %o", path, perm)
	case perm&0o077 != 0:
		r.fail("%s permissions: %o (too permissive, run 'passman doctor --fix')", path, perm)
	default:
		r.warn("%s permissions: %o (0600 recommended)", path, perm)
	}
}
