package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/secureshell/passman/internal/crypto"
	"github.com/secureshell/passman/internal/store"
	"github.com/secureshell/passman/internal/util"
	"github.com/secureshell/passman/internal/vault"
)

var fileModeTitles = map[string]string{"encrypt": "Encrypt", "decrypt": "Decrypt"}

type fileOptions struct {
	cipher string
	force  bool
}

func newFileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "file",
		Short: "Encrypt or decrypt standalone files",
		Long: `Encrypt or decrypt a file with a password of its own, independent of the vault.

Ciphers:
  layered  marker, key stream and byte shift, as used for the vault (default)
  xor      password key stream only
  caesar   password-derived byte shift only`,
	}

	cmd.AddCommand(
		newFileCipherCommand(a, "encrypt"),
		newFileCipherCommand(a, "decrypt"),
	)
	return cmd
}

func newFileCipherCommand(a *app, mode string) *cobra.Command {
	opts := &fileOptions{cipher: vault.AlgorithmLayered.String()}

	cmd := &cobra.Command{
		Use:   mode + " <input> <output>",
		Short: fileModeTitles[mode] + " a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFileCipher(cmd, a, mode, args[0], args[1], opts)
		},
	}

	cmd.Flags().StringVar(&opts.cipher, "cipher", opts.cipher, "Cipher (layered|xor|caesar)")
	cmd.Flags().BoolVarP(&opts.force, "force", "f", false, "Overwrite the output file")
	return cmd
}

func runFileCipher(cmd *cobra.Command, a *app, mode, input, output string, opts *fileOptions) error {
	alg, err := vault.ParseAlgorithm(opts.cipher)
	if err != nil {
		return fmt.Errorf("%w: %w", util.ErrInvalidInput, err)
	}

	if !opts.force {
		if _, err := os.Stat(output); err == nil {
			return util.InvalidInput("%s already exists, use --force to overwrite", output)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", store.ErrIO, err)
		}
	}

	data, err := os.ReadFile(filepath.Clean(input))
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}

	var password string
	if mode == "encrypt" {
		password, err = a.newPassword("File password: ", "")
	} else {
		password, err = a.prompter.Password("File password: ")
	}
	if err != nil {
		return err
	}

	c, err := vault.NewCipher(alg, password)
	if err != nil {
		return fmt.Errorf("%w: %w", util.ErrInvalidInput, err)
	}

	var result []byte
	if mode == "encrypt" {
		result = c.Encrypt(data)
		defer crypto.Zeroize(data)
	} else {
		if result, err = c.Decrypt(data); err != nil {
			return err
		}
		defer crypto.Zeroize(result)
	}

	if err := store.AtomicWriteFile(output, result); err != nil {
		return fmt.Errorf("%w: %v", store.ErrIO, err)
	}

	a.logger.Debug("file processed", "mode", mode, "cipher", alg.String(), "bytes", len(result))
	return writeOutput(cmd.OutOrStdout(), "✓ %sed %s -> %s (%s)\n", fileModeTitles[mode], input, output, alg)
}
