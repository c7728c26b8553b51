package cli

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/devws-io/devws/internal/logging"
	"github.com/devws-io/devws/internal/secrets"
	"github.com/devws-io/devws/internal/utils"
)

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "Back up the personal dotenv file to the system keychain",
	Long: `Back up and restore the configured dotenv file (typically ~/.env) through
the operating system keychain. The file holds credentials, so it never goes
to cloud storage.`,
}

var envBackupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Store the dotenv file in the keychain",
	RunE:  runEnvBackup,
}

var envRestoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Write the stored dotenv file back to disk",
	Long: `Write the keychain copy of the dotenv file back to disk. An existing file
with different content is only overwritten with --force.`,
	RunE: runEnvRestore,
}

var envStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Compare the dotenv file with its keychain copy",
	RunE:  runEnvStatus,
}

// newSecrets is overridable in tests
var newSecrets = func() secrets.Store {
	return secrets.NewKeyring()
}

func init() {
	envCmd.AddCommand(envBackupCmd)
	envCmd.AddCommand(envRestoreCmd)
	envCmd.AddCommand(envStatusCmd)
	rootCmd.AddCommand(envCmd)
}

type envOutput struct {
	Path   string `json:"path"`
	Secret string `json:"secret"`
	Bytes  int    `json:"bytes"`
	SHA256 string `json:"sha256"`
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func runEnvBackup(cmd *cobra.Command, args []string) error {
	writer := newOutput()
	path, err := cfg.ExpandEnvFile()
	if err != nil {
		return utils.NewAppError(utils.ErrCodeConfigInvalid, err.Error())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return utils.NewAppError(utils.ErrCodeLocalIOError,
				fmt.Sprintf("%s does not exist; nothing to back up", path))
		}
		return utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
	}

	if err := newSecrets().Put(cfg.EnvSecretName, data); err != nil {
		return utils.NewAppError(utils.ErrCodeSecretsError, err.Error())
	}
	logger.Info("dotenv backed up", logging.F("secret", cfg.EnvSecretName), logging.F("bytes", len(data)))

	writer.Log("Backed up %s (%d bytes) to the keychain.", path, len(data))
	return writer.WriteSuccess(cmd.CommandPath(), envOutput{
		Path:   path,
		Secret: cfg.EnvSecretName,
		Bytes:  len(data),
		SHA256: sha256Hex(data),
	})
}

func runEnvRestore(cmd *cobra.Command, args []string) error {
	writer := newOutput()
	path, err := cfg.ExpandEnvFile()
	if err != nil {
		return utils.NewAppError(utils.ErrCodeConfigInvalid, err.Error())
	}

	stored, err := newSecrets().Get(cfg.EnvSecretName)
	if err != nil {
		if errors.Is(err, secrets.ErrNotFound) {
			return utils.NewAppError(utils.ErrCodeSecretsError,
				fmt.Sprintf("no backup named %q in the keychain; run 'devws env backup' first", cfg.EnvSecretName))
		}
		return utils.NewAppError(utils.ErrCodeSecretsError, err.Error())
	}

	if existing, err := os.ReadFile(path); err == nil {
		if bytes.Equal(existing, stored) {
			writer.Log("%s already matches the keychain copy.", path)
			return writer.WriteSuccess(cmd.CommandPath(), envOutput{
				Path:   path,
				Secret: cfg.EnvSecretName,
				Bytes:  len(stored),
				SHA256: sha256Hex(stored),
			})
		}
		if !globalFlags.Force {
			return utils.NewAppError(utils.ErrCodeLocalIOError,
				fmt.Sprintf("%s exists with different content; use --force to overwrite", path))
		}
	} else if !os.IsNotExist(err) {
		return utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
	}

	if err := os.MkdirAll(filepath.Dir(path), utils.DefaultDirPerm); err != nil {
		return utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
	}
	if err := os.WriteFile(path, stored, utils.DefaultFilePerm); err != nil {
		return utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
	}
	logger.Info("dotenv restored", logging.F("path", path), logging.F("bytes", len(stored)))

	writer.Log("Restored %s (%d bytes) from the keychain.", path, len(stored))
	return writer.WriteSuccess(cmd.CommandPath(), envOutput{
		Path:   path,
		Secret: cfg.EnvSecretName,
		Bytes:  len(stored),
		SHA256: sha256Hex(stored),
	})
}

type envStatusOutput struct {
	Path         string `json:"path"`
	Secret       string `json:"secret"`
	State        string `json:"state"`
	LocalSHA256  string `json:"localSha256,omitempty"`
	SecretSHA256 string `json:"secretSha256,omitempty"`
}

func runEnvStatus(cmd *cobra.Command, args []string) error {
	writer := newOutput()
	path, err := cfg.ExpandEnvFile()
	if err != nil {
		return utils.NewAppError(utils.ErrCodeConfigInvalid, err.Error())
	}

	out := envStatusOutput{Path: path, Secret: cfg.EnvSecretName}

	local, err := os.ReadFile(path)
	hasLocal := err == nil
	if err != nil && !os.IsNotExist(err) {
		return utils.NewAppError(utils.ErrCodeLocalIOError, err.Error())
	}

	stored, err := newSecrets().Get(cfg.EnvSecretName)
	hasSecret := err == nil
	if err != nil && !errors.Is(err, secrets.ErrNotFound) {
		return utils.NewAppError(utils.ErrCodeSecretsError, err.Error())
	}

	switch {
	case hasLocal && hasSecret && bytes.Equal(local, stored):
		out.State = "In Sync"
	case hasLocal && hasSecret:
		out.State = "Content Differs"
	case hasLocal:
		out.State = "Local Only"
	case hasSecret:
		out.State = "Keychain Only"
	default:
		out.State = "Neither"
	}
	if hasLocal {
		out.LocalSHA256 = sha256Hex(local)
	}
	if hasSecret {
		out.SecretSHA256 = sha256Hex(stored)
	}

	writer.Log("%s: %s", path, out.State)
	return writer.WriteSuccess(cmd.CommandPath(), out)
}
