package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hay-kot/criterio"
)

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Category string `json:"category"`
	Item     string `json:"item,omitempty"`
	Message  string `json:"message"`
}

// ValidateDeep performs comprehensive validation of the configuration including
// file accessibility and the remote URL. The configPath argument specifies the
// config file location to validate (empty string skips config file check).
// This calls Validate() first for basic structural validation, then adds I/O checks.
func (c *Config) ValidateDeep(configPath string) error {
	if err := c.Validate(); err != nil {
		return err
	}

	return criterio.ValidateStruct(
		c.validateFileAccess(configPath),
		criterio.Run("remote.url", c.Remote.URL, validRemoteURL),
	)
}

// Warnings returns non-fatal configuration issues.
func (c *Config) Warnings() []ValidationWarning {
	var warnings []ValidationWarning

	if !c.RemoteEnabled() {
		warnings = append(warnings, ValidationWarning{
			Category: "Remote",
			Item:     "remote.url",
			Message:  "no remote configured; sign up and sign in will fail",
		})
	}

	if c.Storage.Driver == DriverJSON && c.Database != DefaultConfig().Database {
		warnings = append(warnings, ValidationWarning{
			Category: "Storage",
			Item:     "database",
			Message:  "database settings are ignored by the json driver",
		})
	}

	return warnings
}

// validateFileAccess checks the config file, data directory, and snapshot file.
func (c *Config) validateFileAccess(configPath string) error {
	var errs criterio.FieldErrorsBuilder

	if err := validateConfigFile(configPath); err != nil {
		return err
	}

	if err := isDirectoryOrNotExist(c.DataDir); err != nil {
		errs = errs.Append("data_dir", err)
	}

	if c.Storage.Driver == DriverJSON {
		if err := isDirectoryOrNotExist(filepath.Dir(c.SnapshotFile())); err != nil {
			errs = errs.Append("storage.file", err)
		}
	}

	return errs.ToError()
}

func validateConfigFile(configPath string) error {
	if configPath == "" {
		return nil
	}

	info, err := os.Stat(configPath)
	if os.IsNotExist(err) {
		return nil // not found is fine, using defaults
	}
	if err != nil {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("cannot access: %w", err))
	}
	if info.IsDir() {
		return criterio.NewFieldErrors("config_file", fmt.Errorf("%s is a directory, not a file", configPath))
	}
	return nil
}

func isDirectoryOrNotExist(path string) error {
	if path == "" {
		return nil
	}
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil // will be created
	}
	if err != nil {
		return fmt.Errorf("cannot access: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("exists but is not a directory")
	}
	return nil
}

func validRemoteURL(raw string) error {
	if raw == "" {
		return nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host")
	}
	return nil
}
