package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ghodss/yaml"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/afero"

	"github.com/bioarchive/dsclient/pkg/errors"
)

const (
	// Path is the default path to the dsclient config.
	Path = "~/.dsclient.yaml"

	// InitialConfigVersion is the version assumed for config files that
	// don't specify one.
	InitialConfigVersion = "v1"

	// SupportedConfigVersion is the config version supported by the
	// current dsclient binary.
	SupportedConfigVersion = "v1"

	// DefaultURL is the production Data Service API endpoint.
	DefaultURL = "https://api.bioarchive.org/api/v1"

	// DefaultBytesPerChunk is how much of a file we upload per chunk when
	// the config doesn't say otherwise.
	DefaultBytesPerChunk = 100 * 1024 * 1024
)

// parseConfigErrTemplate is a template for when the CLI fails to parse yaml
// configuration files. This can happen for a multitude of reasons, including
// extraneous fields and incorrect field types. However, the yaml library
// constructs errors in a way that loses context, and so we can only pass the
// error message on.
const parseConfigErrTemplate = "Configuration file could not be parsed. " +
	"Please review %q.\n" +
	"Common pitfalls include:\n" +
	" - Using the wrong types for fields\n" +
	" - Having extra fields inside the config file\n\n" +
	"For reference, here is the error from the parser:\n" +
	"%s"

// Config contains the settings needed to talk to the Data Service.
type Config struct {
	Version string `json:"version,omitempty"`

	// URL is the base URL of the Data Service API.
	URL string `json:"url,omitempty"`

	// AgentKey and UserKey are exchanged for short-lived API tokens.
	AgentKey string `json:"agent_key,omitempty"`
	UserKey  string `json:"user_key,omitempty"`

	// Auth is a statically configured API token with an unknown
	// expiration. AuthExpires is the unix timestamp the token expires on,
	// filled in when the token came from a key exchange.
	Auth        string `json:"auth,omitempty"`
	AuthExpires int64  `json:"auth_expires,omitempty"`

	// BytesPerChunk overrides the upload chunk size.
	BytesPerChunk int64 `json:"bytes_per_chunk,omitempty"`
}

func (c Config) getVersion() string {
	return c.Version
}

type incompatibleVersionError struct {
	path, exp, actual string
}

func (err incompatibleVersionError) Error() string {
	return err.FriendlyMessage()
}

func (err incompatibleVersionError) FriendlyMessage() string {
	return fmt.Sprintf("The configuration file %q is incompatible "+
		"with this version of dsclient.\n"+
		"Expected version %q, but got %q.", err.path, err.exp, err.actual)
}

type configInterface interface {
	getVersion() string
}

// homedirExpand will be overridden in mock tests.
var homedirExpand = homedir.Expand

// Parse loads the dsclient config from the default path. A missing config
// file is not an error: the zero config with defaults applied is returned so
// that a legacy token or keys can still come from flags.
func Parse() (Config, error) {
	path, err := GetPath()
	if err != nil {
		return Config{}, errors.WithContext(err, "expand config path")
	}

	config := Config{Version: InitialConfigVersion}
	if err := parseConfig(path, &config, SupportedConfigVersion); err != nil {
		if _, ok := err.(errors.FileNotFound); ok {
			return withDefaults(Config{Version: InitialConfigVersion}), nil
		}
		return Config{}, errors.WithContext(err, "parse")
	}
	return withDefaults(config), nil
}

// Write saves the given config to the default path with owner-only
// permissions, since it holds credentials.
func Write(cfg Config) error {
	cfg.Version = SupportedConfigVersion
	path, err := GetPath()
	if err != nil {
		return errors.WithContext(err, "expand config path")
	}

	yamlBytes, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithContext(err, "marshal")
	}

	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithContext(err, "create config directory")
	}
	if err := afero.WriteFile(fs, path, yamlBytes, 0600); err != nil {
		return errors.WithContext(err, "write")
	}
	return nil
}

// GetPath returns the expanded path to the dsclient config file.
func GetPath() (string, error) {
	return homedirExpand(Path)
}

func withDefaults(config Config) Config {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.BytesPerChunk == 0 {
		config.BytesPerChunk = DefaultBytesPerChunk
	}
	return config
}

func parseConfig(path string, config configInterface, expVersion string) error {
	configBytes, err := afero.ReadFile(fs, path)
	if err != nil {
		if isPathNotFoundError(err) {
			return errors.FileNotFound{Path: path}
		}
		return errors.WithContext(err, "read file")
	}

	err = yaml.Unmarshal(configBytes, config)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}

	if config.getVersion() != expVersion {
		return incompatibleVersionError{path, expVersion, config.getVersion()}
	}

	// Do a strict unmarshal to check for any extra fields. We do a non-strict
	// unmarshal first so that we can catch version errors before erroring on
	// extra fields.
	err = yaml.UnmarshalStrict(configBytes, config, yaml.DisallowUnknownFields)
	if err != nil {
		return errors.NewFriendlyError(parseConfigErrTemplate, path, err)
	}
	return nil
}

func isPathNotFoundError(err error) bool {
	return os.IsNotExist(err)
}
