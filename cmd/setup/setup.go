package setup

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bioarchive/dsclient/cmd/util"
	"github.com/bioarchive/dsclient/pkg/config"
	"github.com/bioarchive/dsclient/pkg/errors"
)

// New creates a new `setup` command.
func New() *cobra.Command {
	var url, agentKey, userKey string
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Save the agent and user keys used to authenticate.",
		Long: "Save the agent and user keys used to authenticate with the\n" +
			"Data Service. The keys are exchanged for short-lived API tokens\n" +
			"on each run, so they only ever leave your machine over TLS.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(url, agentKey, userKey); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVar(&url, "url", "",
		"Base URL of the Data Service API. Defaults to the production endpoint.")
	cmd.Flags().StringVar(&agentKey, "agent-key", "",
		"Key identifying the software agent acting on your behalf.")
	cmd.Flags().StringVar(&userKey, "user-key", "",
		"Your secret user key.")
	return cmd
}

func run(url, agentKey, userKey string) error {
	if agentKey == "" {
		return errors.MissingFieldError{Field: "agent-key"}
	}
	if userKey == "" {
		return errors.MissingFieldError{Field: "user-key"}
	}

	cfg, err := config.Parse()
	if err != nil {
		return errors.WithContext(err, "load existing config")
	}

	cfg.AgentKey = agentKey
	cfg.UserKey = userKey
	if url != "" {
		cfg.URL = url
	}
	// The keys changed, so any cached token is stale.
	cfg.Auth = ""
	cfg.AuthExpires = 0

	if err := config.Write(cfg); err != nil {
		return errors.WithContext(err, "write config")
	}

	path, err := config.GetPath()
	if err != nil {
		return err
	}
	fmt.Printf("Saved credentials to %s\n", path)
	return nil
}
