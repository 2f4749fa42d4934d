package upload

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/bioarchive/dsclient/cmd/util"
	"github.com/bioarchive/dsclient/pkg/config"
	"github.com/bioarchive/dsclient/pkg/dataservice"
	"github.com/bioarchive/dsclient/pkg/errors"
	"github.com/bioarchive/dsclient/pkg/local"
	"github.com/bioarchive/dsclient/pkg/remote"
	"github.com/bioarchive/dsclient/pkg/sync"
	uploader "github.com/bioarchive/dsclient/pkg/upload"
)

// New creates a new `upload` command.
func New() *cobra.Command {
	var projectName string
	cmd := &cobra.Command{
		Use:   "upload PATH...",
		Short: "Upload files and folders to a remote project.",
		Long: "Upload the given files and folders into the named remote\n" +
			"project, creating the project and any missing folders. Files\n" +
			"whose content already matches the remote copy are skipped, so\n" +
			"re-running an interrupted upload picks up where it left off.",
		Args: cobra.MinimumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			if err := run(projectName, args); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&projectName, "project", "p", "",
		"Name of the remote project to upload into.")
	return cmd
}

func run(projectName string, paths []string) error {
	if projectName == "" {
		return errors.NewFriendlyError("A project name is required.\n" +
			"Please provide it with `dsclient upload -p <name> <paths>`")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Parse()
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	tokens := newTokenSource(cfg)
	api := dataservice.New(cfg.URL, tokens, dataservice.Options{
		BytesPerChunk: cfg.BytesPerChunk,
	})

	fmt.Printf("Checking for remote project %s\n", projectName)
	remoteProject, err := remote.NewStore(api).FetchProject(ctx, projectName)
	if err != nil {
		return errors.WithContext(err, "fetch remote project")
	}

	project := local.NewProject()
	for _, path := range paths {
		if err := project.AddPath(path); err != nil {
			return err
		}
	}

	if err := sync.UpdateRemoteIDs(project, remoteProject); err != nil {
		return errors.WithContext(err, "correlate local and remote trees")
	}

	projectID := ""
	if remoteProject != nil {
		projectID = remoteProject.ProjectID
	}

	sender := sync.NewContentSender(api, uploader.NewSender(api), projectID,
		projectName, sync.PrintingWatcher{})
	if err := sender.Send(ctx, project); err != nil {
		return err
	}

	saveTokenState(cfg, tokens)
	fmt.Println("Upload complete.")
	return nil
}

// newTokenSource picks between a managed token source fed by the configured
// keys, and a legacy static token with an unknown expiration.
func newTokenSource(cfg config.Config) *dataservice.TokenSource {
	if cfg.AgentKey == "" && cfg.Auth != "" {
		return dataservice.NewLegacyTokenSource(cfg.Auth)
	}

	tokens := dataservice.NewTokenSource(cfg.URL, cfg.AgentKey, cfg.UserKey,
		dataservice.DefaultTimeout)
	if cfg.Auth != "" {
		// Reuse the token cached from a previous run until it nears
		// expiration.
		tokens.SetState(cfg.Auth, cfg.AuthExpires)
	}
	return tokens
}

// saveTokenState persists a freshly claimed token so the next invocation
// doesn't need another key exchange. Failing to save is only an
// inconvenience, so it's logged rather than returned.
func saveTokenState(cfg config.Config, tokens *dataservice.TokenSource) {
	if cfg.AgentKey == "" {
		return
	}

	token, expires := tokens.State()
	if token == cfg.Auth && expires == cfg.AuthExpires {
		return
	}

	cfg.Auth = token
	cfg.AuthExpires = expires
	if err := config.Write(cfg); err != nil {
		log.WithError(err).Debug("Failed to cache API token")
	}
}
