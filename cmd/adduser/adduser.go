package adduser

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/bioarchive/dsclient/cmd/util"
	"github.com/bioarchive/dsclient/pkg/config"
	"github.com/bioarchive/dsclient/pkg/dataservice"
	"github.com/bioarchive/dsclient/pkg/errors"
	"github.com/bioarchive/dsclient/pkg/remote"
)

// New creates a new `add-user` command.
func New() *cobra.Command {
	var projectName, fullName, authRole string
	cmd := &cobra.Command{
		Use:   "add-user",
		Short: "Give another user access to a remote project.",
		Run: func(_ *cobra.Command, _ []string) {
			if err := run(projectName, fullName, authRole); err != nil {
				util.HandleFatalError(err)
			}
		},
	}
	cmd.Flags().StringVarP(&projectName, "project", "p", "",
		"Name of the remote project to share.")
	cmd.Flags().StringVarP(&fullName, "user", "u", "",
		"Full name of the user to give access, e.g. \"Jane Doe\".")
	cmd.Flags().StringVar(&authRole, "auth-role", "project_admin",
		"Auth role to grant on the project.")
	return cmd
}

func run(projectName, fullName, authRole string) error {
	if projectName == "" {
		return errors.MissingFieldError{Field: "project"}
	}
	if fullName == "" {
		return errors.MissingFieldError{Field: "user"}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	cfg, err := config.Parse()
	if err != nil {
		return errors.WithContext(err, "parse config")
	}

	tokens := dataservice.NewTokenSource(cfg.URL, cfg.AgentKey, cfg.UserKey,
		dataservice.DefaultTimeout)
	if cfg.Auth != "" {
		tokens.SetState(cfg.Auth, cfg.AuthExpires)
	}
	api := dataservice.New(cfg.URL, tokens, dataservice.Options{})
	store := remote.NewStore(api)

	project, err := store.FetchProject(ctx, projectName)
	if err != nil {
		return errors.WithContext(err, "fetch remote project")
	}
	if project == nil {
		return errors.NewFriendlyError("No remote project named %q exists.",
			projectName)
	}

	user, err := store.LookupUserByName(ctx, fullName)
	if err != nil {
		return err
	}

	if err := store.SetUserProjectPermission(ctx, project, user, authRole); err != nil {
		return err
	}

	fmt.Printf("Gave %s %s access to %s\n", user.FullName, authRole, projectName)
	return nil
}
