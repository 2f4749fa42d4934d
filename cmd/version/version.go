package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bioarchive/dsclient/pkg/version"
)

// New creates a new `version` command.
func New() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of dsclient.",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("dsclient version %s\n", version.Version)
		},
	}
}
