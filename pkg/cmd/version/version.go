package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetrack-sim-go/pkg/trackdef"
	"github.com/mpapenbr/racetrack-sim-go/version"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "prints version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rts %s\n", version.FullVersion)
			fmt.Fprintf(cmd.OutOrStdout(), "track file format %s\n", trackdef.FormatVersion)
		},
	}
}
