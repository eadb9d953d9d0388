package track

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/racetrack-sim-go/pkg/trackdef"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "lists the embedded tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range trackdef.Names() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
