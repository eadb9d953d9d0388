package track

import (
	"github.com/spf13/cobra"
)

func NewTrackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "track",
		Short: "commands regarding track definitions",
	}
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newInspectCmd())
	return cmd
}
