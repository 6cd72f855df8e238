package cmd

import (
	"fmt"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var configRenameCmd = &cobra.Command{
	Use:   "rename <old_label> <new_label>",
	Short: "Rename a config profile, keeping it active if it was",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to := args[0], args[1]
		if err := config.DefaultStore().Rename(from, to); err != nil {
			return err
		}

		fmt.Printf("Renamed config %q to %q\n", from, to)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configRenameCmd)
}
