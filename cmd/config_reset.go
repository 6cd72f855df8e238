package cmd

import (
	"fmt"
	"os"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var configResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Overwrite the active profile with the default values",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := config.DefaultStore()

		label, err := store.CurrentLabel()
		if err != nil {
			return err
		}

		if !flagYes && !confirm(fmt.Sprintf("Reset config %q to defaults?", label)) {
			fmt.Println("Aborted.")
			return nil
		}

		path, err := store.Reset()
		if err != nil {
			return err
		}

		fmt.Printf("Reset %s:\n", path)
		config.DefaultConfig().Print(os.Stdout)
		return nil
	},
}

func init() {
	configResetCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "do not ask for confirmation")
	configCmd.AddCommand(configResetCmd)
}
