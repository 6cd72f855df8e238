package cmd

import (
	"fmt"
	"os"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var flagConfigPath bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective config and manage config profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		if flagConfigPath {
			path, err := config.DefaultStore().ActivePath()
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		}

		cfg, used, err := config.LoadMerged(config.Options{
			IgnoreConfig: flagIgnoreConfig,
			Debug:        flagDebug,
			Retries:      -1,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Loaded config from:\n  %s\n\n", used)
		cfg.Print(os.Stdout)
		return nil
	},
}

func init() {
	configCmd.Flags().BoolVar(&flagConfigPath, "path", false, "print only the path of the active profile")
	rootCmd.AddCommand(configCmd)
}
