package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/brogergvhs/noveld/internal/config"

	"github.com/spf13/cobra"
)

var flagFromFile string

var configAddCmd = &cobra.Command{
	Use:   "add [label]",
	Short: "Create a new config, optionally copied from an existing yaml file",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var label string
		if len(args) == 1 {
			label = args[0]
		} else {
			reader := bufio.NewReader(os.Stdin)
			fmt.Print("Enter label for new config: ")
			label, _ = reader.ReadString('\n')
		}
		label = strings.TrimSpace(label)

		store := config.DefaultStore()

		if flagFromFile != "" {
			if err := store.Add(label, flagFromFile); err != nil {
				return err
			}
			fmt.Printf("Imported %s as config %q\n", flagFromFile, label)
			return nil
		}

		path, err := store.Create(label)
		if err != nil {
			return err
		}

		fmt.Printf("Created new config: %s\n", path)
		return nil
	},
}

func init() {
	configAddCmd.Flags().StringVar(&flagFromFile, "from", "", "copy settings from this yaml file")
	configCmd.AddCommand(configAddCmd)
}
