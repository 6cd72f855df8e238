package cmd

import (
	"os"
	"strconv"
	"strings"

	"github.com/brogergvhs/noveld/internal/providers"
	"github.com/brogergvhs/noveld/internal/providers/sites"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/htmlindex"
)

var sitesCmd = &cobra.Command{
	Use:   "sites",
	Short: "List the supported sites",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := sites.Default()
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Key", "Site", "Hosts", "Encoding", "Max Workers"})

		for _, a := range reg.Adapters() {
			enc := "auto"
			if e := providers.EncodingOf(a); e != nil {
				if name, err := htmlindex.Name(e); err == nil {
					enc = name
				}
			}

			workers := "-"
			if n := providers.WorkersFor(a, 1<<16); n < 1<<16 {
				workers = strconv.Itoa(n)
			}

			t.AppendRow(table.Row{providers.KeyOf(a), a.Name(), strings.Join(a.Hosts(), "\n"), enc, workers})
		}

		t.Render()
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sitesCmd)
}
