package commands

import (
	"sort"
	"tenttiarkisto-uploader/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(optionsCmd)
}

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "Prints the course and language tables offered by the archive's upload form.",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newArchiveClient()
		if err != nil {
			serviceutil.Fatal("failed to create archive client", err)
		}
		tables, err := client.FetchOptions(cmd.Context(), cfg.CourseOverrides)
		if err != nil {
			serviceutil.Fatal("failed to fetch options", err)
		}

		printMapping("Course", tables.Courses)
		printMapping("Language", tables.Languages)
	},
}

func printMapping(name string, mapping map[string]string) {
	keys := make([]string, 0, len(mapping))
	for k := range mapping {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable()
	t.AppendHeader(table.Row{name, "ID"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, mapping[k]})
	}
	t.Render()
}
