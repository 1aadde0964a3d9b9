package commands

import (
	"path/filepath"
	"strconv"
	"tenttiarkisto-uploader/internal/exam"
	"tenttiarkisto-uploader/internal/uploader"
	"tenttiarkisto-uploader/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Lists the staged exams and what they would be submitted as, without submitting anything.",
	Run: func(cmd *cobra.Command, args []string) {
		client, err := newArchiveClient()
		if err != nil {
			serviceutil.Fatal("failed to create archive client", err)
		}

		records, _, err := uploader.Plan(cmd.Context(), client, uploader.PlanOptions{
			TodoDir:   cfg.TodoDir,
			Overrides: cfg.CourseOverrides,
		}, tel)
		if err != nil {
			serviceutil.Fatal("failed to plan submissions", err)
		}

		t := newTable()
		t.AppendHeader(table.Row{"File", "Course", "Date", "Label", "Language", "Pages"})
		for _, r := range records {
			pages := "?"
			count, err := exam.PageCount(r.SourcePath)
			if err != nil {
				tel.ReportWarning("list.page-count", err, r.SourcePath)
			} else {
				pages = strconv.Itoa(count)
			}
			t.AppendRow(table.Row{
				filepath.Base(r.SourcePath),
				r.CourseID,
				r.ExamDate,
				r.Label,
				r.LanguageID,
				pages,
			})
		}
		t.AppendFooter(table.Row{"", "", "", "", "Total", len(records)})
		t.Render()
	},
}
