package commands

import (
	"errors"
	"fmt"
	"path/filepath"
	"tenttiarkisto-uploader/internal/exam"
	"tenttiarkisto-uploader/internal/uploader"
	"tenttiarkisto-uploader/lib/serviceutil"

	"github.com/spf13/cobra"
)

var limit int

func init() {
	uploadCmd.Flags().IntVar(&limit, "limit", 0, "Submit at most this many exams, 0 submits all of them.")
	rootCmd.AddCommand(uploadCmd)
}

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Logs in and submits every staged exam, moving each submitted file into the done directory.",
	Run: func(cmd *cobra.Command, args []string) {
		if cfg.Username == "" || cfg.Password == "" {
			serviceutil.Fatal("missing credentials", errors.New("set username/password in the config or EXAM_UPLOAD_USERNAME/EXAM_UPLOAD_PASSWORD"))
		}

		client, err := newArchiveClient()
		if err != nil {
			serviceutil.Fatal("failed to create archive client", err)
		}

		err = client.Login(cmd.Context(), cfg.Username, cfg.Password)
		if err != nil {
			serviceutil.Fatal("failed to login", err)
		}

		records, _, err := uploader.Plan(cmd.Context(), client, uploader.PlanOptions{
			TodoDir:   cfg.TodoDir,
			Overrides: cfg.CourseOverrides,
		}, tel)
		if err != nil {
			serviceutil.Fatal("failed to plan submissions", err)
		}
		if len(records) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "nothing to upload")
			return
		}

		driver := uploader.NewDriver(client, cfg.DoneDir, tel)
		driver.OnSubmit = func(record exam.Record) {
			fmt.Fprintln(cmd.OutOrStdout(), filepath.Base(record.SourcePath))
		}

		summary, err := driver.Run(cmd.Context(), records, limit)
		if err != nil {
			serviceutil.Fatal(
				fmt.Sprintf("upload stopped after %d submitted", len(summary.Submitted)),
				err,
			)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "submitted %d, skipped %d\n", len(summary.Submitted), len(summary.Skipped))
	},
}
