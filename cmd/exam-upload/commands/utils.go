package commands

import (
	"os"
	"tenttiarkisto-uploader/internal/archive"
	"tenttiarkisto-uploader/internal/components/telemetry"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

func newArchiveClient() (*archive.Client, error) {
	markup, err := archive.MarkupByName(cfg.Markup)
	if err != nil {
		return nil, err
	}

	opts := archive.ClientOptions{
		BaseUrl:           cfg.BaseUrl,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		Markup:            markup,
	}
	if dumpHttp != "" {
		output, err := telemetry.NewFilesystemOutput(dumpHttp)
		if err != nil {
			return nil, err
		}
		opts.Output = output
	}

	return archive.NewClient(opts, tel)
}
