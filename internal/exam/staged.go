package exam

import (
	"os"
	"path/filepath"
	"strings"
	"tenttiarkisto-uploader/internal/components/telemetry"
)

const report_discover = "discover"

// StagedFile is a pdf waiting in the todo directory.
type StagedFile struct {
	Path string
}

func (f StagedFile) Stem() string {
	base := filepath.Base(f.Path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Discover lists the *.pdf files directly inside dir in lexical order.
func Discover(dir string, tel telemetry.API) ([]StagedFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		tel.ReportBroken(report_discover, err, dir)
		return nil, err
	}

	var files []StagedFile
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".pdf" {
			continue
		}
		files = append(files, StagedFile{Path: filepath.Join(dir, entry.Name())})
	}

	tel.ReportCount(report_discover, int64(len(files)))
	return files, nil
}
