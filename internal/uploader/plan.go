package uploader

import (
	"context"
	"tenttiarkisto-uploader/internal/components/telemetry"
	"tenttiarkisto-uploader/internal/exam"
)

// OptionSource resolves the archive's option tables.
type OptionSource interface {
	FetchOptions(ctx context.Context, overrides map[string]string) (exam.OptionTables, error)
}

type PlanOptions struct {
	TodoDir    string
	Overrides  map[string]string
	Classifier exam.Classifier
	// Tables are fetched from the archive when empty.
	Tables exam.OptionTables
}

// Plan resolves the option tables if needed, then turns every staged file
// into a submittable record.
func Plan(ctx context.Context, source OptionSource, opts PlanOptions, tel telemetry.API) ([]exam.Record, exam.OptionTables, error) {
	tables := opts.Tables
	if tables.Empty() {
		var err error
		tables, err = source.FetchOptions(ctx, opts.Overrides)
		if err != nil {
			return nil, exam.OptionTables{}, err
		}
	}

	files, err := exam.Discover(opts.TodoDir, telemetry.NewScopedAPI("exam", tel))
	if err != nil {
		return nil, tables, err
	}

	classifier := opts.Classifier
	if classifier == nil {
		classifier = exam.DefaultClassifier
	}
	records, err := exam.BuildAll(files, classifier, tables)
	if err != nil {
		return nil, tables, err
	}
	return records, tables, nil
}
