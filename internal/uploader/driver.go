package uploader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"tenttiarkisto-uploader/internal/archive"
	"tenttiarkisto-uploader/internal/components/assert"
	"tenttiarkisto-uploader/internal/components/telemetry"
	"tenttiarkisto-uploader/internal/exam"
	"tenttiarkisto-uploader/lib/osutil"
)

const (
	report_driver_submit   = "driver.submit"
	report_driver_relocate = "driver.relocate"
	report_driver_skipped  = "driver.skipped"
)

// Archive is the part of *archive.Client the driver needs.
type Archive interface {
	SubmissionToken(ctx context.Context) (string, error)
	SubmitExam(ctx context.Context, token string, record exam.Record) (archive.SubmitResult, error)
}

type State int

const (
	STATE_NEED_TOKEN State = iota
	STATE_SUBMITTING
	STATE_SUCCESS
	STATE_FAILURE
)

func (s State) String() string {
	switch s {
	case STATE_NEED_TOKEN:
		return "need-token"
	case STATE_SUBMITTING:
		return "submitting"
	case STATE_SUCCESS:
		return "success"
	case STATE_FAILURE:
		return "failure"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Driver submits records one by one. Every token is used for exactly one
// submission, the token for the next one is read from the previous response
// or, when the response had none, fetched again from the upload form.
type Driver struct {
	archive Archive
	doneDir string
	tel     telemetry.API

	state        State
	currentToken *string

	// OnSubmit, if set, is called right before each record is posted.
	OnSubmit func(record exam.Record)
}

func NewDriver(client Archive, doneDir string, tel telemetry.API) *Driver {
	assert.NotNil(client, "archive")
	assert.NotNil(tel, "telemetry")
	assert.NotEmptyStr(doneDir, "done directory")

	return &Driver{
		archive: client,
		doneDir: doneDir,
		tel:     telemetry.NewScopedAPI("uploader", tel),
		state:   STATE_NEED_TOKEN,
	}
}

func (d *Driver) State() State {
	return d.state
}

// Token returns the token that the next submission will use, if one is held.
func (d *Driver) Token() (string, bool) {
	if d.currentToken == nil {
		return "", false
	}
	return *d.currentToken, true
}

type Summary struct {
	Submitted []string
	Skipped   []string
}

// Run submits records in order and stops at the first failure. With
// limit > 0 only the first limit records are submitted, the rest are skipped.
// Files already moved stay moved when a later record fails.
func (d *Driver) Run(ctx context.Context, records []exam.Record, limit int) (Summary, error) {
	var summary Summary

	err := os.MkdirAll(d.doneDir, 0o755)
	if err != nil {
		d.tel.ReportBroken(report_driver_relocate, err, d.doneDir)
		return summary, fmt.Errorf("create done directory: %w", err)
	}

	for i, record := range records {
		if limit > 0 && i >= limit {
			d.tel.ReportDebug(report_driver_skipped, record.SourcePath)
			summary.Skipped = append(summary.Skipped, record.SourcePath)
			continue
		}

		err := d.submit(ctx, record)
		if err != nil {
			d.state = STATE_FAILURE
			return summary, err
		}
		summary.Submitted = append(summary.Submitted, record.SourcePath)
	}

	d.tel.ReportCount(report_driver_submit, int64(len(summary.Submitted)))
	return summary, nil
}

func (d *Driver) submit(ctx context.Context, record exam.Record) error {
	done, err := osutil.Exists(d.destination(record.SourcePath))
	if err != nil {
		return err
	}
	if done {
		// moving it afterwards would overwrite the earlier upload
		return fmt.Errorf("%s is already in %s", filepath.Base(record.SourcePath), d.doneDir)
	}

	if d.currentToken == nil {
		d.state = STATE_NEED_TOKEN
		token, err := d.archive.SubmissionToken(ctx)
		if err != nil {
			return fmt.Errorf("%s: %w", record.SourcePath, err)
		}
		d.currentToken = &token
	}

	d.state = STATE_SUBMITTING
	if d.OnSubmit != nil {
		d.OnSubmit(record)
	}

	result, err := d.archive.SubmitExam(ctx, *d.currentToken, record)
	d.currentToken = nil
	if err != nil {
		d.tel.ReportBroken(report_driver_submit, err, record.SourcePath)
		return exam.NewError(exam.KindSubmissionFailed, record.SourcePath, err)
	}
	if result.NextToken != "" {
		next := result.NextToken
		d.currentToken = &next
	}

	if !result.Ok {
		err := exam.NewError(
			exam.KindSubmissionFailed,
			record.SourcePath,
			fmt.Errorf("archive responded with status %d", result.Status),
		)
		d.tel.ReportBroken(report_driver_submit, err)
		return err
	}

	err = d.relocate(record.SourcePath)
	if err != nil {
		// the archive already has the exam, a rerun would upload it again
		d.tel.ReportBroken(report_driver_relocate, err, record.SourcePath)
		return fmt.Errorf("%s was submitted but could not be moved: %w", record.SourcePath, err)
	}

	d.state = STATE_SUCCESS
	return nil
}

func (d *Driver) destination(path string) string {
	return filepath.Join(d.doneDir, filepath.Base(path))
}

func (d *Driver) relocate(path string) error {
	return os.Rename(path, d.destination(path))
}
