package archive

import (
	"context"
	"fmt"
	"net/http"
	"tenttiarkisto-uploader/internal/exam"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// FetchOptions downloads the upload form once and resolves its course and
// language options, see ResolveOptions.
func (c *Client) FetchOptions(ctx context.Context, overrides map[string]string) (exam.OptionTables, error) {
	ctx, span := tracer.Start(ctx, "client:FetchOptions")
	defer span.End()

	endpoint := c.endpoint(addExamPath)
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_options, fmt.Errorf("fetch: %w", err), endpoint)
		span.SetStatus(codes.Error, "failed to fetch upload form")
		return exam.OptionTables{}, err
	}
	if res.StatusCode() != http.StatusOK {
		err := fmt.Errorf("fetch %s: unexpected status %s", endpoint, res.Status())
		c.tel.ReportBroken(report_client_fetch_options, err)
		span.SetStatus(codes.Error, err.Error())
		return exam.OptionTables{}, err
	}

	courses, err := c.markup.Courses(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_options, fmt.Errorf("courses: %w", err))
		return exam.OptionTables{}, err
	}
	languages, err := c.markup.Languages(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_options, fmt.Errorf("languages: %w", err))
		return exam.OptionTables{}, err
	}

	tables, err := ResolveOptions(courses, languages, overrides, c.tel)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return exam.OptionTables{}, err
	}
	span.SetAttributes(
		attribute.Int("courses", len(tables.Courses)),
		attribute.Int("languages", len(tables.Languages)),
	)
	return tables, nil
}

// SubmitResult is the outcome of one form submission.
type SubmitResult struct {
	Status int
	Ok     bool
	// NextToken is the token found in the response, empty if there was none.
	NextToken string
}

// SubmitExam posts one exam to the upload form using token. A transport
// failure is returned as an error, a rejected form is reported through
// SubmitResult.Ok.
func (c *Client) SubmitExam(ctx context.Context, token string, record exam.Record) (SubmitResult, error) {
	ctx, span := tracer.Start(ctx, "client:SubmitExam")
	defer span.End()
	span.SetAttributes(attribute.String("path", record.SourcePath))

	endpoint := c.endpoint(addExamPath)
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("Referer", endpoint).
		SetMultipartFormData(map[string]string{
			csrfField:   token,
			"course":    record.CourseID,
			"exam_date": record.ExamDate,
			"desc":      record.Label,
			"lang":      record.LanguageID,
		}).
		SetFile("exam_file", record.SourcePath).
		Post(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_submit_exam, fmt.Errorf("post: %w", err), record.SourcePath)
		span.SetStatus(codes.Error, "failed to post exam")
		return SubmitResult{}, err
	}

	result := SubmitResult{
		Status: res.StatusCode(),
		Ok:     res.StatusCode() == http.StatusOK,
	}

	next, err := c.markup.Token(res.Body())
	if err != nil {
		c.tel.ReportWarning(report_client_submit_exam, err, record.SourcePath, res.Status())
	} else {
		result.NextToken = next
	}

	if !result.Ok {
		span.SetStatus(codes.Error, fmt.Sprintf("archive responded with %s", res.Status()))
	}
	return result, nil
}
