package archive

import (
	"context"
	"fmt"
	"net/http"
	"tenttiarkisto-uploader/internal/exam"

	"go.opentelemetry.io/otel/codes"
)

// Login performs the archive's login handshake exactly once. It succeeds when
// the archive answers 200 and a session cookie was set.
func (c *Client) Login(ctx context.Context, username, password string) error {
	ctx, span := tracer.Start(ctx, "client:Login")
	defer span.End()

	loginUrl := c.endpoint(loginPath)

	token, err := c.FetchToken(ctx, loginPath)
	if err != nil {
		span.SetStatus(codes.Error, "failed to fetch login token")
		return fmt.Errorf("login: %w", err)
	}

	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("Referer", loginUrl).
		SetFormData(map[string]string{
			csrfField:  token,
			"username": username,
			"password": password,
		}).
		Post(loginUrl)
	if err != nil {
		c.tel.ReportBroken(report_client_login, fmt.Errorf("login request: %w", err))
		span.SetStatus(codes.Error, "failed to post login request")
		return exam.NewError(exam.KindLoginFailed, username, err)
	}

	hasSession := c.HasSession()
	if res.StatusCode() != http.StatusOK || !hasSession {
		err := exam.NewError(
			exam.KindLoginFailed,
			username,
			fmt.Errorf("status %d, session cookie present: %t", res.StatusCode(), hasSession),
		)
		c.tel.ReportWarning(report_client_login, err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	c.tel.ReportDebug("logged in", username)
	return nil
}
