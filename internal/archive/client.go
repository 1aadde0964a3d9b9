// client.go wraps the http session with the archive. The archive is a Django
// site, every state changing form carries a csrf token that is rotated on
// every response.

package archive

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
	"tenttiarkisto-uploader/internal/components/assert"
	"tenttiarkisto-uploader/internal/components/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"golang.org/x/time/rate"
)

var tracer = otel.Tracer("internal/archive")

const (
	loginPath     = "login/"
	addExamPath   = "exams/add/"
	sessionCookie = "sessionid"
)

const (
	report_client_fetch_token   = "client.fetch-token"
	report_client_login         = "client.login"
	report_client_fetch_options = "client.fetch-options"
	report_client_submit_exam   = "client.submit-exam"
)

type ClientOptions struct {
	BaseUrl string
	// RequestsPerSecond <= 0 disables rate limiting.
	RequestsPerSecond float64
	// Timeout of a single request, 0 means no timeout.
	Timeout time.Duration
	// Markup defaults to FormMarkup.
	Markup Markup
	// Output, if non-nil, receives every request/response pair.
	Output telemetry.MessageOutput
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	markup Markup
	tel    telemetry.API
}

func NewClient(opts ClientOptions, tel telemetry.API) (*Client, error) {
	assert.NotNil(tel, "telemetry")
	assert.NotEmptyStr(opts.BaseUrl, "base url")

	tel = telemetry.NewScopedAPI("archive", tel)

	baseUrl := opts.BaseUrl
	if !strings.HasSuffix(baseUrl, "/") {
		baseUrl += "/"
	}
	parsedBaseUrl, err := url.Parse(baseUrl)
	if err != nil {
		return nil, err
	}
	if parsedBaseUrl.Scheme == "" || parsedBaseUrl.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseUrl)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(baseUrl)
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	httpClient.SetHeader("user-agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36")
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	}

	if opts.RequestsPerSecond > 0 {
		burst := int(opts.RequestsPerSecond)
		if burst < 1 {
			burst = 1
		}
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, opts.Output)

	markup := opts.Markup
	if markup == nil {
		markup = FormMarkup{}
	}

	return &Client{
		BaseUrl: parsedBaseUrl,
		Http:    httpClient,
		markup:  markup,
		tel:     tel,
	}, nil
}

func (c *Client) endpoint(path string) string {
	return c.BaseUrl.ResolveReference(&url.URL{Path: path}).String()
}

// HasSession reports whether the cookie jar holds a session cookie for the archive.
func (c *Client) HasSession() bool {
	jar := c.Http.GetClient().Jar
	if jar == nil {
		return false
	}
	loginUrl, err := url.Parse(c.endpoint(loginPath))
	if err != nil {
		return false
	}
	for _, cookie := range jar.Cookies(loginUrl) {
		if cookie.Name == sessionCookie && cookie.Value != "" {
			return true
		}
	}
	return false
}

// FetchToken GETs path and extracts the csrf token from the returned page.
func (c *Client) FetchToken(ctx context.Context, path string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:FetchToken")
	defer span.End()

	endpoint := c.endpoint(path)
	res, err := c.Http.R().
		SetContext(ctx).
		Get(endpoint)
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_token, fmt.Errorf("fetch: %w", err), endpoint)
		span.RecordError(err)
		return "", err
	}

	token, err := c.markup.Token(res.Body())
	if err != nil {
		c.tel.ReportBroken(report_client_fetch_token, err, endpoint, res.Status())
		span.RecordError(err)
		return "", fmt.Errorf("%s: %w", endpoint, err)
	}
	return token, nil
}

// SubmissionToken seeds a token from the upload form.
func (c *Client) SubmissionToken(ctx context.Context) (string, error) {
	return c.FetchToken(ctx, addExamPath)
}
