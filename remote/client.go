// Package remote is the typed client of the survey backend. Every call
// returns a Result instead of an error; WithFallback turns any failure into
// usable substitute data.
package remote

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/lestrrat-go/backoff/v2"

	"github.com/mbolis/survey-publisher/log"
	"github.com/mbolis/survey-publisher/model"
)

// TokenSource yields the bearer token, empty when there is none.
type TokenSource interface {
	AuthToken(ctx context.Context) (string, error)
}

type Client struct {
	base   string
	http   *http.Client
	tokens TokenSource
	retry  backoff.Policy
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) { c.tokens = ts }
}

// WithRetryPolicy sets the policy for retrying GETs. POSTs are sent once.
func WithRetryPolicy(p backoff.Policy) Option {
	return func(c *Client) { c.retry = p }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		base: strings.TrimRight(baseURL, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
		retry: backoff.Exponential(
			backoff.WithMinInterval(200*time.Millisecond),
			backoff.WithMaxInterval(2*time.Second),
			backoff.WithJitterFactor(0.1),
			backoff.WithMaxRetries(2),
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured is false when no backend URL was given; every call then fails
// with a NetworkError without touching the network.
func (c *Client) Configured() bool {
	return c.base != ""
}

func unmarshal(b []byte, v any) error {
	return json.Unmarshal(b, v)
}

type response struct {
	status      int
	contentType string
	body        []byte
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*response, *Error) {
	if !c.Configured() {
		return nil, &Error{Kind: NetworkError, Code: "BACKEND_NOT_CONFIGURED", Message: "no backend URL configured"}
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, &Error{Kind: ValidationError, Code: "ENCODE_REQUEST", Message: err.Error()}
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return nil, &Error{Kind: ValidationError, Code: "BUILD_REQUEST", Message: err.Error()}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.AuthToken(ctx)
		if err != nil {
			log.Warnf("remote.auth_token: %s", err)
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: NetworkError, Code: "NETWORK_ERROR", Message: err.Error()}
	}
	defer res.Body.Close()

	b, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &Error{Kind: NetworkError, Code: "NETWORK_ERROR", Message: err.Error()}
	}
	return &response{
		status:      res.StatusCode,
		contentType: res.Header.Get("Content-Type"),
		body:        b,
	}, nil
}

func retryable(res *response, err *Error) bool {
	if err != nil {
		return err.Kind == NetworkError && err.Code != "BACKEND_NOT_CONFIGURED"
	}
	return res.status >= 500
}

// fetch sends the request, retrying GETs on transport errors and 5xx.
func (c *Client) fetch(ctx context.Context, method, path string, body any) (*response, *Error) {
	if method != http.MethodGet {
		return c.send(ctx, method, path, body)
	}

	var (
		res  *response
		rerr *Error
	)
	retryCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctl := c.retry.Start(retryCtx)
	for backoff.Continue(ctl) {
		res, rerr = c.send(ctx, method, path, body)
		if !retryable(res, rerr) {
			break
		}
		log.Debugf("remote.retry %s %s", method, path)
	}
	if res == nil && rerr == nil {
		msg := "request not sent"
		if ctx.Err() != nil {
			msg = ctx.Err().Error()
		}
		rerr = &Error{Kind: NetworkError, Code: "NETWORK_ERROR", Message: msg}
	}
	return res, rerr
}

func statusError(res *response, code, message string) *Error {
	if message == "" {
		message = http.StatusText(res.status)
	}
	return &Error{Kind: ApiError, Code: code, Message: message, Status: res.status}
}

func call[T any](ctx context.Context, c *Client, method, path string, body any) Result[T] {
	res, rerr := c.fetch(ctx, method, path, body)
	if rerr != nil {
		return failWith[T](rerr)
	}

	var env envelope[T]
	decodeErr := json.Unmarshal(res.body, &env)

	if res.status < 200 || res.status > 299 {
		return failWith[T](statusError(res, env.Code, firstNonEmpty(env.Error, env.Message)))
	}
	if decodeErr != nil {
		return failWith[T](statusError(res, "INVALID_RESPONSE", decodeErr.Error()))
	}
	if !env.Success {
		return failWith[T](statusError(res, env.Code, firstNonEmpty(env.Error, env.Message, "request failed")))
	}
	return Ok(env.Data)
}

func callPage[T any](ctx context.Context, c *Client, path string) Result[Page[T]] {
	res, rerr := c.fetch(ctx, http.MethodGet, path, nil)
	if rerr != nil {
		return failWith[Page[T]](rerr)
	}

	var env paginatedEnvelope[T]
	decodeErr := json.Unmarshal(res.body, &env)

	if res.status < 200 || res.status > 299 {
		return failWith[Page[T]](statusError(res, env.Code, firstNonEmpty(env.Error, env.Message)))
	}
	if decodeErr != nil {
		return failWith[Page[T]](statusError(res, "INVALID_RESPONSE", decodeErr.Error()))
	}
	if !env.Success {
		return failWith[Page[T]](statusError(res, env.Code, firstNonEmpty(env.Error, env.Message, "request failed")))
	}
	if env.Data == nil {
		env.Data = []T{}
	}
	return Ok(Page[T]{Items: env.Data, Pagination: env.Pagination})
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) Categories(ctx context.Context) Result[[]string] {
	return call[[]string](ctx, c, http.MethodGet, "/api/categories", nil)
}

func (c *Client) QuestionConfig(ctx context.Context) Result[GenerationConfig] {
	return call[GenerationConfig](ctx, c, http.MethodGet, "/api/questions/config", nil)
}

func (c *Client) GenerateQuestions(ctx context.Context, req GenerateRequest) Result[GeneratedQuestions] {
	if strings.TrimSpace(req.Category) == "" {
		return Fail[GeneratedQuestions](ValidationError, "MISSING_CATEGORY", "category is required")
	}
	res := call[GeneratedQuestions](ctx, c, http.MethodPost, "/api/questions/generate", req)
	if res.OK {
		for i, q := range res.Data.Questions {
			res.Data.Questions[i] = model.NormalizeQuestion(q)
		}
	}
	return res
}

// CreateSurvey is never retried: a duplicate POST is a duplicate survey.
func (c *Client) CreateSurvey(ctx context.Context, draft model.SurveyDraft) Result[CreatedSurvey] {
	return call[CreatedSurvey](ctx, c, http.MethodPost, "/api/surveys", createSurveyRequest{
		Title:       draft.EffectiveTitle(),
		Description: draft.Description,
		Category:    draft.Category,
		Questions:   draft.Questions,
		Audience:    draft.Audience,
	})
}

func (c *Client) MaterializeHTML(ctx context.Context, id string, req MaterializeRequest) Result[Materialized] {
	if id == "" {
		return Fail[Materialized](ValidationError, "MISSING_ID", "survey id is required")
	}
	return call[Materialized](ctx, c, http.MethodPost, "/api/surveys/"+url.PathEscape(id)+"/create-html", req)
}

func (c *Client) Results(ctx context.Context, id string) Result[SurveyResults] {
	return call[SurveyResults](ctx, c, http.MethodGet, "/api/surveys/"+url.PathEscape(id)+"/results", nil)
}

func (c *Client) AudienceStats(ctx context.Context) Result[model.AudienceStats] {
	return call[model.AudienceStats](ctx, c, http.MethodGet, "/api/audience/stats", nil)
}

func (c *Client) ListSurveys(ctx context.Context, p ListParams) Result[Page[SurveySummary]] {
	q := url.Values{}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	if p.Status != "" {
		q.Set("status", p.Status)
	}
	if p.Category != "" {
		q.Set("category", p.Category)
	}
	path := "/api/surveys"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	return callPage[SurveySummary](ctx, c, path)
}

// Export downloads the results of a survey in the given format.
func (c *Client) Export(ctx context.Context, id string, format ExportFormat) Result[Export] {
	if !format.Valid() {
		return Fail[Export](ValidationError, "UNSUPPORTED_FORMAT", "unsupported export format "+strconv.Quote(string(format)))
	}
	path := "/api/surveys/" + url.PathEscape(id) + "/export?format=" + url.QueryEscape(string(format))
	res, rerr := c.fetch(ctx, http.MethodGet, path, nil)
	if rerr != nil {
		return failWith[Export](rerr)
	}
	if res.status < 200 || res.status > 299 {
		return failWith[Export](statusError(res, "EXPORT_FAILED", "Export failed"))
	}
	return Ok(Export{ContentType: res.contentType, Data: res.body})
}
