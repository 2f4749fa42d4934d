// Package dataservice is a client for the Data Service REST API. It handles
// token refresh, transparent reassembly of paginated collection responses,
// and transfers of chunk payloads to external object stores.
package dataservice

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	log "github.com/sirupsen/logrus"

	"github.com/bioarchive/dsclient/pkg/errors"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	// totalPagesHeader is how the server reports that a response spans
	// multiple pages. Single item endpoints never set it.
	totalPagesHeader = "x-total-pages"

	// resultsField is the top-level array field merged across pages of a
	// collection response.
	resultsField = "results"

	// DefaultResultsPerPage is how many results we request per page of a
	// collection endpoint.
	DefaultResultsPerPage = 100

	// DefaultTimeout bounds each individual API request.
	DefaultTimeout = 60 * time.Second

	// DefaultBytesPerChunk is the upload chunk size used when the caller
	// doesn't configure one.
	DefaultBytesPerChunk = 100 * 1024 * 1024
)

// Client issues requests against the Data Service API. Construct it with New
// rather than using the zero value: the HTTP transport and defaults are set
// up there. The client never retries failed requests; retry policy belongs
// to the caller.
type Client struct {
	baseURL string
	tokens  *TokenSource

	client *resty.Client
	// external sends chunk payloads to whatever host the API directs us
	// to. It's a separate client because those requests are
	// unauthenticated and may target a different host entirely.
	external *resty.Client
	// stream is external minus the request timeout, since a timeout on
	// the http client would cut off long downloads mid-body.
	stream *resty.Client

	resultsPerPage int
	bytesPerChunk  int64
}

// Options tunes a Client. The zero value picks reasonable defaults.
type Options struct {
	Timeout        time.Duration
	ResultsPerPage int
	BytesPerChunk  int64
}

// New creates a Client for the API at baseURL. tokens may be nil, in which
// case requests are sent without an Authorization header.
func New(baseURL string, tokens *TokenSource, opts Options) *Client {
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ResultsPerPage == 0 {
		opts.ResultsPerPage = DefaultResultsPerPage
	}
	if opts.BytesPerChunk == 0 {
		opts.BytesPerChunk = DefaultBytesPerChunk
	}

	return &Client{
		baseURL:        baseURL,
		tokens:         tokens,
		client:         resty.New().SetTimeout(opts.Timeout),
		external:       resty.New().SetTimeout(opts.Timeout),
		stream:         resty.New(),
		resultsPerPage: opts.ResultsPerPage,
		bytesPerChunk:  opts.BytesPerChunk,
	}
}

// BytesPerChunk is the fixed chunk size uploads should split files into.
func (c *Client) BytesPerChunk() int64 {
	return c.bytesPerChunk
}

// do issues one request against the API. For GET and DELETE, data is encoded
// as query parameters. For POST and PUT it's the request body, JSON or form
// encoded per contentType. Responses outside [200,300) become ServiceErrors,
// and pagination headers on single item responses are rejected.
func (c *Client) do(ctx context.Context, verb, suffix string, data interface{},
	contentType string, allowPagination bool) (*resty.Response, error) {

	req := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType)

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.SetHeader("Authorization", token)
	}

	switch verb {
	case http.MethodGet, http.MethodDelete:
		if params, ok := data.(url.Values); ok {
			req.SetQueryParamsFromValues(params)
		}
	default:
		if contentType == contentTypeForm {
			req.SetFormDataFromValues(data.(url.Values))
		} else {
			req.SetBody(data)
		}
	}

	log.WithFields(log.Fields{"verb": verb, "suffix": suffix}).
		Debug("Data Service request")

	resp, err := req.Execute(verb, c.baseURL+suffix)
	if err != nil {
		return nil, errors.WithContext(err, verb+" "+suffix)
	}
	return checkResponse(resp, suffix, data, allowPagination)
}

func (c *Client) post(ctx context.Context, suffix string, data interface{},
	out interface{}) error {

	resp, err := c.do(ctx, http.MethodPost, suffix, data, contentTypeJSON, false)
	if err != nil {
		return err
	}
	return decode(resp.Body(), out, suffix)
}

func (c *Client) put(ctx context.Context, suffix string, data interface{},
	contentType string, out interface{}) error {

	resp, err := c.do(ctx, http.MethodPut, suffix, data, contentType, false)
	if err != nil {
		return err
	}
	return decode(resp.Body(), out, suffix)
}

func (c *Client) getSingleItem(ctx context.Context, suffix string,
	params url.Values, out interface{}) error {

	resp, err := c.do(ctx, http.MethodGet, suffix, params, contentTypeForm, false)
	if err != nil {
		return err
	}
	return decode(resp.Body(), out, suffix)
}

func (c *Client) delete(ctx context.Context, suffix string, params url.Values) error {
	_, err := c.do(ctx, http.MethodDelete, suffix, params, contentTypeForm, false)
	return err
}

// getPage fetches a single page of a collection endpoint, preserving the
// caller's filter parameters.
func (c *Client) getPage(ctx context.Context, suffix string, params url.Values,
	pageNum int) (*resty.Response, error) {

	withPage := url.Values{}
	for key, vals := range params {
		withPage[key] = vals
	}
	withPage.Set("page", strconv.Itoa(pageNum))
	withPage.Set("per_page", strconv.Itoa(c.resultsPerPage))
	return c.do(ctx, http.MethodGet, suffix, withPage, contentTypeForm, true)
}

// getCollection fetches every page of a collection endpoint and decodes the
// merged response into out. The results arrays of pages 1..N are
// concatenated in page order; every other top-level field is taken from page
// 1. When the response fits in one page it's decoded as-is with no extra
// requests.
func (c *Client) getCollection(ctx context.Context, suffix string,
	params url.Values, out interface{}) error {

	first, err := c.getPage(ctx, suffix, params, 1)
	if err != nil {
		return err
	}

	totalPages := 0
	if header := first.Header().Get(totalPagesHeader); header != "" {
		totalPages, err = strconv.Atoi(header)
		if err != nil {
			return errors.WithContext(err, "parse "+totalPagesHeader+" header")
		}
	}
	if totalPages <= 1 {
		return decode(first.Body(), out, suffix)
	}

	log.WithFields(log.Fields{"suffix": suffix, "pages": totalPages}).
		Debug("Fetching remaining pages")

	var merged map[string]json.RawMessage
	if err := json.Unmarshal(first.Body(), &merged); err != nil {
		return errors.WithContext(err, "decode response from "+suffix)
	}

	var results []json.RawMessage
	if raw, ok := merged[resultsField]; ok {
		if err := json.Unmarshal(raw, &results); err != nil {
			return errors.WithContext(err, "decode results from "+suffix)
		}
	}

	for pageNum := 2; pageNum <= totalPages; pageNum++ {
		resp, err := c.getPage(ctx, suffix, params, pageNum)
		if err != nil {
			return err
		}

		var page struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(resp.Body(), &page); err != nil {
			return errors.WithContext(err, "decode response from "+suffix)
		}
		results = append(results, page.Results...)
	}

	mergedResults, err := json.Marshal(results)
	if err != nil {
		return errors.WithContext(err, "merge results")
	}
	merged[resultsField] = mergedResults

	combined, err := json.Marshal(merged)
	if err != nil {
		return errors.WithContext(err, "merge response")
	}
	return decode(combined, out, suffix)
}

func decode(body []byte, out interface{}, suffix string) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.WithContext(err, "decode response from "+suffix)
	}
	return nil
}

// checkResponse enforces the response conventions shared by every endpoint:
// success is a status in [200,300), and a pagination header on a single item
// response means the server's API has diverged from what we speak, which is
// fatal rather than a silent truncation.
func checkResponse(resp *resty.Response, suffix string, data interface{},
	allowPagination bool) (*resty.Response, error) {

	if !allowPagination && resp.Header().Get(totalPagesHeader) != "" {
		return nil, errors.ErrUnexpectedPaging
	}
	if code := resp.StatusCode(); code < 200 || code >= 300 {
		return nil, newServiceError(resp, suffix, data)
	}
	return resp, nil
}

func newServiceError(resp *resty.Response, suffix string, data interface{}) error {
	var body struct {
		Reason     string `json:"reason"`
		Error      string `json:"error"`
		Suggestion string `json:"suggestion"`
	}
	// An unparseable error body just means we have no reason to report.
	_ = json.Unmarshal(resp.Body(), &body)

	reason := body.Reason
	if reason == "" {
		reason = body.Error
	}
	suggestion := body.Suggestion
	if resp.StatusCode() == 500 && reason == "" {
		reason = "Internal Server Error"
		suggestion = "Contact support."
	}

	return errors.ServiceError{
		StatusCode:  resp.StatusCode(),
		URLSuffix:   suffix,
		Reason:      reason,
		Suggestion:  suggestion,
		RequestData: data,
	}
}
