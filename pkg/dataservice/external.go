package dataservice

import (
	"context"
	"io"
	"net/http"

	"github.com/bioarchive/dsclient/pkg/errors"
)

// SendExternal transmits a chunk's bytes to the location negotiated by
// CreateUploadChunkURL, which may be an external object store rather than
// the API host. Only PUT and POST are supported; anything else is a bug in
// the caller. No Authorization header is sent: the signed URL is the
// credential. The response status is returned for the caller to judge, since
// external stores are not bound by the API's error body conventions.
func (c *Client) SendExternal(ctx context.Context, verb, host, urlPath string,
	headers map[string]string, chunk []byte) (int, error) {

	if verb != http.MethodPut && verb != http.MethodPost {
		return 0, errors.New("unsupported http verb:" + verb)
	}

	resp, err := c.external.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetBody(chunk).
		Execute(verb, host+urlPath)
	if err != nil {
		return 0, errors.WithContext(err, "send chunk to "+host)
	}
	return resp.StatusCode(), nil
}

// ReceiveExternal streams a file's content from the location returned by
// GetFileURL. Only GET is supported. The caller must close the returned
// reader; the body is never buffered in full, so large files stream with
// bounded memory.
func (c *Client) ReceiveExternal(ctx context.Context, verb, host, urlPath string,
	headers map[string]string) (io.ReadCloser, error) {

	if verb != http.MethodGet {
		return nil, errors.New("unsupported http verb:" + verb)
	}

	resp, err := c.stream.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetDoNotParseResponse(true).
		Get(host + urlPath)
	if err != nil {
		return nil, errors.WithContext(err, "receive from "+host)
	}

	body := resp.RawBody()
	if code := resp.RawResponse.StatusCode; code < 200 || code >= 300 {
		body.Close()
		return nil, errors.ServiceError{
			StatusCode: code,
			URLSuffix:  urlPath,
		}
	}
	return body, nil
}
