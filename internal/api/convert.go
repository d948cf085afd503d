package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// handleHTTPError processes common HTTP error status codes and returns appropriate errors.
// It consumes the response body and returns an error for non-success status codes.
func handleHTTPError(resp *http.Response) error {
	var e ErrorBody
	_ = decodeJSON(resp.Body, &e)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrUnauthorized, e.Message())
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, e.Message())
	case http.StatusTooManyRequests:
		retryAfter := 0
		if ra := resp.Header.Get("Retry-After"); ra != "" {
			if v, err := strconv.Atoi(ra); err == nil {
				retryAfter = v
			}
		}
		return RateLimitedError{RetryAfterSeconds: retryAfter, Remote: e}
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnsupportedMediaType:
		return fmt.Errorf("%w: %s", ErrValidation, e.Message())
	default:
		return RemoteError{StatusCode: resp.StatusCode, RequestID: resp.Request.Header.Get("X-Request-Id"), Remote: e}
	}
}

// Convert implements POST /ascii/ as a multipart upload of the image and the
// target column count, returning the character-grid text verbatim.
func (c *Client) Convert(ctx context.Context, req ConvertRequest) (string, error) {
	body, contentType, err := encodeConvertForm(req)
	if err != nil {
		return "", err
	}

	full := c.buildURL("/ascii/", url.Values{})
	httpReq, err := c.newRequest(ctx, http.MethodPost, full, body)
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", contentType)

	logrus.Debugf("converting %s (%d bytes) at %d columns via %s", req.Filename, len(req.Image), req.Columns, full)
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("%w: %v", ErrOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", handleHTTPError(resp)
	}

	var out ConvertResponse
	if err := decodeJSON(resp.Body, &out); err != nil {
		return "", fmt.Errorf("decode conversion response: %w", err)
	}
	if strings.TrimSpace(out.ASCII) == invalidImageReply {
		return "", fmt.Errorf("%w: %s", ErrInvalidImage, req.Filename)
	}
	return out.ASCII, nil
}

func encodeConvertForm(req ConvertRequest) (*bytes.Buffer, string, error) {
	buf := new(bytes.Buffer)
	mw := multipart.NewWriter(buf)
	part, err := mw.CreateFormFile("image", req.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(req.Image); err != nil {
		return nil, "", err
	}
	if err := mw.WriteField("width", strconv.Itoa(req.Columns)); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

// Retryable reports whether err is a transient failure worth retrying later.
func Retryable(err error) bool {
	var rl RateLimitedError
	if errors.As(err, &rl) {
		return true
	}
	var re RemoteError
	if errors.As(err, &re) {
		return re.StatusCode >= http.StatusInternalServerError
	}
	return errors.Is(err, ErrOffline)
}
