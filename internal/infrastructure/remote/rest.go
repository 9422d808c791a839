package remote

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"nearbasket/pkg/errors"
	"nearbasket/pkg/logger"
)

const (
	restPath = "/rest/v1/"
	authPath = "/auth/v1/"
)

// RestClient talks to the hosted backend's table REST interface and its auth
// endpoints.
type RestClient struct {
	baseURL    string
	anonKey    string
	httpClient *http.Client
	tokens     TokenSource
}

func NewRestClient(baseURL, anonKey string, timeout time.Duration) *RestClient {
	return &RestClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		anonKey:    anonKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetTokenSource installs the session used for authenticated table calls.
func (c *RestClient) SetTokenSource(tokens TokenSource) {
	c.tokens = tokens
}

type restError struct {
	Message          string `json:"message"`
	Msg              string `json:"msg"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Code             string `json:"code"`
	Details          string `json:"details"`
}

func (e restError) text() string {
	for _, s := range []string{e.Message, e.Msg, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

func (c *RestClient) Select(ctx context.Context, table string, q Query, out interface{}) error {
	params, err := encodeQuery(q)
	if err != nil {
		return errors.Internal("Invalid query", err)
	}
	params.Set("select", "*")

	body, err := c.do(ctx, http.MethodGet, restPath+table, params, nil, nil, true)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return errors.Decode("Unexpected response from the server", err)
	}
	return nil
}

func (c *RestClient) Insert(ctx context.Context, table string, rows interface{}) error {
	headers := map[string]string{"Prefer": "return=representation"}
	body, err := c.do(ctx, http.MethodPost, restPath+table, nil, rows, headers, true)
	if err != nil {
		return err
	}
	return decodeRepresentation(body, rows)
}

func (c *RestClient) Upsert(ctx context.Context, table string, rows interface{}, onConflict string) error {
	params := url.Values{}
	if onConflict != "" {
		params.Set("on_conflict", onConflict)
	}
	headers := map[string]string{"Prefer": "resolution=merge-duplicates,return=representation"}

	body, err := c.do(ctx, http.MethodPost, restPath+table, params, rows, headers, true)
	if err != nil {
		return err
	}
	return decodeRepresentation(body, rows)
}

func (c *RestClient) Update(ctx context.Context, table string, q Query, patch map[string]interface{}, out interface{}) error {
	if len(q.Filters) == 0 {
		return errors.Internal("Refusing to update every row", fmt.Errorf("update %s without filters", table))
	}
	params, err := encodeQuery(q)
	if err != nil {
		return errors.Internal("Invalid query", err)
	}

	prefer := "return=minimal"
	if out != nil {
		prefer = "return=representation"
	}
	body, err := c.do(ctx, http.MethodPatch, restPath+table, params, patch, map[string]string{"Prefer": prefer}, true)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return decodeRepresentation(body, out)
}

func (c *RestClient) Delete(ctx context.Context, table string, q Query) error {
	if len(q.Filters) == 0 {
		return errors.Internal("Refusing to delete every row", fmt.Errorf("delete %s without filters", table))
	}
	params, err := encodeQuery(q)
	if err != nil {
		return errors.Internal("Invalid query", err)
	}
	_, err = c.do(ctx, http.MethodDelete, restPath+table, params, nil, nil, true)
	return err
}

func (c *RestClient) do(ctx context.Context, method, path string, params url.Values, payload interface{}, headers map[string]string, authed bool) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var reader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, errors.Internal("Failed to encode request", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, errors.Internal("Failed to build request", err)
	}

	bearer := c.anonKey
	if authed && c.tokens != nil {
		token, err := c.tokens.AccessToken(ctx)
		if err != nil {
			return nil, err
		}
		if token != "" {
			bearer = token
		}
	}

	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, TransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, TransportError(err)
	}

	if resp.StatusCode >= 300 {
		logger.Debug("%s %s -> %d: %s", method, path, resp.StatusCode, string(body))
		return nil, StatusError(resp.StatusCode, resp.Header, body)
	}

	return body, nil
}

// TransportError maps a failed HTTP round trip to Timeout or Remote.
func TransportError(err error) error {
	var netErr net.Error
	if stderrors.Is(err, context.DeadlineExceeded) || (stderrors.As(err, &netErr) && netErr.Timeout()) {
		return errors.Timeout("The server took too long to respond", err)
	}
	return errors.Remote("Unable to reach the server", 0, err)
}

// StatusError maps a non-2xx response from the hosted backend to an AppError.
func StatusError(status int, header http.Header, body []byte) error {
	var payload restError
	_ = json.Unmarshal(body, &payload)
	detail := payload.text()
	cause := fmt.Errorf("http %d: %s", status, strings.TrimSpace(string(body)))

	switch {
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		if detail == "" {
			detail = "The request was rejected"
		}
		return errors.BadRequest(detail, cause)
	case status == http.StatusUnauthorized:
		return errors.Unauthorized("Your session has expired, please sign in again", cause)
	case status == http.StatusForbidden:
		return errors.Forbidden("You are not allowed to do that", cause)
	case status == http.StatusNotFound || status == http.StatusNotAcceptable:
		return errors.NotFound("Resource", cause)
	case status == http.StatusConflict:
		appErr := errors.Conflict("This item already exists")
		appErr.Err = cause
		return appErr
	case status == http.StatusTooManyRequests:
		wait, _ := strconv.Atoi(header.Get("Retry-After"))
		appErr := errors.TooManyRequests("Too many attempts", time.Duration(wait)*time.Second)
		appErr.Err = cause
		return appErr
	case status >= 500:
		return errors.Remote("The server is unavailable right now", status, cause)
	}
	return errors.Remote("Unexpected response from the server", status, cause)
}

func encodeQuery(q Query) (url.Values, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}

	params := url.Values{}
	for _, f := range q.Filters {
		params.Add(f.Column, string(f.Op)+"."+encodeValue(f))
	}
	if q.OrderBy != "" {
		dir := "asc"
		if q.Desc {
			dir = "desc"
		}
		params.Set("order", q.OrderBy+"."+dir)
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		params.Set("offset", strconv.Itoa(q.Offset))
	}
	return params, nil
}

func encodeValue(f Filter) string {
	switch f.Op {
	case OpIn:
		values := f.Value.([]string)
		quoted := make([]string, len(values))
		for i, v := range values {
			quoted[i] = strconv.Quote(v)
		}
		return "(" + strings.Join(quoted, ",") + ")"
	case OpILike:
		return strings.ReplaceAll(fmt.Sprint(f.Value), "%", "*")
	}
	return fmt.Sprint(f.Value)
}

// decodeRepresentation fills target from a representation body, which is
// always a JSON array. A struct target receives the first row.
func decodeRepresentation(body []byte, target interface{}) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}

	v := reflect.ValueOf(target)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return errors.Internal("Invalid decode target", fmt.Errorf("target must be a non-nil pointer, got %T", target))
	}

	if v.Elem().Kind() == reflect.Slice {
		if err := json.Unmarshal(body, target); err != nil {
			return errors.Decode("Unexpected response from the server", err)
		}
		return nil
	}

	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		if err := json.Unmarshal(body, target); err != nil {
			return errors.Decode("Unexpected response from the server", err)
		}
		return nil
	}
	if len(rows) == 0 {
		return nil
	}
	if err := json.Unmarshal(rows[0], target); err != nil {
		return errors.Decode("Unexpected response from the server", err)
	}
	return nil
}
