package roster

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Client talks to the student records HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	requestID func() string
}

const (
	// DefaultAPIURL is where the service listens out of the box.
	DefaultAPIURL = "http://localhost:5000"

	defaultUserAgent = "roster/0.1"
	defaultTimeout   = 5 * time.Second
	maxBodyBytes     = 8 << 20

	requestIDHeader = "X-Request-ID"
	studentsPath    = "/students"
)

// NewClient builds a Client for apiURL. A bare host:port gets an http
// scheme; a path prefix such as /api is kept. A non-positive timeout uses
// the default.
func NewClient(apiURL string, timeout time.Duration) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: timeout},
		userAgent: defaultUserAgent,
		requestID: uuid.NewString,
	}, nil
}

// BaseURL returns the normalized service address.
func (c *Client) BaseURL() string {
	if c == nil || c.baseURL == nil {
		return ""
	}
	return c.baseURL.String()
}

// ListStudents retrieves the full collection. A null body is an empty list.
func (c *Client) ListStudents(ctx context.Context) ([]Student, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []Student
	if err := c.do(ctx, "list students", http.MethodGet, &url.URL{Path: studentsPath}, nil, jsonInto(&payload)); err != nil {
		return nil, err
	}
	if payload == nil {
		payload = []Student{}
	}
	return payload, nil
}

// FetchStatistics retrieves the aggregate snapshot.
func (c *Client) FetchStatistics(ctx context.Context) (Statistics, error) {
	if c == nil {
		return Statistics{}, fmt.Errorf("client is nil")
	}
	var payload Statistics
	if err := c.do(ctx, "fetch statistics", http.MethodGet, &url.URL{Path: studentsPath + "/statistics"}, nil, jsonInto(&payload)); err != nil {
		return Statistics{}, err
	}
	return payload, nil
}

// SearchByRollNumber looks up the student with the given roll number. The
// key is sent verbatim, including when empty. A nil student means no match.
func (c *Client) SearchByRollNumber(ctx context.Context, rollNumber string) (*Student, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	values.Set("rollNumber", rollNumber)
	rel := &url.URL{Path: studentsPath, RawQuery: values.Encode()}

	var found *Student
	err := c.do(ctx, "search students", http.MethodGet, rel, nil, func(raw []byte) error {
		s, err := decodeSearchResult(raw)
		found = s
		return err
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

// FetchStudent retrieves one student by identifier.
func (c *Client) FetchStudent(ctx context.Context, id string) (Student, error) {
	if c == nil {
		return Student{}, fmt.Errorf("client is nil")
	}
	rel, err := studentURL(id)
	if err != nil {
		return Student{}, err
	}
	var payload Student
	if err := c.do(ctx, "fetch student", http.MethodGet, rel, nil, jsonInto(&payload)); err != nil {
		return Student{}, err
	}
	if payload.ID == "" {
		payload.ID = id
	}
	return payload, nil
}

// CreateStudent submits a new record. The service assigns the identifier.
func (c *Client) CreateStudent(ctx context.Context, s Student) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, "create student", http.MethodPost, &url.URL{Path: studentsPath}, s.body(), nil)
}

// UpdateStudent replaces the record identified by s.ID.
func (c *Client) UpdateStudent(ctx context.Context, s Student) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel, err := studentURL(s.ID)
	if err != nil {
		return err
	}
	return c.do(ctx, "update student", http.MethodPut, rel, s.body(), nil)
}

// DeleteStudent removes the record. Any 2xx answer counts as success.
func (c *Client) DeleteStudent(ctx context.Context, id string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	rel, err := studentURL(id)
	if err != nil {
		return err
	}
	return c.do(ctx, "delete student", http.MethodDelete, rel, nil, nil)
}

func jsonInto(dest any) func([]byte) error {
	return func(raw []byte) error {
		if len(bytes.TrimSpace(raw)) == 0 {
			return nil
		}
		return json.Unmarshal(raw, dest)
	}
}

func (c *Client) do(ctx context.Context, op, method string, rel *url.URL, body any, decode func([]byte) error) error {
	reqURL := c.resolve(rel)
	reqID := c.requestID()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, reqID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Op: op, Path: rel.Path, Kind: KindTransport, RequestID: reqID, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &Error{Op: op, Path: rel.Path, Kind: KindStatus, Status: resp.StatusCode, RequestID: reqID}
	}
	if decode == nil {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &Error{Op: op, Path: rel.Path, Kind: KindTransport, RequestID: reqID, Err: err}
	}
	if err := decode(raw); err != nil {
		return &Error{Op: op, Path: rel.Path, Kind: KindDecode, Status: resp.StatusCode, RequestID: reqID, Err: err}
	}
	return nil
}

// resolve appends rel to the base path so that a mount prefix survives.
func (c *Client) resolve(rel *url.URL) *url.URL {
	u := *c.baseURL
	prefix := strings.TrimRight(c.baseURL.Path, "/")
	rawPrefix := strings.TrimRight(c.baseURL.EscapedPath(), "/")
	u.Path = prefix + rel.Path
	u.RawPath = rawPrefix + rel.EscapedPath()
	u.RawQuery = rel.RawQuery
	return &u
}

func studentURL(id string) (*url.URL, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return nil, fmt.Errorf("student id required")
	}
	return &url.URL{
		Path:    studentsPath + "/" + trimmed,
		RawPath: studentsPath + "/" + url.PathEscape(trimmed),
	}, nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = DefaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse api_url %q: missing host", apiURL)
	}
	u.Path = strings.TrimRight(u.Path, "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
