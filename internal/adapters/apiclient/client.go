// Package apiclient is the typed HTTP client the client-side stores use to
// reach the REST API. It keeps the session cookie in a jar and turns every
// non-2xx response into an *Error.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// maxResponseSize caps how much of a response body is read
const maxResponseSize = 4 << 20

// Client implements the gateway ports over HTTP
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *logger.Logger
}

var (
	_ ports.TaskGateway    = (*Client)(nil)
	_ ports.NoteGateway    = (*Client)(nil)
	_ ports.EventGateway   = (*Client)(nil)
	_ ports.CalendarSource = (*Client)(nil)
)

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A client without a
// cookie jar gets one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// New creates a client for the server at baseURL
func New(baseURL string, log *logger.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid server url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server url %q: scheme and host are required", baseURL)
	}

	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     log.WithComponent("apiclient"),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create cookie jar: %w", err)
		}
		c.httpClient.Jar = jar
	}

	return c, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debugw("Request failed", "method", method, "path", path, "error", err.Error())
		return fmt.Errorf("%s %s: %w: %w", method, path, entities.ErrNetwork, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, entities.ErrNetwork, err)
	}

	c.logger.Debugw("Request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// Auth

// Login starts a session. identifier is a username or an email address.
func (c *Client) Login(ctx context.Context, identifier, password string) (*entities.User, error) {
	var resp ports.AuthResponse
	req := ports.LoginRequest{Username: identifier, Password: password}
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

// Register creates an account and starts a session for it
func (c *Client) Register(ctx context.Context, req ports.RegisterRequest) (*entities.User, error) {
	var resp ports.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", nil, req, &resp); err != nil {
		return nil, err
	}
	return resp.User, nil
}

func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, nil)
}

// Me returns the user owning the current session
func (c *Client) Me(ctx context.Context) (*entities.User, error) {
	var user entities.User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Tasks

func (c *Client) ListTasks(ctx context.Context) (entities.TaskGroups, error) {
	groups := entities.NewTaskGroups()
	if err := c.do(ctx, http.MethodGet, "/api/tasks", nil, nil, &groups); err != nil {
		return entities.NewTaskGroups(), err
	}
	return groups, nil
}

func (c *Client) CreateTask(ctx context.Context, req ports.CreateTaskRequest) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, req ports.UpdateTaskRequest) (*entities.Task, error) {
	var task entities.Task
	if err := c.do(ctx, http.MethodPut, "/api/tasks/"+idPath(id), nil, req, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ReorderTask(ctx context.Context, id int64, status entities.TaskStatus, position int) error {
	req := ports.ReorderTaskRequest{Status: status, Position: position}
	return c.do(ctx, http.MethodPut, "/api/tasks/reorder/"+idPath(id), nil, req, nil)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+idPath(id), nil, nil, nil)
}

// Notes

func (c *Client) ListNotes(ctx context.Context) ([]entities.Note, error) {
	notes := []entities.Note{}
	if err := c.do(ctx, http.MethodGet, "/api/notes", nil, nil, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (c *Client) GetNote(ctx context.Context, id int64) (*entities.Note, error) {
	var note entities.Note
	if err := c.do(ctx, http.MethodGet, "/api/notes/"+idPath(id), nil, nil, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) CreateNote(ctx context.Context, req ports.CreateNoteRequest) (*entities.Note, error) {
	var note entities.Note
	if err := c.do(ctx, http.MethodPost, "/api/notes", nil, req, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id int64, req ports.UpdateNoteRequest) (*entities.Note, error) {
	var note entities.Note
	if err := c.do(ctx, http.MethodPut, "/api/notes/"+idPath(id), nil, req, &note); err != nil {
		return nil, err
	}
	return &note, nil
}

// TogglePin flips a note's pin and returns the server's new value
func (c *Client) TogglePin(ctx context.Context, id int64) (bool, error) {
	var resp ports.PinResponse
	if err := c.do(ctx, http.MethodPatch, "/api/notes/"+idPath(id)+"/pin", nil, nil, &resp); err != nil {
		return false, err
	}
	return resp.IsPinned, nil
}

func (c *Client) DeleteNote(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/notes/"+idPath(id), nil, nil, nil)
}

// Calendar

// ListEvents returns the events overlapping year/month
func (c *Client) ListEvents(ctx context.Context, year int, month time.Month) ([]entities.CalendarEvent, error) {
	query := url.Values{}
	query.Set("month", strconv.Itoa(int(month)))
	query.Set("year", strconv.Itoa(year))

	events := []entities.CalendarEvent{}
	if err := c.do(ctx, http.MethodGet, "/api/calendar", query, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// ListEventsBetween returns the events contained in [start, end]
func (c *Client) ListEventsBetween(ctx context.Context, start, end time.Time) ([]entities.CalendarEvent, error) {
	query := url.Values{}
	query.Set("start", start.Format(time.RFC3339))
	query.Set("end", end.Format(time.RFC3339))

	events := []entities.CalendarEvent{}
	if err := c.do(ctx, http.MethodGet, "/api/calendar", query, nil, &events); err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) CreateEvent(ctx context.Context, req ports.CreateEventRequest) (*entities.CalendarEvent, error) {
	var event entities.CalendarEvent
	if err := c.do(ctx, http.MethodPost, "/api/calendar", nil, req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) UpdateEvent(ctx context.Context, id int64, req ports.UpdateEventRequest) (*entities.CalendarEvent, error) {
	var event entities.CalendarEvent
	if err := c.do(ctx, http.MethodPut, "/api/calendar/"+idPath(id), nil, req, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (c *Client) DeleteEvent(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/calendar/"+idPath(id), nil, nil, nil)
}

func idPath(id int64) string {
	return strconv.FormatInt(id, 10)
}
