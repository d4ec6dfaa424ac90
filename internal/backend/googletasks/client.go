// Package googletasks exports tasks to Google Tasks.
package googletasks

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	gtasks "google.golang.org/api/tasks/v1"

	"prodexa/internal/config"
	"prodexa/internal/tasks"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// ErrNotConnected is returned when no Google token is stored.
var ErrNotConnected = errors.New("google tasks not connected (run: prodexa google-login)")

// TaskList is a Google Tasks list.
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}

// Client talks to the Google Tasks API.
type Client struct {
	svc *gtasks.Service
}

// New creates a client from the stored OAuth client credentials and token.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	if !cfg.HasGoogleToken() {
		return nil, ErrNotConnected
	}
	oauthConfig, err := loadOAuthConfig(cfg)
	if err != nil {
		return nil, err
	}

	token, err := LoadToken(cfg.GoogleTokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", config.GoogleTokenFile, err)
	}

	// Create token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, token))
	return NewWithHTTPClient(ctx, httpClient)
}

// NewWithHTTPClient creates a client with a custom HTTP client.
// Extra options, such as option.WithEndpoint, are passed to the API service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, opts ...option.ClientOption) (*Client, error) {
	svc, err := gtasks.NewService(ctx, append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	return &Client{svc: svc}, nil
}

func loadOAuthConfig(cfg *config.Config) (*oauth2.Config, error) {
	clientJSON, err := os.ReadFile(cfg.GoogleClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read google client file: %w", err)
	}
	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid google client file: %w", err)
	}
	return oauthConfig, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// First, get the default list to know its real ID
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}

	var result []TaskList
	err = c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *gtasks.TaskLists) error {
		for _, list := range resp.Items {
			isDefault := list.Id == defaultList.Id
			id := list.Id
			if isDefault {
				id = DefaultListID
			}
			result = append(result, TaskList{ID: id, Title: list.Title, IsDefault: isDefault})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}
	return result, nil
}

// ResolveList finds a list by name (case-insensitive, trimmed).
// An empty name selects the default list.
func (c *Client) ResolveList(ctx context.Context, name string) (TaskList, error) {
	name = strings.TrimSpace(name)
	lists, err := c.ListLists(ctx)
	if err != nil {
		return TaskList{}, err
	}

	var matches []TaskList
	for _, list := range lists {
		if name == "" && list.IsDefault {
			return list, nil
		}
		if name != "" && strings.EqualFold(strings.TrimSpace(list.Title), name) {
			matches = append(matches, list)
		}
	}

	switch len(matches) {
	case 0:
		if name == "" {
			return TaskList{}, fmt.Errorf("default list not found")
		}
		return TaskList{}, fmt.Errorf("list not found: %s", name)
	case 1:
		return matches[0], nil
	default:
		return TaskList{}, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// CreateTask inserts t into listID with its title, description and due date.
func (c *Client) CreateTask(ctx context.Context, listID string, t tasks.Task) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	item := &gtasks.Task{Title: t.Title, Notes: t.Description}
	if due, ok := t.Due(); ok {
		item.Due = due.UTC().Format(time.RFC3339)
	}
	if _, err := c.svc.Tasks.Insert(listID, item).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// ExportResult summarizes an export.
type ExportResult struct {
	List     TaskList
	Exported int
	Skipped  int
}

// Export copies the pending tasks of items into the named list, or the
// default list when name is empty. It stops at the first failed insert.
func (c *Client) Export(ctx context.Context, name string, items []tasks.Task) (ExportResult, error) {
	list, err := c.ResolveList(ctx, name)
	if err != nil {
		return ExportResult{}, err
	}

	res := ExportResult{List: list}
	for _, t := range items {
		if t.Status != tasks.StatusPending || t.Provisional {
			res.Skipped++
			continue
		}
		if err := c.CreateTask(ctx, list.ID, t); err != nil {
			return res, fmt.Errorf("export %q: %w", t.Title, err)
		}
		res.Exported++
	}
	return res, nil
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("google token expired or revoked (run: prodexa google-login)")
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
	}
	return err
}
