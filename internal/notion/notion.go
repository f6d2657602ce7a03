// Package notion ensures the learning-plan database and its rows exist in a
// Notion workspace.
package notion

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/jomei/notionapi"
	"github.com/zulandar/roadmapper/internal/catalog"
	"github.com/zulandar/roadmapper/internal/retry"
)

// Property names in the plan database.
const (
	PropTitle    = "Learning Topic"
	PropWeek     = "Week"
	PropMonth    = "Month"
	PropProject  = "Project Phase"
	PropDetails  = "Details"
	PropStatus   = "Status"
	PropPriority = "Priority"
	PropGitHub   = "GitHub"
	PropDataset  = "Dataset"
)

// Client talks to the Notion API on behalf of one parent page.
type Client struct {
	api          *notionapi.Client
	parentPageID string
}

// Option customizes a Client.
type Option func(*options)

type options struct {
	httpClient *http.Client
	baseURL    *url.URL
}

// WithHTTPClient replaces the HTTP client used for API calls.
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithBaseURL sends API calls to raw instead of api.notion.com. An empty
// or unparsable value is ignored.
func WithBaseURL(raw string) Option {
	return func(o *options) {
		if raw == "" {
			return
		}
		u, err := url.Parse(raw)
		if err != nil || u.Host == "" {
			return
		}
		o.baseURL = u
	}
}

// hostRewriter points every request at another scheme and host, keeping
// the path the SDK built.
type hostRewriter struct {
	target *url.URL
	next   http.RoundTripper
}

func (h hostRewriter) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = h.target.Scheme
	r.URL.Host = h.target.Host
	r.Host = h.target.Host
	return h.next.RoundTrip(r)
}

// New creates a Client. No request is made until a method is called.
func New(token, parentPageID string, opts ...Option) *Client {
	var o options
	for _, fn := range opts {
		fn(&o)
	}
	httpClient := o.httpClient
	if o.baseURL != nil {
		next := http.DefaultTransport
		if httpClient != nil && httpClient.Transport != nil {
			next = httpClient.Transport
		}
		httpClient = &http.Client{Transport: hostRewriter{target: o.baseURL, next: next}}
	}
	// A single attempt per call: 429s surface as RateLimitedError and
	// the retry policy decides what happens next.
	clientOpts := []notionapi.ClientOption{notionapi.WithRetry(1)}
	if httpClient != nil {
		clientOpts = append(clientOpts, notionapi.WithHTTPClient(httpClient))
	}
	return &Client{
		api:          notionapi.NewClient(notionapi.Token(token), clientOpts...),
		parentPageID: parentPageID,
	}
}

// FindDatabase searches for a database titled title directly under the
// parent page. Notion has no lookup by title, so search results are
// filtered on exact title and parent.
func (c *Client) FindDatabase(ctx context.Context, title string) (string, bool, error) {
	req := &notionapi.SearchRequest{
		Query: title,
		Filter: notionapi.SearchFilter{
			Property: "object",
			Value:    "database",
		},
		PageSize: 100,
	}
	for {
		resp, err := c.api.Search.Do(ctx, req)
		if err != nil {
			return "", false, classify(fmt.Errorf("notion: search databases: %w", err))
		}
		for _, obj := range resp.Results {
			db, ok := obj.(*notionapi.Database)
			if !ok {
				continue
			}
			if plainText(db.Title) != title {
				continue
			}
			if !samePageID(string(db.Parent.PageID), c.parentPageID) {
				continue
			}
			return db.ID.String(), true, nil
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return "", false, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

// CreateDatabase creates the plan database under the parent page and
// returns its id.
func (c *Client) CreateDatabase(ctx context.Context, title string) (string, error) {
	db, err := c.api.Database.Create(ctx, &notionapi.DatabaseCreateRequest{
		Parent: notionapi.Parent{
			Type:   notionapi.ParentTypePageID,
			PageID: notionapi.PageID(c.parentPageID),
		},
		Title:      richText(title),
		Properties: schema(),
	})
	if err != nil {
		return "", classify(fmt.Errorf("notion: create database %q: %w", title, err))
	}
	return db.ID.String(), nil
}

// ExistingWeeks returns the week numbers already present in the database.
func (c *Client) ExistingWeeks(ctx context.Context, databaseID string) (map[int]bool, error) {
	weeks := make(map[int]bool)
	req := &notionapi.DatabaseQueryRequest{PageSize: 100}
	for {
		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, classify(fmt.Errorf("notion: query database %s: %w", databaseID, err))
		}
		for _, page := range resp.Results {
			prop, ok := page.Properties[PropWeek].(*notionapi.NumberProperty)
			if !ok {
				continue
			}
			weeks[int(prop.Number)] = true
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return weeks, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

// CreatePlanItem adds one row for item.
func (c *Client) CreatePlanItem(ctx context.Context, databaseID string, item catalog.PlanItem) error {
	_, err := c.api.Page.Create(ctx, &notionapi.PageCreateRequest{
		Parent: notionapi.Parent{
			Type:       notionapi.ParentTypeDatabaseID,
			DatabaseID: notionapi.DatabaseID(databaseID),
		},
		Properties: rowProperties(item),
	})
	if err != nil {
		return classify(fmt.Errorf("notion: add week %d: %w", item.Week, err))
	}
	return nil
}

func schema() notionapi.PropertyConfigs {
	months := make([]notionapi.Option, 0, 6)
	monthColors := []notionapi.Color{
		notionapi.ColorBlue, notionapi.ColorGreen, notionapi.ColorOrange,
		notionapi.ColorPurple, notionapi.ColorPink, notionapi.ColorRed,
	}
	for i, label := range catalog.MonthLabels() {
		months = append(months, notionapi.Option{Name: label, Color: monthColors[i%len(monthColors)]})
	}

	return notionapi.PropertyConfigs{
		PropTitle: notionapi.TitlePropertyConfig{Type: notionapi.PropertyConfigTypeTitle},
		PropWeek: notionapi.NumberPropertyConfig{
			Type:   notionapi.PropertyConfigTypeNumber,
			Number: notionapi.NumberFormat{Format: notionapi.FormatNumber},
		},
		PropMonth: notionapi.SelectPropertyConfig{
			Type:   notionapi.PropertyConfigTypeSelect,
			Select: notionapi.Select{Options: months},
		},
		PropProject: notionapi.RichTextPropertyConfig{Type: notionapi.PropertyConfigTypeRichText},
		PropDetails: notionapi.RichTextPropertyConfig{Type: notionapi.PropertyConfigTypeRichText},
		PropStatus: notionapi.SelectPropertyConfig{
			Type: notionapi.PropertyConfigTypeSelect,
			Select: notionapi.Select{Options: []notionapi.Option{
				{Name: catalog.StatusNotStarted.Label(), Color: notionapi.ColorRed},
				{Name: catalog.StatusInProgress.Label(), Color: notionapi.ColorYellow},
				{Name: catalog.StatusDone.Label(), Color: notionapi.ColorGreen},
			}},
		},
		PropPriority: notionapi.SelectPropertyConfig{
			Type: notionapi.PropertyConfigTypeSelect,
			Select: notionapi.Select{Options: []notionapi.Option{
				{Name: "High", Color: notionapi.ColorRed},
				{Name: "Medium", Color: notionapi.ColorYellow},
				{Name: "Low", Color: notionapi.ColorGray},
			}},
		},
		PropGitHub:  notionapi.URLPropertyConfig{Type: notionapi.PropertyConfigTypeURL},
		PropDataset: notionapi.URLPropertyConfig{Type: notionapi.PropertyConfigTypeURL},
	}
}

func rowProperties(item catalog.PlanItem) notionapi.Properties {
	props := notionapi.Properties{
		PropTitle:    notionapi.TitleProperty{Title: richText(item.Title)},
		PropWeek:     notionapi.NumberProperty{Number: float64(item.Week)},
		PropMonth:    notionapi.SelectProperty{Select: notionapi.Option{Name: item.MonthLabel()}},
		PropProject:  notionapi.RichTextProperty{RichText: richText(item.Project)},
		PropDetails:  notionapi.RichTextProperty{RichText: richText(item.Details)},
		PropStatus:   notionapi.SelectProperty{Select: notionapi.Option{Name: item.Status.Label()}},
		PropPriority: notionapi.SelectProperty{Select: notionapi.Option{Name: item.Priority()}},
	}
	// Notion rejects empty URL values, so unset links are omitted.
	if item.RepoURL != "" {
		props[PropGitHub] = notionapi.URLProperty{URL: item.RepoURL}
	}
	if item.DatasetURL != "" {
		props[PropDataset] = notionapi.URLProperty{URL: item.DatasetURL}
	}
	return props
}

func richText(s string) []notionapi.RichText {
	return []notionapi.RichText{{
		Type: notionapi.ObjectTypeText,
		Text: &notionapi.Text{Content: s},
	}}
}

func plainText(rt []notionapi.RichText) string {
	var b strings.Builder
	for _, r := range rt {
		switch {
		case r.PlainText != "":
			b.WriteString(r.PlainText)
		case r.Text != nil:
			b.WriteString(r.Text.Content)
		}
	}
	return b.String()
}

// samePageID compares Notion ids, which appear both with and without dashes.
func samePageID(a, b string) bool {
	norm := func(s string) string {
		return strings.ToLower(strings.ReplaceAll(s, "-", ""))
	}
	return norm(a) == norm(b)
}

// classify marks rate limits, server errors and network failures as
// transient so the retry policy picks them up.
func classify(err error) error {
	var limited *notionapi.RateLimitedError
	if errors.As(err, &limited) {
		return retry.MarkTransient(err)
	}
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusTooManyRequests || apiErr.Status >= 500 {
			return retry.MarkTransient(err)
		}
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return retry.MarkTransient(err)
	}
	return err
}
