package notion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jomei/notionapi"
)

// Column is one property of a database schema.
type Column struct {
	Name string
	Type string
}

// DatabaseInfo is a read-only summary of a database and a sample of its rows.
type DatabaseInfo struct {
	ID           string
	Title        string
	ParentPageID string
	URL          string
	CreatedAt    time.Time
	EditedAt     time.Time
	Columns      []Column

	// Rows is the number of rows read. MoreRows is set when the database
	// holds more rows than were read.
	Rows     int
	MoreRows bool
	Samples  []map[string]string
}

// Roadmap keywords matched against titles and column names.
var (
	roadmapTitleWords  = []string{"roadmap", "learning", "data engineering", "career", "plan", "week"}
	roadmapColumnWords = []string{"week", "topic", "learning", "project", "month"}
)

// LooksLikeRoadmap reports whether the title or a column name suggests a
// learning plan.
func (d *DatabaseInfo) LooksLikeRoadmap() bool {
	if containsAny(strings.ToLower(d.Title), roadmapTitleWords) {
		return true
	}
	for _, col := range d.Columns {
		if containsAny(strings.ToLower(col.Name), roadmapColumnWords) {
			return true
		}
	}
	return false
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// ScanDatabases lists every database shared with the integration together
// with up to samples rows of each. Nothing is modified.
func (c *Client) ScanDatabases(ctx context.Context, samples int) ([]DatabaseInfo, error) {
	if samples < 1 {
		samples = 1
	}
	req := &notionapi.SearchRequest{
		Filter: notionapi.SearchFilter{
			Property: "object",
			Value:    "database",
		},
		PageSize: 100,
	}
	var out []DatabaseInfo
	for {
		resp, err := c.api.Search.Do(ctx, req)
		if err != nil {
			return nil, classify(fmt.Errorf("notion: search databases: %w", err))
		}
		for _, obj := range resp.Results {
			db, ok := obj.(*notionapi.Database)
			if !ok {
				continue
			}
			info := describe(db)
			qr, err := c.api.Database.Query(ctx, notionapi.DatabaseID(db.ID.String()), &notionapi.DatabaseQueryRequest{PageSize: samples})
			if err != nil {
				return nil, classify(fmt.Errorf("notion: sample database %s: %w", db.ID, err))
			}
			info.Rows = len(qr.Results)
			info.MoreRows = qr.HasMore
			info.Samples = sampleRows(qr.Results, samples)
			out = append(out, info)
		}
		if !resp.HasMore || resp.NextCursor == "" {
			return out, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

// InspectDatabase reads the schema and counts every row of one database,
// keeping the first samples rows as text.
func (c *Client) InspectDatabase(ctx context.Context, databaseID string, samples int) (*DatabaseInfo, error) {
	db, err := c.api.Database.Get(ctx, notionapi.DatabaseID(databaseID))
	if err != nil {
		return nil, classify(fmt.Errorf("notion: get database %s: %w", databaseID, err))
	}
	info := describe(db)

	req := &notionapi.DatabaseQueryRequest{PageSize: 100}
	for {
		resp, err := c.api.Database.Query(ctx, notionapi.DatabaseID(databaseID), req)
		if err != nil {
			return nil, classify(fmt.Errorf("notion: query database %s: %w", databaseID, err))
		}
		if len(info.Samples) < samples {
			info.Samples = append(info.Samples, sampleRows(resp.Results, samples-len(info.Samples))...)
		}
		info.Rows += len(resp.Results)
		if !resp.HasMore || resp.NextCursor == "" {
			return &info, nil
		}
		req.StartCursor = resp.NextCursor
	}
}

func describe(db *notionapi.Database) DatabaseInfo {
	info := DatabaseInfo{
		ID:           db.ID.String(),
		Title:        plainText(db.Title),
		ParentPageID: string(db.Parent.PageID),
		URL:          db.URL,
		CreatedAt:    db.CreatedTime,
		EditedAt:     db.LastEditedTime,
	}
	for name, cfg := range db.Properties {
		info.Columns = append(info.Columns, Column{Name: name, Type: string(cfg.GetType())})
	}
	sort.Slice(info.Columns, func(i, j int) bool { return info.Columns[i].Name < info.Columns[j].Name })
	return info
}

func sampleRows(pages []notionapi.Page, n int) []map[string]string {
	if n > len(pages) {
		n = len(pages)
	}
	rows := make([]map[string]string, 0, n)
	for _, page := range pages[:n] {
		row := make(map[string]string, len(page.Properties))
		for name, prop := range page.Properties {
			if v := propertyText(prop); v != "" {
				row[name] = v
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// propertyText renders a row value as plain text. Types without a
// natural text form render as their type name in brackets.
func propertyText(p notionapi.Property) string {
	switch v := p.(type) {
	case *notionapi.TitleProperty:
		return plainText(v.Title)
	case *notionapi.RichTextProperty:
		return plainText(v.RichText)
	case *notionapi.SelectProperty:
		return v.Select.Name
	case *notionapi.StatusProperty:
		return v.Status.Name
	case *notionapi.MultiSelectProperty:
		names := make([]string, 0, len(v.MultiSelect))
		for _, o := range v.MultiSelect {
			names = append(names, o.Name)
		}
		return strings.Join(names, ", ")
	case *notionapi.NumberProperty:
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	case *notionapi.URLProperty:
		return v.URL
	case *notionapi.CheckboxProperty:
		return strconv.FormatBool(v.Checkbox)
	case nil:
		return ""
	default:
		return "[" + string(p.GetType()) + "]"
	}
}

// ErrParentNotShared means the parent page is missing or not shared with
// the integration.
var ErrParentNotShared = errors.New("notion: parent page not found or not shared with the integration")

// CheckParentPage fetches the parent page and returns its title. It is the
// cheapest call that proves both the token and the page share are valid.
func (c *Client) CheckParentPage(ctx context.Context) (string, error) {
	page, err := c.api.Page.Get(ctx, notionapi.PageID(c.parentPageID))
	if err != nil {
		var apiErr *notionapi.Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return "", fmt.Errorf("%w: %s", ErrParentNotShared, c.parentPageID)
		}
		return "", classify(fmt.Errorf("notion: get parent page %s: %w", c.parentPageID, err))
	}
	for _, prop := range page.Properties {
		if t, ok := prop.(*notionapi.TitleProperty); ok {
			return plainText(t.Title), nil
		}
	}
	return "", nil
}
