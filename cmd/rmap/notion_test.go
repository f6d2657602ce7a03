package main

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/zulandar/roadmapper/internal/config"
	"github.com/zulandar/roadmapper/internal/notion"
)

const scanDatabases = `{"object":"list","has_more":false,"results":[
  {"object":"database","id":"db-plan","parent":{"type":"page_id","page_id":"p"},
   "title":[{"type":"text","text":{"content":"Learning Plan"},"plain_text":"Learning Plan"}],
   "properties":{"Week":{"id":"w","type":"number","number":{"format":"number"}}}},
  {"object":"database","id":"db-recipes","parent":{"type":"page_id","page_id":"p"},
   "title":[{"type":"text","text":{"content":"Recipes"},"plain_text":"Recipes"}],
   "properties":{"Dish":{"id":"title","type":"title","title":{}}}}
]}`

// fakeWorkspace serves a read-only Notion workspace and fails the test on
// any request that is not a search, a database get or a query.
func fakeWorkspace(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/v1/search":
			_, _ = io.WriteString(w, scanDatabases)
		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/query"):
			_, _ = io.WriteString(w, `{"object":"list","has_more":false,"results":[
			  {"object":"page","id":"row1","properties":{"Week":{"id":"w","type":"number","number":7}}}]}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/pages/page-ok":
			_, _ = io.WriteString(w, `{"object":"page","id":"page-ok","properties":{
			  "title":{"id":"title","type":"title","title":[{"type":"text","text":{"content":"Career"},"plain_text":"Career"}]}}}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/pages/page-hidden":
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `{"object":"error","status":404,"code":"object_not_found","message":"Could not find page"}`)
		case r.Method == http.MethodGet && r.URL.Path == "/v1/databases/db-plan":
			_, _ = io.WriteString(w, `{"object":"database","id":"db-plan","parent":{"type":"page_id","page_id":"p"},
			  "title":[{"type":"text","text":{"content":"Learning Plan"},"plain_text":"Learning Plan"}],
			  "properties":{"Week":{"id":"w","type":"number","number":{"format":"number"}}}}`)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNotionScanCmd(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTION_TOKEN", "secret_abc")
	t.Setenv("NOTION_API_URL", fakeWorkspace(t).URL)
	t.Setenv("NOTION_DATABASE_TITLE", "Learning Plan")

	out, err := runCmd(t, "notion", "scan", "--env-file", "")
	if err != nil {
		t.Fatalf("notion scan failed: %v", err)
	}
	for _, want := range []string{"Learning Plan  (managed by provision)", "id: db-plan", "Week: 7", "1 of 2 databases shown."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Recipes") {
		t.Errorf("unrelated database listed without --all:\n%s", out)
	}

	out, err = runCmd(t, "notion", "scan", "--all", "--env-file", "")
	if err != nil {
		t.Fatalf("notion scan --all failed: %v", err)
	}
	if !strings.Contains(out, "Recipes") || !strings.Contains(out, "2 of 2 databases shown.") {
		t.Errorf("--all output:\n%s", out)
	}
}

func TestNotionInspectCmd(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTION_TOKEN", "secret_abc")
	t.Setenv("NOTION_API_URL", fakeWorkspace(t).URL)

	out, err := runCmd(t, "notion", "inspect", "db-plan", "--env-file", "")
	if err != nil {
		t.Fatalf("notion inspect failed: %v", err)
	}
	for _, want := range []string{"Learning Plan", "rows: 1", "Week", "number", "row 1:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNotionCheckCmd(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTION_TOKEN", "secret_abc")
	t.Setenv("NOTION_API_URL", fakeWorkspace(t).URL)

	t.Setenv("NOTION_PARENT_PAGE_ID", "page-ok")
	out, err := runCmd(t, "notion", "check", "--env-file", "")
	if err != nil {
		t.Fatalf("notion check failed: %v", err)
	}
	if !strings.Contains(out, `Parent page "Career" is reachable.`) {
		t.Errorf("output = %q", out)
	}

	t.Setenv("NOTION_PARENT_PAGE_ID", "page-hidden")
	out, err = runCmd(t, "notion", "check", "--env-file", "")
	if !errors.Is(err, notion.ErrParentNotShared) {
		t.Fatalf("err = %v, want ErrParentNotShared", err)
	}
	if !strings.Contains(out, "Share > Invite") {
		t.Errorf("expected sharing instructions, got %q", out)
	}
}

func TestNotionCmd_RequiresToken(t *testing.T) {
	clearEnv(t)

	_, err := runCmd(t, "notion", "scan", "--env-file", "")
	if !config.IsConfigurationError(err) || !strings.Contains(err.Error(), "NOTION_TOKEN") {
		t.Errorf("err = %v, want ConfigurationError naming NOTION_TOKEN", err)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("short", 10); got != "short" {
		t.Errorf("truncate = %q", got)
	}
	if got := truncate("line one\nline two", 8); got != "line one..." {
		t.Errorf("truncate = %q", got)
	}
}
