package catalog

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepos_FixedOrder(t *testing.T) {
	want := []string{
		"retail-sales-etl",
		"sales-data-warehouse",
		"covid-dataops-pipeline",
		"log-analytics-spark",
		"clickstream-realtime-analytics",
		"ecommerce-data-platform",
	}
	var got []string
	for _, r := range Repos(true) {
		got = append(got, r.Name)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("repo order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, want, RepoNames())
}

func TestRepos_ReadmeFirstAndPrivacy(t *testing.T) {
	for _, private := range []bool{true, false} {
		for _, r := range Repos(private) {
			require.NotEmpty(t, r.Files, r.Name)
			assert.Equal(t, "README.md", r.Files[0].Path, r.Name)
			assert.True(t, strings.HasPrefix(r.Files[0].Content, "# "), r.Name)
			assert.Equal(t, private, r.Private)
			assert.NoError(t, r.Validate())
		}
	}
}

func TestRepos_PlaceholderContent(t *testing.T) {
	byPath := map[string]string{}
	for _, f := range Repos(true)[0].Files {
		byPath[f.Path] = f.Content
	}
	assert.Equal(t, "", byPath["architecture/diagram.png"])
	assert.Equal(t, "", byPath["data_samples/.gitkeep"])
	assert.Contains(t, byPath["glue_jobs/transform_sales.py"], "GlueContext")
	assert.Contains(t, byPath["notebooks/exploration.ipynb"], `"nbformat": 4`)
}

func TestStarterContent_Defaults(t *testing.T) {
	assert.Equal(t, "-- TODO\n", StarterContent("schema/star_schema.sql"))
	assert.Equal(t, "# TODO\n", StarterContent("dags/README.md"))
	assert.Equal(t, "# Glue transform for COVID data\n", StarterContent("glue_jobs/covid_transform.py"))
}

func TestReadme_Unknown(t *testing.T) {
	assert.Equal(t, "# mystery\n", Readme("mystery"))
	assert.Contains(t, Readme("log-analytics-spark"), "PySpark")
}

func TestPlan_TwentyFourWeeks(t *testing.T) {
	items := Plan("alice")
	require.Len(t, items, 24)

	for i, p := range items {
		assert.Equal(t, i+1, p.Week)
		assert.NoError(t, p.Validate())
		assert.Equal(t, StatusNotStarted, p.Status)
		assert.Equal(t, "https://github.com/alice/"+p.Repo, p.RepoURL)
	}
	assert.Equal(t, 1, items[0].Month)
	assert.Equal(t, 6, items[23].Month)
}

func TestPlan_DoesNotShareBackingArray(t *testing.T) {
	a := Plan("alice")
	a[0].Title = "changed"
	b := Plan("alice")
	assert.NotEqual(t, "changed", b[0].Title)
}

func TestPlanItem_Priority(t *testing.T) {
	cases := map[int]string{1: "High", 2: "High", 3: "Medium", 4: "Medium", 5: "Low", 6: "Low"}
	for month, want := range cases {
		assert.Equal(t, want, PlanItem{Month: month}.Priority(), "month %d", month)
	}
}

func TestPlanItem_MonthLabel(t *testing.T) {
	assert.Equal(t, "Month 2: Data Warehousing", PlanItem{Month: 2}.MonthLabel())
	assert.Equal(t, "Month 9", PlanItem{Month: 9}.MonthLabel())
	assert.Len(t, MonthLabels(), 6)
}

func TestStatus(t *testing.T) {
	assert.True(t, StatusDone.Valid())
	assert.False(t, Status("blocked").Valid())
	assert.Equal(t, "To Do", StatusNotStarted.Label())
	assert.Equal(t, "In Progress", StatusInProgress.Label())
	assert.Equal(t, "Done", StatusDone.Label())
}

func TestPlanItem_Validate(t *testing.T) {
	ok := PlanItem{Week: 1, Month: 1, Title: "x", Status: StatusNotStarted}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Month = 7
	assert.ErrorContains(t, bad.Validate(), "out of range")

	bad = ok
	bad.Status = "blocked"
	assert.ErrorContains(t, bad.Validate(), "unknown status")
}

func TestRepoSpec_Validate_RejectsEscapingPaths(t *testing.T) {
	for _, p := range []string{"../evil", "/etc/passwd", "a/../../b", "a//b"} {
		r := RepoSpec{Name: "x", Files: []File{{Path: p}}}
		assert.Error(t, r.Validate(), p)
	}
}

func TestParse_OverlayRepos(t *testing.T) {
	data := []byte(`
repos:
  - name: sandbox
    description: Scratch space
    files:
      - path: notes/todo.md
      - path: main.py
        content: "print('hi')\n"
`)
	cat, err := Parse(data, "alice", false)
	require.NoError(t, err)
	require.Len(t, cat.Repos, 1)

	r := cat.Repos[0]
	assert.Equal(t, "sandbox", r.Name)
	assert.False(t, r.Private)
	require.Len(t, r.Files, 3)
	assert.Equal(t, "README.md", r.Files[0].Path)
	assert.Equal(t, "# sandbox\n", r.Files[0].Content)
	assert.Equal(t, "# TODO\n", r.Files[1].Content)
	assert.Equal(t, "print('hi')\n", r.Files[2].Content)
	assert.Len(t, cat.Plan, 24, "plan falls back to built-in")
}

func TestParse_OverlayPlan(t *testing.T) {
	data := []byte(`
plan:
  - week: 1
    month: 1
    title: Read the docs
    repo: sandbox
  - week: 2
    month: 1
    title: Write code
    status: in-progress
`)
	cat, err := Parse(data, "bob", true)
	require.NoError(t, err)
	require.Len(t, cat.Plan, 2)
	assert.Equal(t, StatusNotStarted, cat.Plan[0].Status)
	assert.Equal(t, "https://github.com/bob/sandbox", cat.Plan[0].RepoURL)
	assert.Equal(t, StatusInProgress, cat.Plan[1].Status)
	assert.Len(t, cat.Repos, 6)
}

func TestParse_DuplicateWeek(t *testing.T) {
	data := []byte(`
plan:
  - {week: 1, month: 1, title: a}
  - {week: 1, month: 2, title: b}
`)
	_, err := Parse(data, "bob", true)
	assert.ErrorContains(t, err, "duplicate plan week 1")
}

func TestParse_DuplicateRepo(t *testing.T) {
	data := []byte(`
repos:
  - name: a
  - name: a
`)
	_, err := Parse(data, "bob", true)
	assert.ErrorContains(t, err, `duplicate repo "a"`)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load("/nonexistent/catalog.yaml", "bob", true)
	assert.ErrorContains(t, err, "catalog: read")
}
