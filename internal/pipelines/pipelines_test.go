package pipelines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/angelini/logtags/internal/engine"
)

func newTestEngine(t *testing.T) *engine.Engine {
	t.Helper()
	e := engine.New(engine.Options{})
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func writePipelineFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.kdl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

func TestParseFileNamedPipeline(t *testing.T) {
	path := writePipelineFile(t, `
pipeline "errors" {
    load "testdata/app.log" {
        as "f"
    }
    tag "f" {
        name "status"
        regex "status=(\\d+)"
    }
    filter "status" {
        op "=="
        value "500"
        as "matches"
    }
    take "matches" {
        count 20
    }
}
`)

	pipelines, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(pipelines) != 1 {
		t.Fatalf("got %d pipelines, want 1", len(pipelines))
	}

	p := pipelines[0]
	if p.Name != "errors" {
		t.Errorf("Name = %q, want %q", p.Name, "errors")
	}
	if len(p.Steps) != 4 {
		t.Fatalf("got %d steps, want 4: %#v", len(p.Steps), p.Steps)
	}

	load := p.Steps[0]
	if load.Kind != Load || load.Path != "testdata/app.log" || load.Name != "f" {
		t.Errorf("load step = %#v", load)
	}

	tag := p.Steps[1]
	if tag.Kind != Tag || tag.Target != "f" || tag.Name != "status" || tag.Pattern != `status=(\d+)` {
		t.Errorf("tag step = %#v", tag)
	}

	filter := p.Steps[2]
	if filter.Kind != Filter || filter.Target != "status" || filter.Comparator != "==" || filter.Literal != "500" || filter.Name != "matches" {
		t.Errorf("filter step = %#v", filter)
	}

	take := p.Steps[3]
	if take.Kind != Take || take.Target != "matches" || take.Count != 20 {
		t.Errorf("take step = %#v", take)
	}
}

func TestParseFileBareDocument(t *testing.T) {
	path := writePipelineFile(t, `
load "testdata/app.log" {
    as "f"
}
take "f" {
    count 10
}
`)

	pipelines, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	if len(pipelines) != 1 {
		t.Fatalf("got %d pipelines, want 1", len(pipelines))
	}
	if pipelines[0].Name != "" {
		t.Errorf("bare document pipeline should have an empty name, got %q", pipelines[0].Name)
	}
	if len(pipelines[0].Steps) != 2 {
		t.Fatalf("got %d steps, want 2", len(pipelines[0].Steps))
	}
}

func TestParseFileTakeDefaultsCount(t *testing.T) {
	path := writePipelineFile(t, `
load "testdata/app.log" {
    as "f"
}
take "f"
`)
	pipelines, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	take := pipelines[0].Steps[1]
	if take.Count != 20 {
		t.Errorf("Count = %d, want default 20", take.Count)
	}
}

func TestParseFileScriptedFilter(t *testing.T) {
	path := writePipelineFile(t, `
load "testdata/app.log" {
    as "f"
}
tag "f" {
    name "status"
    regex "status=(\\d+)"
}
filter "status" {
    script "Number(chunk) >= 400"
    as "bad"
}
take "bad" {
    count 5
}
`)
	pipelines, err := ParseFile(path)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	filter := pipelines[0].Steps[2]
	if filter.Kind != ScriptedFilter || filter.Source != "Number(chunk) >= 400" || filter.Name != "bad" {
		t.Errorf("scripted filter step = %#v", filter)
	}
}

func TestParseFileUnknownStep(t *testing.T) {
	path := writePipelineFile(t, `
unknown-thing "x"
`)
	if _, err := ParseFile(path); err == nil {
		t.Fatal("expected an error for an unknown step kind")
	}
}

func TestFindByNameAndSoleFallback(t *testing.T) {
	named := []Pipeline{{Name: "a"}, {Name: "b"}}
	if _, ok := Find(named, "b"); !ok {
		t.Error("expected to find pipeline \"b\" by name")
	}
	if _, ok := Find(named, "c"); ok {
		t.Error("should not find an unknown pipeline name")
	}

	sole := []Pipeline{{Name: "only"}}
	if p, ok := Find(sole, ""); !ok || p.Name != "only" {
		t.Error("expected the sole pipeline to match an empty name query")
	}
}

func TestLastTakeAndLoadPaths(t *testing.T) {
	p := Pipeline{Steps: []Step{
		{Kind: Load, Path: "a.log"},
		{Kind: Load, Path: "b.log"},
		{Kind: Take, Target: "a.log", Count: 5},
		{Kind: Take, Target: "b.log", Count: 10},
	}}

	last, ok := p.LastTake()
	if !ok || last.Count != 10 {
		t.Errorf("LastTake() = %#v, %v", last, ok)
	}

	paths := p.LoadPaths()
	if len(paths) != 2 || paths[0] != "a.log" || paths[1] != "b.log" {
		t.Errorf("LoadPaths() = %#v", paths)
	}
}

func TestRunnerEndToEnd(t *testing.T) {
	logDir := t.TempDir()
	logPath := filepath.Join(logDir, "app.log")
	if err := os.WriteFile(logPath, []byte("status=200\nstatus=500\nstatus=404\n"), 0644); err != nil {
		t.Fatalf("failed to write log fixture: %v", err)
	}

	pipelinePath := writePipelineFile(t, `
load "`+logPath+`" {
    as "f"
}
tag "f" {
    name "status"
    regex "status=(\\d+)"
}
filter "status" {
    op "=="
    value "500"
    as "matches"
}
take "matches" {
    count 20
}
`)

	pipelines, err := ParseFile(pipelinePath)
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}
	p, ok := Find(pipelines, "")
	if !ok {
		t.Fatal("expected to find the bare pipeline")
	}

	eng := newTestEngine(t)
	runner := NewRunner(eng)
	results, err := runner.Run(p)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d Take results, want 1", len(results))
	}
	if len(results[0].Lines) != 3 {
		t.Fatalf("got %d rendered lines, want 3: %#v", len(results[0].Lines), results[0].Lines)
	}
	if results[0].Lines[0] != "status=500\n" {
		t.Errorf("rendered line = %q", results[0].Lines[0])
	}

	if _, err := runner.Resolve("matches"); err != nil {
		t.Errorf("Resolve(%q): %v", "matches", err)
	}
	if _, err := runner.Resolve("nope"); err == nil {
		t.Error("expected an error resolving an undefined binding")
	}
}
