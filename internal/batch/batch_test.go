package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/log"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func relPaths(files []File) []string {
	var out []string
	for _, f := range files {
		out = append(out, f.RelPath)
	}
	sort.Strings(out)
	return out
}

func TestCollect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "essay.txt", "An essay about rivers and mountains.")
	writeFile(t, root, "notes/chapter1.md", "# Chapter one\nIt was a dark night.")
	writeFile(t, root, "notes/draft.tmp", "scratch text that is long enough")
	writeFile(t, root, "node_modules/pkg/readme.md", "dependency readme text")
	writeFile(t, root, ".git/description.txt", "unnamed repository text")
	writeFile(t, root, "empty.txt", "")
	writeFile(t, root, "image.txt", "abc\x00def")

	files, err := Collect(Selection{Root: root})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	got := relPaths(files)
	want := []string{"essay.txt", "notes/chapter1.md"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("files = %v, want %v", got, want)
	}
	for _, f := range files {
		if len(f.Hash) != 64 {
			t.Errorf("%s: hash %q", f.RelPath, f.Hash)
		}
		if !filepath.IsAbs(f.Path) {
			t.Errorf("%s: path %q not absolute", f.RelPath, f.Path)
		}
	}
}

func TestCollectPatterns(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "a/keep.txt", "keep this document please")
	writeFile(t, root, "a/skip.txt", "skip this document please")
	writeFile(t, root, "b/other.rst", "restructured text document")

	tests := []struct {
		name string
		sel  Selection
		want []string
	}{
		{"defaults", Selection{}, []string{"a/keep.txt", "a/skip.txt"}},
		{"exclude by name", Selection{Exclude: []string{"skip.txt"}}, []string{"a/keep.txt"}},
		{"include other type", Selection{Include: []string{"**/*.rst"}}, []string{"b/other.rst"}},
		{"size cap", Selection{MaxFileSize: 5}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.sel.Root = root
			files, err := Collect(tt.sel)
			if err != nil {
				t.Fatalf("Collect: %v", err)
			}
			got := relPaths(files)
			if strings.Join(got, ",") != strings.Join(tt.want, ",") {
				t.Errorf("files = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCollectSingleFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "paper.rst", "a single document")

	files, err := Collect(Selection{Root: filepath.Join(root, "paper.rst")})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(files) != 1 || files[0].RelPath != "paper.rst" {
		t.Errorf("files = %+v", files)
	}
}

func TestCollectMissingRoot(t *testing.T) {
	if _, err := Collect(Selection{Root: filepath.Join(t.TempDir(), "missing")}); err == nil {
		t.Error("expected error for missing root")
	}
}

type fakeAnalyzer struct {
	mu       sync.Mutex
	texts    []string
	active   atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
	failText string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, req api.AnalysisRequest) (*api.AnalysisResult, error) {
	n := f.active.Add(1)
	defer f.active.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.texts = append(f.texts, req.Text)
	f.mu.Unlock()

	if req.Text == f.failText {
		return nil, &api.Error{StatusCode: 500, Message: "model offline", Op: "Analyze"}
	}
	score := 0.1
	if strings.Contains(req.Text, "copied") {
		score = 0.9
	}
	return &api.AnalysisResult{SimilarityScore: score, AIDetected: strings.Contains(req.Text, "robot")}, nil
}

func TestRun(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "original.txt", "an entirely original paragraph")
	writeFile(t, root, "copied.txt", "this was copied from somewhere else")
	writeFile(t, root, "copy-of-copied.txt", "this was copied from somewhere else")
	writeFile(t, root, "short.txt", "tiny")
	writeFile(t, root, "broken.txt", "this one makes the server fail")
	writeFile(t, root, "robot.txt", "written by a robot for sure")

	files, err := Collect(Selection{Root: root})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RelPath < files[j].RelPath })

	analyzer := &fakeAnalyzer{failText: "this one makes the server fail"}
	outcomes, err := Run(context.Background(), analyzer, files, Options{Concurrency: 2, Logger: log.Discard()})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(outcomes) != len(files) {
		t.Fatalf("outcomes = %d, want %d", len(outcomes), len(files))
	}

	byName := map[string]Outcome{}
	for i, o := range outcomes {
		if o.File.RelPath != files[i].RelPath {
			t.Errorf("outcome %d is %s, want input order", i, o.File.RelPath)
		}
		byName[o.File.RelPath] = o
	}

	if o := byName["copy-of-copied.txt"]; o.Skipped != "duplicate of copied.txt" {
		t.Errorf("duplicate skipped = %q", o.Skipped)
	}
	if o := byName["short.txt"]; !strings.Contains(o.Skipped, "fewer than 10") {
		t.Errorf("short skipped = %q", o.Skipped)
	}
	if o := byName["broken.txt"]; !o.Failed() || api.ServerMessage(o.Err) != "model offline" {
		t.Errorf("broken outcome = %+v", o)
	}
	if o := byName["copied.txt"]; o.Score() != 90 {
		t.Errorf("copied score = %v", o.Score())
	}
	if got := len(analyzer.texts); got != 4 {
		t.Errorf("analyzer called %d times, want 4", got)
	}

	s := Summarize(outcomes)
	want := Summary{Total: 6, Analyzed: 3, Failed: 1, Skipped: 2, HighSimilarity: 1, AIDetected: 1, MaxScore: 90}
	if s != want {
		t.Errorf("Summarize = %+v, want %+v", s, want)
	}
}

func TestRunSubmitsTrimmedText(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "padded.txt", "\n\n   some essay text here   \n")

	files, err := Collect(Selection{Root: root})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	analyzer := &fakeAnalyzer{}
	if _, err := Run(context.Background(), analyzer, files, Options{Logger: log.Discard()}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(analyzer.texts) != 1 || analyzer.texts[0] != "some essay text here" {
		t.Errorf("submitted %q", analyzer.texts)
	}
}

func TestRunConcurrencyLimit(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		writeFile(t, root, name+".txt", "document number "+name+" with enough text")
	}
	files, err := Collect(Selection{Root: root})
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}

	analyzer := &fakeAnalyzer{delay: 20 * time.Millisecond}
	if _, err := Run(context.Background(), analyzer, files, Options{Concurrency: 2, Logger: log.Discard()}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if peak := analyzer.peak.Load(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

type recordingReporter struct {
	mu       sync.Mutex
	total    int
	updates  []int
	finished bool
}

func (r *recordingReporter) Start(total int) { r.total = total }
func (r *recordingReporter) Update(current int, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updates = append(r.updates, current)
}
func (r *recordingReporter) Finish() { r.finished = true }

func TestRunReportsProgress(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "one.txt", "first document text")
	writeFile(t, root, "two.txt", "second document text")
	writeFile(t, root, "dup.txt", "second document text")
	files, _ := Collect(Selection{Root: root})

	rep := &recordingReporter{}
	if _, err := Run(context.Background(), &fakeAnalyzer{}, files, Options{Reporter: rep, Logger: log.Discard()}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.total != 3 || !rep.finished {
		t.Errorf("total=%d finished=%v", rep.total, rep.finished)
	}
	if len(rep.updates) != 3 || rep.updates[2] != 3 {
		t.Errorf("updates = %v", rep.updates)
	}
}

func TestRunCancelled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "one.txt", "first document text")
	files, _ := Collect(Selection{Root: root})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, &fakeAnalyzer{}, files, Options{Logger: log.Discard()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}
