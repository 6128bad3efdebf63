package cmd

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ziadkadry99/simcheck/internal/api"
	"github.com/ziadkadry99/simcheck/internal/batch"
)

func TestAnalyzeInput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "essay.txt")
	if err := os.WriteFile(path, []byte("text from a file"), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Cleanup(func() { analyzeFile = "" })

	analyzeFile = ""
	got, err := analyzeInput([]string{"text", "from", "args"})
	if err != nil || got != "text from args" {
		t.Errorf("args: got %q, %v", got, err)
	}

	analyzeFile = path
	got, err = analyzeInput([]string{"ignored"})
	if err != nil || got != "text from a file" {
		t.Errorf("file: got %q, %v", got, err)
	}

	analyzeFile = filepath.Join(dir, "missing.txt")
	if _, err := analyzeInput(nil); err == nil {
		t.Error("expected error for missing file")
	}

	analyzeFile = ""
	if _, err := analyzeInput(nil); err == nil {
		t.Error("expected error when no text is given")
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range []string{"text", "markdown", "html"} {
		if err := validateFormat(f); err != nil {
			t.Errorf("validateFormat(%q) = %v", f, err)
		}
	}
	if validateFormat("pdf") == nil {
		t.Error("expected error for pdf")
	}
}

func TestDescribeUser(t *testing.T) {
	tests := []struct {
		user *api.User
		want string
	}{
		{nil, "unknown user"},
		{&api.User{Username: "ana"}, "ana"},
		{&api.User{Username: "ana", Email: "ana@example.com"}, "ana <ana@example.com>"},
	}
	for _, tt := range tests {
		if got := describeUser(tt.user); got != tt.want {
			t.Errorf("describeUser(%+v) = %q, want %q", tt.user, got, tt.want)
		}
	}
}

func TestAuthFailure(t *testing.T) {
	err := authFailure(&api.AuthError{Op: "Login", Message: "Invalid username or password"}, "Login failed")
	if err.Error() != "Invalid username or password" {
		t.Errorf("err = %q", err)
	}

	err = authFailure(errors.New("connection refused"), "Login failed")
	if err.Error() != "Login failed: connection refused" {
		t.Errorf("err = %q", err)
	}
}

func TestPrintOutcomes(t *testing.T) {
	outcomes := []batch.Outcome{
		{File: batch.File{RelPath: "a.txt"}, Result: &api.AnalysisResult{SimilarityScore: 0.95, AIDetected: true}},
		{File: batch.File{RelPath: "b.txt"}, Skipped: "duplicate of a.txt"},
		{File: batch.File{RelPath: "c.txt"}, Err: errors.New("Analyze: 500 boom")},
	}

	var buf bytes.Buffer
	printOutcomes(&buf, outcomes)
	out := buf.String()

	for _, want := range []string{
		"95.0%",
		"red, 0 source(s)",
		"skipped: duplicate of a.txt",
		"error: Analyze: 500 boom",
		"3 document(s): 1 analyzed, 1 failed, 1 skipped; 1 high similarity, 1 AI-written, highest 95.0%",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"server", "login", "register", "logout", "whoami", "analyze", "stats", "history", "sources", "batch", "mcp", "init", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}
