package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func openTemp(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.log")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open fixture: %v", err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestReadLinesExactCount(t *testing.T) {
	lr := newLineReader(openTemp(t, "a\nb\nc\n"))

	lines, err := lr.readLines(2)
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	if len(lines) != 2 || lines[0] != "a\n" || lines[1] != "b\n" {
		t.Errorf("got %#v", lines)
	}
}

func TestReadLinesPastEOFReturnsPartial(t *testing.T) {
	lr := newLineReader(openTemp(t, "a\nb\n"))

	lines, err := lr.readLines(10)
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %#v", len(lines), lines)
	}
}

func TestReadLinesPreservesUnterminatedFinalLine(t *testing.T) {
	lr := newLineReader(openTemp(t, "a\nb"))

	lines, err := lr.readLines(10)
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	if len(lines) != 2 || lines[1] != "b" {
		t.Errorf("got %#v, want the trailing unterminated line preserved", lines)
	}
}

func TestReadLinesEmptyFile(t *testing.T) {
	lr := newLineReader(openTemp(t, ""))

	lines, err := lr.readLines(5)
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	if len(lines) != 0 {
		t.Errorf("got %#v, want no lines from an empty file", lines)
	}
}

func TestReadLinesSubsequentCallsContinueWhereLeftOff(t *testing.T) {
	lr := newLineReader(openTemp(t, "a\nb\nc\nd\n"))

	first, err := lr.readLines(2)
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	second, err := lr.readLines(2)
	if err != nil {
		t.Fatalf("readLines: %v", err)
	}
	if first[1] != "b\n" || second[0] != "c\n" {
		t.Errorf("reader did not continue sequentially: %#v then %#v", first, second)
	}
}
