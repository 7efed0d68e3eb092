package command

import (
	"strings"
	"testing"
)

func TestDocumentCommand_SetGet(t *testing.T) {
	dir := t.TempDir()

	payload := `{"name":"ada","age":36}`
	if _, err := runCLIIn(t, dir, "badger", "doc", "set", "user:1", payload); err != nil {
		t.Fatalf("doc set: %v", err)
	}

	out, err := runCLIIn(t, dir, "badger", "doc", "get", "user:1")
	if err != nil {
		t.Fatalf("doc get: %v", err)
	}
	if !strings.Contains(out, "ada") {
		t.Errorf("doc get output = %q, want it to contain %q", out, "ada")
	}
}

func TestDocumentCommand_GetMissing(t *testing.T) {
	out, err := runCLI(t, "doc", "get", "nope")
	if err != nil {
		t.Fatalf("doc get: %v", err)
	}
	if !strings.Contains(out, "false") {
		t.Errorf("doc get output = %q, want found=false", out)
	}
}

func TestDocumentCommand_SetGetWithPath(t *testing.T) {
	dir := t.TempDir()

	payload := `{"name":"grace","roles":["admin","editor"]}`
	if _, err := runCLIIn(t, dir, "badger", "doc", "set", "user:2", payload); err != nil {
		t.Fatalf("doc set: %v", err)
	}

	out, err := runCLIIn(t, dir, "badger", "doc", "--path", "/name", "get", "user:2")
	if err != nil {
		t.Fatalf("doc get --path: %v", err)
	}
	if !strings.Contains(out, "grace") {
		t.Errorf("doc get --path output = %q, want it to contain %q", out, "grace")
	}
}

func TestDocumentCommand_RequiresArgs(t *testing.T) {
	if _, err := runCLI(t, "doc", "get"); err == nil {
		t.Error("doc get with no key should error")
	}
	if _, err := runCLI(t, "doc", "set", "onlykey"); err == nil {
		t.Error("doc set with one arg should error")
	}
}
