package command

import (
	"strings"
	"testing"
)

func TestCollectionCommand_CreateThenList(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLIIn(t, dir, "badger", "collection", "create", "events"); err != nil {
		t.Fatalf("collection create: %v", err)
	}

	out, err := runCLIIn(t, dir, "badger", "collection", "list")
	if err != nil {
		t.Fatalf("collection list: %v", err)
	}
	if !strings.Contains(out, "events") {
		t.Errorf("collection list output = %q, want it to contain %q", out, "events")
	}
}

func TestCollectionCommand_CreateThenDrop(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLIIn(t, dir, "badger", "collection", "create", "scratch"); err != nil {
		t.Fatalf("collection create: %v", err)
	}
	if _, err := runCLIIn(t, dir, "badger", "collection", "drop", "scratch"); err != nil {
		t.Fatalf("collection drop: %v", err)
	}

	out, err := runCLIIn(t, dir, "badger", "collection", "list")
	if err != nil {
		t.Fatalf("collection list: %v", err)
	}
	if strings.Contains(out, "scratch") {
		t.Errorf("collection list output = %q, want dropped collection absent", out)
	}
}

func TestCollectionCommand_RequiresArgs(t *testing.T) {
	if _, err := runCLI(t, "collection", "create"); err == nil {
		t.Error("collection create with no name should error")
	}
	if _, err := runCLI(t, "collection", "drop"); err == nil {
		t.Error("collection drop with no name should error")
	}
}
