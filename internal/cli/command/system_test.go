package command

import (
	"strings"
	"testing"
)

func TestSystemCommand_Status(t *testing.T) {
	out, err := runCLI(t, "system", "status")
	if err != nil {
		t.Fatalf("system status: %v", err)
	}
	if !strings.Contains(out, "backend") {
		t.Errorf("status output = %q, want it to mention backend", out)
	}
}

func TestSystemCommand_StatusReflectsCollections(t *testing.T) {
	dir := t.TempDir()

	if _, err := runCLIIn(t, dir, "badger", "collection", "create", "widgets"); err != nil {
		t.Fatalf("collection create: %v", err)
	}

	out, err := runCLIIn(t, dir, "badger", "system", "status")
	if err != nil {
		t.Fatalf("system status: %v", err)
	}
	if !strings.Contains(out, "1") {
		t.Errorf("status output = %q, want collections count to include 1", out)
	}
}

func TestSystemCommand_Version(t *testing.T) {
	out, err := runCLI(t, "system", "version")
	if err != nil {
		t.Fatalf("system version: %v", err)
	}
	if out == "" {
		t.Error("expected non-empty version output")
	}
}

func TestSystemCommand_Alias(t *testing.T) {
	out, err := runCLI(t, "sys", "version")
	if err != nil {
		t.Fatalf("sys version: %v", err)
	}
	if out == "" {
		t.Error("expected non-empty version output via alias")
	}
}
