package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return out.String(), err
}

func mustRunCLI(t *testing.T, args ...string) string {
	t.Helper()

	out, err := runCLI(t, args...)
	if err != nil {
		t.Fatalf("%v failed: %v\n%s", args, err, out)
	}
	return out
}

func TestCLI_ElectionWorkflow(t *testing.T) {
	t.Setenv("WAHL_PASSWORD_SALT", "test-salt")
	t.Setenv("WAHL_LOG_FILE", filepath.Join(t.TempDir(), "wahlprogramm.log"))
	db := filepath.Join(t.TempDir(), "wahlprogramm.db")

	if out := mustRunCLI(t, "--db", db, "exists"); strings.TrimSpace(out) != "false" {
		t.Fatalf("expected missing store, got %q", out)
	}

	mustRunCLI(t, "--db", db, "init", "--admin", "admin", "--password", "geheim")
	mustRunCLI(t, "--db", db, "roles", "add", "Chair")
	mustRunCLI(t, "--db", db, "sections", "add", "3")
	mustRunCLI(t, "--db", db, "genders", "add", "f")
	mustRunCLI(t, "--db", db, "candidate", "add", "Alice", "f")
	mustRunCLI(t, "--db", db, "candidate", "add", "Bob", "m")
	mustRunCLI(t, "--db", db, "candidate", "add", "Alice", "f")
	mustRunCLI(t, "--db", db, "assign", "--section", "3", "--role", "Chair", "Alice", "Bob")

	out := mustRunCLI(t, "--db", db, "candidate", "list", "-s", "3", "-r", "Chair")
	if !strings.Contains(out, "Alice\tf") || !strings.Contains(out, "Bob\tm") {
		t.Fatalf("expected both candidates listed, got %q", out)
	}

	if out := mustRunCLI(t, "--db", db, "roles"); strings.TrimSpace(out) != "Chair" {
		t.Fatalf("unexpected roles output %q", out)
	}
	if out := mustRunCLI(t, "--db", db, "sections"); strings.TrimSpace(out) != "3" {
		t.Fatalf("unexpected sections output %q", out)
	}

	if out := mustRunCLI(t, "--db", db, "user", "confirm", "admin", "geheim"); strings.TrimSpace(out) != "confirmed" {
		t.Fatalf("expected admin to be confirmed, got %q", out)
	}
	if _, err := runCLI(t, "--db", db, "user", "confirm", "admin", "falsch"); err == nil {
		t.Fatal("expected wrong password to be rejected")
	}

	mustRunCLI(t, "--db", db, "clear", "-s", "3", "-r", "Chair")
	mustRunCLI(t, "--db", db, "candidate", "sweep")

	if out := mustRunCLI(t, "--db", db, "candidate", "exists", "Alice", "f"); strings.TrimSpace(out) != "false" {
		t.Fatalf("expected Alice to be swept, got %q", out)
	}
}

func TestCLI_ListingsOnMissingStoreShowNothing(t *testing.T) {
	t.Setenv("WAHL_LOG_FILE", filepath.Join(t.TempDir(), "wahlprogramm.log"))
	db := filepath.Join(t.TempDir(), "missing.db")

	out, err := runCLI(t, "--db", db, "roles")
	if err != nil {
		t.Fatalf("expected listing to degrade, got %v", err)
	}
	if strings.TrimSpace(out) != "" {
		t.Fatalf("expected no output, got %q", out)
	}

	if _, err := runCLI(t, "--db", db, "roles", "add", "Chair"); err == nil {
		t.Fatal("expected write on missing store to fail")
	}
}

func TestCLI_VersionSkipsSetup(t *testing.T) {
	// Any other command fails on this during setup.
	t.Setenv("WAHL_BUSY_TIMEOUT", "soon")

	out, err := runCLI(t, "version")
	if err != nil {
		t.Fatalf("version failed: %v\n%s", err, out)
	}
	if !strings.HasPrefix(out, "wahlprogramm dev") {
		t.Fatalf("unexpected version output %q", out)
	}

	if _, err := runCLI(t, "exists"); err == nil {
		t.Fatal("expected setup to reject the invalid busy timeout")
	}
}

func TestCLI_ConnectionStringNamesStore(t *testing.T) {
	t.Setenv("WAHL_LOG_FILE", filepath.Join(t.TempDir(), "wahlprogramm.log"))
	db := filepath.Join(t.TempDir(), "wahl.sql")
	t.Setenv("WAHL_DATABASE", "jdbc:sqlite:"+db)

	if out := mustRunCLI(t, "exists"); strings.TrimSpace(out) != "false" {
		t.Fatalf("expected missing store, got %q", out)
	}
	if out := mustRunCLI(t, "roles"); strings.TrimSpace(out) != "" {
		t.Fatalf("expected no roles from a missing store, got %q", out)
	}
	if out := mustRunCLI(t, "exists"); strings.TrimSpace(out) != "false" {
		t.Fatalf("expected listing not to create the store, got %q", out)
	}

	mustRunCLI(t, "init")
	mustRunCLI(t, "roles", "add", "Chair")
	mustRunCLI(t, "sections", "add", "3")

	if _, err := runCLI(t, "assign", "-s", "3", "-r", "Chair", "Ghost"); err == nil {
		t.Fatal("expected assigning an unknown candidate to fail")
	}
	if out := mustRunCLI(t, "exists"); strings.TrimSpace(out) != "true" {
		t.Fatalf("expected store at the connection string's file, got %q", out)
	}
}
