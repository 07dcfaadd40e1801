package database

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
)

var errUnreachable = errors.New("store offline")

func failingOpener(string) (*sql.DB, error) {
	return nil, errUnreachable
}

func nilOpener(string) (*sql.DB, error) {
	return nil, nil
}

func TestUnreachableStore_ReadsDegradeToEmpty(t *testing.T) {
	for name, store := range unreachableStores(t) {
		t.Run(name, func(t *testing.T) {
			roles, err := store.ListRoles()
			if !errors.Is(err, ErrConnectivity) {
				t.Errorf("ListRoles: expected ErrConnectivity, got %v", err)
			}
			if roles == nil || len(roles) != 0 {
				t.Errorf("ListRoles: expected empty slice, got %#v", roles)
			}

			sections, err := store.ListSections()
			if !errors.Is(err, ErrConnectivity) {
				t.Errorf("ListSections: expected ErrConnectivity, got %v", err)
			}
			if sections == nil || len(sections) != 0 {
				t.Errorf("ListSections: expected empty slice, got %#v", sections)
			}

			genders, err := store.ListGenders()
			if !errors.Is(err, ErrConnectivity) {
				t.Errorf("ListGenders: expected ErrConnectivity, got %v", err)
			}
			if genders == nil || len(genders) != 0 {
				t.Errorf("ListGenders: expected empty slice, got %#v", genders)
			}

			candidates, err := store.ListCandidatesFor(3, "Chair")
			if !errors.Is(err, ErrConnectivity) {
				t.Errorf("ListCandidatesFor: expected ErrConnectivity, got %v", err)
			}
			if candidates == nil || len(candidates) != 0 {
				t.Errorf("ListCandidatesFor: expected empty slice, got %#v", candidates)
			}

			ok, err := store.ConfirmUser(testAdmin)
			if !errors.Is(err, ErrConnectivity) || ok {
				t.Errorf("ConfirmUser: expected false with ErrConnectivity, got %v, %v", ok, err)
			}

			ok, err = store.CandidateExists(Candidate{Name: "Alice", Gender: "f"})
			if !errors.Is(err, ErrConnectivity) || ok {
				t.Errorf("CandidateExists: expected false with ErrConnectivity, got %v, %v", ok, err)
			}
		})
	}
}

func TestUnreachableStore_WritesReportFailure(t *testing.T) {
	for name, store := range unreachableStores(t) {
		t.Run(name, func(t *testing.T) {
			alice := Candidate{Name: "Alice", Gender: "f"}

			if err := store.InsertUser(testAdmin); !errors.Is(err, ErrConnectivity) {
				t.Errorf("InsertUser: expected ErrConnectivity, got %v", err)
			}
			if err := store.InsertCandidate(alice); !errors.Is(err, ErrConnectivity) {
				t.Errorf("InsertCandidate: expected ErrConnectivity, got %v", err)
			}
			if err := store.InsertAssignments([]Candidate{alice}, "Chair", 3); !errors.Is(err, ErrConnectivity) {
				t.Errorf("InsertAssignments: expected ErrConnectivity, got %v", err)
			}
			if _, err := store.ClearAssignments(3, "Chair"); !errors.Is(err, ErrConnectivity) {
				t.Errorf("ClearAssignments: expected ErrConnectivity, got %v", err)
			}
			if _, err := store.SweepOrphanCandidates(); !errors.Is(err, ErrConnectivity) {
				t.Errorf("SweepOrphanCandidates: expected ErrConnectivity, got %v", err)
			}
			if err := store.SetSetting("log.compress", "false"); !errors.Is(err, ErrConnectivity) {
				t.Errorf("SetSetting: expected ErrConnectivity, got %v", err)
			}
		})
	}
}

func TestUnreachableStore_MissingFileIsNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.db")
	store := New(Config{Path: path})

	if _, err := store.ListRoles(); !errors.Is(err, ErrConnectivity) {
		t.Fatalf("expected ErrConnectivity, got %v", err)
	}
	if store.StoreExists() {
		t.Fatal("expected a read on a missing store not to create it")
	}
}

func unreachableStores(t *testing.T) map[string]*Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "wahlprogramm.db")

	return map[string]*Store{
		"missing file":   New(Config{Path: path}),
		"open failure":   New(Config{Path: path}, WithOpener(failingOpener)),
		"nil connection": New(Config{Path: path}, WithOpener(nilOpener)),
	}
}
