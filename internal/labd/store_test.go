package labd

import (
	"errors"
	"testing"

	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/config"
	"github.com/GoSim-25-26J-441/knapsack-lab/pkg/models"
)

func TestStoreCreateAndGet(t *testing.T) {
	store := NewStore(nil)
	rec, err := store.Create(Record{Kind: models.ExperimentKindIndividual, Problem: testProblem})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if rec.ID == "" {
		t.Fatalf("expected generated id")
	}
	if rec.Status != models.ExperimentStatusPending {
		t.Fatalf("expected pending, got %s", rec.Status)
	}
	if rec.CreatedAtUnixMs == 0 {
		t.Fatalf("expected created timestamp")
	}

	got, ok := store.Get(rec.ID)
	if !ok || got.ID != rec.ID {
		t.Fatalf("expected to find %s", rec.ID)
	}
	if _, ok := store.Get("missing"); ok {
		t.Fatalf("expected missing record")
	}
}

func TestStoreCreateDuplicate(t *testing.T) {
	store := NewStore(nil)
	if _, err := store.Create(Record{ID: "exp-1"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	_, err := store.Create(Record{ID: "exp-1"})
	if !errors.Is(err, ErrRunExists) {
		t.Fatalf("expected ErrRunExists, got %v", err)
	}
}

func TestStoreStatusTransitions(t *testing.T) {
	store := NewStore(nil)
	rec, _ := store.Create(Record{ID: "exp-1"})

	running, err := store.SetStatus(rec.ID, models.ExperimentStatusRunning, "")
	if err != nil {
		t.Fatalf("SetStatus running: %v", err)
	}
	if running.StartedAtUnixMs == 0 {
		t.Fatalf("expected started timestamp")
	}

	failed, err := store.SetStatus(rec.ID, models.ExperimentStatusFailed, "solver down")
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if failed.EndedAtUnixMs == 0 || failed.Error != "solver down" {
		t.Fatalf("unexpected terminal record: %+v", failed)
	}

	_, err = store.SetStatus(rec.ID, models.ExperimentStatusCompleted, "")
	if !errors.Is(err, ErrRunTerminal) {
		t.Fatalf("expected ErrRunTerminal, got %v", err)
	}
	if _, err := store.SetStatus("missing", models.ExperimentStatusRunning, ""); !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStoreListOrderFilterAndPaging(t *testing.T) {
	store := NewStore(nil)
	for _, id := range []string{"a", "b", "c", "d"} {
		if _, err := store.Create(Record{ID: id}); err != nil {
			t.Fatalf("Create %s: %v", id, err)
		}
	}
	if _, err := store.SetStatus("b", models.ExperimentStatusRunning, ""); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	_ = store.SetResults("c", Results{})

	all := store.List(0, 0, "")
	ids := make([]string, len(all))
	for i, rec := range all {
		ids[i] = rec.ID
		if rec.Results != nil {
			t.Fatalf("expected list summaries without results")
		}
	}
	if want := []string{"d", "c", "b", "a"}; !equalStrings(ids, want) {
		t.Fatalf("expected newest first %v, got %v", want, ids)
	}

	page := store.List(2, 1, "")
	if len(page) != 2 || page[0].ID != "c" || page[1].ID != "b" {
		t.Fatalf("unexpected page: %+v", page)
	}
	if got := store.List(10, 10, ""); len(got) != 0 {
		t.Fatalf("expected empty page past the end, got %d", len(got))
	}

	running := store.List(10, 0, models.ExperimentStatusRunning)
	if len(running) != 1 || running[0].ID != "b" {
		t.Fatalf("expected only b running, got %+v", running)
	}
}

func TestStoreArchiveFallback(t *testing.T) {
	archive, err := OpenArchive(config.ArchiveConfig{InMemory: true}, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer archive.Close()

	first := NewStore(archive)
	rec, _ := first.Create(Record{ID: "exp-1", Kind: models.ExperimentKindGenetic, Problem: testProblem})
	if _, err := first.SetStatus(rec.ID, models.ExperimentStatusRunning, ""); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if _, err := first.SetStatus(rec.ID, models.ExperimentStatusCancelled, ""); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}
	if err := first.SetResults(rec.ID, Results{}); err != nil {
		t.Fatalf("SetResults: %v", err)
	}

	// A fresh store sharing the archive sees the terminal record.
	second := NewStore(archive)
	got, ok := second.Get("exp-1")
	if !ok {
		t.Fatalf("expected archived record")
	}
	if got.Status != models.ExperimentStatusCancelled || got.Problem != testProblem {
		t.Fatalf("unexpected archived record: %+v", got)
	}
	if got.Results == nil {
		t.Fatalf("expected results refreshed in the archive")
	}

	if _, err := second.Create(Record{ID: "exp-1", Kind: models.ExperimentKindIndividual}); !errors.Is(err, ErrRunExists) {
		t.Fatalf("expected ErrRunExists for an archived ID, got %v", err)
	}
	if got, _ := second.Get("exp-1"); got.Status != models.ExperimentStatusCancelled || got.Kind != models.ExperimentKindGenetic {
		t.Fatalf("expected archived record untouched, got %+v", got)
	}

	if _, err := second.Create(Record{ID: "exp-2"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	list := second.List(10, 0, "")
	if len(list) != 2 || list[0].ID != "exp-2" || list[1].ID != "exp-1" {
		t.Fatalf("expected memory then archive records, got %+v", list)
	}
}

func TestArchiveMissingKey(t *testing.T) {
	archive, err := OpenArchive(config.ArchiveConfig{InMemory: true}, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	defer archive.Close()

	if _, ok, err := archive.Get("nope"); ok || err != nil {
		t.Fatalf("expected clean miss, got ok=%v err=%v", ok, err)
	}
}

func TestOpenArchiveRequiresPath(t *testing.T) {
	if _, err := OpenArchive(config.ArchiveConfig{}, nil); err == nil {
		t.Fatalf("expected error without path")
	}
}

func TestOpenArchiveOnDisk(t *testing.T) {
	dir := t.TempDir()
	archive, err := OpenArchive(config.ArchiveConfig{Path: dir}, nil)
	if err != nil {
		t.Fatalf("OpenArchive: %v", err)
	}
	if err := archive.Put(Record{ID: "exp-1", Status: models.ExperimentStatusCompleted}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := archive.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenArchive(config.ArchiveConfig{Path: dir}, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	rec, ok, err := reopened.Get("exp-1")
	if err != nil || !ok || rec.Status != models.ExperimentStatusCompleted {
		t.Fatalf("expected persisted record, got %+v ok=%v err=%v", rec, ok, err)
	}
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
