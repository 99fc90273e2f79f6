package syncer

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/plumenote/plume/internal/config"
	"github.com/plumenote/plume/internal/filename"
	"github.com/plumenote/plume/internal/note"
	"github.com/plumenote/plume/internal/testutil"
)

func newTestSyncer(t *testing.T) *Syncer {
	t.Helper()
	s, err := New(config.Default())
	if err != nil {
		t.Fatalf("new syncer: %v", err)
	}
	s.Now = func() time.Time {
		return time.Date(2023, 1, 2, 15, 4, 0, 0, time.UTC)
	}
	return s
}

func TestSync_CreateInEmptyDir(t *testing.T) {
	dir := testutil.NewNotesDir(t)
	s := newTestSyncer(t)

	result, err := s.Sync(dir.Path, "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.State != StateSynced {
		t.Errorf("state = %v, want synced", result.State)
	}
	if got := filepath.Base(result.Path); got != "20230102-No title.md" {
		t.Errorf("created %q, want 20230102-No title.md", got)
	}

	dir.AssertFileExists("20230102-No title.md")
	dir.AssertFileContains("20230102-No title.md", "No title")
	dir.AssertFileContains("20230102-No title.md", "2023-01-02")
	dir.AssertFileContains("20230102-No title.md", "author:")
}

func TestSync_CreateProbesCopyCounters(t *testing.T) {
	dir := testutil.NewNotesDir(t)
	s := newTestSyncer(t)

	for _, want := range []string{
		"20230102-No title.md",
		"20230102-No title(1).md",
		"20230102-No title(2).md",
	} {
		result, err := s.Sync(dir.Path, "")
		if err != nil {
			t.Fatalf("sync: %v", err)
		}
		if got := filepath.Base(result.Path); got != want {
			t.Errorf("created %q, want %q", got, want)
		}
	}
}

func TestSync_ConcurrentCreatesClaimDistinctNames(t *testing.T) {
	dir := testutil.NewNotesDir(t)
	s := newTestSyncer(t)

	const workers = 8
	paths := make([]string, workers)
	errs := make([]error, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			result, err := s.Sync(dir.Path, "")
			paths[i], errs[i] = result.Path, err
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool, workers)
	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("sync %d: %v", i, errs[i])
		}
		if seen[paths[i]] {
			t.Errorf("two syncs claimed %q", paths[i])
		}
		seen[paths[i]] = true
	}

	if names := dir.List(); len(names) != workers {
		t.Errorf("directory holds %d files, want %d: %v", len(names), workers, names)
	}
}

func TestSync_CreateFromText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantFile string
	}{
		{
			name:     "embedded header wins",
			input:    "---\ntitle: Pinned\nlang: en-US\n---\nBody text.",
			wantFile: "20230102-Pinned.md",
		},
		{
			name:     "single link contributes its text",
			input:    "Check [Docs](http://example.com) today.",
			wantFile: "20230102-Docs.md",
		},
		{
			name:     "heading line as a fallback",
			input:    "# Standup Notes\nDiscussed things.",
			wantFile: "20230102-Standup Notes.md",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := testutil.NewNotesDir(t)
			s := newTestSyncer(t)

			result, err := s.Sync(dir.Path, tt.input)
			if err != nil {
				t.Fatalf("sync: %v", err)
			}
			if got := filepath.Base(result.Path); got != tt.wantFile {
				t.Errorf("created %q, want %q", got, tt.wantFile)
			}
		})
	}
}

func TestSync_NonexistentPathCreatesInParent(t *testing.T) {
	dir := testutil.NewNotesDir(t)
	s := newTestSyncer(t)

	result, err := s.Sync(dir.Join("does-not-exist-yet"), "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if filepath.Dir(result.Path) != dir.Path {
		t.Errorf("created in %q, want %q", filepath.Dir(result.Path), dir.Path)
	}
	dir.AssertFileExists("20230102-No title.md")
}

func TestSync_ExistingMatchIsIdempotent(t *testing.T) {
	dir := testutil.NewNotesDir(t).
		WithFile("20230102-Meeting.md", "---\ntitle: Meeting\nsort_tag: 20230102\n---\nBody\n")
	s := newTestSyncer(t)

	for i := 0; i < 2; i++ {
		result, err := s.Sync(dir.Join("20230102-Meeting.md"), "")
		if err != nil {
			t.Fatalf("sync %d: %v", i, err)
		}
		if result.State != StateSynced {
			t.Errorf("state = %v, want synced", result.State)
		}
	}

	if names := dir.List(); len(names) != 1 || names[0] != "20230102-Meeting.md" {
		t.Errorf("directory = %v", names)
	}
}

func TestSync_FilenameTagKeptWithoutHeaderTag(t *testing.T) {
	// Header without a sort_tag: the filename's tag is reused as-is.
	dir := testutil.NewNotesDir(t).
		WithFile("20230102-Meeting.md", "---\ntitle: Meeting\n---\nBody\n")
	s := newTestSyncer(t)

	result, err := s.Sync(dir.Join("20230102-Meeting.md"), "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.State != StateSynced {
		t.Errorf("state = %v, want synced", result.State)
	}
}

func TestSync_RenameOnTitleChange(t *testing.T) {
	dir := testutil.NewNotesDir(t).
		WithFile("20230102-Old.md", "---\ntitle: New title\n---\nBody stays.\n")
	s := newTestSyncer(t)

	result, err := s.Sync(dir.Join("20230102-Old.md"), "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.State != StateRenamed {
		t.Errorf("state = %v, want renamed", result.State)
	}
	if got := filepath.Base(result.Path); got != "20230102-New title.md" {
		t.Errorf("renamed to %q", got)
	}

	dir.AssertFileNotExists("20230102-Old.md")
	dir.AssertFileContains("20230102-New title.md", "Body stays.")
}

func TestSync_RenameProbesCopyCounters(t *testing.T) {
	dir := testutil.NewNotesDir(t).
		WithFile("Report.md", "---\ntitle: Report\n---\n").
		WithFile("Report(1).md", "---\ntitle: Report\n---\n").
		WithFile("Old.md", "---\ntitle: Report\n---\n")
	s := newTestSyncer(t)

	result, err := s.Sync(dir.Join("Old.md"), "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.State != StateRenamed {
		t.Errorf("state = %v, want renamed", result.State)
	}
	if got := filepath.Base(result.Path); got != "Report(2).md" {
		t.Errorf("renamed to %q, want Report(2).md", got)
	}
	dir.AssertFileNotExists("Old.md")
}

func TestSync_CounterDifferenceAlone(t *testing.T) {
	// A copy counter never triggers a rename on its own.
	dir := testutil.NewNotesDir(t).
		WithFile("Report(1).md", "---\ntitle: Report\n---\n")
	s := newTestSyncer(t)

	result, err := s.Sync(dir.Join("Report(1).md"), "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.State != StateSynced {
		t.Errorf("state = %v, want synced", result.State)
	}
}

func TestSync_ValidationFailureLeavesFileUntouched(t *testing.T) {
	content := "---\nsubtitle: x\n---\nBody\n"
	dir := testutil.NewNotesDir(t).WithFile("20230102-Bad.md", content)
	s := newTestSyncer(t)

	result, err := s.Sync(dir.Join("20230102-Bad.md"), "")
	var verr *note.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("want *ValidationError, got %v", err)
	}
	if verr.Field != "title" || verr.Predicate != note.IsDefined {
		t.Errorf("violation = %s/%s", verr.Field, verr.Predicate)
	}
	if result.State != StateFailed {
		t.Errorf("state = %v, want failed", result.State)
	}

	dir.AssertFileExists("20230102-Bad.md")
	if got := dir.ReadFile("20230102-Bad.md"); got != content {
		t.Errorf("file content changed: %q", got)
	}
}

func TestSync_HeaderlessNote(t *testing.T) {
	// A headerless note gets an in-memory header from its own filename,
	// which by construction already matches. Nothing is written.
	dir := testutil.NewNotesDir(t).
		WithFile("20230102-draft.md", "just text, no header\n")
	s := newTestSyncer(t)

	result, err := s.Sync(dir.Join("20230102-draft.md"), "")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if result.State != StateSynced {
		t.Errorf("state = %v, want synced", result.State)
	}
	if got := dir.ReadFile("20230102-draft.md"); got != "just text, no header\n" {
		t.Errorf("headerless note was modified: %q", got)
	}
}

func TestSync_ForeignExtension(t *testing.T) {
	dir := testutil.NewNotesDir(t).
		WithFile("20230102-journal.txt", "plain text\n").
		WithFile("journal.txt", "---\ntitle: My Journal\n---\ntext\n")
	s := newTestSyncer(t)

	// Headerless foreign file: the synthesized header matches the name.
	result, err := s.Sync(dir.Join("20230102-journal.txt"), "")
	if err != nil {
		t.Fatalf("sync headerless: %v", err)
	}
	if result.State != StateSynced {
		t.Errorf("state = %v, want synced", result.State)
	}

	// A foreign file with its own header is renamed from that header.
	result, err = s.Sync(dir.Join("journal.txt"), "")
	if err != nil {
		t.Fatalf("sync with header: %v", err)
	}
	if result.State != StateRenamed {
		t.Errorf("state = %v, want renamed", result.State)
	}
	if got := filepath.Base(result.Path); got != "My Journal.txt" {
		t.Errorf("renamed to %q, want My Journal.txt", got)
	}
	dir.AssertFileContains("My Journal.txt", "text")
}

func TestSync_UnrecognizedExtension(t *testing.T) {
	dir := testutil.NewNotesDir(t).WithFile("photo.jpg", "not a note")
	s := newTestSyncer(t)

	_, err := s.Sync(dir.Join("photo.jpg"), "")
	var decErr *filename.DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("want *DecodeError, got %v", err)
	}
	dir.AssertFileExists("photo.jpg")
}
