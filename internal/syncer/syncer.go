// Package syncer reconciles a note's on-disk filename with the metadata in
// its front matter, and creates new notes from templates.
//
// A synchronization is single-threaded and short: all fallible rendering
// and validation happens first, and the rename (or exclusive create) is the
// single filesystem mutation, performed last. Concurrent invocations on
// different paths are safe; the copy-counter search and the rename are
// serialized per directory so two operations can never claim the same
// disambiguated name.
package syncer

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/plumenote/plume/internal/atomicfile"
	"github.com/plumenote/plume/internal/config"
	"github.com/plumenote/plume/internal/dates"
	"github.com/plumenote/plume/internal/filename"
	"github.com/plumenote/plume/internal/note"
	"github.com/plumenote/plume/internal/template"
)

// State describes where a synchronization ended up.
type State int

const (
	// StateSynced means the filename already matched the metadata, or a
	// fresh note was created. No further runs will perform I/O.
	StateSynced State = iota

	// StateRenamed means the note file was renamed to match its metadata.
	StateRenamed

	// StateFailed means validation or rendering failed; the file on disk
	// was left untouched.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateSynced:
		return "synced"
	case StateRenamed:
		return "renamed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result reports the outcome of one synchronization.
type Result struct {
	// Path is the final absolute path of the note.
	Path string

	// State is the terminal state reached.
	State State
}

// Syncer orchestrates parsing, validation, rendering and the final rename.
type Syncer struct {
	cfg   *config.Config
	opts  filename.Options
	rules []note.FieldRule
	env   note.Env

	// Now is the clock, overridable in tests.
	Now func() time.Time

	mu       sync.Mutex
	dirLocks map[string]*sync.Mutex
}

// New builds a Syncer from the configuration. It fails when the validation
// table names an unknown predicate.
func New(cfg *config.Config) (*Syncer, error) {
	rules, err := note.RulesFromConfig(cfg.Validate)
	if err != nil {
		return nil, err
	}

	return &Syncer{
		cfg:   cfg,
		opts:  template.FilenameOptions(cfg),
		rules: rules,
		env: note.Env{
			SortTagChars: cfg.Filename.SortTagChars,
			Extensions:   append(append([]string{}, cfg.Extensions.Note...), cfg.Extensions.Foreign...),
		},
		Now:      time.Now,
		dirLocks: make(map[string]*sync.Mutex),
	}, nil
}

// Sync synchronizes the note at path. input is optional piped or clipboard
// text consumed when a new note is created; it is ignored for existing
// notes.
//
// A path that does not exist, or names a directory, creates a new note
// from the templates. An existing file is renamed when its front matter
// disagrees with its filename.
func (s *Syncer) Sync(path string, input string) (Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return failed(), fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	switch {
	case os.IsNotExist(err):
		return s.create(filepath.Dir(abs), input)
	case err != nil:
		return failed(), fmt.Errorf("stat %s: %w", abs, err)
	case info.IsDir():
		return s.create(abs, input)
	default:
		return s.syncExisting(abs, info)
	}
}

// create renders a fresh note into dir: content template, validation,
// filename template, then an exclusive create with copy-counter probing.
func (s *Syncer) create(dir, input string) (Result, error) {
	if st, err := os.Stat(dir); err != nil {
		return failed(), fmt.Errorf("target directory %s: %w", dir, err)
	} else if !st.IsDir() {
		return failed(), fmt.Errorf("target %s is not a directory", dir)
	}

	ctx := template.NewContext(s.cfg, s.Now())

	name, text := "new_content", s.cfg.Templates.NewContent
	if input != "" {
		ctx.WithText(input)
		name, text = "from_text_content", s.cfg.Templates.FromTextContent
	}

	content, err := template.Render(name, text, ctx, s.cfg)
	if err != nil {
		return failed(), err
	}

	fields, err := s.parseRendered(name, content)
	if err != nil {
		return failed(), err
	}
	if err := note.Validate(fields, s.rules, s.env); err != nil {
		return failed(), err
	}

	ctx.WithFrontMatter(note.FromFields(fields))
	candidate, err := s.renderCandidate(ctx)
	if err != nil {
		return failed(), err
	}

	unlock := s.lockDir(dir)
	defer unlock()

	final, err := s.createFree(dir, candidate, []byte(content))
	if err != nil {
		return failed(), err
	}
	return Result{Path: final, State: StateSynced}, nil
}

// syncExisting reconciles an existing file's name with its metadata.
func (s *Syncer) syncExisting(abs string, info os.FileInfo) (Result, error) {
	base := filepath.Base(abs)
	dir := filepath.Dir(abs)

	onDisk, extErr := filename.DecodeKnown(base, s.opts, s.cfg.Extensions.Note)

	raw, err := os.ReadFile(abs)
	if err != nil {
		return failed(), fmt.Errorf("read %s: %w", abs, err)
	}

	fm, found, err := note.Parse(string(raw))
	if err != nil {
		return failed(), fmt.Errorf("%s: %w", abs, err)
	}

	ctx := template.NewContext(s.cfg, s.Now()).WithFile(base, dir, onDisk)

	var fields map[string]any
	switch {
	case found && (extErr == nil || s.isForeign(onDisk.Ext)):
		// A recognized note with a header: validate it as-is.
		if err := note.Validate(fm.Fields, s.rules, s.env); err != nil {
			return failed(), fmt.Errorf("%s: %w", abs, err)
		}
		fields = fm.Fields

	case extErr == nil || s.isForeign(onDisk.Ext):
		// Headerless note or foreign text file: synthesize a header from
		// the filename's sort tag and the file date, in memory only.
		ctx["date"] = info.ModTime().Format(dates.DateLayout)
		fields, err = s.synthesize(ctx)
		if err != nil {
			return failed(), err
		}

	default:
		return failed(), extErr
	}

	ctx.WithFrontMatter(note.FromFields(fields))
	candidate, err := s.renderCandidate(ctx)
	if err != nil {
		return failed(), err
	}

	if filename.SameNote(candidate, onDisk) {
		return Result{Path: abs, State: StateSynced}, nil
	}

	unlock := s.lockDir(dir)
	defer unlock()

	target, err := s.renameFree(dir, base, candidate)
	if err != nil {
		return failed(), err
	}
	if target == abs {
		return Result{Path: abs, State: StateSynced}, nil
	}
	return Result{Path: target, State: StateRenamed}, nil
}

// synthesize renders the annotate template and parses the header it
// produced. The header never touches the disk; the rename is still the
// only filesystem mutation.
func (s *Syncer) synthesize(ctx template.Context) (map[string]any, error) {
	content, err := template.Render("annotate_content", s.cfg.Templates.AnnotateContent, ctx, s.cfg)
	if err != nil {
		return nil, err
	}
	fields, err := s.parseRendered("annotate_content", content)
	if err != nil {
		return nil, err
	}
	if err := note.Validate(fields, s.rules, s.env); err != nil {
		return nil, err
	}
	return fields, nil
}

func (s *Syncer) parseRendered(name, content string) (map[string]any, error) {
	fm, found, err := note.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("template %q rendered invalid front matter: %w", name, err)
	}
	if !found {
		return nil, fmt.Errorf("template %q rendered no front matter block", name)
	}
	return fm.Fields, nil
}

func (s *Syncer) renderCandidate(ctx template.Context) (filename.Parts, error) {
	name, err := template.RenderFilename(s.cfg.Templates.Filename, ctx, s.cfg)
	if err != nil {
		return filename.Parts{}, err
	}
	if name == "" {
		return filename.Parts{}, fmt.Errorf("filename template rendered an empty name")
	}
	return filename.Decode(name, s.opts), nil
}

// createFree writes content to the candidate name, probing copy counters
// until the exclusive create succeeds.
func (s *Syncer) createFree(dir string, p filename.Parts, content []byte) (string, error) {
	for n := uint(0); int(n) <= s.cfg.Filename.MaxCopyCounter; n++ {
		if n > 0 {
			counter := n
			p.Counter = &counter
		}
		target := filepath.Join(dir, filename.Encode(p, s.opts))

		err := atomicfile.WriteFileNew(target, content, 0)
		if err == nil {
			return target, nil
		}
		if !os.IsExist(err) {
			return "", fmt.Errorf("create %s: %w", target, err)
		}
	}
	return "", fmt.Errorf("no free copy counter in %s after %d attempts", dir, s.cfg.Filename.MaxCopyCounter)
}

// renameFree renames base (inside dir) to the candidate name, probing copy
// counters for the lowest free one. Counters already on the candidate are
// reset; disambiguation always searches from the plain name up.
func (s *Syncer) renameFree(dir, base string, p filename.Parts) (string, error) {
	from := filepath.Join(dir, base)

	p.Counter = nil
	for n := uint(0); int(n) <= s.cfg.Filename.MaxCopyCounter; n++ {
		if n > 0 {
			counter := n
			p.Counter = &counter
		}

		name := filename.Encode(p, s.opts)
		target := filepath.Join(dir, name)

		if name == base {
			// The disambiguated candidate is the current name already.
			return target, nil
		}
		if _, err := os.Stat(target); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return "", fmt.Errorf("stat %s: %w", target, err)
		}

		if err := os.Rename(from, target); err != nil {
			return "", fmt.Errorf("rename %s: %w", from, err)
		}
		return target, nil
	}
	return "", fmt.Errorf("no free copy counter in %s after %d attempts", dir, s.cfg.Filename.MaxCopyCounter)
}

func (s *Syncer) isForeign(ext string) bool {
	for _, e := range s.cfg.Extensions.Foreign {
		if strings.EqualFold(e, ext) {
			return true
		}
	}
	return false
}

// lockDir serializes counter searches and renames per directory.
func (s *Syncer) lockDir(dir string) func() {
	s.mu.Lock()
	lock, ok := s.dirLocks[dir]
	if !ok {
		lock = &sync.Mutex{}
		s.dirLocks[dir] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}

func failed() Result {
	return Result{State: StateFailed}
}
