// Package session owns the in-memory editing state of one page. The editor UI
// and transport layers are observers and dispatchers; document truth lives
// here and changes only through the mutation methods below.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/emrgen/storefront/internal/document"
	"github.com/emrgen/storefront/internal/history"
	"github.com/sirupsen/logrus"
)

// SaveStatus is surfaced to the host chrome.
type SaveStatus string

const (
	StatusSaved  SaveStatus = "saved"
	StatusSaving SaveStatus = "saving"
	StatusDirty  SaveStatus = "dirty"
	StatusError  SaveStatus = "error"
)

const defaultAutosaveQuiet = 3 * time.Second

// DraftSaver persists the draft. Implemented by the page service; the session
// does not care what sits behind it.
type DraftSaver interface {
	SaveDraft(ctx context.Context, pageID string, sections document.Sections) error
}

// PreviewSink receives the current draft on every relevant edit. Implemented
// by the live hub's preview channel.
type PreviewSink interface {
	PushDraft(pageID string, sections document.Sections)
}

// DefaultsSource resolves default settings for a section type, normally the
// render registry.
type DefaultsSource interface {
	Defaults(sectionType string) document.Settings
}

type Option func(*EditorSession)

// WithAutosaveQuiet overrides the debounce quiet period.
func WithAutosaveQuiet(d time.Duration) Option {
	return func(s *EditorSession) {
		s.quiet = d
	}
}

// WithHistoryLimit overrides the undo stack depth.
func WithHistoryLimit(limit int) Option {
	return func(s *EditorSession) {
		s.hist = history.New(limit)
	}
}

// WithPreview attaches a preview sink.
func WithPreview(sink PreviewSink) Option {
	return func(s *EditorSession) {
		s.preview = sink
	}
}

// EditorSession is the single owner of one page's draft state. All document
// mutation, history, and status logic runs under one lock; saves and preview
// pushes are fire-and-forget and never block further local edits.
type EditorSession struct {
	mu       sync.Mutex
	pageID   string
	sections document.Sections
	hist     *history.History
	defaults DefaultsSource
	saver    DraftSaver
	preview  PreviewSink

	quiet     time.Duration
	debounced func(func())
	status    SaveStatus
	onStatus  func(SaveStatus)
}

// New creates a session for a page. Call Load before editing.
func New(pageID string, defaults DefaultsSource, saver DraftSaver, opts ...Option) *EditorSession {
	s := &EditorSession{
		pageID:   pageID,
		hist:     history.New(0),
		defaults: defaults,
		saver:    saver,
		quiet:    defaultAutosaveQuiet,
		status:   StatusSaved,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.debounced = debounce.New(s.quiet)

	return s
}

// Load installs server-fetched sections and resets history, so the loaded
// state is never itself an undoable past.
func (s *EditorSession) Load(sections document.Sections) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sections = sections.Clone()
	s.hist.Reset(s.sections)
	s.setStatus(StatusSaved)
}

// Sections returns a copy of the current draft.
func (s *EditorSession) Sections() document.Sections {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sections.Clone()
}

// OnStatus registers a save-status listener for the host chrome.
func (s *EditorSession) OnStatus(f func(SaveStatus)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onStatus = f
}

func (s *EditorSession) Status() SaveStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// apply installs a new snapshot. Undo/redo re-enter through here as well; the
// history latch swallows their re-record so an undo is not immediately redone
// by its own side effect.
func (s *EditorSession) apply(next document.Sections) {
	s.sections = next
	s.hist.Record(next)
	s.setStatus(StatusDirty)
	s.scheduleSave()

	if s.preview != nil {
		s.preview.PushDraft(s.pageID, next.Clone())
	}
}

func (s *EditorSession) AddSection(sectionType string, atEnd bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(document.AddSection(s.sections, sectionType, s.defaults.Defaults, atEnd))
}

func (s *EditorSession) UpdateSection(id string, partial document.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(document.UpdateSection(s.sections, id, partial))
}

func (s *EditorSession) DeleteSection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(document.DeleteSection(s.sections, id))
}

func (s *EditorSession) DuplicateSection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(document.DuplicateSection(s.sections, id))
}

func (s *EditorSession) Reorder(fromID, toID string, before bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(document.Reorder(s.sections, fromID, toID, before))
}

func (s *EditorSession) Copy(ids []string) document.Clipboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	return document.Copy(s.sections, ids)
}

func (s *EditorSession) Paste(clipboard document.Clipboard) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(document.Paste(s.sections, clipboard))
}

// DeleteMany removes a whole selection as one undoable step.
func (s *EditorSession) DeleteMany(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(document.DeleteMany(s.sections, ids))
}

// SetHiddenMany hides or shows a whole selection as one undoable step.
func (s *EditorSession) SetHiddenMany(ids []string, hidden bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.apply(document.SetHiddenMany(s.sections, ids, hidden))
}

// Undo steps back one history entry. Returns false at the bottom of the stack
// with state unchanged; the host may surface a no-op notification.
func (s *EditorSession) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.hist.Undo()
	if !ok {
		return false
	}

	s.apply(snapshot)
	return true
}

func (s *EditorSession) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot, ok := s.hist.Redo()
	if !ok {
		return false
	}

	s.apply(snapshot)
	return true
}

func (s *EditorSession) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hist.CanUndo()
}

func (s *EditorSession) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.hist.CanRedo()
}

// scheduleSave arms the autosave debounce. The callback reads the latest
// sections at fire time, so superseded intermediate states are dropped in
// favor of the newest draft.
func (s *EditorSession) scheduleSave() {
	s.debounced(func() {
		s.saveNow()
	})
}

// Flush saves immediately, bypassing the debounce. Used by explicit user
// saves and before publish.
func (s *EditorSession) Flush() error {
	return s.saveNow()
}

func (s *EditorSession) saveNow() error {
	s.mu.Lock()
	snapshot := s.sections.Clone()
	s.setStatus(StatusSaving)
	s.mu.Unlock()

	err := s.saver.SaveDraft(context.Background(), s.pageID, snapshot)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// local state is preserved; the host surfaces a retryable error
		logrus.Errorf("autosave for page %s failed: %v", s.pageID, err)
		s.setStatus(StatusError)
		return err
	}

	// edits that landed while the save was in flight stay dirty and are
	// picked up by the next debounce cycle
	if s.sections.Equal(snapshot) {
		s.setStatus(StatusSaved)
	} else {
		s.setStatus(StatusDirty)
	}

	return nil
}

func (s *EditorSession) setStatus(status SaveStatus) {
	if s.status == status {
		return
	}

	s.status = status
	if s.onStatus != nil {
		s.onStatus(status)
	}
}
