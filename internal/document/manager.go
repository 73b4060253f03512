package document

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/dshills/unfold/internal/logging"
)

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithDocumentOptions sets the options applied to every opened document.
func WithDocumentOptions(opts ...Option) ManagerOption {
	return func(m *Manager) {
		m.docOpts = append(m.docOpts, opts...)
	}
}

// WithWriteOnClose writes documents back to disk when they are closed.
func WithWriteOnClose(write bool) ManagerOption {
	return func(m *Manager) {
		m.writeOnClose = write
	}
}

// WithManagerLogger sets the logger for the manager and its documents.
func WithManagerLogger(l *logging.Logger) ManagerOption {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// Manager tracks open documents by absolute path.
// Each open document has its own expansion set, cleared when it closes.
type Manager struct {
	mu           sync.RWMutex
	documents    map[string]*Document
	docOpts      []Option
	retain       *bool
	writeOnClose bool
	logger       *logging.Logger
}

// NewManager creates a new document manager.
func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		documents: make(map[string]*Document),
		logger:    logging.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open opens a document from a file.
// Returns the existing document if it is already open.
func (m *Manager) Open(path string) (*Document, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, NewOperationError("open", path, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if doc, exists := m.documents[absPath]; exists {
		return doc, nil
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return nil, NewOperationError("open", absPath, err)
	}

	opts := append([]Option{WithLogger(m.logger)}, m.docOpts...)
	if m.retain != nil {
		opts = append(opts, WithRetain(*m.retain))
	}

	doc := New(absPath, string(content), opts...)
	m.documents[absPath] = doc
	m.logger.Debug("opened %s", absPath)
	return doc, nil
}

// Get returns the open document at path.
func (m *Manager) Get(path string) (*Document, bool) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.documents[absPath]
	return doc, ok
}

// Paths returns the paths of all open documents, sorted.
func (m *Manager) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.documents))
	for p := range m.documents {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// SetRetain changes whether open and future documents keep their
// expansions on close.
func (m *Manager) SetRetain(retain bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.retain = &retain
	for _, doc := range m.documents {
		doc.SetRetain(retain)
	}
}

// SetWriteOnClose changes whether documents are saved when closed.
func (m *Manager) SetWriteOnClose(write bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeOnClose = write
}

// Close closes the document at path, undoing or releasing its expansions.
func (m *Manager) Close(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return NewOperationError("close", path, err)
	}

	m.mu.Lock()
	doc, exists := m.documents[absPath]
	if exists {
		delete(m.documents, absPath)
	}
	write := m.writeOnClose
	m.mu.Unlock()

	if !exists {
		return NewOperationError("close", absPath, ErrDocumentNotFound)
	}

	return m.closeDocument(doc, write)
}

// CloseAll closes every open document.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	docs := make([]*Document, 0, len(m.documents))
	for _, doc := range m.documents {
		docs = append(docs, doc)
	}
	m.documents = make(map[string]*Document)
	write := m.writeOnClose
	m.mu.Unlock()

	var errs []error
	for _, doc := range docs {
		if err := m.closeDocument(doc, write); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *Manager) closeDocument(doc *Document, write bool) error {
	if err := doc.Close(); err != nil {
		return err
	}
	if !write || !doc.HasChanges() {
		return nil
	}
	return Save(doc)
}

// Save writes the document's text to its path, keeping the file mode and
// line endings.
func Save(doc *Document) error {
	if doc.Path() == "" {
		return NewOperationError("save", doc.Name(), ErrDocumentNotFound)
	}

	mode := os.FileMode(0o644)
	if info, err := os.Stat(doc.Path()); err == nil {
		mode = info.Mode().Perm()
	}

	if err := os.WriteFile(doc.Path(), []byte(doc.FileText()), mode); err != nil {
		return NewOperationError("save", doc.Path(), err)
	}
	return nil
}
