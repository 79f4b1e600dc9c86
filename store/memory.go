package store

import (
	"context"
	"sync"

	"github.com/teranos/ypgen/errors"
)

// Memory is an in-process Store. It is safe for concurrent use and supports
// failure injection for tests and dry runs.
type Memory struct {
	baseURL string

	mu       sync.RWMutex
	pages    map[string]string
	loggedIn bool
	reads    int
	saves    int

	// FailLogin makes Login fail with an unauthorized error
	FailLogin bool
	// FailGetOn and FailSaveOn make reads or writes of the listed titles fail
	FailGetOn  map[string]bool
	FailSaveOn map[string]bool
}

// NewMemory creates an empty in-memory store
func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL:    baseURL,
		pages:      make(map[string]string),
		FailGetOn:  make(map[string]bool),
		FailSaveOn: make(map[string]bool),
	}
}

// Put stores a page directly, bypassing login and counters
func (m *Memory) Put(title, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[title] = text
}

func (m *Memory) Login(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailLogin {
		return errors.NewUnauthorizedError("login to %s rejected", m.baseURL)
	}
	m.loggedIn = true
	return nil
}

func (m *Memory) GetPage(ctx context.Context, title string) (*Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads++
	if m.FailGetOn[title] {
		return nil, errors.Mark(errors.Newf("read of %s failed", title), errors.ErrStoreRead)
	}
	text, ok := m.pages[title]
	return &Page{Title: title, Exists: ok, Text: text}, nil
}

func (m *Memory) SavePage(ctx context.Context, title, text, summary string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loggedIn {
		return errors.NewUnauthorizedError("save of %s without login", title)
	}
	if m.FailSaveOn[title] {
		return errors.Mark(errors.Newf("save of %s failed", title), errors.ErrStoreWrite)
	}
	m.saves++
	m.pages[title] = text
	return nil
}

func (m *Memory) BaseURL() string {
	return m.baseURL
}

// Text returns the stored text of a page
func (m *Memory) Text(title string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.pages[title]
	return text, ok
}

// Len returns the number of stored pages
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.pages)
}

// Reads returns how many GetPage calls reached the store
func (m *Memory) Reads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reads
}

// Saves returns how many SavePage calls succeeded
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}
