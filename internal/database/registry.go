package database

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/explorer-knowledge/Whatsapp-Finance-Manager-Bot/internal/classify"
)

// Registry hands out per-user ledger stores, opening each user's database
// lazily on first use. Handles are kept open and reused; Close tears all of
// them down.
type Registry struct {
	dataDir    string
	classifier *classify.Classifier
	maxHistory int

	mu     sync.Mutex
	stores map[string]*Store
}

func NewRegistry(dataDir string, classifier *classify.Classifier, maxHistory int) (*Registry, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &Registry{
		dataDir:    dataDir,
		classifier: classifier,
		maxHistory: maxHistory,
		stores:     make(map[string]*Store),
	}, nil
}

// Store returns the ledger store for phone, opening it if needed.
func (r *Registry) Store(phone string) (*Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[phone]; ok {
		return s, nil
	}

	s, err := NewStore(r.ledgerPath(phone), r.classifier, r.maxHistory)
	if err != nil {
		return nil, err
	}
	r.stores[phone] = s
	return s, nil
}

// DeleteUserData closes and removes the user's ledger database. The next
// message from the user starts from an empty ledger.
func (r *Registry) DeleteUserData(phone string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.stores[phone]; ok {
		s.Close()
		delete(r.stores, phone)
	}

	err := os.Remove(r.ledgerPath(phone))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close closes every open ledger handle.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for phone, s := range r.stores {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.stores, phone)
	}
	return firstErr
}

func (r *Registry) ledgerPath(phone string) string {
	return filepath.Join(r.dataDir, phone+".db")
}
