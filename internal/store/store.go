// Package store keeps users and groups in a single JSON document on disk.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"

	"github.com/spigell/group-recommender/internal/records"
)

// DefaultPageLimit is used when a listing is requested without a positive limit.
const DefaultPageLimit = 100

var (
	ErrUserNotFound     = errors.New("user not found")
	ErrActorNotFound    = errors.New("actor user not found")
	ErrAdminNotFound    = errors.New("admin user not found")
	ErrGroupNotFound    = errors.New("group not found")
	ErrDuplicateEmail   = errors.New("the user with this email already exists in the system")
	ErrSelfLike         = errors.New("cannot like yourself")
	ErrAlreadyMember    = errors.New("user already in group")
	ErrGroupFull        = errors.New("group is full")
	ErrNotMember        = errors.New("user not in group")
	ErrAdminCannotLeave = errors.New("admin cannot leave group")
)

type document struct {
	Users  []*records.User  `json:"users"`
	Groups []*records.Group `json:"groups"`
}

type rawDocument struct {
	Users  []map[string]any `json:"users"`
	Groups []map[string]any `json:"groups"`
}

// Store serializes access to the document within one process. Every
// operation reads the file, applies its change and writes it back.
type Store struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// Open prepares a store at path and creates an empty document if the file does not exist.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{path: path, logger: logger.With(zap.String("store", path))}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
		if err := s.save(&document{}); err != nil {
			return nil, err
		}
		s.logger.Info("initialized empty store")
	} else if err != nil {
		return nil, fmt.Errorf("stat store: %w", err)
	}

	return s, nil
}

func (s *Store) Path() string {
	return s.path
}

func (s *Store) load() (*document, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return &document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(data) == 0 {
		return &document{}, nil
	}

	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode store: %w", err)
	}

	doc := &document{}
	if err := decodeRecords(raw.Users, &doc.Users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	if err := decodeRecords(raw.Groups, &doc.Groups); err != nil {
		return nil, fmt.Errorf("decode groups: %w", err)
	}
	return doc, nil
}

// decodeRecords maps loosely typed records onto their structs. Legacy groups
// stored activity as a list of labels, which is joined into one label.
func decodeRecords(items []map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: joinStringSliceHook,
		Result:     out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(items)
}

func (s *Store) save(doc *document) error {
	if doc.Users == nil {
		doc.Users = []*records.User{}
	}
	if doc.Groups == nil {
		doc.Groups = []*records.Group{}
	}

	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".store-*.json")
	if err != nil {
		return fmt.Errorf("create temp store file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace store: %w", err)
	}
	return nil
}

// update runs fn over the loaded document and saves it when fn succeeds.
func (s *Store) update(fn func(doc *document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := fn(doc); err != nil {
		return err
	}
	return s.save(doc)
}

func (s *Store) read() (*document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func page[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if skip >= len(items) {
		return []T{}
	}
	end := min(skip+limit, len(items))
	return items[skip:end]
}

// errUnchanged aborts an update without writing the document.
var errUnchanged = errors.New("unchanged")

func ignoreUnchanged(err error) error {
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}
