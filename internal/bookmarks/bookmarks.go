// Package bookmarks persists keyed directory bookmarks under the config dir.
package bookmarks

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"unicode"

	"gopkg.in/yaml.v3"
)

const maxNameLength = 64

// Bookmark binds a single-character key to a directory path.
type Bookmark struct {
	Key  string `yaml:"key"`
	Path string `yaml:"path"`
	Name string `yaml:"name,omitempty"`
}

// Store is the in-memory bookmark set plus its backing file.
type Store struct {
	path  string
	marks map[string]Bookmark
}

// DefaultPath returns the bookmark file location next to the config file.
func DefaultPath(configDir string) string {
	if configDir == "" {
		return ""
	}
	return filepath.Join(configDir, "bookmarks.yaml")
}

// Load reads the bookmark file at path. A missing file yields an empty store.
func Load(path string) (*Store, error) {
	s := &Store{path: path, marks: make(map[string]Bookmark)}
	if path == "" {
		return s, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read bookmarks: %w", err)
	}

	var list []Bookmark
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse bookmarks %s: %w", path, err)
	}
	for _, b := range list {
		if b.Key != "" {
			s.marks[b.Key] = b
		}
	}
	return s, nil
}

// ValidateKey accepts a single printable, non-space character.
func ValidateKey(key string) error {
	runes := []rune(key)
	if len(runes) != 1 {
		return fmt.Errorf("bookmark key must be a single character")
	}
	r := runes[0]
	if !unicode.IsPrint(r) || unicode.IsSpace(r) {
		return fmt.Errorf("bookmark key must be printable")
	}
	return nil
}

// Set stores a bookmark and persists the file.
func (s *Store) Set(key, path, name string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	if len(name) > maxNameLength {
		name = name[:maxNameLength]
	}
	s.marks[key] = Bookmark{Key: key, Path: path, Name: name}
	return s.save()
}

// Get looks up a bookmark by key.
func (s *Store) Get(key string) (Bookmark, bool) {
	b, ok := s.marks[key]
	return b, ok
}

// Remove deletes a bookmark and persists the file. Unknown keys are a no-op.
func (s *Store) Remove(key string) error {
	if _, ok := s.marks[key]; !ok {
		return nil
	}
	delete(s.marks, key)
	return s.save()
}

// List returns bookmarks ordered by key.
func (s *Store) List() []Bookmark {
	list := make([]Bookmark, 0, len(s.marks))
	for _, b := range s.marks {
		list = append(list, b)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Key < list[j].Key })
	return list
}

// Len reports the number of stored bookmarks.
func (s *Store) Len() int {
	return len(s.marks)
}

func (s *Store) save() error {
	if s.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create bookmark dir: %w", err)
	}

	data, err := yaml.Marshal(s.List())
	if err != nil {
		return fmt.Errorf("encode bookmarks: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write bookmarks: %w", err)
	}
	return nil
}
