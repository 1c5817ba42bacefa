package dedup

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Store is the set of listing URLs already written, backed by a
// newline-delimited file that only ever grows.
type Store struct {
	filePath string
	seen     mapset.Set[string]
}

// Load reads path into memory. A missing file is an empty store.
func Load(path string) (*Store, error) {
	store := &Store{
		filePath: path,
		seen:     mapset.NewSet[string](),
	}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("📋 No resume file at %s, starting fresh", path)
		return store, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open resume file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if url := strings.TrimSpace(scanner.Text()); url != "" {
			store.seen.Add(url)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read resume file: %w", err)
	}

	log.Printf("📋 Loaded %d previously processed listings", store.seen.Cardinality())
	return store, nil
}

// Contains reports whether url was already recorded.
func (s *Store) Contains(url string) bool {
	return s.seen.Contains(url)
}

// Record appends url to the file and the in-memory set. It does not check
// Contains first: recording twice writes a duplicate line.
func (s *Store) Record(url string) error {
	if dir := filepath.Dir(s.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create resume dir: %w", err)
		}
	}

	f, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open resume file: %w", err)
	}
	if _, err := f.WriteString(url + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("append to resume file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close resume file: %w", err)
	}

	s.seen.Add(url)
	return nil
}

// Len is the number of distinct URLs recorded.
func (s *Store) Len() int {
	return s.seen.Cardinality()
}
