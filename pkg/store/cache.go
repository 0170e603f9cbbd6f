package store

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/aleksaelezovic/n3logic/pkg/n3"
	"github.com/zeebo/xxh3"
)

// DocumentKeySize is the size of a document key (128-bit xxhash3)
const DocumentKeySize = 16

// DocumentKey computes the content address of a document
func DocumentKey(text string) []byte {
	hash := xxh3.HashString128(text)
	key := make([]byte, DocumentKeySize)
	binary.BigEndian.PutUint64(key[0:8], hash.Hi)
	binary.BigEndian.PutUint64(key[8:16], hash.Lo)
	return key
}

// Fingerprint returns the document key as a hex string
func Fingerprint(text string) string {
	return hex.EncodeToString(DocumentKey(text))
}

// ResultKey computes the cache key of a document parsed with opts.
// Parsing with a non-default built-in catalog changes the resolved builtins,
// so that catalog is hashed along with the text.
func ResultKey(text string, opts n3.Options) []byte {
	if opts.Resolver == nil {
		return DocumentKey(text)
	}
	catalog := opts.Resolver.Catalog()
	if slices.Equal(catalog, n3.DefaultCatalog()) {
		return DocumentKey(text)
	}

	var b strings.Builder
	b.WriteString(text)
	b.WriteByte(0)
	for _, entry := range catalog {
		fmt.Fprintf(&b, "%s %s %s %t\n", entry.URI, entry.Prefixed, entry.Namespace, entry.Custom)
	}
	return DocumentKey(b.String())
}

// Stats reports the number of entries per table
type Stats struct {
	Results int
	Paths   int
}

// ParseCache stores parse results by document content.
// Only successful parses are cached; a document that fails to parse is
// parsed again on every request so the caller always sees the error.
type ParseCache struct {
	storage Storage
	logger  *slog.Logger
}

// NewParseCache creates a cache over the given storage
func NewParseCache(storage Storage, logger *slog.Logger) *ParseCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseCache{storage: storage, logger: logger}
}

// Get returns the cached result for a document parsed with the default
// catalog, or ErrNotFound
func (c *ParseCache) Get(text string) (*n3.ParseResult, error) {
	return c.get(DocumentKey(text))
}

func (c *ParseCache) get(key []byte) (*n3.ParseResult, error) {
	txn, err := c.storage.Begin(false)
	if err != nil {
		return nil, err
	}
	defer func() { _ = txn.Rollback() }()

	data, err := txn.Get(TableResults, key)
	if err != nil {
		return nil, err
	}

	var result n3.ParseResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode cached result: %w", err)
	}
	return &result, nil
}

// Put stores the result for a document parsed with the default catalog
func (c *ParseCache) Put(text string, result *n3.ParseResult) error {
	return c.put(DocumentKey(text), result)
}

func (c *ParseCache) put(key []byte, result *n3.ParseResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	txn, err := c.storage.Begin(true)
	if err != nil {
		return err
	}
	if err := txn.Set(TableResults, key, data); err != nil {
		_ = txn.Rollback()
		return err
	}
	return txn.Commit()
}

// Parse returns the cached result for text, parsing and storing it on a
// miss. Entries are keyed by ResultKey. hit reports whether the result came
// from the cache. Cache failures are logged and fall back to a plain parse.
func (c *ParseCache) Parse(text string, opts n3.Options) (result *n3.ParseResult, hit bool, err error) {
	key := ResultKey(text, opts)
	result, err = c.get(key)
	if err == nil {
		return result, true, nil
	}
	if !errors.Is(err, ErrNotFound) {
		c.logger.Warn("Parse cache lookup failed", slog.String("error", err.Error()))
	}

	result, err = n3.Parse(text, opts)
	if err != nil {
		return nil, false, err
	}
	if err := c.put(key, result); err != nil {
		c.logger.Warn("Parse cache store failed", slog.String("error", err.Error()))
	}
	return result, false, nil
}

// Track records the current content of a file and reports whether it
// differs from the content recorded last time.
func (c *ParseCache) Track(path, text string) (changed bool, err error) {
	key := DocumentKey(text)

	txn, err := c.storage.Begin(true)
	if err != nil {
		return false, err
	}
	defer func() {
		if err != nil {
			_ = txn.Rollback()
		}
	}()

	previous, err := txn.Get(TablePaths, []byte(path))
	switch {
	case err == nil:
		if string(previous) == string(key) {
			return false, txn.Rollback()
		}
	case errors.Is(err, ErrNotFound):
	default:
		return false, err
	}

	if err = txn.Set(TablePaths, []byte(path), key); err != nil {
		return false, err
	}
	if err = txn.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

// Forget removes a tracked path
func (c *ParseCache) Forget(path string) error {
	txn, err := c.storage.Begin(true)
	if err != nil {
		return err
	}
	if err := txn.Delete(TablePaths, []byte(path)); err != nil {
		_ = txn.Rollback()
		return err
	}
	return txn.Commit()
}

// Stats counts the entries of each table
func (c *ParseCache) Stats() (Stats, error) {
	txn, err := c.storage.Begin(false)
	if err != nil {
		return Stats{}, err
	}
	defer func() { _ = txn.Rollback() }()

	var stats Stats
	if stats.Results, err = countKeys(txn, TableResults); err != nil {
		return Stats{}, err
	}
	if stats.Paths, err = countKeys(txn, TablePaths); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

// Clear removes every cached result and tracked path
func (c *ParseCache) Clear() error {
	txn, err := c.storage.Begin(true)
	if err != nil {
		return err
	}

	for table := Table(0); table < TableCount; table++ {
		keys, err := collectKeys(txn, table)
		if err != nil {
			_ = txn.Rollback()
			return err
		}
		for _, key := range keys {
			if err := txn.Delete(table, key); err != nil {
				_ = txn.Rollback()
				return err
			}
		}
		c.logger.Debug("Cleared table", slog.String("table", table.String()), slog.Int("keys", len(keys)))
	}

	return txn.Commit()
}

func countKeys(txn Transaction, table Table) (int, error) {
	it, err := txn.Scan(table, nil)
	if err != nil {
		return 0, err
	}
	defer it.Close()

	count := 0
	for it.Next() {
		count++
	}
	return count, nil
}

func collectKeys(txn Transaction, table Table) ([][]byte, error) {
	it, err := txn.Scan(table, nil)
	if err != nil {
		return nil, err
	}
	defer it.Close()

	var keys [][]byte
	for it.Next() {
		keys = append(keys, append([]byte(nil), it.Key()...))
	}
	return keys, nil
}
