// Package profilecache stores a compiled profile set in a bbolt file so a
// process can load every language from one file instead of parsing a
// directory of profile text files.
//
// Layout: bucket "profiles" maps a language code to its JSON frequency
// table; bucket "meta" holds a JSON description of the pack.
package profilecache

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/MeKo-Tech/langid/internal/ngram"
	"github.com/MeKo-Tech/langid/internal/profile"
)

var (
	bucketProfiles = []byte("profiles")
	bucketMeta     = []byte("meta")
	keyInfo        = []byte("info")
)

// ErrEmptyCache is returned when a cache holds no profiles.
var ErrEmptyCache = errors.New("profile cache is empty")

// Meta describes a packed profile set.
type Meta struct {
	Source    string    `json:"source"`
	BuiltAt   time.Time `json:"built_at"`
	Languages []string  `json:"languages"`
	MaxLength int       `json:"max_length"`
}

// Cache is an open profile cache file.
type Cache struct {
	db   *bolt.DB
	path string
}

// Open opens (or creates) a cache for writing.
func Open(path string) (*Cache, error) {
	return open(path, false)
}

// OpenReadOnly opens an existing cache. Several processes may hold it open
// at once.
func OpenReadOnly(path string) (*Cache, error) {
	return open(path, true)
}

func open(path string, readOnly bool) (*Cache, error) {
	if path == "" {
		return nil, fmt.Errorf("%w: cache path cannot be empty", profile.ErrInvalidInput)
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second, ReadOnly: readOnly})
	if err != nil {
		return nil, fmt.Errorf("bbolt open %s: %w", path, err)
	}
	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Path returns the cache file path.
func (c *Cache) Path() string { return c.path }

// Save replaces the cache contents with every language of store in a
// single transaction.
func (c *Cache) Save(store *profile.Store, source string) error {
	if store == nil {
		return fmt.Errorf("%w: nil store", profile.ErrInvalidInput)
	}

	encoded := make(map[string][]byte, store.Len())
	for _, lang := range store.Languages() {
		data, err := json.Marshal(lang.Ngrams())
		if err != nil {
			return fmt.Errorf("marshal profile %s: %w", lang.Code(), err)
		}
		encoded[lang.Code()] = data
	}
	info, err := json.Marshal(Meta{
		Source:    source,
		BuiltAt:   time.Now().UTC(),
		Languages: store.Codes(),
		MaxLength: store.MaxLength(),
	})
	if err != nil {
		return fmt.Errorf("marshal meta: %w", err)
	}

	return c.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bucketProfiles, bucketMeta} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
		}
		pb, err := tx.CreateBucket(bucketProfiles)
		if err != nil {
			return err
		}
		for code, data := range encoded {
			if err := pb.Put([]byte(code), data); err != nil {
				return err
			}
		}
		mb, err := tx.CreateBucket(bucketMeta)
		if err != nil {
			return err
		}
		return mb.Put(keyInfo, info)
	})
}

// Load rebuilds a store from the cached profiles.
func (c *Cache) Load(cfg profile.StoreConfig) (*profile.Store, error) {
	var languages []*profile.Language

	err := c.db.View(func(tx *bolt.Tx) error {
		pb := tx.Bucket(bucketProfiles)
		if pb == nil {
			return nil
		}
		return pb.ForEach(func(k, v []byte) error {
			// json.Unmarshal copies, so v need not outlive the transaction.
			var freqs ngram.Frequencies
			if err := json.Unmarshal(v, &freqs); err != nil {
				return fmt.Errorf("decode profile %s: %w", k, err)
			}
			code := string(k)
			lang, err := profile.NewLanguage(code, freqs, c.path+"#"+code)
			if err != nil {
				return err
			}
			languages = append(languages, lang)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if len(languages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyCache, c.path)
	}

	return profile.NewStore(languages, cfg)
}

// Meta returns the pack description, or ErrEmptyCache if nothing was saved.
func (c *Cache) Meta() (Meta, error) {
	var meta Meta
	found := false

	err := c.db.View(func(tx *bolt.Tx) error {
		mb := tx.Bucket(bucketMeta)
		if mb == nil {
			return nil
		}
		v := mb.Get(keyInfo)
		if v == nil {
			return nil
		}
		found = true
		return json.Unmarshal(v, &meta)
	})
	if err != nil {
		return Meta{}, fmt.Errorf("decode meta: %w", err)
	}
	if !found {
		return Meta{}, fmt.Errorf("%w: %s", ErrEmptyCache, c.path)
	}
	return meta, nil
}

// Pack writes store into a cache file at path.
func Pack(path string, store *profile.Store, source string) error {
	c, err := Open(path)
	if err != nil {
		return err
	}
	if err := c.Save(store, source); err != nil {
		_ = c.Close()
		return err
	}
	return c.Close()
}

// LoadStore opens the cache at path read-only and loads its store.
func LoadStore(path string, cfg profile.StoreConfig) (*profile.Store, error) {
	c, err := OpenReadOnly(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = c.Close() }()

	return c.Load(cfg)
}
