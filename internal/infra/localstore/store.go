package localstore

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/peterbourgon/diskv/v3"
)

const (
	prefsCollection     = "prefs"
	dismissalCollection = "dismissal"
)

var keyEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Store keeps preferences and dismissals of local users as JSON files under one directory.
// Keys are `collection-component...-name` and map onto nested directories.
type Store struct {
	d *diskv.Diskv
}

// Open uses basePath as the store root. Nothing is cached in memory because other
// processes write to the same directory.
func Open(basePath string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPathTransform,
		InverseTransform:  pathToKeyTransform,
		CacheSizeMax:      0,
	})}
}

func (s *Store) Preferences() *PreferenceStore {
	return &PreferenceStore{d: s.d}
}

func (s *Store) Dismissals() *DismissalStore {
	return &DismissalStore{d: s.d}
}

func keyToPathTransform(s string) *diskv.PathKey {
	parts := strings.Split(s, "-")
	return &diskv.PathKey{
		Path:     parts[:len(parts)-1],
		FileName: parts[len(parts)-1],
	}
}

func pathToKeyTransform(pathKey *diskv.PathKey) string {
	return fmt.Sprintf("%s-%s", strings.Join(pathKey.Path, "-"), pathKey.FileName)
}

// userComponent drops the hyphens so a user id is a single key component.
func userComponent(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "")
}

func prefsKey(userID uuid.UUID) string {
	return fmt.Sprintf("%s-%s", prefsCollection, userComponent(userID))
}

func dismissalPrefix(userID uuid.UUID) string {
	return fmt.Sprintf("%s-%s-", dismissalCollection, userComponent(userID))
}

// dismissalKey encodes the notification key, which contains hyphens itself.
func dismissalKey(userID uuid.UUID, key string) string {
	return dismissalPrefix(userID) + keyEncoding.EncodeToString([]byte(key))
}
