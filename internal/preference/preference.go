// Package preference persists per-screen list view state (view mode, sort,
// filters) in a key-value store.
package preference

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/fekuna/omnipos-admin-service/internal/apperr"
	"github.com/fekuna/omnipos-admin-service/internal/model"
	"github.com/fekuna/omnipos-admin-service/pkg/cache"
)

const keyPrefix = "prefs:"

var validKey = regexp.MustCompile(`^[a-zA-Z0-9_.-]{1,64}$`)

var validViewModes = map[string]bool{"table": true, "grid": true, "list": true}

type Store interface {
	// Get returns the stored preference or the defaults when none is stored.
	Get(ctx context.Context, key string) (model.ViewPreference, error)
	Save(ctx context.Context, key string, pref model.ViewPreference) (model.ViewPreference, error)
}

// KVStore keeps preferences as JSON in a cache.Cache. Entries never expire.
type KVStore struct {
	kv cache.Cache
}

func NewStore(kv cache.Cache) *KVStore {
	return &KVStore{kv: kv}
}

// NewMemoryStore is a Store that lives as long as the process.
func NewMemoryStore() *KVStore {
	return NewStore(cache.NewMemory())
}

func (s *KVStore) Get(ctx context.Context, key string) (model.ViewPreference, error) {
	if err := checkKey(key); err != nil {
		return model.ViewPreference{}, err
	}

	raw, err := s.kv.Get(ctx, keyPrefix+key)
	if errors.Is(err, cache.ErrMiss) {
		return model.DefaultViewPreference(), nil
	}
	if err != nil {
		return model.ViewPreference{}, apperr.Classify("preference.Get", err)
	}

	pref := model.DefaultViewPreference()
	if err := json.Unmarshal(raw, &pref); err != nil {
		// unreadable entries are treated as absent
		return model.DefaultViewPreference(), nil
	}
	return Normalize(pref), nil
}

func (s *KVStore) Save(ctx context.Context, key string, pref model.ViewPreference) (model.ViewPreference, error) {
	if err := checkKey(key); err != nil {
		return model.ViewPreference{}, err
	}
	if pref.ViewMode != "" && !validViewModes[pref.ViewMode] {
		return model.ViewPreference{}, apperr.Validationf("preference.Save", "unknown view mode %q", pref.ViewMode)
	}

	pref = Normalize(pref)
	raw, err := json.Marshal(pref)
	if err != nil {
		return model.ViewPreference{}, apperr.Classify("preference.Save", err)
	}
	if err := s.kv.Set(ctx, keyPrefix+key, raw, 0); err != nil {
		return model.ViewPreference{}, apperr.Classify("preference.Save", err)
	}
	return pref, nil
}

// Normalize fills zero fields with defaults and clamps the page size.
func Normalize(p model.ViewPreference) model.ViewPreference {
	def := model.DefaultViewPreference()
	if p.ViewMode == "" {
		p.ViewMode = def.ViewMode
	}
	if p.SortBy == "" {
		p.SortBy = def.SortBy
	}
	switch strings.ToLower(p.SortOrder) {
	case "asc", "desc":
		p.SortOrder = strings.ToLower(p.SortOrder)
	default:
		p.SortOrder = def.SortOrder
	}
	if p.PageSize <= 0 {
		p.PageSize = def.PageSize
	}
	if p.PageSize > 200 {
		p.PageSize = 200
	}
	if p.Filters == nil {
		p.Filters = map[string]string{}
	}
	return p
}

func checkKey(key string) error {
	if !validKey.MatchString(key) {
		return apperr.Validationf("preference", "invalid preference key %q", key)
	}
	return nil
}
