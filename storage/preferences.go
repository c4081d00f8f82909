package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/record"
)

// maxPreferenceAttempts bounds the read-modify-write retries on version
// conflicts.
const maxPreferenceAttempts = 3

// LoadPreferences returns the whole per-type preference map.
func (a *Adapter) LoadPreferences(ctx context.Context) Loaded[domain.UserPreferences] {
	l := loadSingleton(ctx, a, domain.KeyUserPrefs, domain.DefaultUserPreferences)
	if l.Value.TypeSettings == nil {
		l.Value.TypeSettings = map[domain.DocumentType]domain.LogoSettings{}
	}
	return l
}

// GetTypePreferences projects one document type out of the preference map.
func (a *Adapter) GetTypePreferences(ctx context.Context, t domain.DocumentType) (domain.LogoSettings, bool) {
	s, ok := a.LoadPreferences(ctx).Value.TypeSettings[t]
	return s, ok
}

// SaveTypePreferences reads the whole map, replaces the entry for t and
// writes the map back. The stored version guards the write; a concurrent
// update makes it re-read and retry instead of silently dropping the other
// writer's entry. A failed read aborts without writing.
func (a *Adapter) SaveTypePreferences(ctx context.Context, t domain.DocumentType, s domain.LogoSettings) error {
	if !t.Valid() {
		return &domain.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown document type %q", t)}
	}
	var err error
	for attempt := 0; attempt < maxPreferenceAttempts; attempt++ {
		err = a.updatePreferences(ctx, func(p *domain.UserPreferences) {
			p.TypeSettings[t] = s
		})
		if !errors.Is(err, record.ErrVersionConflict) {
			break
		}
		a.log.Warnf("save preferences %s: version conflict, retrying", t)
	}
	if err != nil {
		a.log.Errorf("save preferences %s: %v", t, err)
		return fmt.Errorf("save preferences: %w", err)
	}
	return nil
}

// DeleteTypePreferences drops the entry for t.
func (a *Adapter) DeleteTypePreferences(ctx context.Context, t domain.DocumentType) error {
	err := a.updatePreferences(ctx, func(p *domain.UserPreferences) {
		delete(p.TypeSettings, t)
	})
	if err != nil {
		a.log.Errorf("delete preferences %s: %v", t, err)
		return fmt.Errorf("delete preferences: %w", err)
	}
	return nil
}

func (a *Adapter) updatePreferences(ctx context.Context, mutate func(*domain.UserPreferences)) error {
	prefs := domain.DefaultUserPreferences()
	version := record.NewVersion
	rec, err := a.store.Get(ctx, record.TablePreferences, domain.KeyUserPrefs)
	switch {
	case errors.Is(err, record.ErrNotFound):
	case err != nil:
		return err
	default:
		if err := rec.Decode(&prefs); err != nil {
			return err
		}
		if prefs.TypeSettings == nil {
			prefs.TypeSettings = map[domain.DocumentType]domain.LogoSettings{}
		}
		version = rec.Version
	}
	mutate(&prefs)
	next, err := record.Encode(domain.KeyUserPrefs, prefs)
	if err != nil {
		return err
	}
	next.Version = version
	return a.store.Upsert(ctx, record.TablePreferences, next)
}
