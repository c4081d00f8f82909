package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/record"
)

// LoadDocuments lists documents newest first.
func (a *Adapter) LoadDocuments(ctx context.Context) Loaded[[]domain.Document] {
	recs, err := a.store.List(ctx, record.TableDocuments, record.OrderCreatedDesc)
	if err != nil {
		a.log.Errorf("load documents: %v", err)
		return Loaded[[]domain.Document]{Value: []domain.Document{}, Source: SourceDefault, Err: err}
	}
	docs := make([]domain.Document, 0, len(recs))
	for _, rec := range recs {
		var d domain.Document
		if err := rec.Decode(&d); err != nil {
			a.log.Warnf("load documents: skipping %s: %v", rec.ID, err)
			continue
		}
		docs = append(docs, d)
	}
	return Loaded[[]domain.Document]{Value: docs, Source: SourceStored}
}

// SaveDocument upserts d, keyed by id and stamped with its creation time,
// then returns the re-fetched list.
func (a *Adapter) SaveDocument(ctx context.Context, d domain.Document) ([]domain.Document, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	now := a.now().UnixMilli()
	if d.CreatedAt == 0 {
		d.CreatedAt = now
	}
	d.UpdatedAt = now
	rec, err := record.Encode(d.ID, d)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(d.CreatedAt)
	if err := a.store.Upsert(ctx, record.TableDocuments, rec); err != nil {
		a.log.Errorf("save document %s: %v", d.ID, err)
		return a.LoadDocuments(ctx).Value, fmt.Errorf("save document: %w", err)
	}
	return a.LoadDocuments(ctx).Value, nil
}

func (a *Adapter) DeleteDocument(ctx context.Context, id string) ([]domain.Document, error) {
	if err := a.store.Delete(ctx, record.TableDocuments, id); err != nil {
		a.log.Errorf("delete document %s: %v", id, err)
		return a.LoadDocuments(ctx).Value, fmt.Errorf("delete document: %w", err)
	}
	return a.LoadDocuments(ctx).Value, nil
}

// ApplyTypePreferences fills the logo fields d leaves unset from the saved
// preferences of its document type.
func (a *Adapter) ApplyTypePreferences(ctx context.Context, d *domain.Document) {
	if s, ok := a.GetTypePreferences(ctx, d.Type); ok {
		d.ApplyLogo(s)
	}
}
