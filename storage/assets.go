package storage

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/eringen/brandkit/domain"
	"github.com/eringen/brandkit/record"
)

// NewAsset builds an asset with a fresh random id and the current time.
func (a *Adapter) NewAsset(name string, t domain.AssetType, dataURL string) domain.Asset {
	return domain.Asset{
		ID:        a.newID(),
		Name:      name,
		Type:      t,
		DataURL:   dataURL,
		CreatedAt: a.now().UnixMilli(),
	}
}

// LoadAssets lists the library oldest first. Records that fail to decode
// are logged and skipped.
func (a *Adapter) LoadAssets(ctx context.Context) Loaded[[]domain.Asset] {
	recs, err := a.store.List(ctx, record.TableAssets, record.OrderNone)
	if err != nil {
		a.log.Errorf("load assets: %v", err)
		return Loaded[[]domain.Asset]{Value: []domain.Asset{}, Source: SourceDefault, Err: err}
	}
	assets := make([]domain.Asset, 0, len(recs))
	for _, rec := range recs {
		var asset domain.Asset
		if err := rec.Decode(&asset); err != nil {
			a.log.Warnf("load assets: skipping %s: %v", rec.ID, err)
			continue
		}
		assets = append(assets, asset)
	}
	slices.SortStableFunc(assets, func(x, y domain.Asset) int {
		switch {
		case x.CreatedAt < y.CreatedAt:
			return -1
		case x.CreatedAt > y.CreatedAt:
			return 1
		}
		return 0
	})
	return Loaded[[]domain.Asset]{Value: assets, Source: SourceStored}
}

// SaveAsset upserts by id and returns the re-fetched library. The list is
// returned even when the write fails, alongside the error.
func (a *Adapter) SaveAsset(ctx context.Context, asset domain.Asset) ([]domain.Asset, error) {
	if err := asset.Validate(); err != nil {
		return nil, err
	}
	rec, err := record.Encode(asset.ID, asset)
	if err != nil {
		return nil, err
	}
	rec.CreatedAt = time.UnixMilli(asset.CreatedAt)
	if err := a.store.Upsert(ctx, record.TableAssets, rec); err != nil {
		a.log.Errorf("save asset %s: %v", asset.ID, err)
		return a.LoadAssets(ctx).Value, fmt.Errorf("save asset: %w", err)
	}
	return a.LoadAssets(ctx).Value, nil
}

// DeleteAsset removes the asset and returns the re-fetched library.
func (a *Adapter) DeleteAsset(ctx context.Context, id string) ([]domain.Asset, error) {
	if err := a.store.Delete(ctx, record.TableAssets, id); err != nil {
		a.log.Errorf("delete asset %s: %v", id, err)
		return a.LoadAssets(ctx).Value, fmt.Errorf("delete asset: %w", err)
	}
	return a.LoadAssets(ctx).Value, nil
}

// GetAsset returns one asset by id.
func (a *Adapter) GetAsset(ctx context.Context, id string) (domain.Asset, error) {
	rec, err := a.store.Get(ctx, record.TableAssets, id)
	if err != nil {
		return domain.Asset{}, err
	}
	var asset domain.Asset
	err = rec.Decode(&asset)
	return asset, err
}
