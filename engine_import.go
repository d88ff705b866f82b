package geomstore

import (
	"context"
	"fmt"
	"os"

	"github.com/jward/geomstore/internal/element"
	"github.com/jward/geomstore/internal/geometry"
	"github.com/jward/geomstore/internal/store"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// importItem holds everything an import worker needs and produces.
type importItem struct {
	path  string
	batch *store.Batch

	skipped int
	err     error
}

// ImportGeoJSON stores the geometries of GeoJSON feature collections and
// returns the number of entries written. It runs in three phases:
//
//	Phase A (serial):   Validate the file list.
//	Phase B (parallel): Read and decode files via a bounded worker pool.
//	Phase C (serial):   Commit each file in its own transaction.
//
// A feature is keyed by its id ("way/42") or, failing that, by an "@id" or
// "id" property. Features without a usable key or with a geometry that has no
// element representation are skipped with a warning. Errors on individual
// files are collected; the other files are still imported.
func (e *Engine) ImportGeoJSON(ctx context.Context, paths ...string) (int, error) {
	// ---- Phase A: Serial validation ----
	if len(paths) == 0 {
		return 0, fmt.Errorf("import: no files given")
	}
	items := make([]*importItem, 0, len(paths))
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return 0, fmt.Errorf("import %s: %w", path, err)
		}
		if info.IsDir() {
			return 0, fmt.Errorf("import %s: is a directory", path)
		}
		items = append(items, &importItem{path: path, batch: store.NewBatch()})
	}

	// ---- Phase B: Parallel decoding ----
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(e.workers, len(items)))
	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			item.skipped, item.err = e.decodeFile(item.path, item.batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("import: %w", err)
	}

	// ---- Phase C: Serial commit ----
	var errs []error
	imported := 0
	for _, item := range items {
		if item.err != nil {
			errs = append(errs, fmt.Errorf("decode %s: %w", item.path, item.err))
			continue
		}
		if err := e.store.CommitBatch(item.batch); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", item.path, err))
			continue
		}
		imported += item.batch.Len()
		e.log.Info("imported file",
			zap.String("file", item.path),
			zap.Int("entries", item.batch.Len()),
			zap.Int("skipped", item.skipped),
		)
	}

	if len(errs) > 0 {
		for _, err := range errs {
			e.log.Error("import failed", zap.Error(err))
		}
		return imported, fmt.Errorf("import had %d error(s): %w", len(errs), errs[0])
	}
	return imported, nil
}

// decodeFile reads one feature collection into w and returns the number of
// skipped features.
func (e *Engine) decodeFile(path string, w store.GeometryWriter) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read file: %w", err)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return 0, fmt.Errorf("parse geojson: %w", err)
	}

	skipped := 0
	for i, f := range fc.Features {
		key, ok := featureKey(f)
		if !ok {
			e.log.Warn("skipping feature without element id", zap.String("file", path), zap.Int("index", i))
			skipped++
			continue
		}
		g, err := geometry.FromOrb(f.Geometry)
		if err != nil {
			e.log.Warn("skipping feature",
				zap.String("file", path),
				zap.Stringer("key", key),
				zap.Error(err),
			)
			skipped++
			continue
		}
		if err := w.PutGeometry(store.Entry{Key: key, Geometry: g}); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// featureKey finds the element key of f.
func featureKey(f *geojson.Feature) (element.Key, bool) {
	if s, ok := f.ID.(string); ok {
		if k, err := element.ParseKey(s); err == nil {
			return k, true
		}
	}
	for _, prop := range []string{"@id", "id"} {
		s, ok := f.Properties[prop].(string)
		if !ok {
			continue
		}
		if k, err := element.ParseKey(s); err == nil {
			return k, true
		}
	}
	return element.Key{}, false
}
