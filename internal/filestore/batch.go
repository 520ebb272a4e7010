package filestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"protekt/pkg/platform/sentinel"
)

// maxParallelUploads bounds concurrent uploads within one batch.
const maxParallelUploads = 4

// UploadAll uploads files concurrently into folder and returns their keys in
// input order. If any upload fails, the objects that did upload are deleted
// before the error is returned.
func UploadAll(ctx context.Context, storage Storage, files []Upload, folder string, logger *slog.Logger) ([]string, error) {
	keys := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)
	for i, file := range files {
		g.Go(func() error {
			key, err := storage.Upload(gctx, file, folder)
			if err != nil {
				return fmt.Errorf("upload %q: %w", file.Name, err)
			}
			keys[i] = key
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		Cleanup(ctx, storage, keys, logger)
		if !errors.Is(err, sentinel.ErrUnavailable) {
			err = fmt.Errorf("%w: %w", sentinel.ErrUnavailable, err)
		}
		return nil, err
	}
	return keys, nil
}

// Cleanup deletes keys on a best-effort basis and returns how many deletes
// failed. It runs on a fresh deadline so a cancelled request still cleans up.
func Cleanup(ctx context.Context, storage Storage, keys []string, logger *slog.Logger) int {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), CleanupTimeout)
	defer cancel()

	failed := 0
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := storage.Delete(ctx, key); err != nil {
			failed++
			if logger != nil {
				logger.WarnContext(ctx, "failed to delete orphaned object",
					"key", key,
					"error", err,
				)
			}
		}
	}
	return failed
}
