package photos

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds how many files of one selection are decoded at once.
const DefaultWorkers = 4

// File is one raw file from an operator selection.
type File struct {
	Name string
	Data []byte
}

// FileError reports a file of a selection that could not be normalized.
type FileError struct {
	Name string
	Err  error
}

func (e FileError) Error() string {
	return e.Name + ": " + e.Err.Error()
}

func (e FileError) Unwrap() error {
	return e.Err
}

// BatchResult holds the normalized subset of a selection, in selection
// order, and one entry per file that failed.
type BatchResult struct {
	Photos   []Photo
	Failures []FileError
}

// NormalizeAll normalizes every file of a selection concurrently and joins
// the results. A bad file never aborts the batch.
func (n *Normalizer) NormalizeAll(ctx context.Context, files []File, workers int) BatchResult {
	if workers <= 0 {
		workers = DefaultWorkers
	}

	photos := make([]Photo, len(files))
	errs := make([]error, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				errs[i] = err
				return nil
			}
			photos[i], errs[i] = n.Normalize(file.Data)
			return nil
		})
	}
	_ = g.Wait()

	var result BatchResult
	for i, file := range files {
		if errs[i] != nil {
			slog.Warn("Skipping photo that failed to normalize", "file", file.Name, "err", errs[i])
			result.Failures = append(result.Failures, FileError{Name: file.Name, Err: errs[i]})
			continue
		}
		result.Photos = append(result.Photos, photos[i])
	}

	slog.Info("Normalized photo selection", "files", len(files), "ok", len(result.Photos), "failed", len(result.Failures))
	return result
}
