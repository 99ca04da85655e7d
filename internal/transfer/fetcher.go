// Package transfer executes reconciliation plans against the remote store
// and the local filesystem.
package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"s3sync/internal/listing"
	"s3sync/internal/localfs"
	"s3sync/internal/models"
	"s3sync/internal/reconcile"
	"s3sync/pkg/utils"
)

var ErrWrongMode = errors.New("plan mode does not match executor")

type ObjectDownloader interface {
	Download(ctx context.Context, key string, w io.WriterAt) (int64, error)
}

// Fetcher downloads the ToFetch entries of a plan. A failed entry is
// reported and the rest of the batch continues.
type Fetcher struct {
	downloader  ObjectDownloader
	storage     *localfs.Storage
	mirrorDir   string
	concurrency int
}

func NewFetcher(downloader ObjectDownloader, storage *localfs.Storage) *Fetcher {
	return &Fetcher{
		downloader:  downloader,
		storage:     storage,
		concurrency: 1,
	}
}

// WithMirror makes the fetcher copy every fetched or reused file to the same
// relative path under dir.
func (f *Fetcher) WithMirror(dir string) *Fetcher {
	f.mirrorDir = dir
	return f
}

// WithConcurrency sets how many objects are downloaded at once.
func (f *Fetcher) WithConcurrency(n int) *Fetcher {
	f.concurrency = max(n, 1)
	return f
}

func (f *Fetcher) Execute(ctx context.Context, plan *reconcile.Plan) (*models.DownloadResult, error) {
	if plan.Mode != reconcile.ModeDownload {
		return nil, ErrWrongMode
	}

	start := time.Now()
	result := newDownloadResult(plan)
	result.MirrorDir = f.mirrorDir

	targets := plan.FetchTargets()
	items := make([]models.DownloadItem, len(targets))

	var eg errgroup.Group
	eg.SetLimit(f.concurrency)
	for i, target := range targets {
		entry := plan.ToFetch[target]
		eg.Go(func() error {
			items[i] = f.fetchItem(ctx, plan.BaseDir, target, entry)
			return nil
		})
	}
	_ = eg.Wait()

	for _, item := range items {
		if item.Status == models.StatusFetched {
			result.TotalSizeBytes += item.Size
		}
		result.add(item)
	}

	runErr := ctx.Err()
	for _, target := range sortedSet(plan.Reused.ToSlice()) {
		item := models.DownloadItem{
			RemotePath: plan.Sources[target],
			LocalPath:  target,
			Status:     models.StatusReused,
		}
		size, err := f.storage.SizeOf(target)
		if err != nil {
			item.Status = models.StatusFailed
			item.Error = fmt.Sprintf("reused file unavailable: %v", err)
			result.add(item)
			continue
		}
		item.Size = size
		if runErr == nil {
			item.MirrorPath = f.mirror(plan.BaseDir, target, &item)
		}
		result.add(item)
	}

	result.addUnresolved(plan)
	result.TotalSizeHuman = utils.FormatBytes(result.TotalSizeBytes)
	result.DownloadDuration = time.Since(start).Round(time.Millisecond).String()

	return result.DownloadResult, runErr
}

func (f *Fetcher) fetchItem(ctx context.Context, baseDir, target string, entry listing.ObjectEntry) models.DownloadItem {
	item := models.DownloadItem{
		RemotePath:   entry.Key,
		LocalPath:    target,
		LastModified: formatModified(entry),
	}

	if err := ctx.Err(); err != nil {
		item.Status = models.StatusSkipped
		item.Error = err.Error()
		return item
	}

	n, err := f.fetch(ctx, entry.Key, target)
	if err != nil {
		slog.Warn("download failed", "key", entry.Key, "path", target, "error", err)
		item.Status = models.StatusFailed
		item.Error = err.Error()
		return item
	}

	slog.Debug("downloaded", "key", entry.Key, "path", target, "bytes", n)
	item.Status = models.StatusFetched
	item.Size = n
	item.MirrorPath = f.mirror(baseDir, target, &item)
	return item
}

// fetch writes the object next to its target and moves it into place once
// the body is complete, so an interrupted download never leaves a file that
// looks finished.
func (f *Fetcher) fetch(ctx context.Context, key, target string) (int64, error) {
	file, err := f.storage.CreateTemp(target)
	if err != nil {
		return 0, err
	}
	part := file.Name()

	n, err := f.downloader.Download(ctx, key, file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = f.storage.Remove(part)
		return 0, err
	}

	if err := f.storage.Rename(part, target); err != nil {
		_ = f.storage.Remove(part)
		return 0, fmt.Errorf("failed to move %s into place: %w", target, err)
	}
	return n, nil
}

// mirror copies target under the mirror root and returns the copy's path.
// A mirror failure is recorded on the item but does not fail it.
func (f *Fetcher) mirror(baseDir, target string, item *models.DownloadItem) string {
	if f.mirrorDir == "" {
		return ""
	}

	rel, err := filepath.Rel(baseDir, target)
	if err != nil {
		item.Error = fmt.Sprintf("mirror: %v", err)
		return ""
	}
	dst := filepath.Join(f.mirrorDir, rel)
	if _, err := f.storage.CopyFile(target, dst); err != nil {
		slog.Warn("mirror copy failed", "path", target, "mirror", dst, "error", err)
		item.Error = fmt.Sprintf("mirror: %v", err)
		return ""
	}
	return dst
}

// Report describes what executing plan would do without touching anything.
func Report(plan *reconcile.Plan) *models.DownloadResult {
	result := newDownloadResult(plan)
	result.DryRun = true

	for _, target := range plan.FetchTargets() {
		entry := plan.ToFetch[target]
		item := models.DownloadItem{
			RemotePath:   entry.Key,
			LocalPath:    target,
			Status:       models.StatusPlanned,
			LastModified: formatModified(entry),
		}
		if entry.Size != nil {
			item.Size = *entry.Size
			result.TotalSizeBytes += *entry.Size
		}
		result.add(item)
	}
	for _, target := range sortedSet(plan.Reused.ToSlice()) {
		result.add(models.DownloadItem{
			RemotePath: plan.Sources[target],
			LocalPath:  target,
			Status:     models.StatusReused,
		})
	}

	result.addUnresolved(plan)
	result.TotalSizeHuman = utils.FormatBytes(result.TotalSizeBytes)
	return result.DownloadResult
}

type downloadResult struct {
	*models.DownloadResult
}

func newDownloadResult(plan *reconcile.Plan) downloadResult {
	return downloadResult{&models.DownloadResult{
		Destination:   plan.BaseDir,
		Items:         []models.DownloadItem{},
		OperationTime: utils.FormatTime(time.Now()),
	}}
}

func (r downloadResult) add(item models.DownloadItem) {
	switch item.Status {
	case models.StatusFetched:
		r.FetchedCount++
	case models.StatusReused:
		r.ReusedCount++
	case models.StatusSkipped:
		r.SkippedCount++
	case models.StatusFailed:
		r.FailedCount++
	}
	r.Items = append(r.Items, item)
}

// addUnresolved appends the skipped targets and the planning failures.
func (r downloadResult) addUnresolved(plan *reconcile.Plan) {
	for _, target := range sortedSet(plan.Skipped.ToSlice()) {
		r.add(models.DownloadItem{
			RemotePath: plan.Sources[target],
			LocalPath:  target,
			Status:     models.StatusSkipped,
		})
	}
	for _, failure := range plan.Failures {
		r.add(models.DownloadItem{
			RemotePath: failure.Key,
			LocalPath:  failure.TargetPath,
			Status:     models.StatusFailed,
			Error:      failure.Err.Error(),
		})
	}
}

func formatModified(entry listing.ObjectEntry) string {
	if entry.LastModified == nil {
		return ""
	}
	return utils.FormatTime(*entry.LastModified)
}

func sortedSet(items []string) []string {
	slices.Sort(items)
	return items
}
