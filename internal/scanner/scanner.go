// Package scanner walks a repository tree, filters out files not worth
// analyzing, and runs the remainder through an Analyzer, either one at a
// time or in bounded concurrent batches. Results are keyed by
// repository-relative path and aggregated into per-scan statistics.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/analysis"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/domain"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/logging"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/metrics"
	"github.com/o2alexanderfedin/RecreateDocsFromRepo-sub000/internal/observability"
)

// ErrInvalidRoot is returned when the scan root does not exist or is not
// a directory.
var ErrInvalidRoot = errors.New("scanner: invalid repository root")

// Scanner runs repository scans. One Scanner may be reused across scans;
// no state carries over between them.
type Scanner struct {
	analyzer         analysis.Analyzer
	exclusions       []string
	maxFileSize      int64
	concurrency      int
	batchSize        int
	priorityPatterns []string
	progress         func(processed, total int)
}

// New builds a Scanner around the given analyzer. A nil analyzer gets an
// uncached TypeAnalyzer.
func New(analyzer analysis.Analyzer, cfg Config) *Scanner {
	if analyzer == nil {
		analyzer = analysis.NewTypeAnalyzer(nil, nil)
	}
	cfg = cfg.withDefaults()
	return &Scanner{
		analyzer:         analyzer,
		exclusions:       cfg.Exclusions,
		maxFileSize:      cfg.MaxFileSize,
		concurrency:      cfg.Concurrency,
		batchSize:        cfg.BatchSize,
		priorityPatterns: cfg.PriorityPatterns,
		progress:         cfg.Progress,
	}
}

// Scan analyzes the repository sequentially. Cancelling the context stops
// the scan between files and returns the partial result together with the
// context's error.
func (s *Scanner) Scan(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "scanner.scan")
	defer span.End()

	res, cands, err := s.begin(root)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(
		observability.AttrScanID.String(res.ScanID),
		observability.AttrRepository.String(res.Repository),
		observability.AttrFileCount.Int(len(cands)),
	)
	log := logging.OpWithTrace(observability.TraceIDs(ctx))

	total := len(cands)
	for i, cand := range cands {
		if cerr := ctx.Err(); cerr != nil {
			s.finish(res, start, false)
			observability.SetSpanError(span, cerr)
			return res, cerr
		}
		rec := s.analyzeOne(ctx, res.ScanID, cand)
		res.Results[cand.rel] = rec
		if rec.IsError() {
			res.Stats.ErrorFiles++
		}
		if s.progress != nil {
			s.progress(i+1, total)
		}
		if (i+1)%10 == 0 || i+1 == total {
			log.Info("scan progress", "scan_id", res.ScanID, "processed", i+1, "total", total)
		}
	}

	s.finish(res, start, true)
	observability.SetSpanOK(span)
	return res, nil
}

// ScanConcurrent analyzes the repository in batches. Batches run strictly
// in candidate order; within a batch every file gets its own goroutine,
// bounded by the concurrency limit. Cancelling the context stops the scan
// between batches and returns the partial result together with the
// context's error.
func (s *Scanner) ScanConcurrent(ctx context.Context, root string) (*Result, error) {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "scanner.scan_concurrent")
	defer span.End()

	res, cands, err := s.begin(root)
	if err != nil {
		observability.SetSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(
		observability.AttrScanID.String(res.ScanID),
		observability.AttrRepository.String(res.Repository),
		observability.AttrFileCount.Int(len(cands)),
		observability.AttrConcurrency.Int(s.concurrency),
	)
	log := logging.OpWithTrace(observability.TraceIDs(ctx))

	sem := semaphore.NewWeighted(int64(s.concurrency))
	total := len(cands)
	processed := 0

	for off := 0; off < total; off += s.batchSize {
		if cerr := ctx.Err(); cerr != nil {
			log.Warn("scan cancelled", "scan_id", res.ScanID, "processed", processed, "total", total)
			s.finish(res, start, false)
			observability.SetSpanError(span, cerr)
			return res, cerr
		}

		end := off + s.batchSize
		if end > total {
			end = total
		}
		batch := cands[off:end]

		bctx, bspan := observability.StartSpan(ctx, "scanner.batch",
			observability.AttrBatchIndex.Int(off/s.batchSize),
			observability.AttrFileCount.Int(len(batch)),
		)
		out := make(chan fileResult, len(batch))
		for _, cand := range batch {
			go func(c candidate) {
				if err := sem.Acquire(bctx, 1); err != nil {
					out <- fileResult{rel: c.rel, rec: domain.ErrorAnalysis(err.Error())}
					return
				}
				defer sem.Release(1)
				out <- fileResult{rel: c.rel, rec: s.analyzeOne(bctx, res.ScanID, c)}
			}(cand)
		}
		// Only the coordinator touches the result map and counters.
		for range batch {
			fr := <-out
			res.Results[fr.rel] = fr.rec
			if fr.rec.IsError() {
				res.Stats.ErrorFiles++
			}
		}
		bspan.End()

		processed += len(batch)
		if s.progress != nil {
			s.progress(processed, total)
		}
		log.Info("scan progress", "scan_id", res.ScanID, "processed", processed, "total", total)
	}

	s.finish(res, start, true)
	observability.SetSpanOK(span)
	return res, nil
}

// fileResult carries one file's record from a worker goroutine back to
// the coordinator.
type fileResult struct {
	rel string
	rec domain.Analysis
}

// begin validates the root, discovers and filters candidates, and opens
// the scan's result. Fails before any analysis work when the root is bad.
func (s *Scanner) begin(root string) (*Result, []candidate, error) {
	absRoot, err := resolveRoot(root)
	if err != nil {
		return nil, nil, err
	}

	scanID := uuid.New().String()
	metrics.Global().RecordScanStarted()
	logging.Op().Info("repository scan started", "scan_id", scanID, "root", absRoot)

	files, err := s.discover(absRoot)
	if err != nil {
		metrics.Global().RecordScanCompleted(0, false)
		return nil, nil, fmt.Errorf("discover files: %w", err)
	}
	logging.Op().Info("discovery finished", "scan_id", scanID, "files", len(files))

	cands, excluded := s.filter(files, absRoot)
	logging.Op().Info("filtering finished", "scan_id", scanID, "candidates", len(cands), "excluded", excluded)
	metrics.Global().RecordExclusions(excluded)

	prioritize(cands)

	res := &Result{
		ScanID:     scanID,
		Repository: absRoot,
		Results:    make(map[string]domain.Analysis, len(cands)),
		Stats: Statistics{
			TotalFiles:    len(files),
			ExcludedFiles: excluded,
			FileTypes:     map[string]int{},
			Languages:     map[string]int{},
		},
	}
	return res, cands, nil
}

// analyzeOne runs a single file through the analyzer. An analyzer error
// becomes a sentinel record; the scan itself never fails for one file.
// Every file leaves one audit log entry.
func (s *Scanner) analyzeOne(ctx context.Context, scanID string, cand candidate) domain.Analysis {
	fileStart := time.Now()
	rec, err := s.analyzer.Analyze(ctx, cand.abs)
	if err != nil {
		logging.Op().Error("file analysis failed", "scan_id", scanID, "path", cand.rel, "error", err)
		rec = domain.ErrorAnalysis(err.Error())
	}
	logging.Default().Log(&logging.FileLog{
		ScanID:     scanID,
		Path:       cand.rel,
		FileType:   string(rec.FileType),
		Language:   rec.Language,
		Confidence: rec.Confidence,
		DurationMs: time.Since(fileStart).Milliseconds(),
		Success:    !rec.IsError(),
		Error:      rec.Error,
	})
	return rec
}

func (s *Scanner) finish(res *Result, start time.Time, completed bool) {
	res.Stats.AnalyzedFiles = len(res.Results)
	res.Stats.ProcessingTime = time.Since(start)
	res.Stats.tally(res.Results)
	logging.Op().Info("repository scan finished",
		"scan_id", res.ScanID,
		"duration_ms", res.Stats.ProcessingTime.Milliseconds(),
		"analyzed", res.Stats.AnalyzedFiles,
		"excluded", res.Stats.ExcludedFiles,
		"errors", res.Stats.ErrorFiles,
		"completed", completed,
	)
	metrics.Global().RecordScanCompleted(res.Stats.ProcessingTime.Milliseconds(), completed)
}

func resolveRoot(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidRoot, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidRoot, abs)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, abs)
	}
	return abs, nil
}
