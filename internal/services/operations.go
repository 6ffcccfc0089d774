package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Lllllllleong/pdftools/internal/gcp"
	"github.com/Lllllllleong/pdftools/internal/models"
	"github.com/Lllllllleong/pdftools/internal/pdfengine"
	"github.com/Lllllllleong/pdftools/internal/render"
	"github.com/Lllllllleong/pdftools/internal/session"
	"github.com/Lllllllleong/pdftools/internal/sources"
)

// maxConcurrentFetches bounds the merge source downloads.
const maxConcurrentFetches = 4

type OperationsConfig struct {
	PdftoppmPath     string
	MaxDownloadBytes int64
	FetchTimeout     time.Duration
}

// OperationsFunction resolves the inputs of a request and runs it on the toolkit.
type OperationsFunction struct {
	toolkit  *Toolkit
	resolver *sources.Resolver
	config   OperationsConfig
}

// LoadOperationsConfig reads the operations settings from the environment.
func LoadOperationsConfig() OperationsConfig {
	return OperationsConfig{
		PdftoppmPath:     gcp.GetEnv("PDFTOPPM_PATH", render.DefaultBinary),
		MaxDownloadBytes: gcp.GetEnvInt64("MAX_DOWNLOAD_BYTES", sources.DefaultMaxBytes),
		FetchTimeout:     gcp.GetEnvDuration("FETCH_TIMEOUT", 60*time.Second),
	}
}

// NewOperations builds the production wiring: pdfcpu, poppler and every remote
// source including GCS.
func NewOperations(ctx context.Context) (*OperationsFunction, error) {
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}
	f := newOperations(LoadOperationsConfig(), storageClient)
	slog.Info("Operations logic initialized.", "pdftoppm", f.config.PdftoppmPath, "maxDownloadBytes", f.config.MaxDownloadBytes)
	return f, nil
}

func newOperations(config OperationsConfig, storageClient *storage.Client) *OperationsFunction {
	httpClient := sources.NewPublicClient(config.FetchTimeout)
	engine := pdfengine.New()
	toolkit := NewToolkit(engine, render.NewPoppler(config.PdftoppmPath, engine))
	resolver := &sources.Resolver{
		URL:     sources.NewURLFetcher(httpClient, config.MaxDownloadBytes),
		Dropbox: sources.NewDropboxFetcher(httpClient, config.MaxDownloadBytes),
		Drive:   sources.NewDriveFetcher(config.MaxDownloadBytes),
		GCS:     sources.NewGCSFetcher(storageClient, config.MaxDownloadBytes),
	}
	return NewOperationsWith(config, toolkit, resolver)
}

// NewOperationsWith assembles an OperationsFunction from existing parts.
func NewOperationsWith(config OperationsConfig, toolkit *Toolkit, resolver *sources.Resolver) *OperationsFunction {
	return &OperationsFunction{toolkit: toolkit, resolver: resolver, config: config}
}

// Process runs one request. Every request gets a fresh session, so calls never
// share a loaded document.
func (f *OperationsFunction) Process(ctx context.Context, req *models.OperationRequest) (*Result, error) {
	logCtx := slog.With("requestId", uuid.NewString(), "operation", req.Operation)
	logCtx.Info("Processing operation request.")
	start := time.Now()

	result, err := f.dispatch(ctx, logCtx, req)
	if err != nil {
		logCtx.Error("Operation failed.", "step", StepOf(err), "error", err)
		return nil, err
	}
	logCtx.Info("Operation complete.",
		"suggestedName", result.SuggestedName,
		"bytes", result.Len(),
		"duration", time.Since(start).String(),
	)
	return result, nil
}

func (f *OperationsFunction) dispatch(ctx context.Context, logCtx *slog.Logger, req *models.OperationRequest) (*Result, error) {
	op := strings.ToLower(strings.TrimSpace(req.Operation))
	switch op {
	case models.OperationMerge:
		files, err := f.fetchAll(ctx, req.Sources)
		if err != nil {
			return nil, err
		}
		var list session.MergeList
		list.Add(files...)
		logCtx.Info("Merge sources resolved.", "count", list.Len())
		return f.toolkit.Merge(ctx, list.Files())
	case models.OperationSplit, models.OperationCompress, models.OperationConvert, models.OperationProtect:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedOperation, req.Operation)
	}

	// A missing confirmation counts as a mismatch.
	if op == models.OperationProtect && ProtectMode(req.Mode) == ProtectAdd &&
		req.ConfirmPassword != req.NewPassword {
		return nil, ErrPasswordMismatch
	}

	s, err := f.load(ctx, logCtx, req.Source)
	if err != nil {
		return nil, err
	}

	switch op {
	case models.OperationSplit:
		return f.toolkit.Split(ctx, s, req.Ranges)
	case models.OperationCompress:
		return f.toolkit.Compress(ctx, s, CompressionLevel(req.Level))
	case models.OperationConvert:
		return f.toolkit.Convert(ctx, s, Format(strings.ToLower(req.Format)))
	default:
		return f.toolkit.Protect(ctx, s, ProtectMode(req.Mode), Passwords{
			New:     req.NewPassword,
			Confirm: req.ConfirmPassword,
			Current: req.CurrentPassword,
		})
	}
}

// load resolves ref into a fresh session. A raw-only load is not an error here;
// the operation decides whether it can work on raw bytes.
func (f *OperationsFunction) load(ctx context.Context, logCtx *slog.Logger, ref *models.SourceRef) (*session.Session, error) {
	if ref == nil {
		return nil, ErrMissingSource
	}
	file, err := f.resolver.Resolve(ctx, *ref)
	if err != nil {
		return nil, err
	}
	s := f.toolkit.NewSession()
	outcome, err := s.Load(file.Data, file.Name)
	if err != nil {
		return nil, err
	}
	logCtx.Info("Source loaded.", "name", s.Read().Name, "bytes", len(file.Data), "outcome", outcome.String())
	return s, nil
}

// fetchAll resolves the merge sources concurrently. The result keeps the order of
// refs.
func (f *OperationsFunction) fetchAll(ctx context.Context, refs []models.SourceRef) ([]session.NamedFile, error) {
	if len(refs) < 2 {
		return nil, ErrNeedTwoFiles
	}
	files := make([]session.NamedFile, len(refs))
	eg, gctx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentFetches)
	for i, ref := range refs {
		eg.Go(func() error {
			file, err := f.resolver.Resolve(gctx, ref)
			if err != nil {
				return fmt.Errorf("source %d: %w", i+1, err)
			}
			name := file.Name
			if name == "" {
				name = fmt.Sprintf("file_%d.pdf", i+1)
			}
			files[i] = session.NamedFile{Name: name, Data: file.Data}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return files, nil
}
