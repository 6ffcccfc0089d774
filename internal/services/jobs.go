package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/storage"
	executions "cloud.google.com/go/workflows/executions/apiv1"
	"cloud.google.com/go/workflows/executions/apiv1/executionspb"

	"github.com/Lllllllleong/pdftools/internal/gcp"
	"github.com/Lllllllleong/pdftools/internal/models"
)

// ManifestSuffix marks the GCS objects the job processor picks up.
const ManifestSuffix = ".job.json"

const maxManifestBytes = 1 << 20

var ErrInvalidManifest = errors.New("invalid job manifest")

type JobsConfig struct {
	ProjectID        string
	ResultsBucket    string
	CollectionName   string
	WorkflowID       string
	WorkflowLocation string
}

// JobsFunction runs operations described by manifests uploaded to GCS and
// records each run in Firestore.
type JobsFunction struct {
	storageClient    *storage.Client
	firestoreClient  *firestore.Client
	executionsClient *executions.Client
	operations       *OperationsFunction
	config           JobsConfig
}

type GCSEvent struct {
	Bucket string `json:"bucket"`
	Name   string `json:"name"`
}

func NewJobs(ctx context.Context) (*JobsFunction, error) {
	projectID := gcp.GetEnv("PROJECT_ID", "")
	if projectID == "" {
		return nil, fmt.Errorf("PROJECT_ID environment variable must be set")
	}

	config := JobsConfig{
		ProjectID:        projectID,
		ResultsBucket:    gcp.GetEnv("RESULTS_BUCKET", ""),
		CollectionName:   gcp.GetEnv("FIRESTORE_COLLECTION", "jobs"),
		WorkflowLocation: gcp.GetEnv("WORKFLOW_LOCATION", "us-central1"),
		WorkflowID:       gcp.GetEnv("WORKFLOW_ID", ""),
	}
	if config.ResultsBucket == "" {
		return nil, fmt.Errorf("RESULTS_BUCKET environment variable must be set")
	}

	firestoreClient, err := gcp.NewFirestoreClient(ctx, config.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create firestore client: %w", err)
	}
	storageClient, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create Storage client: %w", err)
	}

	f := &JobsFunction{
		firestoreClient: firestoreClient,
		storageClient:   storageClient,
		operations:      newOperations(LoadOperationsConfig(), storageClient),
		config:          config,
	}
	if config.WorkflowID != "" {
		f.executionsClient, err = executions.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to create Workflows Executions client: %w", err)
		}
	}
	slog.Info("Job processor logic initialized.", "resultsBucket", config.ResultsBucket, "workflowId", config.WorkflowID)
	return f, nil
}

// IsJobManifest reports whether a GCS object name is a job manifest.
func IsJobManifest(name string) bool {
	return strings.HasSuffix(name, ManifestSuffix)
}

// ResultObjectName is the object the result of job jobID is stored under.
func ResultObjectName(jobID, suggestedName string) string {
	return path.Join(jobID, path.Base(suggestedName))
}

// ParseManifest decodes a job manifest.
func ParseManifest(data []byte) (*models.OperationRequest, error) {
	var req models.OperationRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidManifest, err)
	}
	if strings.TrimSpace(req.Operation) == "" {
		return nil, fmt.Errorf("%w: operation is required", ErrInvalidManifest)
	}
	return &req, nil
}

func (f *JobsFunction) Process(ctx context.Context, e GCSEvent) error {
	logCtx := slog.With("gcsBucket", e.Bucket, "gcsObject", e.Name)
	if !IsJobManifest(e.Name) {
		logCtx.Info("Object is not a job manifest. Skipping.")
		return nil
	}
	logCtx.Info("Processing new job manifest.")

	manifest, err := f.readManifest(ctx, e.Bucket, e.Name)
	if err != nil {
		logCtx.Error("Failed to download job manifest", "error", err)
		return err
	}

	manifestHash := hashBytes(manifest)
	logCtx = logCtx.With("manifestHash", manifestHash)

	existing, err := f.findJob(ctx, manifestHash)
	if err != nil {
		logCtx.Error("Failed to look up an existing job", "error", err)
		return err
	}
	if existing != nil && !Rerunnable(existing.status) {
		logCtx.Info("Manifest already handled. Skipping.", "existingJobId", existing.ref.ID, "status", existing.status)
		return nil
	}

	req, parseErr := ParseManifest(manifest)
	operation := ""
	if req != nil {
		operation = req.Operation
	}

	var docRef *firestore.DocumentRef
	if existing != nil {
		docRef = existing.ref
		if err := f.setStatus(ctx, docRef, models.JobRunning, firestore.Update{Path: "errorDetails", Value: firestore.Delete}); err != nil {
			logCtx.Error("Failed to restart job record in Firestore", "error", err)
			return err
		}
		logCtx = logCtx.With("jobId", docRef.ID)
		logCtx.Info("Re-running failed job.")
	} else {
		docRef, err = f.createJob(ctx, manifestHash, e, operation)
		if err != nil {
			logCtx.Error("Failed to create job record in Firestore", "error", err)
			return err
		}
		logCtx = logCtx.With("jobId", docRef.ID)
		logCtx.Info("Created job record in Firestore.")
	}

	if parseErr != nil {
		return f.handleError(ctx, logCtx, docRef, "failed to parse job manifest", parseErr)
	}

	result, err := f.operations.Process(ctx, req)
	if err != nil {
		return f.handleError(ctx, logCtx, docRef, UserMessage(err), err)
	}

	objectName := ResultObjectName(docRef.ID, result.SuggestedName)
	if err := f.saveResult(ctx, logCtx, objectName, result); err != nil {
		return f.handleError(ctx, logCtx, docRef, "failed to save job result", err)
	}
	resultURI := fmt.Sprintf("gs://%s/%s", f.config.ResultsBucket, objectName)
	logCtx.Info("Job result saved.", "resultUri", resultURI, "bytes", result.Len())

	updates := []firestore.Update{
		{Path: "resultUri", Value: resultURI},
		{Path: "suggestedName", Value: result.SuggestedName},
		{Path: "resultBytes", Value: result.Len()},
	}
	if f.executionsClient != nil {
		executionID, err := f.triggerWorkflow(ctx, models.JobCompletedPayload{
			JobID:         docRef.ID,
			Operation:     req.Operation,
			ResultURI:     resultURI,
			SuggestedName: result.SuggestedName,
		})
		if err != nil {
			return f.handleError(ctx, logCtx, docRef, "failed to trigger workflow execution", err)
		}
		updates = append(updates, firestore.Update{Path: "workflowExecutionId", Value: executionID})
		logCtx.Info("Triggered workflow.", "executionId", executionID)
	}
	if err := f.setStatus(ctx, docRef, models.JobCompleted, updates...); err != nil {
		return f.handleError(ctx, logCtx, docRef, "failed to update status to COMPLETED", err)
	}

	logCtx.Info("Job complete.")
	return nil
}

func (f *JobsFunction) readManifest(ctx context.Context, bucket, object string) ([]byte, error) {
	reader, err := f.storageClient.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get GCS object reader for gs://%s/%s: %w", bucket, object, err)
	}
	defer reader.Close()
	data, err := io.ReadAll(io.LimitReader(reader, maxManifestBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read job manifest: %w", err)
	}
	if len(data) > maxManifestBytes {
		return nil, fmt.Errorf("%w: manifest exceeds %d bytes", ErrInvalidManifest, maxManifestBytes)
	}
	return data, nil
}

// saveResult retries the conditional write; an object left by an earlier attempt
// counts as written.
func (f *JobsFunction) saveResult(ctx context.Context, logCtx *slog.Logger, objectName string, result *Result) error {
	const maxRetries = 4
	backoff := 1 * time.Second
	bucket := f.storageClient.Bucket(f.config.ResultsBucket)

	var lastErr error
	for i := 0; i < maxRetries; i++ {
		writeCtx, cancel := context.WithTimeout(ctx, 50*time.Second)
		err := gcp.SaveToGCSAtomically(writeCtx, bucket, objectName, result.Payload, result.ContentType)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		logCtx.Warn("Upload failed, will retry.",
			"gcsObject", objectName,
			"attempt", i+1,
			"maxRetries", maxRetries,
			"backoff", backoff.String(),
			"error", err,
		)
		select {
		case <-time.After(backoff):
			backoff *= 2
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("upload for %s failed after all retries: %w", objectName, lastErr)
}

// existingJob is the job record already stored for a manifest hash.
type existingJob struct {
	ref    *firestore.DocumentRef
	status string
}

// Rerunnable reports whether a job found for the same manifest may run again.
// Only FAILED jobs do; RUNNING and COMPLETED records are left alone.
func Rerunnable(status string) bool {
	return status == models.JobFailed
}

func (f *JobsFunction) findJob(ctx context.Context, manifestHash string) (*existingJob, error) {
	docs, err := f.firestoreClient.Collection(f.config.CollectionName).
		Where("manifestHash", "==", manifestHash).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs by manifest hash: %w", err)
	}
	if len(docs) == 0 {
		return nil, nil
	}
	var job models.Job
	if err := docs[0].DataTo(&job); err != nil {
		return nil, fmt.Errorf("failed to decode job %s: %w", docs[0].Ref.ID, err)
	}
	return &existingJob{ref: docs[0].Ref, status: job.Status}, nil
}

func (f *JobsFunction) createJob(ctx context.Context, manifestHash string, e GCSEvent, operation string) (*firestore.DocumentRef, error) {
	job := models.Job{
		ManifestHash:   manifestHash,
		ManifestObject: fmt.Sprintf("gs://%s/%s", e.Bucket, e.Name),
		Operation:      operation,
		Status:         models.JobRunning,
		CreatedAt:      time.Now(),
	}
	docRef, _, err := f.firestoreClient.Collection(f.config.CollectionName).Add(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("failed to create job record: %w", err)
	}
	return docRef, nil
}

func (f *JobsFunction) triggerWorkflow(ctx context.Context, payload models.JobCompletedPayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to marshal workflow payload: %w", err)
	}
	req := &executionspb.CreateExecutionRequest{
		Parent: fmt.Sprintf("projects/%s/locations/%s/workflows/%s", f.config.ProjectID, f.config.WorkflowLocation, f.config.WorkflowID),
		Execution: &executionspb.Execution{
			Argument: string(payloadBytes),
		},
	}
	execution, err := f.executionsClient.CreateExecution(ctx, req)
	if err != nil {
		return "", err
	}
	return execution.GetName(), nil
}

// handleError marks the job FAILED with the error text and returns the error.
// A failure to record the status is logged; the processing error still wins.
func (f *JobsFunction) handleError(ctx context.Context, logCtx *slog.Logger, docRef *firestore.DocumentRef, message string, cause error) error {
	jobErr := fmt.Errorf("%s: %w", message, cause)
	logCtx.Error(message, "error", cause)
	if err := f.setStatus(ctx, docRef, models.JobFailed, firestore.Update{Path: "errorDetails", Value: jobErr.Error()}); err != nil {
		logCtx.Error("CRITICAL: Failed to mark job FAILED after a processing error.", "updateError", err)
	}
	return jobErr
}

func (f *JobsFunction) setStatus(ctx context.Context, docRef *firestore.DocumentRef, status string, extra ...firestore.Update) error {
	updates := append([]firestore.Update{{Path: "status", Value: status}}, extra...)
	_, err := docRef.Update(ctx, updates)
	return err
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
