package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/joho/godotenv"

	"github.com/Lllllllleong/pdftools/internal/services"
)

var (
	jobsInstance *services.JobsFunction
	once         sync.Once
	initErr      error
)

func init() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Triggered by object finalize events on the manifests bucket.
	functions.CloudEvent("ProcessJobManifest", processJobManifest)
}

// main is required by the Go Functions Framework.
func main() {}

func processJobManifest(ctx context.Context, e cloudevents.Event) error {
	once.Do(func() {
		jobsInstance, initErr = services.NewJobs(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		return initErr
	}

	var gcsEvent services.GCSEvent
	if err := json.Unmarshal(e.Data(), &gcsEvent); err != nil {
		slog.Error("Failed to unmarshal event data", "error", err, "data", string(e.Data()))
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	// A returned error fails the invocation. A redelivered event re-runs the job
	// only if its record was marked FAILED; RUNNING and COMPLETED records are skipped.
	return jobsInstance.Process(ctx, gcsEvent)
}
