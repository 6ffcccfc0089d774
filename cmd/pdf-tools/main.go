package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/GoogleCloudPlatform/functions-framework-go/functions"
	"github.com/joho/godotenv"

	"github.com/Lllllllleong/pdftools/internal/gcp"
	"github.com/Lllllllleong/pdftools/internal/models"
	"github.com/Lllllllleong/pdftools/internal/services"
	"github.com/Lllllllleong/pdftools/internal/session"
	"github.com/Lllllllleong/pdftools/internal/sources"
)

// Processor runs one operation request.
type Processor interface {
	Process(ctx context.Context, req *models.OperationRequest) (*services.Result, error)
}

var (
	operationsInstance Processor
	once               sync.Once
	initErr            error
)

func init() {
	// A local .env is optional; deployed functions get real environment variables.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	functions.HTTP("HandlePDFOperation", handlePDFOperation)
}

// main is required by the Go Functions Framework.
func main() {}

func handlePDFOperation(w http.ResponseWriter, r *http.Request) {
	once.Do(func() {
		operationsInstance, initErr = services.NewOperations(context.Background())
	})
	if initErr != nil {
		slog.Error("Critical error during function initialization", "error", initErr)
		http.Error(w, "Internal Server Error: failed to initialize service", http.StatusInternalServerError)
		return
	}
	serve(w, r, operationsInstance)
}

func serve(w http.ResponseWriter, r *http.Request, p Processor) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := gcp.GetEnvInt64("MAX_REQUEST_BYTES", 32<<20)
	var req models.OperationRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit)).Decode(&req); err != nil {
		slog.Error("Could not decode request body", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, services.StepRequest, "request error: the request body is too large")
			return
		}
		writeError(w, http.StatusBadRequest, services.StepRequest, "request error: could not parse JSON")
		return
	}

	res, err := p.Process(r.Context(), &req)
	if err != nil {
		// The specific error is already logged inside the Process method.
		writeError(w, statusFor(err), services.StepOf(err), services.UserMessage(err))
		return
	}

	w.Header().Set("Content-Type", res.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(res.Len()))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.SuggestedName}))
	if _, err := res.WriteTo(w); err != nil {
		slog.Error("Failed to write response", "error", err)
	}
}

// statusFor maps an operation error onto an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, sources.ErrTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, sources.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, session.ErrUnreadable), errors.Is(err, services.ErrMergeInput):
		return http.StatusUnprocessableEntity
	}
	switch services.StepOf(err) {
	case services.StepSecurity:
		return http.StatusForbidden
	case services.StepRequest:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, step services.Step, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := models.ErrorResponse{Status: http.StatusText(status), Step: string(step), Message: message}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Failed to write error response", "error", err)
	}
}
