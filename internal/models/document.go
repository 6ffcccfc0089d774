package models

import "time"

// Job statuses stored in Firestore.
const (
	JobRunning   = "RUNNING"
	JobCompleted = "COMPLETED"
	JobFailed    = "FAILED"
)

// Job represents the record of one manifest-driven operation in Firestore.
// It tracks the status and the location of the result.
type Job struct {
	ManifestHash        string    `firestore:"manifestHash,omitempty"`
	ManifestObject      string    `firestore:"manifestObject,omitempty"`
	Operation           string    `firestore:"operation,omitempty"`
	Status              string    `firestore:"status,omitempty"`
	ErrorDetails        string    `firestore:"errorDetails,omitempty"`
	ResultURI           string    `firestore:"resultUri,omitempty"`
	SuggestedName       string    `firestore:"suggestedName,omitempty"`
	ResultBytes         int       `firestore:"resultBytes,omitempty"`
	WorkflowExecutionID string    `firestore:"workflowExecutionId,omitempty"` // For traceability
	CreatedAt           time.Time `firestore:"createdAt,omitempty"`
}
