package models

// These structs define the JSON payloads accepted by the HTTP function and stored
// as job manifests in GCS.

// SourceRef points at one input PDF. Exactly one location field is expected;
// when several are set, Data wins, then GCSUri, DriveFileID, DropboxLink and URL.
type SourceRef struct {
	Name             string `json:"name,omitempty"`
	Data             []byte `json:"data,omitempty"`
	URL              string `json:"url,omitempty"`
	GCSUri           string `json:"gcsUri,omitempty"`
	DriveFileID      string `json:"driveFileId,omitempty"`
	DriveAccessToken string `json:"driveAccessToken,omitempty"`
	DropboxLink      string `json:"dropboxLink,omitempty"`
}

// OperationRequest is the input of one toolkit operation.
type OperationRequest struct {
	Operation string      `json:"operation"`
	Source    *SourceRef  `json:"source,omitempty"`
	Sources   []SourceRef `json:"sources,omitempty"`

	Ranges string `json:"ranges,omitempty"`
	Level  string `json:"level,omitempty"`
	Format string `json:"format,omitempty"`

	Mode            string `json:"mode,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	CurrentPassword string `json:"currentPassword,omitempty"`
}

// Operation names accepted in OperationRequest.Operation.
const (
	OperationSplit    = "split"
	OperationMerge    = "merge"
	OperationCompress = "compress"
	OperationConvert  = "convert"
	OperationProtect  = "protect"
)

// ErrorResponse is the body returned by the HTTP function on failure.
type ErrorResponse struct {
	Status  string `json:"status"`
	Step    string `json:"step"`
	Message string `json:"message"`
}

// JobCompletedPayload is the argument of the post-job workflow execution.
type JobCompletedPayload struct {
	JobID         string `json:"jobId"`
	Operation     string `json:"operation"`
	ResultURI     string `json:"resultUri"`
	SuggestedName string `json:"suggestedName"`
}
