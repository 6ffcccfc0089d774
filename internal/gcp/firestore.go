package gcp

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
)

// NewFirestoreClient opens the Firestore database of projectID that holds the
// job records. The caller owns the client and closes it on shutdown.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, errors.New("firestore: a project ID is required")
	}
	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("firestore: connect to project %s: %w", projectID, err)
	}
	return client, nil
}
