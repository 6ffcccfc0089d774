package gcp

import (
	"context"
	"testing"
)

func TestNewFirestoreClientRequiresProject(t *testing.T) {
	client, err := NewFirestoreClient(context.Background(), "")
	if err == nil {
		client.Close()
		t.Fatal("NewFirestoreClient with empty project ID succeeded")
	}
}
