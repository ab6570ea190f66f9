// Package storage archives rendered exports in a blob store.
package storage

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"
)

// Object describes a stored blob.
type Object struct {
	Key       string    `json:"key"`
	Size      int64     `json:"size"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Provider is the interface for export archive backends.
type Provider interface {
	// Put stores data under key, replacing any previous object.
	Put(ctx context.Context, key, contentType string, data []byte) error
	// Get returns the bytes stored under key.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the object under key.
	Delete(ctx context.Context, key string) error
	// List returns objects whose key starts with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)
}

// ExportPrefix is the key prefix shared by all exports of a project.
func ExportPrefix(projectID int64) string {
	return path.Join("exports", fmt.Sprint(projectID)) + "/"
}

// ExportKey returns a fresh archive key for one export of a project.
func ExportKey(projectID int64, ext string) string {
	return ExportPrefix(projectID) + uuid.NewString() + "." + ext
}
