package models

import "time"

// HealthResponse is returned by GET health
type HealthResponse struct {
	Timestamp int64 `json:"timestamp"`
}

// VersionResponse is returned by GET version
type VersionResponse struct {
	Version string `json:"version"`
}

// ObjectView is one entry of the diagnostics listing
type ObjectView struct {
	BucketName   string            `json:"bucket_name"`
	ObjectName   string            `json:"object_name"`
	Size         int64             `json:"size"`
	ETag         string            `json:"etag"`
	LastModified *time.Time        `json:"last_modified"`
	IsDir        bool              `json:"is_dir"`
	Metadata     map[string]string `json:"metadata"`
	URL          *string           `json:"url"`
}

// ObjectListResponse is returned by GET v1/storage/objects
type ObjectListResponse struct {
	Objects []ObjectView `json:"objects"`
}
