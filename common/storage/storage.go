// Package storage uploads media to an S3-compatible object store and derives
// public URLs for what it stored.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// minio.MaxRetry is process-wide; one attempt per call so failures surface
// to the caller instead of being retried.
func init() {
	minio.MaxRetry = 1
}

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Options configures a Client
type Options struct {
	Host      string
	AccessKey string
	SecretKey string
	Secure    bool
	Region    string
	PublicURL string
	Timeout   time.Duration
}

// StoredObject is the result of one successful upload
type StoredObject struct {
	Bucket       string    `json:"bucket"`
	Key          string    `json:"key"`
	ETag         string    `json:"etag"`
	Size         int64     `json:"size"`
	VersionID    string    `json:"version_id,omitempty"`
	LastModified time.Time `json:"last_modified,omitempty"`
}

// ObjectSummary describes one listed object
type ObjectSummary struct {
	Bucket       string
	Key          string
	Size         int64
	ETag         string
	LastModified time.Time
	IsDir        bool
	Metadata     map[string]string // user metadata, keys lower-cased without the x-amz-meta- prefix
}

// Client wraps minio.Client with upload, listing and public URL derivation
type Client struct {
	minio     *minio.Client
	publicURL string
	timeout   time.Duration
	logger    Logger
}

// New creates a store client. No network call is made.
func New(opts Options, logger Logger) (*Client, error) {
	logger.Info("initializing object store client",
		"host", opts.Host,
		"access_key", redact(opts.AccessKey),
		"secure", opts.Secure,
	)

	mc, err := minio.New(opts.Host, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, &StorageError{Kind: KindConnection, Op: "connect", Err: err}
	}

	return &Client{
		minio:     mc,
		publicURL: strings.TrimSuffix(opts.PublicURL, "/"),
		timeout:   opts.Timeout,
		logger:    logger,
	}, nil
}

// Upload stores data under bucket/key in a single round trip
func (c *Client) Upload(ctx context.Context, bucket, key string, data []byte, contentType string, metadata map[string]string) (*StoredObject, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	info, err := c.minio.PutObject(ctx, bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  contentType,
		UserMetadata: metadata,
	})
	if err != nil {
		c.logger.Warn("object upload failed", "bucket", bucket, "key", key, "error", err)
		return nil, classify("upload", bucket, key, err)
	}

	c.logger.Info("object uploaded",
		"bucket", info.Bucket,
		"key", info.Key,
		"etag", info.ETag,
		"size", info.Size,
	)

	return &StoredObject{
		Bucket:       info.Bucket,
		Key:          info.Key,
		ETag:         info.ETag,
		Size:         info.Size,
		VersionID:    info.VersionID,
		LastModified: info.LastModified,
	}, nil
}

// List returns every object in bucket
func (c *Client) List(ctx context.Context, bucket string) ([]ObjectSummary, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	var out []ObjectSummary
	for obj := range c.minio.ListObjects(ctx, bucket, minio.ListObjectsOptions{Recursive: true, WithMetadata: true}) {
		if obj.Err != nil {
			return nil, classify("list", bucket, "", obj.Err)
		}
		out = append(out, ObjectSummary{
			Bucket:       bucket,
			Key:          obj.Key,
			Size:         obj.Size,
			ETag:         obj.ETag,
			LastModified: obj.LastModified,
			IsDir:        strings.HasSuffix(obj.Key, "/"),
			Metadata:     userMetadata(obj.UserMetadata),
		})
	}

	c.logger.Debug("listed objects", "bucket", bucket, "count", len(out))
	return out, nil
}

// userMetadata keeps only x-amz-meta-* entries of a listing
func userMetadata(raw map[string]string) map[string]string {
	out := make(map[string]string)
	for k, v := range raw {
		key := strings.ToLower(k)
		if name, ok := strings.CutPrefix(key, "x-amz-meta-"); ok {
			out[name] = v
		}
	}
	return out
}

// PublicURL derives the public URL of a stored object.
// Returns false when no public base URL is configured. Never touches the network.
func (c *Client) PublicURL(obj *StoredObject) (string, bool) {
	return JoinPublicURL(c.publicURL, obj.Bucket, obj.Key)
}

// SummaryURL is PublicURL for listed objects; directories have no URL
func (c *Client) SummaryURL(obj ObjectSummary) (string, bool) {
	if obj.IsDir {
		return "", false
	}
	return JoinPublicURL(c.publicURL, obj.Bucket, obj.Key)
}

// JoinPublicURL returns {base}/{bucket}/{key}, or false when base is empty
func JoinPublicURL(base, bucket, key string) (string, bool) {
	if base == "" {
		return "", false
	}
	return fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(base, "/"), bucket, key), true
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func redact(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "..."
}

// ErrorKind classifies store failures
type ErrorKind string

const (
	KindConnection     ErrorKind = "connection"
	KindAuth           ErrorKind = "auth"
	KindBucketNotFound ErrorKind = "bucket_not_found"
	KindOther          ErrorKind = "other"
)

// StorageError is returned by every failing store call
type StorageError struct {
	Kind   ErrorKind
	Op     string
	Bucket string
	Key    string
	Err    error
}

func (e *StorageError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("storage %s %s/%s failed (%s): %v", e.Op, e.Bucket, e.Key, e.Kind, e.Err)
	}
	return fmt.Sprintf("storage %s %s failed (%s): %v", e.Op, e.Bucket, e.Kind, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func classify(op, bucket, key string, err error) error {
	kind := KindOther
	resp := minio.ToErrorResponse(err)
	switch {
	case resp.Code == "NoSuchBucket":
		kind = KindBucketNotFound
	case resp.Code == "AccessDenied", resp.Code == "InvalidAccessKeyId", resp.Code == "SignatureDoesNotMatch":
		kind = KindAuth
	case resp.Code == "" && !errors.Is(err, context.Canceled):
		// No S3 error document means the request never got a response
		kind = KindConnection
	}
	return &StorageError{Kind: kind, Op: op, Bucket: bucket, Key: key, Err: err}
}
