package storage

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Debug(string, ...interface{}) {}

// fakeS3 records PUTs and serves a fixed listing
type fakeS3 struct {
	mu      sync.Mutex
	puts    []*http.Request
	bodies  [][]byte
	status  int
	errCode string
	listRaw string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.errCode != "" {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(f.status)
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>`+f.errCode+`</Code><Message>fake</Message><BucketName>media</BucketName><Resource>`+r.URL.Path+`</Resource><RequestId>1</RequestId><HostId>1</HostId></Error>`)
		return
	}

	switch r.Method {
	case http.MethodPut:
		body, _ := io.ReadAll(r.Body)
		if strings.HasPrefix(r.Header.Get("X-Amz-Content-Sha256"), "STREAMING-") {
			decoded, err := decodeAWSChunked(body)
			if err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			body = decoded
		}
		f.puts = append(f.puts, r)
		f.bodies = append(f.bodies, body)
		w.Header().Set("ETag", `"d41d8cd98f00b204e9800998ecf8427e"`)
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		f.listRaw = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/xml")
		io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?>
<ListBucketResult xmlns="http://s3.amazonaws.com/doc/2006-03-01/"><Name>media</Name><Prefix></Prefix><KeyCount>2</KeyCount><MaxKeys>1000</MaxKeys><IsTruncated>false</IsTruncated><Contents><Key>tts/20261016/090000-a.mp3</Key><LastModified>2026-10-16T09:00:00.000Z</LastModified><ETag>&quot;abc&quot;</ETag><Size>1200</Size><StorageClass>STANDARD</StorageClass><UserMetadata><X-Amz-Meta-Recipient>U1</X-Amz-Meta-Recipient><X-Amz-Meta-Kind>tts</X-Amz-Meta-Kind><content-type>audio/mpeg</content-type></UserMetadata></Contents><Contents><Key>tts/20261016/090000-a.mp3.json</Key><LastModified>2026-10-16T09:00:01.000Z</LastModified><ETag>&quot;def&quot;</ETag><Size>80</Size><StorageClass>STANDARD</StorageClass></Contents></ListBucketResult>`)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// decodeAWSChunked strips the aws-chunked framing minio-go uses when it signs
// the payload in streaming mode over plain HTTP:
//
//	<hex size>;chunk-signature=<sig>\r\n<data>\r\n ... 0;chunk-signature=<sig>\r\n
func decodeAWSChunked(framed []byte) ([]byte, error) {
	r := bufio.NewReader(bytes.NewReader(framed))
	var out bytes.Buffer
	for {
		header, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		sizeHex := strings.TrimSpace(strings.SplitN(header, ";", 2)[0])
		size, err := strconv.ParseInt(sizeHex, 16, 64)
		if err != nil {
			return nil, err
		}
		if size == 0 {
			return out.Bytes(), nil
		}
		if _, err := io.CopyN(&out, r, size); err != nil {
			return nil, err
		}
		if _, err := r.Discard(2); err != nil {
			return nil, err
		}
	}
}

func newTestClient(t *testing.T, handler http.Handler, publicURL string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := New(Options{
		Host:      strings.TrimPrefix(srv.URL, "http://"),
		AccessKey: "minioadmin",
		SecretKey: "minioadmin",
		Region:    "us-east-1",
		PublicURL: publicURL,
		Timeout:   5 * time.Second,
	}, nopLogger{})
	require.NoError(t, err)
	return client
}

func TestUpload_SendsContentTypeAndMetadata(t *testing.T) {
	fake := &fakeS3{}
	client := newTestClient(t, fake, "https://cdn.example.com")

	obj, err := client.Upload(context.Background(), "media", "image/20261016/090000-x.png",
		[]byte("png-bytes"), "image/png", map[string]string{"recipient": "U1"})
	require.NoError(t, err)

	assert.Equal(t, "media", obj.Bucket)
	assert.Equal(t, "image/20261016/090000-x.png", obj.Key)
	assert.Equal(t, "d41d8cd98f00b204e9800998ecf8427e", obj.ETag)

	require.Len(t, fake.puts, 1)
	put := fake.puts[0]
	assert.Equal(t, "/media/image/20261016/090000-x.png", put.URL.Path)
	assert.Equal(t, "image/png", put.Header.Get("Content-Type"))
	assert.Equal(t, "U1", put.Header.Get("X-Amz-Meta-Recipient"))
	assert.Equal(t, []byte("png-bytes"), fake.bodies[0])
}

func TestUpload_BucketNotFound(t *testing.T) {
	fake := &fakeS3{status: http.StatusNotFound, errCode: "NoSuchBucket"}
	client := newTestClient(t, fake, "")

	_, err := client.Upload(context.Background(), "media", "tts/a.mp3", []byte("x"), "audio/mpeg", nil)

	var storeErr *StorageError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, KindBucketNotFound, storeErr.Kind)
	assert.Equal(t, "upload", storeErr.Op)
}

func TestUpload_AccessDenied(t *testing.T) {
	fake := &fakeS3{status: http.StatusForbidden, errCode: "AccessDenied"}
	client := newTestClient(t, fake, "")

	_, err := client.Upload(context.Background(), "media", "tts/a.mp3", []byte("x"), "audio/mpeg", nil)

	var storeErr *StorageError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, KindAuth, storeErr.Kind)
}

func TestUpload_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	host := strings.TrimPrefix(srv.URL, "http://")
	srv.Close()

	client, err := New(Options{Host: host, AccessKey: "a", SecretKey: "b", Region: "us-east-1", Timeout: 2 * time.Second}, nopLogger{})
	require.NoError(t, err)

	_, err = client.Upload(context.Background(), "media", "tts/a.mp3", []byte("x"), "audio/mpeg", nil)

	var storeErr *StorageError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, KindConnection, storeErr.Kind)
}

func TestList_ReturnsSummaries(t *testing.T) {
	client := newTestClient(t, &fakeS3{}, "https://cdn.example.com")

	objects, err := client.List(context.Background(), "media")
	require.NoError(t, err)
	require.Len(t, objects, 2)

	assert.Equal(t, "tts/20261016/090000-a.mp3", objects[0].Key)
	assert.Equal(t, int64(1200), objects[0].Size)
	assert.Contains(t, objects[0].ETag, "abc")
	assert.False(t, objects[0].IsDir)

	assert.Equal(t, map[string]string{"recipient": "U1", "kind": "tts"}, objects[0].Metadata)
	assert.Empty(t, objects[1].Metadata)

	url, ok := client.SummaryURL(objects[0])
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/media/tts/20261016/090000-a.mp3", url)
}

func TestPublicURL(t *testing.T) {
	keys := []string{"tts/20261016/090000-a.mp3", "image/x.png", "a b/ü.jpg", "k"}
	buckets := []string{"media", "my-bucket.v2"}

	for _, bucket := range buckets {
		for _, key := range keys {
			obj := &StoredObject{Bucket: bucket, Key: key}

			url, ok := (&Client{publicURL: "https://cdn.example.com"}).PublicURL(obj)
			assert.True(t, ok)
			assert.Equal(t, "https://cdn.example.com/"+bucket+"/"+key, url)

			_, ok = (&Client{}).PublicURL(obj)
			assert.False(t, ok)
		}
	}
}

func TestSummaryURL_DirectoryHasNoURL(t *testing.T) {
	client := &Client{publicURL: "https://cdn.example.com"}
	_, ok := client.SummaryURL(ObjectSummary{Bucket: "media", Key: "tts/", IsDir: true})
	assert.False(t, ok)
}

func TestJoinPublicURL_TrimsBaseSlash(t *testing.T) {
	url, ok := JoinPublicURL("https://cdn.example.com/", "media", "k")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/media/k", url)
}

func TestList_RequestsUserMetadata(t *testing.T) {
	fake := &fakeS3{}
	client := newTestClient(t, fake, "")

	_, err := client.List(context.Background(), "media")
	require.NoError(t, err)

	assert.Contains(t, fake.listRaw, "metadata=true")
}

func TestUserMetadata_KeepsOnlyAmzMeta(t *testing.T) {
	got := userMetadata(map[string]string{
		"X-Amz-Meta-Recipient": "U1",
		"x-amz-meta-kind":      "image",
		"content-type":         "image/png",
	})

	assert.Equal(t, map[string]string{"recipient": "U1", "kind": "image"}, got)
}

func TestNew_DisablesSDKRetries(t *testing.T) {
	newTestClient(t, &fakeS3{}, "")
	assert.Equal(t, 1, minio.MaxRetry)
}

func TestDecodeAWSChunked(t *testing.T) {
	framed := "9;chunk-signature=aaaa\r\npng-bytes\r\n0;chunk-signature=bbbb\r\n\r\n"

	body, err := decodeAWSChunked([]byte(framed))
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), body)
}
