package backup

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory transport answering PutObject and ListObjectsV2.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte), types: make(map[string]string)}
}

func (f *fakeS3) RoundTrip(req *http.Request) (*http.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	parts := strings.SplitN(strings.TrimPrefix(req.URL.Path, "/"), "/", 2)
	key := ""
	if len(parts) == 2 {
		key = parts[1]
	}

	switch {
	case req.Method == http.MethodGet && req.URL.Query().Get("list-type") == "2":
		prefix := req.URL.Query().Get("prefix")
		var keys []string
		for k := range f.objects {
			if strings.HasPrefix(k, prefix) {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		var b strings.Builder
		b.WriteString(`<?xml version="1.0"?><ListBucketResult><IsTruncated>false</IsTruncated>`)
		for _, k := range keys {
			fmt.Fprintf(&b, "<Contents><Key>%s</Key><Size>%d</Size></Contents>", k, len(f.objects[k]))
		}
		b.WriteString("</ListBucketResult>")
		return response(http.StatusOK, b.String()), nil
	case req.Method == http.MethodPut:
		body, _ := io.ReadAll(req.Body)
		if dec, ok := decodeChunked(body); ok {
			body = dec
		}
		f.objects[key] = body
		f.types[key] = req.Header.Get("Content-Type")
		return response(http.StatusOK, ""), nil
	}
	return response(http.StatusNotImplemented, ""), nil
}

func response(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": {"application/xml"}},
	}
}

// decodeChunked unwraps a single-chunk aws-chunked payload.
func decodeChunked(b []byte) ([]byte, bool) {
	head, rest, ok := bytes.Cut(b, []byte("\r\n"))
	if !ok {
		return nil, false
	}
	var size int
	if _, err := fmt.Sscanf(string(head), "%x", &size); err != nil || size > len(rest) {
		return nil, false
	}
	if !bytes.HasPrefix(rest[size:], []byte("\r\n0")) {
		return nil, false
	}
	return rest[:size], true
}

func newTestS3(t *testing.T, prefix string) (*S3Store, *fakeS3) {
	t.Helper()
	fake := newFakeS3()
	s, err := NewS3Store(context.Background(), S3Config{
		Bucket:          "curator-backups",
		Prefix:          prefix,
		Endpoint:        "https://mock.s3.local",
		PathStyle:       true,
		AccessKeyID:     "AKIA",
		SecretAccessKey: "SECRET",
	}, func(o *s3.Options) {
		o.HTTPClient = &http.Client{Transport: fake}
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
	})
	require.NoError(t, err)
	return s, fake
}

func TestS3Store_PutAndList(t *testing.T) {
	s, fake := newTestS3(t, "directory")
	ctx := context.Background()

	loc, err := s.Put(ctx, "faculty.20250304T050607Z.json", []byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, "s3://curator-backups/directory/faculty.20250304T050607Z.json", loc)
	assert.Equal(t, []byte(`[]`), fake.objects["directory/faculty.20250304T050607Z.json"])
	assert.Equal(t, "application/json", fake.types["directory/faculty.20250304T050607Z.json"])

	_, err = s.Put(ctx, "term-mappings.v1.0.20250304T050607Z.json", []byte(`{}`))
	require.NoError(t, err)

	keys, err := s.List(ctx, "faculty.")
	require.NoError(t, err)
	assert.Equal(t, []string{"faculty.20250304T050607Z.json"}, keys)
}

func TestS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), S3Config{})
	assert.Error(t, err)
}

func TestS3Store_AsMirror(t *testing.T) {
	s, fake := newTestS3(t, "")
	dir := t.TempDir()
	target := filepath.Join(dir, "faculty.json")
	require.NoError(t, os.WriteFile(target, []byte(`[{"id":"doe-john"}]`), 0o644))

	m := NewManager(NewFSStore(filepath.Join(dir, "backups")), s)
	m.now = func() time.Time { return fixed }
	_, err := m.Backup(context.Background(), target, "")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[{"id":"doe-john"}]`), fake.objects["faculty.20250304T050607Z.json"])
}
