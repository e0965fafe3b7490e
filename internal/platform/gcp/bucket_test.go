package gcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPublicURL(t *testing.T) {
	cases := []struct {
		name string
		cfg  BucketConfig
		key  string
		want string
	}{
		{"default", BucketConfig{Bucket: "docs"}, "documents/u/a.pdf", "https://storage.googleapis.com/docs/documents/u/a.pdf"},
		{"cdn", BucketConfig{Bucket: "docs", CDNDomain: "cdn.example.com"}, "/documents/u/a.pdf", "https://cdn.example.com/documents/u/a.pdf"},
		{"emulator", BucketConfig{Bucket: "docs", EmulatorHost: "http://localhost:4443/"}, "documents/u/a.pdf",
			"http://localhost:4443/storage/v1/b/docs/o/documents%2Fu%2Fa.pdf?alt=media"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, publicURL(tc.cfg, tc.key))
		})
	}
}

func TestBucketConfigValidate(t *testing.T) {
	assert.Error(t, BucketConfig{}.Validate())
	assert.Error(t, BucketConfig{Bucket: "docs", EmulatorHost: "fake-gcs"}.Validate())
	assert.NoError(t, BucketConfig{Bucket: "docs", EmulatorHost: "http://fake-gcs:4443"}.Validate())
}

func TestContentTypeForKey(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeForKey("a/B.PDF"))
	assert.Equal(t, "image/jpeg", contentTypeForKey("x.jpeg?v=1"))
	assert.Equal(t, "", contentTypeForKey("notes.txt"))
}
