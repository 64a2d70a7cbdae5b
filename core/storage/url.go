package storage

import (
	"fmt"
	"strings"
)

// URLScheme is the scheme of object references, e.g. s3://bucket/path/to/object.
const URLScheme = "s3://"

// IsURL reports whether ref points into object storage.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, URLScheme)
}

// ParseURL splits an s3://bucket/object reference.
func ParseURL(ref string) (bucket, object string, err error) {
	if !IsURL(ref) {
		return "", "", fmt.Errorf("not an object storage url: %s", ref)
	}
	bucket, object, _ = strings.Cut(strings.TrimPrefix(ref, URLScheme), "/")
	if bucket == "" || object == "" {
		return "", "", fmt.Errorf("object storage url needs a bucket and an object: %s", ref)
	}
	return bucket, object, nil
}
