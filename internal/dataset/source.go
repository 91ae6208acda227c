package dataset

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"gocloud.dev/blob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"
)

const defaultUserAgent = "vgsales_dashboard/1.0"

// Open returns a reader for source. http(s) URLs are fetched once without
// retries, file:// and s3:// URLs go through gocloud blob buckets, anything
// else is read from the local filesystem.
func Open(ctx context.Context, source string, opts Options) (io.ReadCloser, error) {
	u, err := url.Parse(source)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Plain paths, including Windows drive letters.
		return os.Open(source)
	}
	switch u.Scheme {
	case "http", "https":
		return openHTTP(ctx, source, opts)
	case "file", "s3":
		return openBlob(ctx, u)
	default:
		return nil, fmt.Errorf("unsupported source scheme: %s", u.Scheme)
	}
}

func openHTTP(ctx context.Context, source string, opts Options) (io.ReadCloser, error) {
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, err
	}
	ua := opts.UserAgent
	if ua == "" {
		ua = defaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	res, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		return nil, fmt.Errorf("dataset request failed: %s", res.Status)
	}
	return res.Body, nil
}

// blobReader closes the bucket together with the object reader.
type blobReader struct {
	*blob.Reader
	bucket *blob.Bucket
}

func (r *blobReader) Close() error {
	err := r.Reader.Close()
	if cerr := r.bucket.Close(); err == nil {
		err = cerr
	}
	return err
}

func openBlob(ctx context.Context, u *url.URL) (io.ReadCloser, error) {
	bucketURL, key := splitBlobURL(u)
	if key == "" {
		return nil, fmt.Errorf("blob source %s has no object key", u.Redacted())
	}
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("open bucket: %w", err)
	}
	r, err := bucket.NewReader(ctx, key, nil)
	if err != nil {
		bucket.Close()
		return nil, fmt.Errorf("open object %s: %w", key, err)
	}
	return &blobReader{Reader: r, bucket: bucket}, nil
}

// splitBlobURL turns "s3://bucket/dir/games.csv?region=x" into
// ("s3://bucket?region=x", "dir/games.csv") and "file:///data/games.csv" into
// ("file:///data", "games.csv").
func splitBlobURL(u *url.URL) (string, string) {
	query := ""
	if u.RawQuery != "" {
		query = "?" + u.RawQuery
	}
	if u.Scheme == "file" {
		dir, key := path.Split(u.Path)
		dir = strings.TrimSuffix(dir, "/")
		if dir == "" {
			dir = "/"
		}
		return "file://" + dir + query, key
	}
	return u.Scheme + "://" + u.Host + query, strings.TrimPrefix(u.Path, "/")
}
