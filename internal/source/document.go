package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Document is a tabular file that can be opened for reading.
type Document interface {
	Open(ctx context.Context) (io.ReadCloser, error)
	String() string
}

// File is a document on the local filesystem.
type File struct {
	Path string
}

func (f File) Open(context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

func (f File) String() string { return f.Path }

// HTTP is a document fetched with a GET request. Any non-2xx response is an error.
type HTTP struct {
	URL    string
	Client *http.Client
}

func (h HTTP) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	client := h.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = redactURL(uerr.URL)
		}
		return nil, fmt.Errorf("fetch document: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("fetch document: HTTP %d", resp.StatusCode)
	}
	return resp.Body, nil
}

func (h HTTP) String() string { return redactURL(h.URL) }

// S3Object is a document stored in an S3-compatible bucket.
type S3Object struct {
	Client *s3.Client
	Bucket string
	Key    string
}

func (o S3Object) Open(ctx context.Context) (io.ReadCloser, error) {
	if o.Client == nil {
		return nil, errors.New("s3 client not configured")
	}
	out, err := o.Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(o.Bucket),
		Key:    aws.String(o.Key),
	})
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	return out.Body, nil
}

func (o S3Object) String() string { return "s3://" + o.Bucket + "/" + o.Key }

// Options configures how OpenDocument reaches remote documents.
type Options struct {
	HTTPClient *http.Client
	S3Client   *s3.Client
	S3Region   string
	S3Endpoint string
}

// OpenDocument resolves a location into a Document. Supported forms are a
// local path, file://path, http(s)://... and s3://bucket/key.
func OpenDocument(ctx context.Context, location string, opts Options) (Document, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("empty document location")
	}

	u, err := url.Parse(location)
	if err != nil || u.Scheme == "" || len(u.Scheme) == 1 {
		// Bare paths, including Windows drive letters.
		return File{Path: location}, nil
	}

	switch strings.ToLower(u.Scheme) {
	case "file":
		p := u.Path
		if u.Host != "" {
			p = u.Host + p
		}
		return File{Path: p}, nil
	case "http", "https":
		return HTTP{URL: location, Client: opts.HTTPClient}, nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("s3 location %q must be s3://bucket/key", location)
		}
		client := opts.S3Client
		if client == nil {
			client, err = NewS3Client(ctx, opts.S3Region, opts.S3Endpoint)
			if err != nil {
				return nil, err
			}
		}
		return S3Object{Client: client, Bucket: u.Host, Key: key}, nil
	default:
		return nil, fmt.Errorf("unsupported document scheme %q", u.Scheme)
	}
}

// NewS3Client builds an S3 client from the default AWS credential chain. A
// non-empty endpoint targets an S3-compatible service with path-style addressing.
func NewS3Client(ctx context.Context, region, endpoint string) (*s3.Client, error) {
	if region == "" {
		region = "auto"
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

func documentFormat(doc Document) string {
	name := doc.String()
	if i := strings.IndexAny(name, "?#"); i >= 0 {
		name = name[:i]
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "csv"
	}
}

func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	u.User = nil
	return u.String()
}
