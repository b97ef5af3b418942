/*
Copyright (C) 2026 Friends Incode

SPDX-License-Identifier: AGPL-3.0-or-later
*/

package cloudstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// S3Options configure the S3-compatible backend. Endpoint is optional
// and enables MinIO/Spaces style deployments.
type S3Options struct {
	Region          string
	Bucket          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3Store implements Store over an S3 bucket, mapping folders to key
// prefixes.
type S3Store struct {
	client *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewS3Store builds the client. Static credentials are used when given,
// otherwise the default provider chain applies.
func NewS3Store(ctx context.Context, opts S3Options, logger zerolog.Logger) (*S3Store, error) {
	if opts.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(opts.Region),
	}
	if opts.AccessKeyID != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, "")))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
		o.UsePathStyle = opts.UsePathStyle
	})

	return &S3Store{client: client, bucket: opts.Bucket, logger: logger}, nil
}

// folderPrefix normalizes a folder ID into a key prefix ending in "/".
// The empty ID is the bucket root.
func folderPrefix(folderID string) string {
	p := strings.Trim(folderID, "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

// ListChildren lists the entries directly under folderID.
func (s *S3Store) ListChildren(ctx context.Context, folderID string) ([]Child, error) {
	prefix := folderPrefix(folderID)
	var children []Child

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(prefix),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", folderID, err)
		}
		for _, cp := range page.CommonPrefixes {
			id := strings.TrimSuffix(aws.ToString(cp.Prefix), "/")
			children = append(children, Child{ID: id, Name: path.Base(id), Kind: ChildFolder})
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == prefix {
				continue // the folder marker object itself
			}
			children = append(children, Child{ID: key, Name: path.Base(key), Kind: ChildFile})
		}
	}
	return children, nil
}

// CreateFolder writes a zero-byte marker object so empty folders are
// listable.
func (s *S3Store) CreateFolder(ctx context.Context, name, parentID string) (string, error) {
	id := path.Join(strings.Trim(parentID, "/"), name)
	key := folderPrefix(id)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(""),
	})
	if err != nil {
		return "", fmt.Errorf("create folder %q: %w", id, err)
	}
	return id, nil
}

// UploadFile stores a local file under parentID, keyed by its base
// name.
func (s *S3Store) UploadFile(ctx context.Context, filePath, parentID string) (string, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("open %q: %w", filePath, err)
	}
	defer f.Close()

	key := folderPrefix(parentID) + filepath.Base(filePath)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   f,
	})
	if err != nil {
		return "", fmt.Errorf("upload %q: %w", filePath, err)
	}
	s.logger.Debug().Str("key", key).Msg("uploaded")
	return key, nil
}

// DownloadFile fetches an object into destPath via a temp sibling so an
// interrupted download never leaves a truncated file behind.
func (s *S3Store) DownloadFile(ctx context.Context, id, destPath string) error {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	})
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrNotFound, id, err)
	}
	defer out.Body.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return fmt.Errorf("create dest dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".fetch-*")
	if err != nil {
		return err
	}
	if _, err := io.Copy(tmp, out.Body); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("download %q: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), destPath)
}

// ResolveIDFromURL accepts s3://bucket/prefix URLs and https endpoint
// forms (path-style or virtual-hosted) and returns the key prefix. The
// bucket must match the store's configured bucket.
func (s *S3Store) ResolveIDFromURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrNotFound, raw)
	}

	switch u.Scheme {
	case "s3":
		if u.Host != s.bucket {
			return "", fmt.Errorf("%w: bucket %q does not match %q", ErrNotFound, u.Host, s.bucket)
		}
		return strings.Trim(u.Path, "/"), nil
	case "http", "https":
		trimmed := strings.Trim(u.Path, "/")
		if strings.HasPrefix(u.Host, s.bucket+".") {
			// virtual-hosted style
			return trimmed, nil
		}
		if rest, ok := strings.CutPrefix(trimmed, s.bucket+"/"); ok {
			return rest, nil
		}
		if trimmed == s.bucket {
			return "", nil
		}
	}
	return "", fmt.Errorf("%w: cannot resolve %q", ErrNotFound, raw)
}
