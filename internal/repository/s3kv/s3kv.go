// Package s3kv implements the guestbook backend on an S3-compatible object
// store (MinIO, AWS S3, or anything speaking the S3 API).
//
// STORAGE LAYOUT:
// The entire entry collection is ONE object under ONE fixed key. GetObject
// returns the array (or "no such key" before the first save); PutObject
// overwrites it wholesale. This mirrors the file backend exactly — the
// object store is just a file that lives somewhere else — which is what
// makes transparent fallback between the two possible.
package s3kv

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sakif/guestbook/internal/model"
	"github.com/sakif/guestbook/internal/repository"
)

var _ repository.Backend = (*Backend)(nil)

// objectKey is the fixed key the collection lives under.
const objectKey = "entries.json"

// Config holds the connection settings for the object store.
//
// BaseEndpoint is empty for real AWS and points at the MinIO server
// otherwise (e.g. "http://localhost:9000").
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
	Region          string
	BaseEndpoint    string
}

// Backend persists the entry collection as a single S3 object.
type Backend struct {
	client *s3.Client
	bucket string
}

// New builds an S3 client from static credentials.
//
// WHY STATIC CREDENTIALS INSTEAD OF THE DEFAULT CHAIN?
// The remote store is selected only when the deployment explicitly provides
// the two credential variables, so there is nothing for the default chain
// (instance profiles, shared config files) to discover — and silently
// picking up ambient credentials would make the backend-selection logic in
// main impossible to reason about.
func New(ctx context.Context, cfg Config) (*Backend, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("s3kv: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.BaseEndpoint)
		}
		// MinIO requires path-style addressing (bucket in the path, not the
		// hostname); harmless against real S3 as well.
		o.UsePathStyle = cfg.BaseEndpoint != ""
	})

	return &Backend{client: client, bucket: cfg.Bucket}, nil
}

// Load fetches and decodes the collection object.
// A missing key means nothing has been saved yet — empty collection, no error.
// Every other failure (network, auth, decode) is returned so the fallback
// decorator can route the call to the file backend.
func (b *Backend) Load(ctx context.Context) ([]model.Entry, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		var noKey *types.NoSuchKey
		if errors.As(err, &noKey) {
			return []model.Entry{}, nil
		}
		return nil, fmt.Errorf("s3kv: getting %s: %w", objectKey, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("s3kv: reading %s: %w", objectKey, err)
	}

	entries, err := model.DecodeEntries(data)
	if err != nil {
		return nil, fmt.Errorf("s3kv: %w", err)
	}
	return entries, nil
}

// Save overwrites the collection object.
func (b *Backend) Save(ctx context.Context, entries []model.Entry) error {
	data, err := model.EncodeEntries(entries)
	if err != nil {
		return fmt.Errorf("s3kv: %w", err)
	}

	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(b.bucket),
		Key:         aws.String(objectKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3kv: putting %s: %w", objectKey, err)
	}
	return nil
}
