package storage

import (
	"bytes"
	"context"
	"os"
	"path"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
)

const contentTypeJSON = "application/json"

// BlobStore persists named artifacts.
type BlobStore interface {
	Put(ctx context.Context, name string, body []byte) error
}

// LocalStore writes artifacts into a directory, creating it when missing.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

func (s *LocalStore) Put(_ context.Context, name string, body []byte) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create output directory %s", s.dir)
	}

	target := filepath.Join(s.dir, name)

	// write to a temporary file first so readers never see a partial artifact
	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temporary file for %s", target)
	}

	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(body); err != nil {
		tmp.Close()
		return errors.Wrapf(err, "failed to write %s", target)
	}

	if err := tmp.Close(); err != nil {
		return errors.Wrapf(err, "failed to close %s", target)
	}

	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return errors.Wrapf(err, "failed to set permissions of %s", target)
	}

	if err := os.Rename(tmp.Name(), target); err != nil {
		return errors.Wrapf(err, "failed to move artifact to %s", target)
	}

	return nil
}

type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads artifacts below a key prefix of a bucket.
type S3Store struct {
	client PutObjectAPI
	bucket string
	prefix string
}

func NewS3Store(client PutObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// NewDefaultS3Store resolves configuration and credentials through the default AWS chain.
func NewDefaultS3Store(ctx context.Context, bucket, prefix string) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load AWS configuration")
	}

	return NewS3Store(s3.NewFromConfig(cfg), bucket, prefix), nil
}

func (s *S3Store) Put(ctx context.Context, name string, body []byte) error {
	key := path.Join(s.prefix, name)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentTypeJSON),
	})
	if err != nil {
		return errors.Wrapf(err, "failed to upload s3://%s/%s", s.bucket, key)
	}

	return nil
}
