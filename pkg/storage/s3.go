package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3Options configures the S3 driver. Key and Secret select static
// credentials; without them the default AWS chain applies. Endpoint
// switches to path-style addressing for MinIO and friends.
type S3Options struct {
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string
	Prefix   string
}

// objectAPI is the subset of *s3.Client the driver calls.
type objectAPI interface {
	PutObject(context.Context, *s3.PutObjectInput, ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(context.Context, *s3.GetObjectInput, ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(context.Context, *s3.HeadObjectInput, ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(context.Context, *s3.DeleteObjectInput, ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

type s3Disk struct {
	api    objectAPI
	bucket string
	prefix string
}

func NewS3(ctx context.Context, opts S3Options) (Disk, error) {
	if opts.Bucket == "" {
		return nil, errors.New("storage/s3: S3_BUCKET is not configured")
	}
	if opts.Region == "" {
		opts.Region = "us-east-1"
	}

	load := []func(*awscfg.LoadOptions) error{awscfg.WithRegion(opts.Region)}
	if opts.Key != "" && opts.Secret != "" {
		load = append(load, awscfg.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.Key, opts.Secret, ""),
		))
	}
	cfg, err := awscfg.LoadDefaultConfig(ctx, load...)
	if err != nil {
		return nil, fmt.Errorf("storage/s3: load config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		}
	})
	return newS3Disk(client, opts.Bucket, opts.Prefix), nil
}

func newS3Disk(api objectAPI, bucket, prefix string) *s3Disk {
	return &s3Disk{api: api, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

func (d *s3Disk) Driver() string { return "s3" }

func (d *s3Disk) key(p string) *string {
	return aws.String(path.Join(d.prefix, strings.TrimLeft(p, "/")))
}

func (d *s3Disk) Put(ctx context.Context, p string, content []byte) error {
	_, err := d.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         d.key(p),
		Body:        bytes.NewReader(content),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return opError("s3", "put", p, err)
	}
	return nil
}

func (d *s3Disk) Get(ctx context.Context, p string) ([]byte, error) {
	out, err := d.api.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(d.bucket), Key: d.key(p)})
	if err != nil {
		return nil, opError("s3", "get", p, missingObject(err))
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, opError("s3", "read", p, err)
	}
	return data, nil
}

func (d *s3Disk) Stat(ctx context.Context, p string) (time.Time, error) {
	out, err := d.api.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(d.bucket), Key: d.key(p)})
	if err != nil {
		return time.Time{}, opError("s3", "head", p, missingObject(err))
	}
	return aws.ToTime(out.LastModified), nil
}

// Delete is idempotent: S3 answers 204 for absent keys.
func (d *s3Disk) Delete(ctx context.Context, p string) error {
	if _, err := d.api.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(d.bucket), Key: d.key(p)}); err != nil {
		return opError("s3", "delete", p, err)
	}
	return nil
}

func missingObject(err error) error {
	var noKey *types.NoSuchKey
	var notFound *types.NotFound
	if errors.As(err, &noKey) || errors.As(err, &notFound) {
		return ErrNotFound
	}
	return err
}
