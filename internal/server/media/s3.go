package media

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	sc "github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Resolver stores uploads in an S3-compatible bucket (MinIO in development)
// and returns path-style public URLs.
type S3Resolver struct {
	config *sc.Config
	clock  clockwork.Clock
}

func NewS3Resolver(config *sc.Config, clock clockwork.Clock) *S3Resolver {
	return &S3Resolver{config: config, clock: clock}
}

// StorageKey returns kind/yyyy/m/d/<uuid><ext> for a file named filename.
func StorageKey(kind Kind, filename string, now time.Time) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("%s/%d/%d/%d/%v%s", kind, now.Year(), now.Month(), now.Day(), uuid.New(), ext)
}

func (r *S3Resolver) getClient(ctx context.Context) (*s3.Client, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(r.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			r.config.S3RootUser,
			r.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(r.config.S3BaseEndpoint)
		o.UsePathStyle = true
	})

	return client, nil
}

// Resolve uploads the file and returns its public URL. No retries are made.
func (r *S3Resolver) Resolve(ctx context.Context, upload *Upload) (string, error) {
	if upload == nil || upload.Body == nil || upload.Size == 0 {
		return "", ErrNoFile
	}

	client, err := r.getClient(ctx)
	if err != nil {
		return "", fmt.Errorf("s3 client: %w", err)
	}

	key := StorageKey(upload.Kind, upload.Filename, r.clock.Now())

	in := &s3.PutObjectInput{
		Bucket:        aws.String(r.config.S3Bucket),
		Key:           aws.String(key),
		Body:          upload.Body,
		ContentLength: aws.Int64(upload.Size),
	}
	if upload.ContentType != "" {
		in.ContentType = aws.String(upload.ContentType)
	}

	if _, err := putObject(client, ctx, in); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return r.publicURL(key), nil
}

func (r *S3Resolver) publicURL(key string) string {
	base := strings.TrimRight(r.config.S3PublicBaseURL, "/")
	return base + "/" + r.config.S3Bucket + "/" + key
}
