package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	cfg "github.com/dafibh/fortuna/fortuna-planner/internal/config"
	"github.com/dafibh/fortuna/fortuna-planner/internal/domain"
	"github.com/shopspring/decimal"
)

// maxRateDocumentSize bounds how much of the object is read
const maxRateDocumentSize = 1 << 20

// objectGetter is the part of the S3 client the source uses
type objectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3RateSource reads a TOML rate document from an S3 object
type S3RateSource struct {
	client objectGetter
	bucket string
	key    string
}

var _ domain.RateSource = (*S3RateSource)(nil)

// NewS3RateSource creates an S3 rate source
func NewS3RateSource(ctx context.Context, s3cfg cfg.S3Config) (*S3RateSource, error) {
	// Build AWS config options
	opts := []func(*config.LoadOptions) error{
		config.WithRegion(s3cfg.Region),
	}

	// Add credentials if provided
	if s3cfg.AccessKeyID != "" && s3cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				s3cfg.AccessKeyID,
				s3cfg.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Optional endpoint override for MinIO/LocalStack
	var client *s3.Client
	if s3cfg.Endpoint != "" {
		client = s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(s3cfg.Endpoint)
			o.UsePathStyle = true
		})
	} else {
		client = s3.NewFromConfig(awsCfg)
	}

	return newS3RateSource(client, s3cfg.Bucket, s3cfg.Key), nil
}

func newS3RateSource(client objectGetter, bucket, key string) *S3RateSource {
	return &S3RateSource{client: client, bucket: bucket, key: key}
}

func (s *S3RateSource) Name() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

// Load fetches and parses the object
func (s *S3RateSource) Load(ctx context.Context) (map[string]decimal.Decimal, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to get object: %v", domain.ErrRateSourceUnavailable, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(io.LimitReader(out.Body, maxRateDocumentSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read object: %v", domain.ErrRateSourceUnavailable, err)
	}
	return parseRateDocument(data)
}
