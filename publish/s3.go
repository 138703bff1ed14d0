// Package publish ships finished artifacts to external destinations.
package publish

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"newsreel/types"
)

// S3Config carries the optional overrides for the AWS config chain.
type S3Config struct {
	Bucket       string
	Prefix       string
	Region       string
	UsePathStyle bool
}

// S3Publisher uploads each artifact with a sidecar JSON record so the
// bucket is browsable without the database.
type S3Publisher struct {
	client *s3.Client
	bucket string
	prefix string
}

func NewS3Publisher(ctx context.Context, cfg S3Config) (*S3Publisher, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.UsePathStyle
	})
	return &S3Publisher{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
}

// Publish uploads the video and its metadata record. An artifact already
// present under the same key is skipped.
func (p *S3Publisher) Publish(ctx context.Context, artifact types.VideoArtifact) error {
	key := p.objectKey(artifact)

	exists, err := p.exists(ctx, key)
	if err != nil {
		return fmt.Errorf("head %s: %w", key, err)
	}
	if exists {
		log.Printf("[publish] %s already uploaded, skipping", key)
		return nil
	}

	file, err := os.Open(artifact.Path)
	if err != nil {
		return fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()

	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(key),
		Body:        file,
		ContentType: aws.String("video/mp4"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	record, err := json.Marshal(artifact)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	recordKey := strings.TrimSuffix(key, filepath.Ext(key)) + ".json"
	_, err = p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(p.bucket),
		Key:         aws.String(recordKey),
		Body:        strings.NewReader(string(record)),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", recordKey, err)
	}

	log.Printf("[publish] uploaded s3://%s/%s", p.bucket, key)
	return nil
}

// objectKey keeps the local date/category layout in the bucket.
func (p *S3Publisher) objectKey(artifact types.VideoArtifact) string {
	rel := filepath.ToSlash(artifact.Path)
	if i := strings.Index(rel, "/"); i >= 0 {
		rel = rel[i+1:]
	}
	if p.prefix != "" {
		return strings.TrimSuffix(p.prefix, "/") + "/" + rel
	}
	return rel
}

func (p *S3Publisher) exists(ctx context.Context, key string) (bool, error) {
	_, err := p.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(p.bucket),
		Key:    aws.String(key),
	})
	if err == nil {
		return true, nil
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return false, nil
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
		return false, nil
	}
	return false, err
}
