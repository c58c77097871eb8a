package writer

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	appconfig "github.com/archana8teenth/compound-risk-scoring/config"
	"github.com/archana8teenth/compound-risk-scoring/logger"
)

// S3Uploader mirrors the result files to an S3 bucket. Each run uploads
// under a unique run prefix so one run never clobbers another.
type S3Uploader struct {
	config *appconfig.Config
	client *s3.Client
	runID  string
	log    *logger.Log
}

func NewS3Uploader(cfg *appconfig.Config) (*S3Uploader, error) {
	log := logger.GetLogger()
	ctx := context.Background()

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Storage.S3.Region),
	}
	if cfg.Storage.S3.AccessKeyID != "" && cfg.Storage.S3.SecretAccessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(
				cfg.Storage.S3.AccessKeyID,
				cfg.Storage.S3.SecretAccessKey,
				"",
			),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	creds, err := awsCfg.Credentials.Retrieve(ctx)
	if err != nil || !creds.HasKeys() {
		return nil, fmt.Errorf("aws credentials not found")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.S3.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.S3.Endpoint)
		}
		o.UsePathStyle = cfg.Storage.S3.PathStyle
	})

	uploader := &S3Uploader{
		config: cfg,
		client: client,
		runID:  uuid.New().String(),
		log:    log,
	}

	log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"bucket":     cfg.Storage.S3.Bucket,
		"region":     cfg.Storage.S3.Region,
		"endpoint":   cfg.Storage.S3.Endpoint,
		"path_style": cfg.Storage.S3.PathStyle,
		"run_id":     uploader.runID,
	}).Info("s3 uploader initialized")

	return uploader, nil
}

// RunID identifies this upload session.
func (u *S3Uploader) RunID() string { return u.runID }

// Upload stores one result artifact under the run prefix.
func (u *S3Uploader) Upload(ctx context.Context, name string, data []byte, contentType string) error {
	key := path.Join(u.config.Storage.S3.Prefix, u.runID, name)
	log := u.log.WithComponent("s3_uploader").WithFields(logger.Fields{
		"key":  key,
		"size": len(data),
	})

	input := &s3.PutObjectInput{
		Bucket:      aws.String(u.config.Storage.S3.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"riskscore-version": u.config.Riskscore.Version,
			"run-id":            u.runID,
		},
	}

	if _, err := u.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to upload %s to bucket %s: %w", key, u.config.Storage.S3.Bucket, err)
	}

	logger.IncrementS3Upload(int64(len(data)))
	log.Info("uploaded result to S3")
	return nil
}
