package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/opentracing/opentracing-go"

	"github.com/leadscout/techscan/interfaces"
	"github.com/leadscout/techscan/internal/tracing"
	"github.com/leadscout/techscan/services/storage/aws_client"
)

// objectStorageService archives raw page snapshots in S3-compatible object
// storage.
type objectStorageService struct {
	client     aws_client.S3Client
	bucketName string
	cdnDomain  string
}

type StorageConfig struct {
	BucketName string
	CDNDomain  string
}

func NewStorageService(client aws_client.S3Client, config StorageConfig) interfaces.StorageService {
	return &objectStorageService{
		client:     client,
		bucketName: config.BucketName,
		cdnDomain:  config.CDNDomain,
	}
}

// NewS3StorageService builds a snapshot store on AWS S3.
func NewS3StorageService(awsRegion, accessKeyID, accessKeySecret, bucketName string) interfaces.StorageService {
	client := aws_client.NewS3Client(&aws.Config{
		Region:      aws.String(awsRegion),
		Credentials: credentials.NewStaticCredentials(accessKeyID, accessKeySecret, ""),
	})
	return NewStorageService(client, StorageConfig{BucketName: bucketName})
}

// NewR2StorageService builds a snapshot store on Cloudflare R2.
func NewR2StorageService(accountID, accessKeyID, accessKeySecret, bucketName string) interfaces.StorageService {
	client := aws_client.NewS3Client(&aws.Config{
		Endpoint:         aws.String("https://" + accountID + ".r2.cloudflarestorage.com"),
		Region:           aws.String("auto"),
		Credentials:      credentials.NewStaticCredentials(accessKeyID, accessKeySecret, ""),
		S3ForcePathStyle: aws.Bool(true),
	})
	return NewStorageService(client, StorageConfig{BucketName: bucketName})
}

// SnapshotKey is the storage key for one scan's raw HTML.
func SnapshotKey(domain, scanID string) string {
	return fmt.Sprintf("snapshots/%s/%s.html", domain, scanID)
}

func (s *objectStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("request.key", key)

	return s.client.Upload(ctx, s3manager.UploadInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
}

func (s *objectStorageService) Download(ctx context.Context, key string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Download")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("request.key", key)

	return s.client.Download(ctx, s.bucketName, key)
}

func (s *objectStorageService) Delete(ctx context.Context, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ObjectStorageService.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.LogKV("request.key", key)

	return s.client.Delete(ctx, s.bucketName, key)
}

func (s *objectStorageService) GetPublicURL(key string) string {
	if s.cdnDomain != "" {
		return "https://" + s.cdnDomain + "/" + key
	}
	return ""
}
