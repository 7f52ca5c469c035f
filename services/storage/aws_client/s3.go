package aws_client

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/opentracing/opentracing-go"

	"github.com/leadscout/techscan/internal/tracing"
)

type S3Client interface {
	Upload(ctx context.Context, uploadContainer s3manager.UploadInput) error
	Download(ctx context.Context, bucket, key string) ([]byte, error)
	Delete(ctx context.Context, bucket, key string) error
	ListKeys(ctx context.Context, bucket, prefix string) ([]string, error)
}

type s3Client struct {
	uploader   *s3manager.Uploader
	downloader *s3manager.Downloader
	session    *session.Session
}

func NewS3Client(config *aws.Config) S3Client {
	s := session.Must(session.NewSession(config))
	return &s3Client{
		uploader:   s3manager.NewUploader(s),
		downloader: s3manager.NewDownloader(s),
		session:    s,
	}
}

func (s *s3Client) Upload(ctx context.Context, uploadContainer s3manager.UploadInput) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "s3Client.Upload")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	_, err := s.uploader.Upload(&uploadContainer)
	return err
}

func (s *s3Client) Download(ctx context.Context, bucket, key string) ([]byte, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "s3Client.Download")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	buffer := &aws.WriteAtBuffer{}
	_, err := s.downloader.Download(buffer,
		&s3.GetObjectInput{
			Bucket: aws.String(bucket),
			Key:    aws.String(key),
		})
	if err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func (s *s3Client) Delete(ctx context.Context, bucket, key string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "s3Client.Delete")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	svc := s3.New(s.session)
	_, err := svc.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

func (s *s3Client) ListKeys(ctx context.Context, bucket, prefix string) ([]string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "s3Client.ListKeys")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	svc := s3.New(s.session)

	var keys []string
	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	}
	err := svc.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, object := range page.Contents {
			keys = append(keys, aws.StringValue(object.Key))
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
