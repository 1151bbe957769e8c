package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	appconfig "expoadmin/config"
	"expoadmin/domain/shared"
	"expoadmin/pkg/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"go.uber.org/zap"
)

// S3API S3 客户端中用到的方法，测试可替换
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store S3 兼容存储（AWS、MinIO、Supabase Storage S3 网关等）
type S3Store struct {
	client   S3API
	bucket   string
	basePath string
	baseURL  string
}

func NewS3Store(ctx context.Context, cfg appconfig.StorageConfig) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage.bucket is required for s3 driver")
	}

	opts := []func(*config.LoadOptions) error{config.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	baseURL := cfg.PublicBaseURL
	if baseURL == "" {
		if cfg.Endpoint != "" {
			baseURL = joinURL(cfg.Endpoint, cfg.Bucket)
		} else {
			baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
		}
	}

	logger.Info("S3 storage configured",
		zap.String("bucket", cfg.Bucket),
		zap.String("region", cfg.Region),
		zap.String("endpoint", cfg.Endpoint),
	)
	return NewS3StoreWithClient(client, cfg.Bucket, cfg.BasePath, baseURL), nil
}

func NewS3StoreWithClient(client S3API, bucket, basePath, baseURL string) *S3Store {
	return &S3Store{
		client:   client,
		bucket:   bucket,
		basePath: strings.Trim(basePath, "/"),
		baseURL:  baseURL,
	}
}

// objectKey 拼接 basePath，S3 对象键不以斜杠开头
func (s *S3Store) objectKey(path string) string {
	path = strings.TrimPrefix(path, "/")
	if s.basePath == "" {
		return path
	}
	return s.basePath + "/" + path
}

func (s *S3Store) Upload(ctx context.Context, file File, folder string) (Object, error) {
	body, contentType, key, err := prepare(file, folder)
	if err != nil {
		return Object{}, err
	}

	// 签名需要可 Seek 的 body，上传大小已由调用方限制
	data, err := io.ReadAll(body)
	if err != nil {
		return Object{}, shared.NewUploadError("failed to read file", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.objectKey(key)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return Object{}, shared.NewUploadError("failed to upload object", err)
	}

	return Object{
		URL:      s.PublicURL(key),
		Path:     key,
		FileName: file.Name,
		Size:     int64(len(data)),
		MimeType: contentType,
	}, nil
}

func (s *S3Store) Remove(ctx context.Context, path string) (bool, error) {
	key := s.objectKey(path)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, shared.NewUploadError("failed to stat object", err)
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		return false, shared.NewUploadError("failed to remove object", err)
	}
	return true, nil
}

func (s *S3Store) PublicURL(path string) string {
	return joinURL(s.baseURL, s.objectKey(path))
}

func (s *S3Store) PathFromURL(url string) (string, bool) {
	key, ok := trimBase(s.baseURL, url)
	if !ok {
		return "", false
	}
	if s.basePath != "" {
		if !strings.HasPrefix(key, s.basePath+"/") {
			return "", false
		}
		key = strings.TrimPrefix(key, s.basePath+"/")
	}
	return key, true
}
