package cloud

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"pdfcompress/internal/domain/entities"
)

// S3Backend S3-совместимое хранилище
type S3Backend struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3Factory возвращает фабрику подключения к S3. Пустой endpoint означает AWS.
func NewS3Factory(cfg entities.S3Config) BackendFactory {
	return func(ctx context.Context) (Backend, error) {
		if cfg.Bucket == "" {
			return nil, errors.New("не указан bucket S3")
		}

		region := cfg.Region
		if region == "" {
			region = "us-east-1"
		}

		opts := []func(*config.LoadOptions) error{config.WithRegion(region)}
		if cfg.AccessKey != "" && cfg.SecretKey != "" {
			opts = append(opts, config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
				cfg.AccessKey,
				cfg.SecretKey,
				"",
			)))
		}

		awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("ошибка создания конфигурации S3: %w", err)
		}

		client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
			if cfg.Endpoint != "" {
				o.BaseEndpoint = aws.String(cfg.Endpoint)
				o.UsePathStyle = true
			}
		})
		return &S3Backend{client: client, bucket: cfg.Bucket, prefix: cfg.Prefix}, nil
	}
}

// Ping проверяет доступ к bucket
func (b *S3Backend) Ping(ctx context.Context) error {
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(b.bucket)})
	return err
}

// List перечисляет объекты в папке
func (b *S3Backend) List(ctx context.Context, folder string) ([]entities.FileRecord, error) {
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(folderPrefix(b.prefix, folder)),
	})

	var out []entities.FileRecord
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("ошибка листинга S3: %w", err)
		}
		for _, obj := range page.Contents {
			if obj.Key == nil || strings.HasSuffix(*obj.Key, "/") {
				continue
			}
			rec := entities.FileRecord{
				ID:       RecordID(ProviderS3, *obj.Key),
				Name:     path.Base(*obj.Key),
				Size:     aws.ToInt64(obj.Size),
				MimeType: entities.MimePDF,
				Source:   ProviderS3,
			}
			if obj.LastModified != nil {
				rec.CreatedAt = *obj.LastModified
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

// Get читает объект целиком
func (b *S3Backend) Get(ctx context.Context, key string) ([]byte, error) {
	output, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", entities.ErrFileNotFound, key)
		}
		return nil, fmt.Errorf("ошибка получения объекта S3: %w", err)
	}
	defer output.Body.Close()
	return io.ReadAll(output.Body)
}

// Put записывает объект
func (b *S3Backend) Put(ctx context.Context, key, contentType string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("ошибка загрузки в S3: %w", err)
	}
	return nil
}

// Delete удаляет объект
func (b *S3Backend) Delete(ctx context.Context, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления объекта S3: %w", err)
	}
	return nil
}

// Close у клиента S3 нет ресурсов для освобождения
func (b *S3Backend) Close() error {
	return nil
}
