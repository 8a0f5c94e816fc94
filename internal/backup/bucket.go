// Package backup выгружает снимки базы избранного и плейлистов в S3-совместимое хранилище
package backup

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
)

// Config настройки бакета для резервных копий
type Config struct {
	Region     string
	AccessKey  string
	SecretKey  string
	Endpoint   string
	BucketName string
}

type snapshotPutter interface {
	UploadWithContext(ctx context.Context, input *s3manager.UploadInput, opts ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error)
}

type snapshotIndex interface {
	DeleteObjectWithContext(ctx context.Context, input *s3.DeleteObjectInput, opts ...request.Option) (*s3.DeleteObjectOutput, error)
	ListObjectsV2PagesWithContext(ctx context.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
}

// Bucket хранит снимки базы в одном бакете S3. Реализует Storage.
type Bucket struct {
	putter snapshotPutter
	index  snapshotIndex
	config *Config
}

// NewBucket подключается к бакету резервных копий.
// Для MinIO и других совместимых хранилищ задается Endpoint, тогда адресация идет по пути.
func NewBucket(config *Config) (*Bucket, error) {
	sess, err := openSession(config)
	if err != nil {
		return nil, err
	}
	return &Bucket{
		putter: s3manager.NewUploader(sess),
		index:  s3.New(sess),
		config: config,
	}, nil
}

func openSession(config *Config) (*session.Session, error) {
	awsConfig := aws.NewConfig().
		WithRegion(config.Region).
		WithCredentials(credentials.NewStaticCredentials(config.AccessKey, config.SecretKey, ""))
	if config.Endpoint != "" {
		awsConfig = awsConfig.WithEndpoint(config.Endpoint).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSession(awsConfig)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к хранилищу резервных копий: %w", err)
	}
	return sess, nil
}

// SnapshotURL адрес снимка с ключом key.
// Без Endpoint адрес записывается в виде s3://бакет/ключ.
func (b *Bucket) SnapshotURL(key string) string {
	if b.config.Endpoint == "" {
		return "s3://" + b.config.BucketName + "/" + key
	}
	return strings.TrimRight(b.config.Endpoint, "/") + "/" + b.config.BucketName + "/" + key
}

// UploadFile выгружает снимок под ключом key и возвращает его адрес
func (b *Bucket) UploadFile(ctx context.Context, snapshot io.Reader, key string) (string, error) {
	_, err := b.putter.UploadWithContext(ctx, &s3manager.UploadInput{
		Bucket: aws.String(b.config.BucketName),
		Key:    aws.String(key),
		Body:   snapshot,
	})
	if err != nil {
		return "", fmt.Errorf("ошибка выгрузки снимка %s: %w", key, err)
	}
	return b.SnapshotURL(key), nil
}

// DeleteFile удаляет устаревший снимок
func (b *Bucket) DeleteFile(ctx context.Context, key string) error {
	_, err := b.index.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("ошибка удаления снимка %s: %w", key, err)
	}
	return nil
}

// ListFiles возвращает ключи снимков с префиксом prefix, от старых к новым.
// Имена снимков начинаются с метки времени, поэтому достаточно сортировки строк.
func (b *Bucket) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	err := b.index.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.config.BucketName),
		Prefix: aws.String(prefix),
	}, func(page *s3.ListObjectsV2Output, _ bool) bool {
		for _, object := range page.Contents {
			keys = append(keys, aws.StringValue(object.Key))
		}
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка получения списка снимков: %w", err)
	}
	sort.Strings(keys)
	return keys, nil
}
