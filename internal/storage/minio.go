package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Config — подключение к S3-совместимому хранилищу.
type Config struct {
	// Endpoint — адрес хранилища, например "s3.us-west-2.amazonaws.com".
	Endpoint string

	// AccessKey, SecretKey — статические credentials.
	AccessKey string
	SecretKey string

	// Region — регион хранилища.
	Region string

	// Bucket — bucket с результатами пайплайна.
	Bucket string

	// UseSSL — использовать TLS.
	UseSSL bool
}

// Validate проверяет обязательные поля конфигурации.
func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("storage endpoint is required")
	}
	if c.Bucket == "" {
		return errors.New("storage bucket is required")
	}
	return nil
}

// MinioStore — реализация Store поверх S3-совместимого хранилища.
type MinioStore struct {
	client *minio.Client
	bucket string
}

// NewMinioStore создаёт MinioStore и проверяет существование bucket.
func NewMinioStore(ctx context.Context, cfg Config) (*MinioStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("new minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("bucket exists %s: %w", cfg.Bucket, err)
	}
	if !exists {
		return nil, fmt.Errorf("bucket missing: %s", cfg.Bucket)
	}

	return &MinioStore{client: client, bucket: cfg.Bucket}, nil
}

// NewMinioStoreWithClient создаёт MinioStore поверх готового клиента.
func NewMinioStoreWithClient(client *minio.Client, bucket string) (*MinioStore, error) {
	if client == nil {
		return nil, errors.New("minio client is required")
	}
	if bucket == "" {
		return nil, errors.New("bucket is required")
	}
	return &MinioStore{client: client, bucket: bucket}, nil
}

// List возвращает ключи объектов под префиксом.
func (s *MinioStore) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string
	objects := s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	})
	for obj := range objects {
		if obj.Err != nil {
			return nil, fmt.Errorf("list %s: %w", prefix, obj.Err)
		}
		keys = append(keys, obj.Key)
	}
	return keys, nil
}

// Exists проверяет существование объекта по точному ключу.
func (s *MinioStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NotFound" {
			return false, nil
		}
		return false, fmt.Errorf("stat %s: %w", key, err)
	}
	return true, nil
}

// DeletePrefix удаляет все объекты под префиксом.
func (s *MinioStore) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	keys, err := s.List(ctx, prefix)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, key := range keys {
		err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
		if err != nil {
			resp := minio.ToErrorResponse(err)
			if resp.Code == "NoSuchKey" {
				continue
			}
			return deleted, fmt.Errorf("remove %s: %w", key, err)
		}
		deleted++
	}
	return deleted, nil
}
