package repository

import (
	"context"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinioKVRepository 每个键存为桶中的一个对象
type MinioKVRepository struct {
	Client *minio.Client
	Bucket string
	Prefix string
}

func NewMinioKVRepository(client *minio.Client, bucket, prefix string) *MinioKVRepository {
	return &MinioKVRepository{Client: client, Bucket: bucket, Prefix: prefix}
}

func (r *MinioKVRepository) object(key string) string {
	return r.Prefix + "kv/" + key + ".json"
}

func isNoSuchKey(err error) bool {
	return minio.ToErrorResponse(err).Code == "NoSuchKey"
}

func (r *MinioKVRepository) Get(ctx context.Context, key string) (string, bool, error) {
	obj, err := r.Client.GetObject(ctx, r.Bucket, r.object(key), minio.GetObjectOptions{})
	if err != nil {
		if isNoSuchKey(err) {
			return "", false, nil
		}
		return "", false, err
	}
	defer obj.Close()

	raw, err := io.ReadAll(obj)
	if err != nil {
		if isNoSuchKey(err) {
			return "", false, nil
		}
		return "", false, err
	}
	return string(raw), true, nil
}

func (r *MinioKVRepository) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}
	_, err := r.Client.PutObject(ctx, r.Bucket, r.object(key), strings.NewReader(value), int64(len(value)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	return err
}

func (r *MinioKVRepository) Delete(ctx context.Context, key string) error {
	return r.Client.RemoveObject(ctx, r.Bucket, r.object(key), minio.RemoveObjectOptions{})
}
