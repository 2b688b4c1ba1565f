package storage

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
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
)

// S3 guarda los blobs en un bucket S3 (o compatible, p.ej. MinIO/LocalStack).
// El id devuelto es un nombre opaco; la key real es prefix/id.
type S3 struct {
	client *s3.Client
	bucket string
	prefix string
}

// NewS3 carga la configuración por defecto de AWS (variables de entorno, perfil, rol)
func NewS3(ctx context.Context, bucket, prefix, endpoint string) (*S3, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  cfg.Credentials,
		HTTPClient:   cfg.HTTPClient,
		BaseEndpoint: cfg.BaseEndpoint,
		UsePathStyle: true,
	}
	if endpoint != "" {
		opts.BaseEndpoint = aws.String(endpoint)
	}

	return &S3{
		client: s3.New(opts),
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}, nil
}

func (s *S3) key(id string) string {
	return path.Join(s.prefix, id)
}

func (s *S3) Put(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	if contentType == "" {
		contentType = DetectContentType(data)
	}
	id := uuid.NewString()
	if ext := path.Ext(name); ext != "" {
		id += ext
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(id)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
		ACL:           types.ObjectCannedACLPrivate,
		Metadata:      map[string]string{"filename": name},
	})
	if err != nil {
		return "", fmt.Errorf("uploading %s: %w", name, err)
	}
	return id, nil
}

func (s *S3) Get(ctx context.Context, id string) (*Object, error) {
	if err := s.checkKey(id); err != nil {
		return nil, err
	}
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return nil, ErrNoObject
		}
		return nil, fmt.Errorf("getting %s: %w", id, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", id, err)
	}
	obj := &Object{ID: id, Data: data, ContentType: aws.ToString(out.ContentType)}
	if obj.ContentType == "" || obj.ContentType == "binary/octet-stream" {
		obj.ContentType = DetectContentType(data)
	}
	return obj, nil
}

// Delete borra el objeto. S3 no informa si la key existía, así que se consulta antes.
func (s *S3) Delete(ctx context.Context, id string) error {
	if err := s.checkKey(id); err != nil {
		return err
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		var nf *types.NotFound
		if errors.As(err, &nf) {
			return ErrNoObject
		}
		return fmt.Errorf("checking %s: %w", id, err)
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return fmt.Errorf("deleting %s: %w", id, err)
	}
	return nil
}

func (s *S3) checkKey(id string) error {
	if err := CheckID(id); err != nil {
		return err
	}
	if strings.Contains(id, "/") || strings.Contains(id, "..") {
		return ErrInvalidID
	}
	return nil
}
