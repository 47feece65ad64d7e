// Package storage talks to the S3-compatible bucket (Cloudflare R2) that
// holds delivery proof attachments and archived manifests.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"aquagem-backend/internal/config"
)

// ErrDisabled is returned when no bucket is configured.
var ErrDisabled = errors.New("object storage not configured")

// Store is the object storage used by the delivery and report services.
type Store interface {
	PresignPut(ctx context.Context, key, contentType string) (PresignedUpload, error)
	Put(ctx context.Context, key, contentType string, data []byte) (string, error)
}

// PresignedUpload is a time-limited PUT target.
type PresignedUpload struct {
	UploadURL string
	ObjectURL string
	ExpiresAt time.Time
}

// R2Store implements Store on aws-sdk-go-v2.
type R2Store struct {
	client    *s3.Client
	presigner *s3.PresignClient
	bucket    string
	publicURL string
	ttl       time.Duration
}

// NewR2Store builds a client for the configured bucket. It returns
// ErrDisabled when the bucket or credentials are missing.
func NewR2Store(ctx context.Context, cfg config.StorageConfig) (*R2Store, error) {
	if !cfg.Enabled() {
		return nil, ErrDisabled
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKey,
			cfg.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("configure storage client: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = true
	})

	ttl := time.Duration(cfg.PresignTTLMinutes) * time.Minute
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}

	publicURL := strings.TrimRight(cfg.PublicBaseURL, "/")
	if publicURL == "" {
		publicURL = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}

	return &R2Store{
		client:    client,
		presigner: s3.NewPresignClient(client),
		bucket:    cfg.Bucket,
		publicURL: publicURL,
		ttl:       ttl,
	}, nil
}

// PresignPut returns a URL the client can PUT the object to directly.
func (s *R2Store) PresignPut(ctx context.Context, key, contentType string) (PresignedUpload, error) {
	req, err := s.presigner.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, s3.WithPresignExpires(s.ttl))
	if err != nil {
		return PresignedUpload{}, fmt.Errorf("presign %s: %w", key, err)
	}
	return PresignedUpload{
		UploadURL: req.URL,
		ObjectURL: s.ObjectURL(key),
		ExpiresAt: time.Now().Add(s.ttl),
	}, nil
}

// Put uploads data and returns its public URL.
func (s *R2Store) Put(ctx context.Context, key, contentType string, data []byte) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return s.ObjectURL(key), nil
}

// ObjectURL is the public URL of key.
func (s *R2Store) ObjectURL(key string) string {
	return s.publicURL + "/" + key
}

var proofExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ProofKey builds the object key for a delivery proof attachment. kind is
// "photo" or "signature".
func ProofKey(deliveryID int, kind, contentType string) (string, error) {
	if kind != "photo" && kind != "signature" {
		return "", fmt.Errorf("unknown proof kind %q", kind)
	}
	ext, ok := proofExtensions[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported content type %q", contentType)
	}
	return path.Join("proofs", fmt.Sprintf("%d", deliveryID), kind+"-"+uuid.NewString()[:8]+ext), nil
}

// ManifestKey builds the object key for an archived manifest PDF.
func ManifestKey(date string) string {
	return path.Join("manifests", date, "manifest-"+uuid.NewString()[:8]+".pdf")
}
