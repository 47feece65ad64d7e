package config

import "os"

// StorageConfig points at an S3-compatible bucket (Cloudflare R2 in
// production) used for delivery proof uploads and manifest archives.
type StorageConfig struct {
	Endpoint          string `mapstructure:"endpoint"`
	AccessKey         string `mapstructure:"access_key"`
	SecretKey         string `mapstructure:"secret_key"`
	Bucket            string `mapstructure:"bucket"`
	Region            string `mapstructure:"region"`
	PublicBaseURL     string `mapstructure:"public_base_url"`
	PresignTTLMinutes int    `mapstructure:"presign_ttl_minutes"`
}

// Enabled reports whether enough is configured to talk to the bucket.
func (s StorageConfig) Enabled() bool {
	return s.Bucket != "" && s.AccessKey != "" && s.SecretKey != ""
}

func (s *StorageConfig) applyEnv() {
	if v := os.Getenv("R2_ENDPOINT"); v != "" {
		s.Endpoint = v
	}
	if v := os.Getenv("R2_ACCESS_KEY"); v != "" {
		s.AccessKey = v
	}
	if v := os.Getenv("R2_SECRET_KEY"); v != "" {
		s.SecretKey = v
	}
	if v := os.Getenv("R2_BUCKET"); v != "" {
		s.Bucket = v
	}
	if v := os.Getenv("R2_PUBLIC_BASE_URL"); v != "" {
		s.PublicBaseURL = v
	}
}
