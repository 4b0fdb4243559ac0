package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// Config holds storage configuration
type Config struct {
	Driver   string // local, minio
	BasePath string // For local storage
	BaseURL  string // Public URL base for local storage

	Endpoint  string // For MinIO
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// New creates the storage selected by cfg.Driver.
func New(ctx context.Context, cfg Config) (ports.FileStorage, error) {
	switch cfg.Driver {
	case "", "local":
		return NewLocalStorage(cfg)
	case "minio":
		return NewMinioStorage(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported storage driver: %s", cfg.Driver)
	}
}

// keyFromRef strips base from a reference returned by Save. ok is false when
// the reference does not belong to this storage.
func keyFromRef(base, ref string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(ref, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(ref, prefix)
	if key == "" || strings.Contains(key, "..") {
		return "", false
	}
	return key, true
}
