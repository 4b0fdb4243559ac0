package service

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/farmguardian/farm-guardian/internal/api/metrics"
	"github.com/farmguardian/farm-guardian/internal/core/domain"
	"github.com/farmguardian/farm-guardian/internal/core/ports"
)

// FileKinds maps an accepted MIME type to the extensions a client may use for it.
type FileKinds map[string][]string

var (
	AllowImages = FileKinds{
		"image/jpeg": {".jpg", ".jpeg"},
		"image/png":  {".png"},
	}
	AllowImagesAndPDF = FileKinds{
		"image/jpeg":      {".jpg", ".jpeg"},
		"image/png":       {".png"},
		"application/pdf": {".pdf"},
	}
)

// UploadPolicy checks uploads against a size ceiling and sniffed content
// type, then writes them to storage under random keys.
type UploadPolicy struct {
	storage  ports.FileStorage
	maxBytes int64
	log      zerolog.Logger
}

func NewUploadPolicy(storage ports.FileStorage, maxBytes int64, log zerolog.Logger) *UploadPolicy {
	return &UploadPolicy{storage: storage, maxBytes: maxBytes, log: log}
}

// Check validates size, declared extension and sniffed content of u.
func (p *UploadPolicy) Check(u ports.Upload, kinds FileKinds) error {
	_, err := p.inspect(u, kinds)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(u.Field, "rejected").Inc()
	}
	return err
}

func (p *UploadPolicy) inspect(u ports.Upload, kinds FileKinds) (string, error) {
	if p.maxBytes > 0 && u.Size > p.maxBytes {
		return "", domain.ErrFileTooLarge
	}
	if u.Open == nil {
		return "", domain.ErrUnsupportedFile
	}

	f, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", u.Field, err)
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		return "", fmt.Errorf("sniff upload %s: %w", u.Field, err)
	}

	ext := strings.ToLower(filepath.Ext(u.Filename))
	for accepted, exts := range kinds {
		if !mtype.Is(accepted) {
			continue
		}
		for _, e := range exts {
			if e == ext {
				return accepted, nil
			}
		}
	}
	return "", domain.ErrUnsupportedFile
}

// Store checks u again and saves it as "<prefix>/<field>-<uuid><ext>",
// returning the storage reference.
func (p *UploadPolicy) Store(ctx context.Context, prefix string, u ports.Upload) (string, error) {
	return p.store(ctx, prefix, u, AllowImagesAndPDF)
}

// StoreImage is Store restricted to image content.
func (p *UploadPolicy) StoreImage(ctx context.Context, prefix string, u ports.Upload) (string, error) {
	return p.store(ctx, prefix, u, AllowImages)
}

func (p *UploadPolicy) store(ctx context.Context, prefix string, u ports.Upload, kinds FileKinds) (string, error) {
	contentType, err := p.inspect(u, kinds)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(u.Field, "rejected").Inc()
		return "", domain.NewValidationError(domain.FieldError{Field: u.Field, Message: err.Error()})
	}

	f, err := u.Open()
	if err != nil {
		return "", fmt.Errorf("open upload %s: %w", u.Field, err)
	}
	defer f.Close()

	key := fmt.Sprintf("%s/%s-%s%s", prefix, u.Field, uuid.NewString(), strings.ToLower(filepath.Ext(u.Filename)))
	ref, err := p.storage.Save(ctx, key, io.LimitReader(f, u.Size), u.Size, contentType)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(u.Field, "failed").Inc()
		return "", fmt.Errorf("store upload %s: %w", u.Field, err)
	}

	metrics.UploadsTotal.WithLabelValues(u.Field, "stored").Inc()
	return ref, nil
}

// Discard deletes refs best-effort; failures are only logged.
func (p *UploadPolicy) Discard(ctx context.Context, refs ...string) {
	for _, ref := range refs {
		if ref == "" {
			continue
		}
		if err := p.storage.Delete(ctx, ref); err != nil {
			p.log.Warn().Err(err).Str("ref", ref).Msg("failed to delete stored file")
		}
	}
}
