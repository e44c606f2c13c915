// Package claims provides the higher-level claims operations built on the
// request dispatcher: listing, detail reads, document upload and status
// updates, with a short-lived read cache.
package claims

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/claimhub/claimctl/internal/api"
	"github.com/claimhub/claimctl/internal/model"
)

const (
	listCacheKey   = "claims:list"
	claimKeyPrefix = "claims:id:"
)

// Service exposes the claims operations of the backend
type Service struct {
	client        *api.Client
	cache         *gocache.Cache // nil when caching is disabled
	cacheTTL      time.Duration
	uploadTimeout time.Duration
	maxUploadSize int64
	allowedExts   map[string]bool
}

// NewService creates a claims service over the given dispatcher
func NewService(client *api.Client, cfg *model.Config) *Service {
	uploadTimeout := cfg.API.UploadTimeout
	if uploadTimeout == 0 {
		uploadTimeout = 60 * time.Second
	}
	maxUpload := cfg.Upload.MaxSizeBytes
	if maxUpload == 0 {
		maxUpload = 5 * 1024 * 1024
	}

	allowed := make(map[string]bool)
	for _, ext := range cfg.Upload.AllowedExtensions {
		allowed[strings.ToLower(ext)] = true
	}
	if len(allowed) == 0 {
		for _, ext := range []string{".pdf", ".jpg", ".jpeg", ".png"} {
			allowed[ext] = true
		}
	}

	s := &Service{
		client:        client,
		uploadTimeout: uploadTimeout,
		maxUploadSize: maxUpload,
		allowedExts:   allowed,
	}
	if cfg.Cache.Enabled {
		ttl := cfg.Cache.TTL
		if ttl == 0 {
			ttl = 30 * time.Second
		}
		s.cache = gocache.New(ttl, 5*time.Minute)
		s.cacheTTL = ttl
	}
	return s
}

// List fetches all claims for the current user
func (s *Service) List(ctx context.Context) ([]model.RawClaim, error) {
	if s.cache != nil {
		if val, found := s.cache.Get(listCacheKey); found {
			return val.([]model.RawClaim), nil
		}
	}

	payload, err := s.client.Do(ctx, http.MethodGet, "/claims", nil)
	if err != nil {
		return nil, err
	}

	var claims []model.RawClaim
	if err := json.Unmarshal(api.UnwrapData(payload), &claims); err != nil {
		return nil, &api.ServerError{Message: fmt.Sprintf("malformed claims list: %v", err)}
	}

	if s.cache != nil {
		s.cache.Set(listCacheKey, claims, s.cacheTTL)
	}
	return claims, nil
}

// Get fetches one claim by ID
func (s *Service) Get(ctx context.Context, id string) (model.RawClaim, error) {
	if s.cache != nil {
		if val, found := s.cache.Get(claimKeyPrefix + id); found {
			return val.(model.RawClaim), nil
		}
	}

	payload, err := s.client.Do(ctx, http.MethodGet, "/claims/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}

	var claim model.RawClaim
	if err := json.Unmarshal(api.UnwrapData(payload), &claim); err != nil {
		return nil, &api.ServerError{Message: fmt.Sprintf("malformed claim: %v", err)}
	}

	if s.cache != nil {
		s.cache.Set(claimKeyPrefix+id, claim, s.cacheTTL)
	}
	return claim, nil
}

// UpdateStatus moves a claim to one of the enumerated statuses
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (model.RawClaim, error) {
	if !model.KnownStatus(status) {
		return nil, &api.ValidationError{
			Field:   "status",
			Message: fmt.Sprintf("must be one of pending, approved, rejected (got %q)", status),
		}
	}

	var updated model.RawClaim
	err := s.client.DoJSON(ctx, http.MethodPatch, "/claims/"+url.PathEscape(id)+"/status",
		map[string]string{"status": status}, &updated)
	if err != nil {
		return nil, err
	}

	s.invalidateCache(id)
	return updated, nil
}

// Upload submits a claim document for server-side extraction. File type
// and size are validated client-side before any request is sent, and the
// request carries the long upload timeout.
func (s *Service) Upload(ctx context.Context, path string) (*model.UploadResult, error) {
	if err := s.validateDocument(path); err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("document", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("finalize form: %w", err)
	}

	payload, err := s.client.Do(ctx, http.MethodPost, "/claims/upload", &buf,
		api.WithTimeout(s.uploadTimeout),
		api.WithContentType(writer.FormDataContentType()))
	if err != nil {
		return nil, err
	}

	var result model.UploadResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, &api.ServerError{Message: fmt.Sprintf("malformed upload response: %v", err)}
	}
	if !result.Success {
		msg := result.Message
		if msg == "" {
			msg = "upload failed"
		}
		return nil, &api.ServerError{Status: http.StatusOK, Message: msg}
	}

	s.invalidateCache("")
	return &result, nil
}

// validateDocument enforces the upload constraints without touching
// the network
func (s *Service) validateDocument(path string) error {
	ext := strings.ToLower(filepath.Ext(path))
	if !s.allowedExts[ext] {
		return &api.ValidationError{
			Field:   "document",
			Message: "please upload a PDF, JPEG, or PNG file",
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return &api.ValidationError{Field: "document", Message: fmt.Sprintf("cannot read file: %v", err)}
	}
	if info.Size() > s.maxUploadSize {
		return &api.ValidationError{
			Field:   "document",
			Message: fmt.Sprintf("file size must be less than %d bytes", s.maxUploadSize),
		}
	}
	return nil
}

func (s *Service) invalidateCache(id string) {
	if s.cache == nil {
		return
	}
	s.cache.Delete(listCacheKey)
	if id != "" {
		s.cache.Delete(claimKeyPrefix + id)
	}
}
