// Package fs provides a filesystem-backed claim store on top of afs. It
// offers durability for embedded deployments; the optimistic version check
// lives in the memory store used for live coordination, the fs store is a
// plain last-write persistence surface.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/claimflow/model/claim"
	"github.com/viant/claimflow/service/dao"
	"github.com/viant/claimflow/service/dao/criteria"
)

// Service implements a filesystem-based claim storage.
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

// Ensure Service implements dao.Service
var _ dao.Service[string, claim.Claim] = (*Service)(nil)

// Save persists a claim as a JSON document.
func (s *Service) Save(ctx context.Context, c *claim.Claim) error {
	if c == nil {
		return dao.ErrNilEntity
	}
	if c.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal claim: %w", err)
	}

	filePath := s.claimPath(c.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save claim to file %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a claim from the filesystem.
func (s *Service) Load(ctx context.Context, id string) (*claim.Claim, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.claimPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if claim exists: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read claim file: %w", err)
	}

	var c claim.Claim
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal claim data: %w", err)
	}
	return &c, nil
}

// Delete removes a claim document.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.claimPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if claim exists: %w", err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete claim file: %w", err)
	}
	return nil
}

// List returns all claims from the filesystem, optionally filtered by a
// Status parameter.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*claim.Claim, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list claim files: %w", err)
	}

	var claims []*claim.Claim
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		if !strings.HasSuffix(object.Name(), ".json") {
			continue
		}

		data, err := s.fs.Download(ctx, object)
		if err != nil {
			// Skip unreadable files, keep listing the rest.
			continue
		}

		var c claim.Claim
		if err := json.Unmarshal(data, &c); err != nil {
			continue
		}
		if !criteria.FilterByStatus(string(c.Status), parameters) {
			continue
		}
		claims = append(claims, &c)
	}
	return claims, nil
}

// FindByCaseInstanceID returns the claim correlated to a case instance.
func (s *Service) FindByCaseInstanceID(ctx context.Context, caseInstanceID string) (*claim.Claim, error) {
	if caseInstanceID == "" {
		return nil, dao.ErrInvalidID
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.CaseInstanceID == caseInstanceID {
			return c, nil
		}
	}
	return nil, dao.ErrNotFound
}

// FindByClaimNumber returns the claim with the supplied claim number.
func (s *Service) FindByClaimNumber(ctx context.Context, claimNumber string) (*claim.Claim, error) {
	if claimNumber == "" {
		return nil, dao.ErrInvalidID
	}
	all, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range all {
		if c.ClaimNumber == claimNumber {
			return c, nil
		}
	}
	return nil, dao.ErrNotFound
}

// CountByStatus returns the number of stored claims in the given status.
func (s *Service) CountByStatus(ctx context.Context, status claim.Status) (int, error) {
	all, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, c := range all {
		if c.Status == status {
			count++
		}
	}
	return count, nil
}

// CountCreatedAfter returns the number of claims created after the supplied
// time.
func (s *Service) CountCreatedAfter(ctx context.Context, after time.Time) (int, error) {
	all, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, c := range all {
		if !c.CreatedAt.Before(after) {
			count++
		}
	}
	return count, nil
}

// claimPath returns the file path for a claim document.
func (s *Service) claimPath(id string) string {
	return path.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a new filesystem claim storage service.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	fs := afs.New()

	ctx := context.Background()
	exists, _ := fs.Exists(ctx, basePath)
	if !exists {
		if err := fs.Create(ctx, basePath, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create base directory: %w", err)
		}
	}

	basePath = url.Normalize(basePath, file.Scheme)

	return &Service{
		basePath: basePath,
		fs:       fs,
	}, nil
}
