package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"filegate/internal/auth"
	"filegate/internal/config"
	"filegate/internal/filekey"
	"filegate/internal/model"
	"filegate/internal/repository"
	"filegate/internal/storage"
)

var (
	ErrFileRequired     = errors.New("file is required")
	ErrFileKeyRequired  = errors.New("fileKey is required")
	ErrFileNameRequired = errors.New("fileName is required for download links")
	ErrAccessDenied     = errors.New("access denied")
)

// SizeLimitError reports an upload exceeding the configured cap.
type SizeLimitError struct {
	Limit int64
}

func (e *SizeLimitError) Error() string {
	return fmt.Sprintf("file exceeds the maximum allowed size of %d MB", e.Limit>>20)
}

// UnsupportedTypeError reports an upload outside the MIME allow-list.
type UnsupportedTypeError struct {
	ContentType string
	Allowed     []string
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("file type %q is not supported; allowed types: %s", e.ContentType, strings.Join(e.Allowed, ", "))
}

// DefaultSignExpiry is the signed-URL lifetime in seconds when the caller does
// not request one.
const DefaultSignExpiry = 3600

// maxSignExpiry is the S3 presign ceiling of seven days.
const maxSignExpiry = 7 * 24 * 3600

// UploadInput carries one validated multipart file plus the verified caller.
// Owner always comes from the session token, never from a client field.
type UploadInput struct {
	Reader      io.Reader
	FileName    string
	ContentType string
	Size        int64
	Owner       auth.Identity
}

// SignInput describes a signed-URL request. Download selects an attachment
// disposition using FileName; otherwise the URL serves the object inline.
type SignInput struct {
	FileKey   string
	FileName  string
	ExpiresIn int
	Download  bool
	Caller    auth.Identity
}

// FileService defines the gateway's three use cases. Every method is
// stateless: all decisions derive from the arguments and the injected
// collaborators, so concurrent requests need no coordination.
type FileService interface {
	// Upload validates the file against the policy, builds a key from the
	// verified owner identity, and stores the object with audit metadata.
	Upload(ctx context.Context, in UploadInput) (*model.Upload, error)

	// Sign issues a fresh time-boxed access URL for a key the caller owns.
	// Idempotent and side-effect-free.
	Sign(ctx context.Context, in SignInput) (*model.SignedLink, error)

	// Delete removes the object and its ownership record after the two-tier
	// ownership check passes.
	Delete(ctx context.Context, fileKey string, caller auth.Identity) error
}

type fileService struct {
	store  storage.Storage
	repo   repository.DocumentRepository
	policy config.UploadConfig
}

// NewFileService constructs a FileService with the given collaborators.
// Zero policy fields fall back to the package defaults.
func NewFileService(store storage.Storage, repo repository.DocumentRepository, policy config.UploadConfig) FileService {
	if policy.MaxSizeBytes <= 0 {
		policy.MaxSizeBytes = config.DefaultMaxUploadSize
	}
	if len(policy.AllowedTypes) == 0 {
		policy.AllowedTypes = config.DefaultAllowedTypes
	}
	return &fileService{store: store, repo: repo, policy: policy}
}

func (s *fileService) Upload(ctx context.Context, in UploadInput) (*model.Upload, error) {
	if in.Reader == nil {
		return nil, ErrFileRequired
	}
	if in.Size > s.policy.MaxSizeBytes {
		return nil, &SizeLimitError{Limit: s.policy.MaxSizeBytes}
	}
	ct := normalizeContentType(in.ContentType)
	if !s.typeAllowed(ct) {
		return nil, &UnsupportedTypeError{ContentType: ct, Allowed: s.policy.AllowedTypes}
	}

	now := time.Now().UTC()
	// The key embeds the verified identity; a client-asserted user id never
	// reaches this point.
	key := filekey.Build(in.Owner.ID, in.FileName, now)

	_, err := s.store.Put(ctx, key, in.Reader, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: ct,
		Metadata: map[string]string{
			"original-filename": in.FileName,
			"uploaded-by":       in.Owner.ID,
			"uploaded-at":       now.Format(time.RFC3339),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	return &model.Upload{
		FileKey:     key,
		FileName:    in.FileName,
		Size:        in.Size,
		ContentType: ct,
	}, nil
}

func (s *fileService) Sign(ctx context.Context, in SignInput) (*model.SignedLink, error) {
	if in.FileKey == "" {
		return nil, ErrFileKeyRequired
	}
	if in.Download && in.FileName == "" {
		return nil, ErrFileNameRequired
	}
	expiry := in.ExpiresIn
	if expiry <= 0 {
		expiry = DefaultSignExpiry
	}
	if expiry > maxSignExpiry {
		expiry = maxSignExpiry
	}

	// Keys are not secret once logged or shared, so Sign applies the same
	// ownership check as Delete.
	if err := s.authorize(ctx, in.FileKey, in.Caller); err != nil {
		return nil, err
	}

	reqParams := url.Values{}
	if in.Download {
		reqParams.Set("response-content-disposition",
			fmt.Sprintf("attachment; filename=%q", filekey.SanitizeName(in.FileName)))
	}

	u, err := s.store.PresignGet(ctx, in.FileKey, time.Duration(expiry)*time.Second, reqParams)
	if err != nil {
		return nil, fmt.Errorf("sign url: %w", err)
	}
	return &model.SignedLink{URL: u, ExpiresIn: expiry}, nil
}

func (s *fileService) Delete(ctx context.Context, fileKey string, caller auth.Identity) error {
	if fileKey == "" {
		return ErrFileKeyRequired
	}
	if err := s.authorize(ctx, fileKey, caller); err != nil {
		return err
	}

	if err := s.store.Delete(ctx, fileKey); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	// Record cleanup happens server-side so callers never end up with a row
	// pointing at a deleted object.
	if err := s.repo.DeleteByFileKey(ctx, fileKey); err != nil {
		return fmt.Errorf("delete document record: %w", err)
	}
	return nil
}

// authorize runs the two-tier ownership check: the owner segment embedded in
// the key first, the relational record second. A key that fails the naming
// convention is neither accepted nor rejected outright; it always falls to
// the record lookup.
func (s *fileService) authorize(ctx context.Context, fileKey string, caller auth.Identity) error {
	if owner, ok := filekey.Owner(fileKey); ok && owner == caller.ID {
		return nil
	}

	doc, err := s.repo.FindByFileKey(ctx, fileKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrAccessDenied
		}
		return fmt.Errorf("lookup document record: %w", err)
	}
	if doc.UploadedBy != caller.ID {
		return ErrAccessDenied
	}
	return nil
}

func (s *fileService) typeAllowed(ct string) bool {
	for _, allowed := range s.policy.AllowedTypes {
		if ct == allowed {
			return true
		}
	}
	return false
}

// normalizeContentType lowercases the media type and strips parameters such
// as charset before matching against the allow-list.
func normalizeContentType(ct string) string {
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return strings.ToLower(strings.TrimSpace(ct))
}
