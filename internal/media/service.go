package media

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/rvanstaden/huisvind-backend/internal/access"
	"github.com/rvanstaden/huisvind-backend/internal/properties"
	"github.com/rvanstaden/huisvind-backend/pkg/db/models"
	pkgerrors "github.com/rvanstaden/huisvind-backend/pkg/errors"
)

const maxUploadBytes = 10 * 1024 * 1024

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp"}

type listingService interface {
	GetByID(ctx context.Context, id string) (*properties.Property, error)
	Update(ctx context.Context, actor *models.UserProfile, id string, patch properties.UpdateInput) (*properties.Property, error)
}

type blobStore interface {
	UploadObject(ctx context.Context, bucket, object, contentType string, data []byte) (string, error)
	DeleteObject(ctx context.Context, bucket, object string) error
	SignedURL(bucket, object, contentType string, expires time.Duration) (string, error)
}

// Service manages the image gallery attached to a listing. Every mutation
// goes through the listing write path, which owns the permission rules.
type Service interface {
	UploadListingImage(ctx context.Context, actor *models.UserProfile, propertyID string, input UploadInput) (*properties.Property, error)
	RemoveListingImage(ctx context.Context, actor *models.UserProfile, propertyID, imageURL string) (*properties.Property, error)
	PresignListingImage(ctx context.Context, actor *models.UserProfile, propertyID string, input PresignInput) (*PresignOutput, error)
}

type service struct {
	listings  listingService
	store     blobStore
	bucket    string
	uploadTTL time.Duration
}

func NewService(listings listingService, store blobStore, bucket string, uploadTTL time.Duration) (Service, error) {
	if listings == nil {
		return nil, fmt.Errorf("listing service required")
	}
	if store == nil {
		return nil, fmt.Errorf("blob store required")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket required")
	}
	if uploadTTL <= 0 {
		return nil, fmt.Errorf("upload ttl must be positive")
	}
	return &service{listings: listings, store: store, bucket: bucket, uploadTTL: uploadTTL}, nil
}

// UploadInput carries one image payload.
type UploadInput struct {
	FileName    string
	ContentType string
	Data        []byte
}

// PresignInput requests a signed PUT URL for a client-side upload.
type PresignInput struct {
	FileName    string
	ContentType string
}

// PresignOutput is handed to the client to complete the upload itself.
type PresignOutput struct {
	ObjectKey    string    `json:"object_key"`
	SignedPUTURL string    `json:"signed_put_url"`
	PublicURL    string    `json:"public_url"`
	ContentType  string    `json:"content_type"`
	ExpiresAt    time.Time `json:"expires_at"`
}

func (s *service) UploadListingImage(ctx context.Context, actor *models.UserProfile, propertyID string, input UploadInput) (*properties.Property, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to manage listing images")
	}
	if err := validateImage(input.FileName, input.ContentType); err != nil {
		return nil, err
	}
	if len(input.Data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image data is required")
	}
	if len(input.Data) > maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("image must be at most %d bytes", maxUploadBytes))
	}

	listing, err := s.loadManaged(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}

	key := buildObjectKey(listing.ID, input.FileName)
	publicURL, err := s.store.UploadObject(ctx, s.bucket, key, input.ContentType, input.Data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "upload image")
	}

	images := append(append([]string{}, listing.Images...), publicURL)
	updated, err := s.listings.Update(ctx, actor, propertyID, properties.UpdateInput{Images: &images})
	if err != nil {
		// The listing row stayed consistent; only the blob is orphaned.
		_ = s.store.DeleteObject(ctx, s.bucket, key)
		return nil, err
	}
	return updated, nil
}

func (s *service) RemoveListingImage(ctx context.Context, actor *models.UserProfile, propertyID, imageURL string) (*properties.Property, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to manage listing images")
	}
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "image url is required")
	}

	listing, err := s.loadManaged(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}

	images := make([]string, 0, len(listing.Images))
	found := false
	for _, existing := range listing.Images {
		if existing == imageURL {
			found = true
			continue
		}
		images = append(images, existing)
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "image not attached to this listing")
	}

	updated, err := s.listings.Update(ctx, actor, propertyID, properties.UpdateInput{Images: &images})
	if err != nil {
		return nil, err
	}

	if key := s.objectKeyFromURL(imageURL); key != "" {
		if err := s.store.DeleteObject(ctx, s.bucket, key); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete image object")
		}
	}
	return updated, nil
}

func (s *service) PresignListingImage(ctx context.Context, actor *models.UserProfile, propertyID string, input PresignInput) (*PresignOutput, error) {
	if actor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to manage listing images")
	}
	if err := validateImage(input.FileName, input.ContentType); err != nil {
		return nil, err
	}

	listing, err := s.loadManaged(ctx, actor, propertyID)
	if err != nil {
		return nil, err
	}

	key := buildObjectKey(listing.ID, input.FileName)
	signed, err := s.store.SignedURL(s.bucket, key, input.ContentType, s.uploadTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sign upload url")
	}

	return &PresignOutput{
		ObjectKey:    key,
		SignedPUTURL: signed,
		PublicURL:    fmt.Sprintf("https://storage.googleapis.com/%s/%s", s.bucket, key),
		ContentType:  input.ContentType,
		ExpiresAt:    time.Now().Add(s.uploadTTL),
	}, nil
}

func (s *service) loadManaged(ctx context.Context, actor *models.UserProfile, propertyID string) (*properties.Property, error) {
	listing, err := s.listings.GetByID(ctx, propertyID)
	if err != nil {
		return nil, err
	}
	if listing == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	if !access.CanManageProperty(actor, listing.OwnerID) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or an admin may manage listing images")
	}
	return listing, nil
}

// objectKeyFromURL recovers the object key from a public URL of the form
// <base>/<bucket>/<key>. URLs outside this bucket yield "".
func (s *service) objectKeyFromURL(imageURL string) string {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return ""
	}
	marker := "/" + s.bucket + "/"
	idx := strings.Index(parsed.Path, marker)
	if idx < 0 {
		return ""
	}
	return parsed.Path[idx+len(marker):]
}

func validateImage(fileName, contentType string) error {
	if strings.TrimSpace(fileName) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "file name is required")
	}
	contentType = strings.TrimSpace(contentType)
	for _, allowed := range allowedImageTypes {
		if strings.EqualFold(allowed, contentType) {
			return nil
		}
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "content type not allowed for listing images")
}

func buildObjectKey(propertyID, fileName string) string {
	clean := sanitizeFileName(fileName)
	if clean == "" {
		clean = "image"
	}
	return fmt.Sprintf("properties/%s/%s-%s", propertyID, uuid.NewString(), clean)
}

func sanitizeFileName(fileName string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(fileName)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	return strings.Trim(b.String(), "-")
}
