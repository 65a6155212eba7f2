package services

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/carmarket-app/backend/internal/identity"
	"github.com/carmarket-app/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrTitleRequired       = errors.New("title is required")
	ErrDescriptionRequired = errors.New("description is required")
	ErrKeywordRequired     = errors.New("keyword query parameter is required")

	// ErrListingNotFound covers both a missing record and a record owned by
	// someone else, so callers cannot probe for other users' listings.
	ErrListingNotFound = errors.New("car not found or unauthorized")
)

type CreateListingInput struct {
	Title       string
	Description string
	Tags        []string
	ImagePaths  []string
}

// UpdateListingInput carries partial updates: nil pointers and nil slices
// mean "keep the current value". A supplied image list replaces the old one
// wholesale.
type UpdateListingInput struct {
	Title       *string
	Description *string
	Tags        []string
	ImagePaths  []string
}

type ListingService struct {
	db *gorm.DB
}

func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{db: db}
}

func (s *ListingService) Create(ownerID uuid.UUID, in CreateListingInput) (*models.Listing, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, ErrTitleRequired
	}
	if strings.TrimSpace(in.Description) == "" {
		return nil, ErrDescriptionRequired
	}

	listing := models.Listing{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Title:       in.Title,
		Description: in.Description,
		Tags:        jsonList(in.Tags),
		Images:      jsonList(in.ImagePaths),
	}

	if err := s.db.Create(&listing).Error; err != nil {
		return nil, err
	}

	return &listing, nil
}

func (s *ListingService) List(ownerID uuid.UUID) ([]models.Listing, error) {
	// Non-nil so an empty result serializes as [] rather than null.
	listings := make([]models.Listing, 0)
	err := s.db.Scopes(identity.OwnedBy(ownerID)).Find(&listings).Error
	return listings, err
}

// Search does a case-insensitive substring match over title, description
// and the serialized tag list, restricted to the caller's own listings.
// LIKE wildcards in the keyword are escaped so it always matches literally.
func (s *ListingService) Search(ownerID uuid.UUID, keyword string) ([]models.Listing, error) {
	if strings.TrimSpace(keyword) == "" {
		return nil, ErrKeywordRequired
	}

	pattern := "%" + strings.ToLower(escapeLike(keyword)) + "%"

	listings := make([]models.Listing, 0)
	err := s.db.Scopes(identity.OwnedBy(ownerID)).
		Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(description) LIKE ? ESCAPE '\' OR LOWER(CAST(tags AS TEXT)) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern).
		Find(&listings).Error
	return listings, err
}

func (s *ListingService) Get(ownerID uuid.UUID, listingID uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.First(&listing, "id = ?", listingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}

	if listing.OwnerID != ownerID {
		return nil, ErrListingNotFound
	}

	return &listing, nil
}

func (s *ListingService) Update(ownerID uuid.UUID, listingID uuid.UUID, in UpdateListingInput) (*models.Listing, error) {
	listing, err := s.Get(ownerID, listingID)
	if err != nil {
		return nil, err
	}

	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, ErrTitleRequired
		}
		listing.Title = *in.Title
	}

	if in.Description != nil {
		if strings.TrimSpace(*in.Description) == "" {
			return nil, ErrDescriptionRequired
		}
		listing.Description = *in.Description
	}

	if in.Tags != nil {
		listing.Tags = jsonList(in.Tags)
	}

	if in.ImagePaths != nil {
		listing.Images = jsonList(in.ImagePaths)
	}

	if err := s.db.Save(listing).Error; err != nil {
		return nil, err
	}

	return listing, nil
}

func (s *ListingService) Delete(ownerID uuid.UUID, listingID uuid.UUID) error {
	listing, err := s.Get(ownerID, listingID)
	if err != nil {
		return err
	}

	return s.db.Delete(listing).Error
}

func jsonList(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, _ := json.Marshal(items)
	return datatypes.JSON(b)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
