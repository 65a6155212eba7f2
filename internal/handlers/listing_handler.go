package handlers

import (
	"errors"
	"mime/multipart"

	"github.com/carmarket-app/backend/internal/dto"
	"github.com/carmarket-app/backend/internal/identity"
	"github.com/carmarket-app/backend/internal/services"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ListingHandler struct {
	service *services.ListingService
	images  *services.ImageStore
}

func NewListingHandler(service *services.ListingService, images *services.ImageStore) *ListingHandler {
	return &ListingHandler{service: service, images: images}
}

// Create handles POST /api/cars - multipart form with up to 10 image parts
// under the "images" field.
func (h *ListingHandler) Create(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	paths, err := h.images.Save(form.File["images"])
	if err != nil {
		return h.imageError(c, err)
	}

	listing, err := h.service.Create(userID, services.CreateListingInput{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		Tags:        form.Value["tags"],
		ImagePaths:  paths,
	})
	if err != nil {
		h.images.Remove(paths)
		if errors.Is(err, services.ErrTitleRequired) || errors.Is(err, services.ErrDescriptionRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create car",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(listing)
}

// List handles GET /api/cars - all listings owned by the caller.
func (h *ListingHandler) List(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	listings, err := h.service.List(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch cars",
		})
	}

	return c.JSON(listings)
}

// Search handles GET /api/cars/search?keyword=.
func (h *ListingHandler) Search(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	listings, err := h.service.Search(userID, c.Query("keyword"))
	if err != nil {
		if errors.Is(err, services.ErrKeywordRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to search cars",
		})
	}

	return c.JSON(listings)
}

// Get handles GET /api/cars/:id.
func (h *ListingHandler) Get(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.notFound(c)
	}

	listing, err := h.service.Get(userID, listingID)
	if err != nil {
		return h.lookupError(c, err, "Failed to fetch car")
	}

	return c.JSON(listing)
}

// Update handles PUT /api/cars/:id - fields present in the request replace
// stored values, newly uploaded images replace the image list. The body may
// be a multipart form (with image parts) or plain JSON (fields only).
func (h *ListingHandler) Update(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.notFound(c)
	}

	var in services.UpdateListingInput
	var paths []string

	if form, err := c.MultipartForm(); err == nil {
		in.Title = formString(form, "title")
		in.Description = formString(form, "description")
		if vals, ok := form.Value["tags"]; ok {
			in.Tags = vals
		}
		if files := form.File["images"]; len(files) > 0 {
			paths, err = h.images.Save(files)
			if err != nil {
				return h.imageError(c, err)
			}
			in.ImagePaths = paths
		}
	} else {
		var req dto.UpdateListingRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: "Invalid request body",
			})
		}
		in.Title = req.Title
		in.Description = req.Description
		in.Tags = req.Tags
	}

	listing, err := h.service.Update(userID, listingID, in)
	if err != nil {
		h.images.Remove(paths)
		if errors.Is(err, services.ErrTitleRequired) || errors.Is(err, services.ErrDescriptionRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return h.lookupError(c, err, "Failed to update car")
	}

	return c.JSON(listing)
}

// Delete handles DELETE /api/cars/:id.
func (h *ListingHandler) Delete(c *fiber.Ctx) error {
	userID, err := identity.UserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	listingID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return h.notFound(c)
	}

	if err := h.service.Delete(userID, listingID); err != nil {
		return h.lookupError(c, err, "Failed to delete car")
	}

	return c.JSON(dto.DeleteListingResponse{Message: "Car deleted successfully"})
}

// notFound is the unified response for missing, not-owned, and unparseable
// ids, so callers cannot probe for other users' listings.
func (h *ListingHandler) notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
		Error: true, Message: services.ErrListingNotFound.Error(),
	})
}

func (h *ListingHandler) lookupError(c *fiber.Ctx, err error, fallback string) error {
	if errors.Is(err, services.ErrListingNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: fallback,
	})
}

func (h *ListingHandler) imageError(c *fiber.Ctx, err error) error {
	if errors.Is(err, services.ErrTooManyImages) ||
		errors.Is(err, services.ErrImageTooLarge) ||
		errors.Is(err, services.ErrUnsupportedImage) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Failed to save images",
	})
}

func formString(form *multipart.Form, key string) *string {
	vals, ok := form.Value[key]
	if !ok || len(vals) == 0 || vals[0] == "" {
		return nil
	}
	return &vals[0]
}
