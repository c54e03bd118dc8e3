package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"listingflow/metrics"
	"listingflow/property"
	"listingflow/storage"
)

const (
	maxImageCount = 10
	maxImageSize  = 5 << 20
	maxFormMemory = 32 << 20
)

// handleCreateProperty accepts a multipart form with the listing fields and
// up to ten images. The listing row is written first so a failed upload
// never leaves orphaned objects pointing at nothing.
func (s *Server) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, "Expected a multipart form", err)
		return
	}

	params, err := createParamsFromForm(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	params.BrokerID = brokerIDFromContext(r.Context())

	files := r.MultipartForm.File["images"]
	if err := validateImages(files); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	p, err := s.propertyService.Create(r.Context(), params)
	if err != nil {
		switch {
		case errors.Is(err, property.ErrValidation), errors.Is(err, property.ErrInvalidID):
			s.writeError(w, http.StatusBadRequest, err.Error(), nil)
		case errors.Is(err, property.ErrBrokerNotFound):
			s.writeError(w, http.StatusNotFound, "Broker not found", nil)
		default:
			s.logger.Error("create property", "error", err)
			s.writeError(w, http.StatusInternalServerError, "Could not create property", err)
		}
		return
	}

	if len(files) > 0 {
		urls, err := s.uploadImages(r, files)
		if err != nil {
			s.logger.Error("upload images", "property", p.ID, "error", err)
			s.writeError(w, http.StatusInternalServerError, "Could not upload images", err)
			return
		}
		if p, err = s.propertyService.UpdateImages(r.Context(), p.ID, urls); err != nil {
			s.logger.Error("attach images", "property", p.ID, "error", err)
			s.writeError(w, http.StatusInternalServerError, "Could not attach images", err)
			return
		}
	}

	s.writeSuccess(w, http.StatusCreated, "Property created successfully", toPropertyResponse(p))
}

func (s *Server) handleListProperties(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	props, err := s.propertyService.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("list properties", "error", err)
		s.writeError(w, http.StatusInternalServerError, "Could not list properties", err)
		return
	}
	s.writeSuccess(w, http.StatusOK, "OK", toPropertyResponses(props))
}

func (s *Server) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, err := s.propertyService.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.propertyError(w, err, "Could not load property")
		return
	}
	s.writeSuccess(w, http.StatusOK, "OK", toPropertyResponse(p))
}

type editPropertyRequest struct {
	Title       *string           `json:"title"`
	Description *string           `json:"description"`
	Price       *int64            `json:"price"`
	Tags        []string          `json:"tags"`
	Location    map[string]string `json:"location"`
}

func (s *Server) handleEditProperty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.ownsProperty(w, r, id) {
		return
	}

	var req editPropertyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	p, err := s.propertyService.Edit(r.Context(), id, property.EditParams{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
		Location:    req.Location,
	})
	if err != nil {
		s.propertyError(w, err, "Could not update property")
		return
	}
	s.writeSuccess(w, http.StatusOK, "Property updated successfully", toPropertyResponse(p))
}

// handleUpdateImages replaces a listing's image set: the "keep" form values
// name existing URLs to retain, and any uploaded files are appended.
func (s *Server) handleUpdateImages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.ownsProperty(w, r, id) {
		return
	}

	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		s.writeError(w, http.StatusBadRequest, "Expected a multipart form", err)
		return
	}

	images := make([]string, 0, maxImageCount)
	for _, keep := range r.MultipartForm.Value["keep"] {
		if keep = strings.TrimSpace(keep); keep != "" {
			images = append(images, keep)
		}
	}

	files := r.MultipartForm.File["images"]
	if len(images)+len(files) > maxImageCount {
		s.writeError(w, http.StatusBadRequest, fmt.Sprintf("A listing can have at most %d images", maxImageCount), nil)
		return
	}
	if err := validateImages(files); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if len(files) > 0 {
		urls, err := s.uploadImages(r, files)
		if err != nil {
			s.logger.Error("upload images", "property", id, "error", err)
			s.writeError(w, http.StatusInternalServerError, "Could not upload images", err)
			return
		}
		images = append(images, urls...)
	}

	p, err := s.propertyService.UpdateImages(r.Context(), id, images)
	if err != nil {
		s.propertyError(w, err, "Could not update images")
		return
	}
	s.writeSuccess(w, http.StatusOK, "Images updated successfully", toPropertyResponse(p))
}

func (s *Server) handleSetActive(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.ownsProperty(w, r, id) {
		return
	}

	var req struct {
		Active *bool `json:"active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Active == nil {
		s.writeError(w, http.StatusBadRequest, "Body must contain an active flag", err)
		return
	}

	p, err := s.propertyService.SetActive(r.Context(), id, *req.Active)
	if err != nil {
		s.propertyError(w, err, "Could not update property")
		return
	}
	s.writeSuccess(w, http.StatusOK, "Property updated successfully", toPropertyResponse(p))
}

func (s *Server) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !s.ownsProperty(w, r, id) {
		return
	}

	p, err := s.propertyService.Delete(r.Context(), id)
	if err != nil {
		s.propertyError(w, err, "Could not delete property")
		return
	}
	s.writeSuccess(w, http.StatusOK, "Property deleted successfully", toPropertyResponse(p))
}

// ownsProperty loads the listing and rejects callers who do not own it.
// It writes the response itself when returning false.
func (s *Server) ownsProperty(w http.ResponseWriter, r *http.Request, id string) bool {
	p, err := s.propertyService.GetByID(r.Context(), id)
	if err != nil {
		s.propertyError(w, err, "Could not load property")
		return false
	}
	if p.BrokerID != brokerIDFromContext(r.Context()) {
		s.writeError(w, http.StatusForbidden, "You can only manage your own properties", nil)
		return false
	}
	return true
}

func (s *Server) propertyError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, property.ErrNotFound):
		s.writeError(w, http.StatusNotFound, "Property not found", nil)
	case errors.Is(err, property.ErrInvalidID), errors.Is(err, property.ErrValidation):
		s.writeError(w, http.StatusBadRequest, err.Error(), nil)
	default:
		s.logger.Error("property handler", "error", err)
		s.writeError(w, http.StatusInternalServerError, fallback, err)
	}
}

func createParamsFromForm(r *http.Request) (property.CreateParams, error) {
	form := r.MultipartForm.Value
	field := func(name string) string {
		if vals := form[name]; len(vals) > 0 {
			return strings.TrimSpace(vals[0])
		}
		return ""
	}
	intField := func(name string) (int, error) {
		raw := field(name)
		if raw == "" {
			return 0, nil
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", name)
		}
		return v, nil
	}

	price, err := strconv.ParseInt(field("price"), 10, 64)
	if err != nil {
		return property.CreateParams{}, errors.New("price must be a number")
	}

	params := property.CreateParams{
		Title:       field("title"),
		Description: field("description"),
		Price:       price,
		Type:        field("type"),
		Transaction: field("transaction"),
		Location: property.Location{
			Address:       field("address"),
			AddressNumber: field("addressNumber"),
			Street:        field("street"),
			Neighborhood:  field("neighborhood"),
			City:          field("city"),
			State:         field("state"),
			Zip:           field("zip"),
		},
	}
	for _, tag := range strings.Split(field("tags"), ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			params.Tags = append(params.Tags, tag)
		}
	}
	if params.Bedrooms, err = intField("bedrooms"); err != nil {
		return property.CreateParams{}, err
	}
	if params.Bathrooms, err = intField("bathrooms"); err != nil {
		return property.CreateParams{}, err
	}
	if params.Parking, err = intField("parking"); err != nil {
		return property.CreateParams{}, err
	}
	return params, nil
}

func validateImages(files []*multipart.FileHeader) error {
	if len(files) > maxImageCount {
		return fmt.Errorf("a listing can have at most %d images", maxImageCount)
	}
	for _, fh := range files {
		if fh.Size > maxImageSize {
			return fmt.Errorf("image %s exceeds the %d MB limit", fh.Filename, maxImageSize>>20)
		}
		if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
			return fmt.Errorf("file %s is not an image", fh.Filename)
		}
	}
	return nil
}

func (s *Server) uploadImages(r *http.Request, files []*multipart.FileHeader) ([]string, error) {
	urls := make([]string, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}

		url, err := s.uploader.Upload(r.Context(), storage.ImageKey(fh.Filename), f, fh.Size, fh.Header.Get("Content-Type"))
		f.Close()
		if err != nil {
			metrics.ImageUploadsTotal.WithLabelValues("error").Inc()
			return nil, err
		}

		metrics.ImageUploadsTotal.WithLabelValues("success").Inc()
		urls = append(urls, url)
	}
	return urls, nil
}
