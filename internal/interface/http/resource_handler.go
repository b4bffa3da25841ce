package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/campus-resource-tracker/internal/application"
	"github.com/oksasatya/campus-resource-tracker/pkg/apperror"
	"github.com/oksasatya/campus-resource-tracker/pkg/response"
)

// multipartOverhead leaves room for boundaries and headers around the photo.
const multipartOverhead = 1 << 20

type ResourceHandler struct {
	Resources *application.ResourceService
	Search    *application.SearchService
	Ratings   *application.RatingService
	Logger    *logrus.Logger
}

func NewResourceHandler(resources *application.ResourceService, search *application.SearchService, ratings *application.RatingService, logger *logrus.Logger) *ResourceHandler {
	return &ResourceHandler{Resources: resources, Search: search, Ratings: ratings, Logger: logger}
}

// List GET /api/resources
func (h *ResourceHandler) List(c *gin.Context) {
	list, err := h.Resources.List(c.Request.Context())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.List(c, toResourceDTOs(list), "ok")
}

// Find GET /api/resources/search?q=&lat=&lng=
func (h *ResourceHandler) Find(c *gin.Context) {
	results, err := h.Search.Search(c.Request.Context(), application.SearchParams{
		Q:   c.Query("q"),
		Lat: c.Query("lat"),
		Lng: c.Query("lng"),
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.List(c, toSearchResultDTOs(results), "ok")
}

// Get GET /api/resources/:id
func (h *ResourceHandler) Get(c *gin.Context) {
	r, err := h.Resources.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toResourceDTO(r), "ok", nil)
}

// Create POST /api/resources
func (h *ResourceHandler) Create(c *gin.Context) {
	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	draft, err := req.draft()
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	r, err := h.Resources.Create(c.Request.Context(), c.GetString("userID"), draft)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusCreated, toResourceDTO(r), "resource created", nil)
}

// Update PUT /api/resources/:id
// Only members present in the body are changed.
func (h *ResourceHandler) Update(c *gin.Context) {
	var req updateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	r, err := h.Resources.Update(c.Request.Context(), c.Param("id"), c.GetString("userID"), req.patch())
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toResourceDTO(r), "resource updated", nil)
}

// Delete DELETE /api/resources/:id
func (h *ResourceHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.Resources.Delete(c.Request.Context(), id, c.GetString("userID")); err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id}, "resource deleted", nil)
}

// Rate POST /api/resources/:id/rate
func (h *ResourceHandler) Rate(c *gin.Context) {
	var req application.RateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	r, err := h.Ratings.Rate(c.Request.Context(), c.Param("id"), c.GetString("userID"), req)
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toResourceDTO(r), "rating recorded", nil)
}

// UploadPhoto POST /api/resources/:id/photo (multipart field "photo")
func (h *ResourceHandler) UploadPhoto(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, application.MaxPhotoBytes+multipartOverhead)
	fh, err := c.FormFile("photo")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(c, h.Logger, apperror.ValidationField("photo", "must be between 1 byte and 5 MiB"))
			return
		}
		respondError(c, h.Logger, apperror.ValidationField("photo", "is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, h.Logger, apperror.Internal("open upload", err))
		return
	}
	defer func() { _ = f.Close() }()

	r, err := h.Resources.UploadPhoto(c.Request.Context(), c.Param("id"), c.GetString("userID"), application.PhotoUpload{
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	response.Success(c, http.StatusOK, toResourceDTO(r), "photo uploaded", nil)
}
