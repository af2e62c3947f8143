package handler

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	"address-api/internal/geo"
	"address-api/internal/metrics"
	"address-api/internal/models"
	"address-api/internal/repository"
	"address-api/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// AddressService interface for dependency injection
type AddressService interface {
	List(ctx context.Context) ([]models.Address, error)
	Retrieve(ctx context.Context, origin geo.Point, distanceKm float64) ([]models.AddressWithDistance, error)
	Create(ctx context.Context, addr models.NewAddress) (*models.Address, error)
	Update(ctx context.Context, id int64, patch models.AddressPatch) (*models.Address, error)
	Delete(ctx context.Context, id int64) error
	DeleteAll(ctx context.Context) error
	LoadData(ctx context.Context) (int, error)
}

// CreateAddressRequest is the body of POST /create.
type CreateAddressRequest struct {
	Name      *string  `json:"name" binding:"required" example:"Tokyo Station"`
	Latitude  *float64 `json:"latitude" binding:"required" example:"35.681236"`
	Longitude *float64 `json:"longitude" binding:"required" example:"139.767125"`
	IsDeleted bool     `json:"is_deleted" example:"false"`
}

// UpdateAddressRequest is the body of PUT /update/{address_id}. Omitted or
// null fields keep their stored value.
type UpdateAddressRequest struct {
	Name      *string  `json:"name" example:"Tokyo Station"`
	Latitude  *float64 `json:"latitude" example:"35.681236"`
	Longitude *float64 `json:"longitude" example:"139.767125"`
	IsDeleted *bool    `json:"is_deleted" example:"false"`
}

type AddressListResponse struct {
	Address []models.Address `json:"address"`
}

type DistanceListResponse struct {
	Address []models.AddressWithDistance `json:"address"`
}

type SuccessResponse struct {
	Success bool `json:"success" example:"true"`
}

type LoadDataResponse struct {
	Success bool `json:"success" example:"true"`
	Loaded  int  `json:"loaded" example:"10"`
}

// AddressHandler handles address requests
type AddressHandler struct {
	service AddressService
	metrics *metrics.Metrics
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(svc AddressService, m *metrics.Metrics) *AddressHandler {
	return &AddressHandler{service: svc, metrics: m}
}

// List handles GET /list requests
//
//	@Summary	List addresses
//	@Tags		address
//	@Produce	json
//	@Success	200	{object}	AddressListResponse
//	@Failure	500	{object}	map[string]string
//	@Router		/list [get]
func (h *AddressHandler) List(c *gin.Context) {
	addresses, err := h.service.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, AddressListResponse{Address: addresses})
}

// Retrieve handles GET /retrieve requests
//
//	@Summary	Find addresses within a distance of a point
//	@Tags		address
//	@Produce	json
//	@Param		distance	query		number	true	"Radius in kilometers"
//	@Param		lat			query		number	true	"Origin latitude"
//	@Param		lng			query		number	true	"Origin longitude"
//	@Success	200			{object}	DistanceListResponse
//	@Failure	400			{object}	map[string]string
//	@Failure	500			{object}	map[string]string
//	@Router		/retrieve [get]
func (h *AddressHandler) Retrieve(c *gin.Context) {
	distance, ok := floatQuery(c, "distance")
	if !ok {
		return
	}
	lat, ok := floatQuery(c, "lat")
	if !ok {
		return
	}
	lng, ok := floatQuery(c, "lng")
	if !ok {
		return
	}

	result, err := h.service.Retrieve(c.Request.Context(), geo.Point{Lat: lat, Lng: lng}, distance)
	if err != nil {
		var validationErr *service.ValidationError
		if errors.As(err, &validationErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Error()})
			return
		}
		h.writeError(c, err)
		return
	}

	h.metrics.RadiusMatches.Observe(float64(len(result)))
	c.JSON(http.StatusOK, DistanceListResponse{Address: result})
}

// Create handles POST /create requests
//
//	@Summary	Create an address
//	@Tags		address
//	@Accept		json
//	@Produce	json
//	@Param		body	body		CreateAddressRequest	true	"New address"
//	@Success	200		{object}	models.Address
//	@Failure	422		{object}	map[string]string
//	@Failure	500		{object}	map[string]string
//	@Router		/create [post]
func (h *AddressHandler) Create(c *gin.Context) {
	var req CreateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	created, err := h.service.Create(c.Request.Context(), models.NewAddress{
		Name:      *req.Name,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		IsDeleted: req.IsDeleted,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, created)
}

// Update handles PUT /update/:address_id requests
//
//	@Summary	Partially update an address
//	@Tags		address
//	@Accept		json
//	@Produce	json
//	@Param		address_id	path		int						true	"Address ID"
//	@Param		body		body		UpdateAddressRequest	true	"Fields to change"
//	@Success	200			{object}	models.Address
//	@Failure	400			{object}	map[string]string
//	@Failure	404			{object}	map[string]string
//	@Failure	422			{object}	map[string]string
//	@Failure	500			{object}	map[string]string
//	@Router		/update/{address_id} [put]
func (h *AddressHandler) Update(c *gin.Context) {
	id, ok := addressID(c)
	if !ok {
		return
	}

	var req UpdateAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, models.AddressPatch{
		Name:      req.Name,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		IsDeleted: req.IsDeleted,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /delete/:address_id requests
//
//	@Summary	Soft delete an address
//	@Tags		address
//	@Produce	json
//	@Param		address_id	path		int	true	"Address ID"
//	@Success	200			{object}	SuccessResponse
//	@Failure	400			{object}	map[string]string
//	@Failure	500			{object}	map[string]string
//	@Router		/delete/{address_id} [delete]
func (h *AddressHandler) Delete(c *gin.Context) {
	id, ok := addressID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// DeleteAll handles DELETE /delete_all requests
//
//	@Summary	Permanently delete every address
//	@Tags		address
//	@Produce	json
//	@Success	200	{object}	SuccessResponse
//	@Failure	500	{object}	map[string]string
//	@Router		/delete_all [delete]
func (h *AddressHandler) DeleteAll(c *gin.Context) {
	if err := h.service.DeleteAll(c.Request.Context()); err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Success: true})
}

// LoadData handles POST /load_data requests
//
//	@Summary	Bulk load addresses from the configured CSV file
//	@Tags		address
//	@Produce	json
//	@Success	200	{object}	LoadDataResponse
//	@Failure	500	{object}	map[string]string
//	@Router		/load_data [post]
func (h *AddressHandler) LoadData(c *gin.Context) {
	loaded, err := h.service.LoadData(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	h.metrics.AddressesLoaded.Add(float64(loaded))
	c.JSON(http.StatusOK, LoadDataResponse{Success: true, Loaded: loaded})
}

func (h *AddressHandler) writeError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": validationErr.Error()})
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "address not found"})
	default:
		_ = c.Error(err)
		zerolog.Ctx(c.Request.Context()).Error().Err(err).Msg("address request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

func floatQuery(c *gin.Context, name string) (float64, bool) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing required query parameter '" + name + "'"})
		return 0, false
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name + " format"})
		return 0, false
	}
	return v, true
}

func addressID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("address_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address_id"})
		return 0, false
	}
	return id, true
}
