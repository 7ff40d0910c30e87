package handler

import (
	billingapp "github.com/angofact/backend/internal/application/billing"
	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SeriesHandler handles numbering series endpoints
type SeriesHandler struct {
	BaseHandler
	seriesService *billingapp.SeriesService
}

// NewSeriesHandler creates a new SeriesHandler
func NewSeriesHandler(seriesService *billingapp.SeriesService) *SeriesHandler {
	return &SeriesHandler{
		seriesService: seriesService,
	}
}

// RegisterRoutes registers series routes
func (h *SeriesHandler) RegisterRoutes(rg *gin.RouterGroup) {
	series := rg.Group("/billing/series")
	{
		series.POST("", h.Create)
		series.GET("", h.List)
		series.GET("/:id", h.GetByID)
		series.PUT("/:id/restrict", h.Restrict)
		series.POST("/:id/bootstrap", h.Bootstrap)
	}
}

// =============================================================================
// Series Request DTOs
// =============================================================================

// CreateSeriesRequest represents a request to create a numbering series
//
//	@Description	Request body for creating a numbering series
type CreateSeriesRequest struct {
	Code       string `json:"code" binding:"required,min=1,max=20" example:"A"`
	FiscalYear int    `json:"fiscal_year" binding:"required,gte=2000,lte=2200" example:"2026"`
	Kind       string `json:"kind" binding:"required,oneof=NORMAL MANUAL" example:"NORMAL"`
}

// RestrictSeriesRequest represents a request to replace the series access list
//
//	@Description	Request body for restricting a series to a set of users
type RestrictSeriesRequest struct {
	UserIDs []string `json:"user_ids" binding:"dive,uuid"`
}

// BootstrapSeriesRequest represents a request to ingest a legacy document number
//
//	@Description	Request body for fast-forwarding a series counter past a legacy number
type BootstrapSeriesRequest struct {
	DocumentType string `json:"document_type" binding:"required" example:"INVOICE"`
	Number       string `json:"number" binding:"required,max=60" example:"FT A 2025/412"`
}

// BootstrapSeriesResponse carries the counter value after legacy ingestion
//
//	@Description	Result of a series bootstrap
type BootstrapSeriesResponse struct {
	Counter int64 `json:"counter" example:"412"`
}

// Create godoc
//
//	@ID				createSeries
//	@Summary		Create a numbering series
//	@Description	Create a new numbering series with all counters at zero
//	@Tags			series
//	@Accept			json
//	@Produce		json
//	@Param			request	body		CreateSeriesRequest	true	"Series creation request"
//	@Success		201		{object}	APIResponse[billing.DocumentSeries]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		409		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/billing/series [post]
func (h *SeriesHandler) Create(c *gin.Context) {
	var req CreateSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	series, err := h.seriesService.Create(c.Request.Context(), req.Code, req.FiscalYear, billing.SeriesKind(req.Kind))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, series)
}

// GetByID godoc
//
//	@ID				getSeriesById
//	@Summary		Get series by ID
//	@Description	Retrieve a numbering series with its per-type counters
//	@Tags			series
//	@Produce		json
//	@Param			id	path		string	true	"Series ID"	format(uuid)
//	@Success		200	{object}	APIResponse[billing.DocumentSeries]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/billing/series/{id} [get]
func (h *SeriesHandler) GetByID(c *gin.Context) {
	seriesID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid series ID format")
		return
	}

	series, err := h.seriesService.Get(c.Request.Context(), seriesID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, series)
}

// List godoc
//
//	@ID				listSeries
//	@Summary		List numbering series
//	@Description	List all numbering series, newest fiscal year first
//	@Tags			series
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Search on series code"
//	@Success		200			{object}	APIResponse[[]billing.DocumentSeries]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/billing/series [get]
func (h *SeriesHandler) List(c *gin.Context) {
	var req ListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		Search:   req.Search,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	series, err := h.seriesService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, series)
}

// ListRequest represents the series list query parameters
type ListRequest struct {
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search   string `form:"search"`
}

// Restrict godoc
//
//	@ID				restrictSeries
//	@Summary		Restrict series access
//	@Description	Replace the list of users permitted to issue documents in the series; an empty list removes the restriction
//	@Tags			series
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Series ID"	format(uuid)
//	@Param			request	body		RestrictSeriesRequest	true	"Access list"
//	@Success		200		{object}	APIResponse[billing.DocumentSeries]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/billing/series/{id}/restrict [put]
func (h *SeriesHandler) Restrict(c *gin.Context) {
	seriesID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid series ID format")
		return
	}

	var req RestrictSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	userIDs := make([]uuid.UUID, 0, len(req.UserIDs))
	for _, raw := range req.UserIDs {
		userID, err := uuid.Parse(raw)
		if err != nil {
			h.BadRequest(c, "Invalid user ID format")
			return
		}
		userIDs = append(userIDs, userID)
	}

	series, err := h.seriesService.RestrictTo(c.Request.Context(), seriesID, userIDs)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, series)
}

// Bootstrap godoc
//
//	@ID				bootstrapSeries
//	@Summary		Ingest a legacy document number
//	@Description	Fast-forward the series counter past a legacy formatted number so future allocations never collide with it
//	@Tags			series
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Series ID"	format(uuid)
//	@Param			request	body		BootstrapSeriesRequest	true	"Legacy number"
//	@Success		200		{object}	APIResponse[BootstrapSeriesResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/billing/series/{id}/bootstrap [post]
func (h *SeriesHandler) Bootstrap(c *gin.Context) {
	seriesID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid series ID format")
		return
	}

	var req BootstrapSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	docType := billing.DocumentType(req.DocumentType)
	if !docType.IsValid() {
		h.HandleDomainError(c, shared.ErrInvalidDocumentType)
		return
	}

	counter, err := h.seriesService.Bootstrap(c.Request.Context(), seriesID, docType, req.Number)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, BootstrapSeriesResponse{Counter: counter})
}
