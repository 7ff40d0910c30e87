package handler

import (
	"time"

	billingapp "github.com/angofact/backend/internal/application/billing"
	"github.com/angofact/backend/internal/domain/billing"
	"github.com/angofact/backend/internal/domain/shared"
	"github.com/angofact/backend/internal/domain/shared/valueobject"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DocumentHandler handles fiscal document lifecycle endpoints
type DocumentHandler struct {
	BaseHandler
	documentService *billingapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documentService *billingapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		documentService: documentService,
	}
}

// RegisterRoutes registers document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	documents := rg.Group("/billing/documents")
	{
		documents.POST("", h.Create)
		documents.GET("", h.List)
		documents.GET("/:id", h.GetByID)
		documents.DELETE("/:id", h.Delete)
		documents.GET("/:id/chain", h.Chain)
		documents.POST("/:id/certify", h.Certify)
		documents.POST("/:id/liquidate", h.Liquidate)
		documents.POST("/:id/cancel", h.Cancel)
	}
}

// =============================================================================
// Document Request DTOs
// =============================================================================

// DocumentLineRequest represents a single line item in a document request
//
//	@Description	Line item of a fiscal document
type DocumentLineRequest struct {
	ProductID       string  `json:"product_id" binding:"required,uuid"`
	Description     string  `json:"description" binding:"required,max=500" example:"Cimento 42.5R saco 50kg"`
	IsPhysical      bool    `json:"is_physical" example:"true"`
	Quantity        float64 `json:"quantity" binding:"required,gt=0" example:"10"`
	UnitPrice       float64 `json:"unit_price" binding:"gte=0" example:"4500"`
	DiscountPercent float64 `json:"discount_percent" binding:"gte=0,lte=100" example:"0"`
	TaxPercent      float64 `json:"tax_percent" binding:"gte=0" example:"14"`
}

// DocumentCustomerRequest captures the client identity frozen into the document
//
//	@Description	Customer snapshot for a fiscal document
type DocumentCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	Name       string `json:"name" binding:"required,max=200" example:"Construtora Kilamba Lda"`
	TaxID      string `json:"tax_id" binding:"max=30" example:"5417654321"`
}

// CreateDocumentRequest represents a request to create a draft document
//
//	@Description	Request body for creating a draft fiscal document
type CreateDocumentRequest struct {
	Type           string                  `json:"type" binding:"required" example:"INVOICE"`
	SeriesID       string                  `json:"series_id" binding:"required,uuid"`
	IssueDate      time.Time               `json:"issue_date" binding:"required" example:"2026-03-01T00:00:00Z"`
	DueDate        *time.Time              `json:"due_date"`
	Currency       string                  `json:"currency" binding:"omitempty,oneof=AOA USD EUR" example:"AOA"`
	ExchangeRate   float64                 `json:"exchange_rate" binding:"omitempty,gt=0" example:"1"`
	Customer       DocumentCustomerRequest `json:"customer" binding:"required"`
	PaymentMethod  string                  `json:"payment_method" binding:"required" example:"CREDIT"`
	Lines          []DocumentLineRequest   `json:"lines" binding:"required,min=1,dive"`
	GlobalDiscount float64                 `json:"global_discount" binding:"gte=0" example:"0"`
	Withholding    float64                 `json:"withholding" binding:"gte=0" example:"0"`
	CashRegisterID *string                 `json:"cash_register_id" binding:"omitempty,uuid"`
	WarehouseID    *string                 `json:"warehouse_id" binding:"omitempty,uuid"`
	ManualNumber   string                  `json:"manual_number" binding:"max=60"`
}

// LiquidateDocumentRequest represents a request to settle an invoice with a receipt
//
//	@Description	Request body for liquidating a credit invoice
type LiquidateDocumentRequest struct {
	Amount         float64    `json:"amount" binding:"required,gt=0" example:"51300"`
	PaymentMethod  string     `json:"payment_method" binding:"required" example:"CASH"`
	CashRegisterID string     `json:"cash_register_id" binding:"required,uuid"`
	ValueDate      *time.Time `json:"value_date"`
	DocumentDate   *time.Time `json:"document_date"`
}

// CancelDocumentRequest represents a request to cancel a document
//
//	@Description	Request body for cancelling a fiscal document
type CancelDocumentRequest struct {
	Reason string `json:"reason" binding:"required,max=500" example:"Lançamento duplicado"`
}

// ListDocumentsRequest represents the document list query parameters
type ListDocumentsRequest struct {
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	Search    string `form:"search"`
	Type      string `form:"type"`
	Status    string `form:"status"`
	SeriesID  string `form:"series_id" binding:"omitempty,uuid"`
	Certified *bool  `form:"certified"`
	FromDate  string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate    string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
}

// =============================================================================
// Document Response DTOs
// =============================================================================

// CertifyDocumentResponse carries the sealed document plus posting warnings
//
//	@Description	Result of a certification
type CertifyDocumentResponse struct {
	Document *billing.FiscalDocument `json:"document"`
	Warnings []string                `json:"warnings,omitempty"`
}

// LiquidateDocumentResponse carries the issued receipt and the updated invoice
//
//	@Description	Result of a liquidation
type LiquidateDocumentResponse struct {
	Receipt  *billing.FiscalDocument `json:"receipt"`
	Invoice  *billing.FiscalDocument `json:"invoice"`
	Warnings []string                `json:"warnings,omitempty"`
}

// CancelDocumentResponse carries the corrective document and the cancelled source
//
//	@Description	Result of a cancellation
type CancelDocumentResponse struct {
	Corrective *billing.FiscalDocument `json:"corrective,omitempty"`
	Cancelled  *billing.FiscalDocument `json:"cancelled"`
	Warnings   []string                `json:"warnings,omitempty"`
}

func (r CreateDocumentRequest) toInput(userID uuid.UUID) (billingapp.CreateDocumentInput, error) {
	seriesID, err := uuid.Parse(r.SeriesID)
	if err != nil {
		return billingapp.CreateDocumentInput{}, shared.NewDomainError("INVALID_SERIES", "Series ID is not a valid UUID")
	}
	customerID, err := uuid.Parse(r.Customer.CustomerID)
	if err != nil {
		return billingapp.CreateDocumentInput{}, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID is not a valid UUID")
	}

	lines := make([]billing.DocumentLine, 0, len(r.Lines))
	for _, lr := range r.Lines {
		productID, err := uuid.Parse(lr.ProductID)
		if err != nil {
			return billingapp.CreateDocumentInput{}, shared.NewDomainError("INVALID_LINE", "Line product ID is not a valid UUID")
		}
		line, err := billing.NewDocumentLine(
			productID,
			lr.Description,
			lr.IsPhysical,
			decimal.NewFromFloat(lr.Quantity),
			decimal.NewFromFloat(lr.UnitPrice),
			decimal.NewFromFloat(lr.DiscountPercent),
			decimal.NewFromFloat(lr.TaxPercent),
		)
		if err != nil {
			return billingapp.CreateDocumentInput{}, err
		}
		lines = append(lines, line)
	}

	currency := valueobject.DefaultCurrency
	if r.Currency != "" {
		currency = valueobject.Currency(r.Currency)
	}
	exchangeRate := decimal.NewFromInt(1)
	if r.ExchangeRate > 0 {
		exchangeRate = decimal.NewFromFloat(r.ExchangeRate)
	}

	input := billingapp.CreateDocumentInput{
		Type:         billing.DocumentType(r.Type),
		SeriesID:     seriesID,
		IssueDate:    r.IssueDate,
		DueDate:      r.DueDate,
		Currency:     currency,
		ExchangeRate: exchangeRate,
		Customer: billing.CustomerSnapshot{
			CustomerID: customerID,
			Name:       r.Customer.Name,
			TaxID:      r.Customer.TaxID,
		},
		PaymentMethod:  billing.PaymentMethod(r.PaymentMethod),
		Lines:          lines,
		GlobalDiscount: decimal.NewFromFloat(r.GlobalDiscount),
		Withholding:    decimal.NewFromFloat(r.Withholding),
		ManualNumber:   r.ManualNumber,
		UserID:         userID,
	}

	if r.CashRegisterID != nil {
		registerID, err := uuid.Parse(*r.CashRegisterID)
		if err != nil {
			return billingapp.CreateDocumentInput{}, shared.ErrInvalidInput
		}
		input.CashRegisterID = &registerID
	}
	if r.WarehouseID != nil {
		warehouseID, err := uuid.Parse(*r.WarehouseID)
		if err != nil {
			return billingapp.CreateDocumentInput{}, shared.ErrInvalidInput
		}
		input.WarehouseID = &warehouseID
	}

	return input, nil
}

// Create godoc
//
//	@ID				createDocument
//	@Summary		Create a draft document
//	@Description	Create a new fiscal document in DRAFT status
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			X-User-ID	header		string					false	"Acting user ID"	format(uuid)
//	@Param			request		body		CreateDocumentRequest	true	"Document creation request"
//	@Success		201			{object}	APIResponse[billing.FiscalDocument]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		403			{object}	ErrorResponse
//	@Failure		404			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/billing/documents [post]
func (h *DocumentHandler) Create(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	input, err := req.toInput(userID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	doc, err := h.documentService.CreateDraft(c.Request.Context(), input)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, doc)
}

// GetByID godoc
//
//	@ID				getDocumentById
//	@Summary		Get document by ID
//	@Description	Retrieve a fiscal document by its ID
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"	format(uuid)
//	@Success		200	{object}	APIResponse[billing.FiscalDocument]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/billing/documents/{id} [get]
func (h *DocumentHandler) GetByID(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	doc, err := h.documentService.Get(c.Request.Context(), documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, doc)
}

// List godoc
//
//	@ID				listDocuments
//	@Summary		List documents
//	@Description	List fiscal documents with filters and pagination
//	@Tags			documents
//	@Produce		json
//	@Param			page		query		int		false	"Page number"	default(1)
//	@Param			page_size	query		int		false	"Page size"		default(20)
//	@Param			search		query		string	false	"Search on number, customer name or tax ID"
//	@Param			type		query		string	false	"Document type"
//	@Param			status		query		string	false	"Document status"
//	@Param			series_id	query		string	false	"Series ID"	format(uuid)
//	@Param			certified	query		bool	false	"Only certified (true) or only drafts (false)"
//	@Param			from_date	query		string	false	"Issue date lower bound (YYYY-MM-DD)"
//	@Param			to_date		query		string	false	"Issue date upper bound (YYYY-MM-DD)"
//	@Success		200			{object}	APIResponse[[]billing.FiscalDocument]
//	@Failure		400			{object}	ErrorResponse
//	@Failure		500			{object}	ErrorResponse
//	@Router			/billing/documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	var req ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	filter, err := req.toFilter()
	if err != nil {
		h.BindingError(c, err)
		return
	}

	docs, total, err := h.documentService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, docs, total, filter.Page, filter.PageSize)
}

func (r ListDocumentsRequest) toFilter() (billing.DocumentFilter, error) {
	filter := billing.DocumentFilter{
		Filter: shared.Filter{
			Page:     r.Page,
			PageSize: r.PageSize,
			Search:   r.Search,
		},
		Certified: r.Certified,
	}
	if filter.Page == 0 {
		filter.Page = 1
	}
	if filter.PageSize == 0 {
		filter.PageSize = 20
	}

	if r.Type != "" {
		docType := billing.DocumentType(r.Type)
		if !docType.IsValid() {
			return billing.DocumentFilter{}, shared.ErrInvalidDocumentType
		}
		filter.Type = &docType
	}
	if r.Status != "" {
		status := billing.DocumentStatus(r.Status)
		if !status.IsValid() {
			return billing.DocumentFilter{}, shared.ErrInvalidInput
		}
		filter.Status = &status
	}
	if r.SeriesID != "" {
		seriesID, err := uuid.Parse(r.SeriesID)
		if err != nil {
			return billing.DocumentFilter{}, shared.ErrInvalidInput
		}
		filter.SeriesID = &seriesID
	}
	if r.FromDate != "" {
		from, err := time.Parse("2006-01-02", r.FromDate)
		if err != nil {
			return billing.DocumentFilter{}, shared.ErrInvalidInput
		}
		filter.FromDate = &from
	}
	if r.ToDate != "" {
		to, err := time.Parse("2006-01-02", r.ToDate)
		if err != nil {
			return billing.DocumentFilter{}, shared.ErrInvalidInput
		}
		filter.ToDate = &to
	}

	return filter, nil
}

// Certify godoc
//
//	@ID				certifyDocument
//	@Summary		Certify a document
//	@Description	Seal a draft: chronology check, number allocation, fingerprint, then postings
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"	format(uuid)
//	@Success		200	{object}	APIResponse[CertifyDocumentResponse]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/billing/documents/{id}/certify [post]
func (h *DocumentHandler) Certify(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	result, err := h.documentService.Certify(c.Request.Context(), documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CertifyDocumentResponse{
		Document: result.Document,
		Warnings: result.Warnings,
	})
}

// Liquidate godoc
//
//	@ID				liquidateDocument
//	@Summary		Liquidate a credit invoice
//	@Description	Issue a receipt against a certified credit invoice and apply the payment
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"Invoice ID"	format(uuid)
//	@Param			request	body		LiquidateDocumentRequest	true	"Liquidation request"
//	@Success		200		{object}	APIResponse[LiquidateDocumentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/billing/documents/{id}/liquidate [post]
func (h *DocumentHandler) Liquidate(c *gin.Context) {
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req LiquidateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	registerID, err := uuid.Parse(req.CashRegisterID)
	if err != nil {
		h.BadRequest(c, "Invalid cash register ID format")
		return
	}

	now := time.Now()
	valueDate := now
	if req.ValueDate != nil {
		valueDate = *req.ValueDate
	}
	documentDate := now
	if req.DocumentDate != nil {
		documentDate = *req.DocumentDate
	}

	result, err := h.documentService.Liquidate(
		c.Request.Context(),
		invoiceID,
		decimal.NewFromFloat(req.Amount),
		billing.PaymentMethod(req.PaymentMethod),
		registerID,
		valueDate,
		documentDate,
	)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, LiquidateDocumentResponse{
		Receipt:  result.Receipt,
		Invoice:  result.Invoice,
		Warnings: result.Warnings,
	})
}

// Cancel godoc
//
//	@ID				cancelDocument
//	@Summary		Cancel a document
//	@Description	Cancel a document; certified documents are neutralised by a corrective document
//	@Tags			documents
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string					true	"Document ID"	format(uuid)
//	@Param			request	body		CancelDocumentRequest	true	"Cancellation request"
//	@Success		200		{object}	APIResponse[CancelDocumentResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		500		{object}	ErrorResponse
//	@Router			/billing/documents/{id}/cancel [post]
func (h *DocumentHandler) Cancel(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	var req CancelDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.documentService.Cancel(c.Request.Context(), documentID, req.Reason)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, CancelDocumentResponse{
		Corrective: result.Corrective,
		Cancelled:  result.Cancelled,
		Warnings:   result.Warnings,
	})
}

// Delete godoc
//
//	@ID				deleteDocument
//	@Summary		Delete a draft document
//	@Description	Physically delete a draft; certified documents are immutable
//	@Tags			documents
//	@Produce		json
//	@Param			id	path	string	true	"Document ID"	format(uuid)
//	@Success		204
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/billing/documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	if err := h.documentService.Delete(c.Request.Context(), documentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Chain godoc
//
//	@ID				getDocumentChain
//	@Summary		Get document traceability chain
//	@Description	Return the document with all derived documents as a tree
//	@Tags			documents
//	@Produce		json
//	@Param			id	path		string	true	"Document ID"	format(uuid)
//	@Success		200	{object}	APIResponse[billing.ChainNode]
//	@Failure		400	{object}	ErrorResponse
//	@Failure		404	{object}	ErrorResponse
//	@Failure		500	{object}	ErrorResponse
//	@Router			/billing/documents/{id}/chain [get]
func (h *DocumentHandler) Chain(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid document ID format")
		return
	}

	chain, err := h.documentService.Chain(c.Request.Context(), documentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, chain)
}
