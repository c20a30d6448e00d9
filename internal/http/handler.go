package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nurpe/salesops-contracts/internal/http/middleware"
	"github.com/nurpe/salesops-contracts/internal/model"
	"github.com/nurpe/salesops-contracts/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type Handler struct {
	contracts *service.ContractService
	clauses   *service.ClauseService
	reports   *service.ReportService
	log       zerolog.Logger
}

func NewHandler(contracts *service.ContractService, clauses *service.ClauseService, reports *service.ReportService, log zerolog.Logger) *Handler {
	return &Handler{contracts: contracts, clauses: clauses, reports: reports, log: log}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	router.GET("/healthz", h.health)

	protected := router.Group("/")
	protected.Use(authMiddleware)

	admin := middleware.RequireRoles(model.UserRoleAdmin)
	agent := middleware.RequireRoles(model.UserRoleAgent)
	anyone := middleware.RequireRoles(model.UserRoleAdmin, model.UserRoleAgent)

	protected.POST("/contracts", agent, h.createContract)
	protected.GET("/contracts", anyone, h.listContracts)
	protected.GET("/contracts/:id", anyone, h.getContract)
	protected.PUT("/contracts/:id", admin, h.updateContract)
	protected.GET("/contracts/:id/audit-logs", admin, h.listAuditLogs)
	protected.GET("/contracts/:id/pdf", anyone, h.contractPDF)
	protected.POST("/contracts/:id/addons/:addon_id/approve", admin, h.approveAddon)

	protected.GET("/clauses", admin, h.listClauses)
	protected.POST("/clauses", admin, h.createClause)
	protected.PUT("/clauses/:clause_id", admin, h.updateClause)
	protected.DELETE("/clauses/:clause_id", admin, h.deleteClause)

	protected.GET("/reports/company-performance", admin, h.companyPerformance)
	protected.GET("/reports/performance/:user_id", anyone, h.performanceReport)
	protected.GET("/reports/performance/:user_id/export", anyone, h.exportPerformanceReport)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type createContractRequest struct {
	ClientName  string   `json:"client_name" binding:"required,min=2"`
	ClientEmail *string  `json:"client_email" binding:"omitempty,email"`
	ClientPhone *string  `json:"client_phone"`
	PackageID   string   `json:"package_id" binding:"required,uuid"`
	AddonIDs    []string `json:"addon_ids" binding:"omitempty,dive,uuid"`
	CouponCode  *string  `json:"coupon_code"`
}

func (h *Handler) createContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	packageID, err := uuid.Parse(strings.TrimSpace(req.PackageID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid package_id"})
		return
	}
	addonIDs := make([]uuid.UUID, 0, len(req.AddonIDs))
	for _, raw := range req.AddonIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid addon_ids"})
			return
		}
		addonIDs = append(addonIDs, id)
	}

	contract, err := h.contracts.CreateContract(c.Request.Context(), service.CreateContractInput{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		PackageID:   packageID,
		AddonIDs:    addonIDs,
		CouponCode:  req.CouponCode,
		Principal:   principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": toContractResponse(contract)})
}

func (h *Handler) listContracts(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	contracts, err := h.contracts.ListContracts(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	data := make([]contractResponse, 0, len(contracts))
	for i := range contracts {
		data = append(data, toContractResponse(&contracts[i]))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) getContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	contract, err := h.contracts.GetContract(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toContractResponse(contract)})
}

type updateContractRequest struct {
	ClientName  *string   `json:"client_name"`
	ClientEmail *string   `json:"client_email" binding:"omitempty,email"`
	ClientPhone *string   `json:"client_phone"`
	Status      *string   `json:"status"`
	Clauses     *[]string `json:"contract_clauses"`
}

func (h *Handler) updateContract(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	patch := service.ContractPatch{
		ClientName:  req.ClientName,
		ClientEmail: req.ClientEmail,
		ClientPhone: req.ClientPhone,
		Clauses:     req.Clauses,
	}
	if req.Status != nil {
		status := model.ContractStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		patch.Status = &status
	}

	contract, err := h.contracts.UpdateContract(c.Request.Context(), service.UpdateContractInput{
		ContractID: id,
		Patch:      patch,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toContractResponse(contract)})
}

func (h *Handler) listAuditLogs(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	entries, err := h.contracts.ListAuditEntries(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	data := make([]auditEntryResponse, 0, len(entries))
	for _, entry := range entries {
		data = append(data, toAuditEntryResponse(entry))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) contractPDF(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result, err := h.contracts.RenderContractPDF(c.Request.Context(), id, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	writeFile(c, "application/pdf", result)
}

func (h *Handler) approveAddon(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	contractID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	addonID, ok := parseIDParam(c, "addon_id")
	if !ok {
		return
	}

	contract, err := h.contracts.ApproveAddon(c.Request.Context(), service.ApproveAddonInput{
		ContractID: contractID,
		AddonID:    addonID,
		Principal:  principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toContractResponse(contract)})
}

type createClauseRequest struct {
	ServiceID      string `json:"service_id" binding:"required,uuid"`
	ClauseText     string `json:"clause_text" binding:"required,min=10"`
	DurationMonths int    `json:"duration_months" binding:"required,gt=0"`
	SortOrder      int    `json:"sort_order" binding:"required,gte=1"`
}

func (h *Handler) createClause(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	var req createClauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	serviceID, err := uuid.Parse(strings.TrimSpace(req.ServiceID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service_id"})
		return
	}

	clause, err := h.clauses.CreateClause(c.Request.Context(), service.CreateClauseInput{
		ServiceID:      serviceID,
		ClauseText:     req.ClauseText,
		DurationMonths: req.DurationMonths,
		SortOrder:      req.SortOrder,
		Principal:      principal,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": toClauseResponse(*clause)})
}

type updateClauseRequest struct {
	ServiceID      *string `json:"service_id" binding:"omitempty,uuid"`
	ClauseText     *string `json:"clause_text" binding:"omitempty,min=10"`
	DurationMonths *int    `json:"duration_months" binding:"omitempty,gt=0"`
	SortOrder      *int    `json:"sort_order" binding:"omitempty,gte=1"`
}

func (h *Handler) updateClause(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "clause_id")
	if !ok {
		return
	}

	var req updateClauseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	input := service.UpdateClauseInput{
		ClauseID:       id,
		ClauseText:     req.ClauseText,
		DurationMonths: req.DurationMonths,
		SortOrder:      req.SortOrder,
		Principal:      principal,
	}
	if req.ServiceID != nil {
		serviceID, err := uuid.Parse(strings.TrimSpace(*req.ServiceID))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid service_id"})
			return
		}
		input.ServiceID = &serviceID
	}

	clause, err := h.clauses.UpdateClause(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toClauseResponse(*clause)})
}

func (h *Handler) deleteClause(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	id, ok := parseIDParam(c, "clause_id")
	if !ok {
		return
	}

	if err := h.clauses.DeleteClause(c.Request.Context(), id, principal); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listClauses(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	clauses, err := h.clauses.ListClauses(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	data := make([]clauseResponse, 0, len(clauses))
	for _, clause := range clauses {
		data = append(data, toClauseResponse(clause))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) performanceReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	report, err := h.reports.PerformanceReport(c.Request.Context(), userID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": toPerformanceResponse(*report)})
}

func (h *Handler) exportPerformanceReport(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}
	userID, ok := parseIDParam(c, "user_id")
	if !ok {
		return
	}

	result, err := h.reports.ExportPerformanceReport(c.Request.Context(), userID, principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	writeFile(c, xlsxContentType, result)
}

func (h *Handler) companyPerformance(c *gin.Context) {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return
	}

	companies, err := h.reports.CompanyPerformance(c.Request.Context(), principal)
	if err != nil {
		h.handleError(c, err)
		return
	}
	data := make([]companyPerformanceResponse, 0, len(companies))
	for _, company := range companies {
		data = append(data, toCompanyPerformanceResponse(company))
	}
	c.JSON(http.StatusOK, gin.H{"data": data})
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCouponInactive), errors.Is(err, service.ErrCouponExpired):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrCouponLimitExceeded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrTransactionFailure):
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("transaction failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "transaction failed, retry the request"})
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return uuid.Nil, false
	}
	return id, true
}

func writeFile(c *gin.Context, contentType string, result *service.FileResult) {
	c.Header("Content-Disposition", "attachment; filename=\""+result.FileName+"\"")
	c.Data(http.StatusOK, contentType, result.Content)
}
