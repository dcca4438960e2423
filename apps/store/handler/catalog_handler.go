package handler

import (
	"net/http"
	"strings"

	"go-grocery/apps/store/service"
	"go-grocery/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	Svc      *service.CatalogService
	PageSize int
}

func NewCatalogHandler(svc *service.CatalogService, pageSize int) *CatalogHandler {
	if pageSize <= 0 {
		pageSize = 5
	}
	return &CatalogHandler{Svc: svc, PageSize: pageSize}
}

// GET /categories/
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	req, ok := parsePage(c, h.PageSize)
	if !ok {
		response.Error(c, http.StatusNotFound, "Invalid page.")
		return
	}

	page, err := h.Svc.ListCategories(c.Request.Context(), req.Offset(), req.Size)
	if err != nil {
		writeError(c, err)
		return
	}
	if !req.inRange(page.Count) {
		response.Error(c, http.StatusNotFound, "Invalid page.")
		return
	}
	response.JSON(c, http.StatusOK, newPageBody(c, req, page.Count, page.Results))
}

// GET /categories/:id/
func (h *CatalogHandler) GetCategory(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	category, err := h.Svc.GetCategory(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, category)
}

// GET /products/?search=
func (h *CatalogHandler) ListProducts(c *gin.Context) {
	req, ok := parsePage(c, h.PageSize)
	if !ok {
		response.Error(c, http.StatusNotFound, "Invalid page.")
		return
	}

	query := strings.TrimSpace(c.Query("search"))
	page, err := h.Svc.ListProducts(c.Request.Context(), query, req.Offset(), req.Size)
	if err != nil {
		writeError(c, err)
		return
	}
	if !req.inRange(page.Count) {
		response.Error(c, http.StatusNotFound, "Invalid page.")
		return
	}
	response.JSON(c, http.StatusOK, newPageBody(c, req, page.Count, page.Results))
}

// GET /products/:id/
func (h *CatalogHandler) GetProduct(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	product, err := h.Svc.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, product)
}
