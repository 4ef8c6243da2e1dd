package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/boulevard/bicycles/internal/domain"
	"github.com/boulevard/bicycles/internal/repository"
	"github.com/boulevard/bicycles/internal/service"
	"github.com/boulevard/bicycles/internal/validation"
)

type createProductRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=100"`
	Brand       string  `json:"brand" validate:"required,min=1,max=50"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Type        string  `json:"type" validate:"required,oneof=Mountain Road Hybrid BMX Electric"`
	Description string  `json:"description" validate:"required,min=1"`
	Quantity    *int    `json:"quantity" validate:"required,gte=0"`
}

type updateProductRequest struct {
	Name        *string  `json:"name" validate:"omitempty,min=1,max=100"`
	Brand       *string  `json:"brand" validate:"omitempty,min=1,max=50"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Type        *string  `json:"type" validate:"omitempty,oneof=Mountain Road Hybrid BMX Electric"`
	Description *string  `json:"description" validate:"omitempty,min=1"`
	Quantity    *int     `json:"quantity" validate:"omitempty,gte=0"`
	InStock     *bool    `json:"inStock"`
}

type listProductsQuery struct {
	Search    string `query:"search" json:"search" validate:"omitempty,max=100"`
	Type      string `query:"type" json:"type" validate:"omitempty,oneof=Mountain Road Hybrid BMX Electric"`
	Min       string `query:"min" json:"min" validate:"omitempty,numeric"`
	Max       string `query:"max" json:"max" validate:"omitempty,numeric"`
	SortBy    string `query:"sortBy" json:"sortBy" validate:"omitempty,oneof=name brand price quantity createdAt updatedAt"`
	SortOrder string `query:"sortOrder" json:"sortOrder" validate:"omitempty,oneof=asc desc"`
	Page      int    `query:"page" json:"page" validate:"omitempty,gte=1,lte=100000"`
	Limit     int    `query:"limit" json:"limit" validate:"omitempty,gte=1,lte=100"`
}

// ProductHandler handles bicycle catalogue endpoints.
type ProductHandler struct {
	products  *service.ProductService
	validator *validation.Validator
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(products *service.ProductService, v *validation.Validator) *ProductHandler {
	return &ProductHandler{products: products, validator: v}
}

// Create handles POST /api/products.
func (h *ProductHandler) Create(c echo.Context) error {
	var req createProductRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}

	principal, _ := GetPrincipal(c)
	product, err := h.products.Create(c.Request().Context(), principal, domain.Product{
		Name:        req.Name,
		Brand:       req.Brand,
		Price:       req.Price,
		Type:        domain.ProductType(req.Type),
		Description: req.Description,
		Quantity:    *req.Quantity,
	})
	if err != nil {
		return err
	}

	return JSON(c, http.StatusCreated, "Bicycle created successfully!", product)
}

// List handles GET /api/products.
func (h *ProductHandler) List(c echo.Context) error {
	var q listProductsQuery
	if err := bindQuery(c, h.validator, &q); err != nil {
		return err
	}

	query := domain.ProductQuery{
		Search:    q.Search,
		Type:      domain.ProductType(q.Type),
		SortBy:    q.SortBy,
		SortOrder: domain.SortOrder(q.SortOrder),
		Page:      q.Page,
		Limit:     q.Limit,
	}
	if query.Page < 1 {
		query.Page = repository.DefaultPage
	}
	if query.Limit < 1 {
		query.Limit = repository.DefaultLimit
	}
	if q.Min != "" {
		v, _ := strconv.ParseFloat(q.Min, 64)
		query.MinPrice = &v
	}
	if q.Max != "" {
		v, _ := strconv.ParseFloat(q.Max, 64)
		query.MaxPrice = &v
	}

	page, err := h.products.List(c.Request().Context(), query)
	if err != nil {
		return err
	}

	return JSONList(c, http.StatusOK, "Bicycles retrieved successfully!", page.Products, PaginationMeta{
		Page:  page.Page,
		Limit: page.Limit,
		Total: page.Total,
	})
}

// Get handles GET /api/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	product, err := h.products.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "Bicycle retrieved successfully!", product)
}

// Update handles PUT /api/products/:id.
func (h *ProductHandler) Update(c echo.Context) error {
	var req updateProductRequest
	if err := bindBody(c, h.validator, &req); err != nil {
		return err
	}

	update := domain.ProductUpdate{
		Name:        req.Name,
		Brand:       req.Brand,
		Price:       req.Price,
		Description: req.Description,
		Quantity:    req.Quantity,
		InStock:     req.InStock,
	}
	if req.Type != nil {
		t := domain.ProductType(*req.Type)
		update.Type = &t
	}

	product, err := h.products.Update(c.Request().Context(), c.Param("id"), update)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "Bicycle updated successfully!", product)
}

// Delete handles DELETE /api/products/:id.
func (h *ProductHandler) Delete(c echo.Context) error {
	if _, err := h.products.Delete(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return JSON(c, http.StatusOK, "Bicycle deleted successfully!", struct{}{})
}
