package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sacco-suite/coop_core_app/internal/apperrors"
	portssvc "github.com/sacco-suite/coop_core_app/internal/core/ports/services"
	"github.com/sacco-suite/coop_core_app/internal/dto"
	"github.com/sacco-suite/coop_core_app/internal/middleware"
)

// productHandler handles HTTP requests related to the product catalogue.
type productHandler struct {
	productService portssvc.ProductSvcFacade
}

func newProductHandler(ps portssvc.ProductSvcFacade) *productHandler {
	return &productHandler{productService: ps}
}

// registerProductRoutes registers routes related to products.
func registerProductRoutes(rg *gin.RouterGroup, productService portssvc.ProductSvcFacade) {
	h := newProductHandler(productService)

	products := rg.Group("/products")
	{
		products.POST("/savings", h.createSavingsProduct)
		products.GET("/savings", h.listSavingsProducts)
		products.GET("/savings/:productID", h.getSavingsProduct)
		products.POST("/loans", h.createLoanProduct)
		products.GET("/loans", h.listLoanProducts)
		products.GET("/loans/:productID", h.getLoanProduct)
	}
}

// createSavingsProduct godoc
// @Summary Create a savings product
// @Tags products
// @Accept json
// @Produce json
// @Param product body dto.CreateSavingsProductRequest true "Product terms"
// @Success 201 {object} domain.SavingsProduct
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /products/savings [post]
func (h *productHandler) createSavingsProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateSavingsProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	product, err := h.productService.CreateSavingsProduct(c.Request.Context(), req, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create savings product", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		}
		return
	}

	c.JSON(http.StatusCreated, product)
}

// createLoanProduct godoc
// @Summary Create a loan product
// @Tags products
// @Accept json
// @Produce json
// @Param product body dto.CreateLoanProductRequest true "Product terms"
// @Success 201 {object} domain.LoanProduct
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /products/loans [post]
func (h *productHandler) createLoanProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateLoanProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	product, err := h.productService.CreateLoanProduct(c.Request.Context(), req, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		} else {
			logger.Error("Failed to create loan product", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		}
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *productHandler) getSavingsProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	product, err := h.productService.GetSavingsProduct(c.Request.Context(), c.Param("productID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			logger.Error("Failed to get savings product", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		}
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *productHandler) getLoanProduct(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	product, err := h.productService.GetLoanProduct(c.Request.Context(), c.Param("productID"))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		} else {
			logger.Error("Failed to get loan product", slog.String("error", err.Error()))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve product"})
		}
		return
	}
	c.JSON(http.StatusOK, product)
}

func (h *productHandler) listSavingsProducts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	products, err := h.productService.ListSavingsProducts(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list savings products", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *productHandler) listLoanProducts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	products, err := h.productService.ListLoanProducts(c.Request.Context())
	if err != nil {
		logger.Error("Failed to list loan products", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list products"})
		return
	}
	c.JSON(http.StatusOK, products)
}
