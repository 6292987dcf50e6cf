package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"shop-backend/config"
	"shop-backend/libs"
	"shop-backend/models"
	"shop-backend/realtime"
	"shop-backend/repositories"
	"shop-backend/services"
	"shop-backend/utils"
)

type ProductController struct {
	products *services.ProductService
	hub      *realtime.Hub
}

func NewProductController(products *services.ProductService, hub *realtime.Hub) *ProductController {
	return &ProductController{products: products, hub: hub}
}

// respondError maps the service error taxonomy onto HTTP statuses: absent is
// 404, contract violations are 400, everything else is a storage failure.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		c.JSON(http.StatusNotFound, models.ErrorResponse{Status: "error", Error: "not found"})
	case errors.Is(err, repositories.ErrImmutableID):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "cannot update id field"})
	case services.IsValidation(err):
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{Status: "error", Error: "internal server error"})
	}
}

func productCacheKey(params services.ListParams) string {
	return fmt.Sprintf("products_list_p%d_l%d_s%s_q%s", params.Page, params.Limit, params.Sort, params.Query)
}

func invalidateProductCache() {
	if config.RedisClient == nil {
		return
	}
	ctx := context.Background()
	iter := config.RedisClient.Scan(ctx, 0, "products_list_*", 0).Iterator()
	for iter.Next(ctx) {
		config.RedisClient.Del(ctx, iter.Val())
	}
}

// buildPageLinks renders prev/next URLs for the page, keeping only the
// request parameters that differ from their defaults.
func buildPageLinks(c *gin.Context, params services.ListParams, page *services.ProductPage) (prev, next *string) {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	base := fmt.Sprintf("%s://%s%s", scheme, c.Request.Host, c.Request.URL.Path)

	values := url.Values{}
	if params.Limit != services.DefaultPageLimit {
		values.Set("limit", strconv.Itoa(params.Limit))
	}
	if params.Query != "" {
		values.Set("query", params.Query)
	}
	if params.Sort != "" {
		values.Set("sort", params.Sort)
	}

	link := func(pageNum int) *string {
		v := url.Values{}
		for k, vals := range values {
			v[k] = vals
		}
		v.Set("page", strconv.Itoa(pageNum))
		u := base + "?" + v.Encode()
		return &u
	}

	if page.PrevPage != nil {
		prev = link(*page.PrevPage)
	}
	if page.NextPage != nil {
		next = link(*page.NextPage)
	}
	return prev, next
}

// @Summary List products
// @Description Paginated product list with filtering and price sorting
// @Tags Products
// @Produce json
// @Param limit query int false "Items per page" default(10)
// @Param page query int false "Page number" default(1)
// @Param sort query string false "Price sort" Enums(asc, desc)
// @Param query query string false "JSON object filter, status boolean, or category match"
// @Success 200 {object} models.PaginatedProducts
// @Failure 400 {object} models.ErrorResponse
// @Router /api/products [get]
func (ctrl *ProductController) GetProducts(c *gin.Context) {
	params := services.ListParams{
		Sort:  c.Query("sort"),
		Query: c.Query("query"),
	}
	// Explicit values below 1 are rejected here: the service treats a zero
	// ListParams field as "parameter absent", so an actual ?limit=0 must not
	// survive past parsing.
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "limit must be an integer"})
			return
		}
		if n < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "limit and page must be positive integers"})
			return
		}
		params.Limit = n
	}
	if raw := c.Query("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "page must be an integer"})
			return
		}
		if n < 1 {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "limit and page must be positive integers"})
			return
		}
		params.Page = n
	}

	cacheKey := productCacheKey(params)
	if config.RedisClient != nil {
		cached, err := config.RedisClient.Get(c.Request.Context(), cacheKey).Result()
		if err == nil {
			c.Data(http.StatusOK, "application/json", []byte(cached))
			return
		}
	}

	page, err := ctrl.products.GetPaginated(c.Request.Context(), params)
	if err != nil {
		respondError(c, err)
		return
	}

	prevLink, nextLink := buildPageLinks(c, services.ListParams{
		Limit: page.Limit,
		Page:  page.Page,
		Sort:  params.Sort,
		Query: params.Query,
	}, page)

	response := models.PaginatedProducts{
		Status:      "success",
		Payload:     page.Products,
		TotalPages:  page.TotalPages,
		PrevPage:    page.PrevPage,
		NextPage:    page.NextPage,
		Page:        page.Page,
		HasPrevPage: page.HasPrev,
		HasNextPage: page.HasNext,
		PrevLink:    prevLink,
		NextLink:    nextLink,
	}

	if config.RedisClient != nil {
		if jsonData, err := json.Marshal(response); err == nil {
			config.RedisClient.Set(c.Request.Context(), cacheKey, string(jsonData), 5*time.Minute)
		}
	}

	c.JSON(http.StatusOK, response)
}

// @Summary Get product
// @Tags Products
// @Produce json
// @Param pid path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/products/{pid} [get]
func (ctrl *ProductController) GetProductByID(c *gin.Context) {
	product, err := ctrl.products.GetByID(c.Request.Context(), c.Param("pid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Status: "success", Payload: product})
}

// @Summary Create product
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param product body models.CreateProductRequest true "Product fields"
// @Success 201 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Router /api/products [post]
func (ctrl *ProductController) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "invalid request body"})
		return
	}

	product, err := ctrl.products.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateProductCache()
	ctrl.hub.BroadcastProducts(c.Request.Context(), ctrl.products)

	c.JSON(http.StatusCreated, models.Response{Status: "success", Payload: product})
}

// @Summary Update product
// @Description Partial update; the id field is immutable
// @Tags Products
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param pid path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/products/{pid} [put]
func (ctrl *ProductController) UpdateProduct(c *gin.Context) {
	fields := map[string]any{}
	if err := c.ShouldBindJSON(&fields); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "invalid request body"})
		return
	}

	product, err := ctrl.products.Update(c.Request.Context(), c.Param("pid"), fields)
	if err != nil {
		respondError(c, err)
		return
	}

	invalidateProductCache()

	c.JSON(http.StatusOK, models.Response{Status: "success", Payload: product})
}

// @Summary Delete product
// @Tags Products
// @Security BearerAuth
// @Produce json
// @Param pid path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/products/{pid} [delete]
func (ctrl *ProductController) DeleteProduct(c *gin.Context) {
	deleted, err := ctrl.products.Delete(c.Request.Context(), c.Param("pid"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		c.JSON(http.StatusNotFound, models.ErrorResponse{Status: "error", Error: "product not found"})
		return
	}

	invalidateProductCache()
	ctrl.hub.BroadcastProducts(c.Request.Context(), ctrl.products)

	c.JSON(http.StatusOK, models.Response{Status: "success", Message: "product deleted"})
}

// @Summary Upload product thumbnail
// @Description Stores the image locally (and on Cloudinary when configured) and appends its URL to the product
// @Tags Products
// @Security BearerAuth
// @Accept multipart/form-data
// @Produce json
// @Param pid path string true "Product ID"
// @Param image formData file true "Thumbnail image"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/products/{pid}/thumbnails [post]
func (ctrl *ProductController) UploadThumbnail(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "image file required"})
		return
	}

	relPath, err := utils.SaveUploadedImage(c, fileHeader, "products")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: err.Error()})
		return
	}

	thumbURL := "/uploads/" + filepath.ToSlash(relPath)
	if libs.Configured() {
		hosted, err := libs.UploadToCloudinary(filepath.Join(config.AppConfig.UploadDir, relPath))
		if err == nil {
			thumbURL = hosted
		}
	}

	product, err := ctrl.products.AppendThumbnail(c.Request.Context(), c.Param("pid"), thumbURL)
	if err != nil {
		utils.DeleteFile(relPath)
		respondError(c, err)
		return
	}

	invalidateProductCache()

	c.JSON(http.StatusOK, models.Response{Status: "success", Payload: product})
}
