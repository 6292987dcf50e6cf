package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shop-backend/models"
	"shop-backend/repositories"
	"shop-backend/services"
)

type CartController struct {
	carts    *services.CartService
	products *services.ProductService
}

func NewCartController(carts *services.CartService, products *services.ProductService) *CartController {
	return &CartController{carts: carts, products: products}
}

// @Summary Create cart
// @Tags Carts
// @Produce json
// @Success 201 {object} models.Response
// @Router /api/carts [post]
func (ctrl *CartController) CreateCart(c *gin.Context) {
	cart, err := ctrl.carts.Create(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Status: "success", Payload: cart})
}

// @Summary Get cart
// @Tags Carts
// @Produce json
// @Param cid path string true "Cart ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/carts/{cid} [get]
func (ctrl *CartController) GetCart(c *gin.Context) {
	cart, err := ctrl.carts.Get(c.Request.Context(), c.Param("cid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Status: "success", Payload: cart.Products})
}

// @Summary Add product to cart
// @Description Appends a line item or increments the quantity of an existing one
// @Tags Carts
// @Produce json
// @Param cid path string true "Cart ID"
// @Param pid path string true "Product ID"
// @Success 201 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/carts/{cid}/product/{pid} [post]
func (ctrl *CartController) AddProduct(c *gin.Context) {
	pid := c.Param("pid")

	// The product must exist before it can be referenced from a cart; the
	// merge itself never re-checks.
	if _, err := ctrl.products.GetByID(c.Request.Context(), pid); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Status: "error", Error: "product not found"})
			return
		}
		respondError(c, err)
		return
	}

	cart, err := ctrl.carts.AddProduct(c.Request.Context(), c.Param("cid"), pid, 1)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Status: "error", Error: "cart not found"})
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.Response{Status: "success", Payload: cart})
}

// @Summary Remove product from cart
// @Description Removing a product that is not in the cart is a no-op success
// @Tags Carts
// @Produce json
// @Param cid path string true "Cart ID"
// @Param pid path string true "Product ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/carts/{cid}/products/{pid} [delete]
func (ctrl *CartController) RemoveProduct(c *gin.Context) {
	cart, err := ctrl.carts.RemoveProduct(c.Request.Context(), c.Param("cid"), c.Param("pid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Status: "success", Payload: cart})
}

// @Summary Replace cart contents
// @Tags Carts
// @Accept json
// @Produce json
// @Param cid path string true "Cart ID"
// @Param products body models.ReplaceCartRequest true "New line items"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/carts/{cid} [put]
func (ctrl *CartController) ReplaceCart(c *gin.Context) {
	var req models.ReplaceCartRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Products == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "products must be an array"})
		return
	}

	lines := make([]models.CartLine, len(req.Products))
	for i, input := range req.Products {
		lines[i] = models.CartLine{Product: input.Product, Quantity: input.Quantity}
	}

	cart, err := ctrl.carts.Replace(c.Request.Context(), c.Param("cid"), lines)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Status: "success", Payload: cart})
}

// @Summary Update line quantity
// @Description Overwrites the quantity of an existing line item
// @Tags Carts
// @Accept json
// @Produce json
// @Param cid path string true "Cart ID"
// @Param pid path string true "Product ID"
// @Param quantity body models.UpdateQuantityRequest true "New quantity"
// @Success 200 {object} models.Response
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/carts/{cid}/products/{pid} [put]
func (ctrl *CartController) UpdateQuantity(c *gin.Context) {
	var req models.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Status: "error", Error: "quantity must be a positive number"})
		return
	}

	cart, err := ctrl.carts.UpdateQuantity(c.Request.Context(), c.Param("cid"), c.Param("pid"), *req.Quantity)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Status: "success", Payload: cart})
}

// @Summary Clear cart
// @Tags Carts
// @Produce json
// @Param cid path string true "Cart ID"
// @Success 200 {object} models.Response
// @Failure 404 {object} models.ErrorResponse
// @Router /api/carts/{cid} [delete]
func (ctrl *CartController) ClearCart(c *gin.Context) {
	cart, err := ctrl.carts.Clear(c.Request.Context(), c.Param("cid"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.Response{Status: "success", Payload: cart})
}
