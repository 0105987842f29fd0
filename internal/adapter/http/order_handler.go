package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	domain "github.com/Daniel-Kav/order-microservice/internal/entity"
	"github.com/Daniel-Kav/order-microservice/internal/logging"
	"github.com/Daniel-Kav/order-microservice/internal/usecase"
	"github.com/gin-gonic/gin"
)

const (
	readTimeout  = 2 * time.Second
	writeTimeout = 3 * time.Second
	// Mutations that round-trip to the payment gateway get longer.
	gatewayTimeout = 10 * time.Second
)

type OrderHandler struct {
	lifecycle *usecase.OrderLifecycle
}

func NewOrderHandler(lifecycle *usecase.OrderLifecycle) *OrderHandler {
	return &OrderHandler{lifecycle: lifecycle}
}

type orderItemReq struct {
	ProductID string  `json:"productId" binding:"required"`
	Name      string  `json:"name" binding:"required"`
	Price     float64 `json:"price" binding:"gte=0"`
	Quantity  int     `json:"quantity" binding:"gte=1"`
}

type shippingAddressReq struct {
	Street  string `json:"street" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	ZipCode string `json:"zipCode" binding:"required"`
	Country string `json:"country" binding:"required"`
}

type createOrderReq struct {
	UserID string `json:"userId" binding:"required"`
	// An empty item list is accepted and yields a zero-total order.
	Items           []orderItemReq     `json:"items" binding:"dive"`
	ShippingAddress shippingAddressReq `json:"shippingAddress" binding:"required"`
}

type updateOrderReq struct {
	Status *string `json:"status"`
}

func (h *OrderHandler) CreateOrder(c *gin.Context) {
	var req createOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
		})
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), gatewayTimeout)
	defer cancel()

	order, err := h.lifecycle.CreateOrder(ctx, usecase.CreateOrderInput{
		UserID: req.UserID,
		Items:  items,
		ShippingAddress: domain.ShippingAddress{
			Street:  req.ShippingAddress.Street,
			City:    req.ShippingAddress.City,
			State:   req.ShippingAddress.State,
			ZipCode: req.ShippingAddress.ZipCode,
			Country: req.ShippingAddress.Country,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	var (
		orders []domain.Order
		err    error
	)
	if userID := c.Query("userId"); userID != "" {
		orders, err = h.lifecycle.FindByUser(ctx, userID)
	} else {
		orders, err = h.lifecycle.FindAll(ctx)
	}
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readTimeout)
	defer cancel()

	order, err := h.lifecycle.FindOne(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) UpdateOrder(c *gin.Context) {
	var req updateOrderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed: " + err.Error()})
		return
	}

	var status *domain.OrderStatus
	if req.Status != nil {
		s, err := domain.ParseOrderStatus(*req.Status)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		status = &s
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	order, err := h.lifecycle.UpdateOrder(ctx, c.Param("id"), status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) ConfirmPayment(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), gatewayTimeout)
	defer cancel()

	order, err := h.lifecycle.ConfirmPayment(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) CancelOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), gatewayTimeout)
	defer cancel()

	order, err := h.lifecycle.CancelOrder(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), writeTimeout)
	defer cancel()

	deleted, err := h.lifecycle.DeleteOrder(ctx, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": deleted})
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, usecase.ErrInvalidState),
		errors.Is(err, usecase.ErrCreateOrder),
		errors.Is(err, usecase.ErrConfirmPayment):
		status = http.StatusBadRequest
	case errors.Is(err, usecase.ErrConflict):
		status = http.StatusConflict
	}
	if status == http.StatusInternalServerError {
		logging.From(c).Error("request failed", "err", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
