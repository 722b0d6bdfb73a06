package orders

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/authgate/authgate/internal/auth"
	"github.com/authgate/authgate/internal/health"
	"github.com/authgate/authgate/internal/observability"
	"github.com/authgate/authgate/internal/service"
)

// CreateOrderRequest is the payload for creating an order.
type CreateOrderRequest struct {
	CustomerName string  `json:"customerName" binding:"required"`
	Product      string  `json:"product" binding:"required"`
	Amount       float64 `json:"amount" binding:"required,gt=0"`
}

// UpdateOrderRequest is the payload for updating an order's status.
type UpdateOrderRequest struct {
	Status string `json:"status" binding:"required"`
}

// Store is the order storage the handlers depend on.
type Store interface {
	List() []Order
	Get(id int) (Order, bool)
	Create(customerName, product string, amount float64, createdBy string) Order
	UpdateStatus(id int, status, updatedBy string) (Order, bool)
	Delete(id int) bool
}

// Handler serves the orders endpoints.
type Handler struct {
	repo   Store
	logger observability.Logger
}

// NewHandler creates an orders handler.
func NewHandler(repo Store, logger observability.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// NewRouter builds the orders service router. The gateway strips the
// /api/orders prefix, so endpoints mount at the root. The forwarded
// bearer token is validated here as well: the X-User-* headers are
// metadata, never the basis for enforcement.
func NewRouter(repo Store, validator auth.TokenValidator, extractor *auth.Extractor, logger observability.Logger) *gin.Engine {
	engine := service.NewEngine()
	engine.Use(service.Recovery(logger), service.RequestLogger(logger))

	checker := health.NewChecker("")
	engine.GET("/health", gin.WrapF(checker.HealthHandler()))

	h := NewHandler(repo, logger)

	authed := engine.Group("", service.Authenticate(validator, extractor, logger))

	read := authed.Group("", service.RequireAnyRole(service.RoleUser, service.RoleAdmin, service.RoleSupport))
	read.GET("/", h.List)
	read.GET("/:id", h.Get)

	admin := authed.Group("", service.RequireAnyRole(service.RoleAdmin))
	admin.POST("/", h.Create)
	admin.PUT("/:id", h.Update)
	admin.PATCH("/:id", h.Update)
	admin.DELETE("/:id", h.Delete)

	return engine
}

// List returns all orders plus the gateway-forwarded identity metadata.
func (h *Handler) List(c *gin.Context) {
	metadata := service.MetadataFrom(c)
	c.JSON(http.StatusOK, gin.H{
		"orders": h.repo.List(),
		"metadata": gin.H{
			"requestedBy": metadata.Username,
			"userId":      metadata.UserID,
			"country":     metadata.Country,
			"department":  metadata.Department,
			"tenant":      metadata.Tenant,
			"timestamp":   time.Now().UTC(),
		},
	})
}

// Get returns a single order.
func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	order, ok := h.repo.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// Create adds a new order.
func (h *Handler) Create(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	metadata := service.MetadataFrom(c)
	order := h.repo.Create(req.CustomerName, req.Product, req.Amount, metadata.Username)

	h.logger.Info("order created",
		observability.Int("order_id", order.ID),
		observability.String("created_by", metadata.Username),
	)
	c.JSON(http.StatusCreated, order)
}

// Update changes an order's status.
func (h *Handler) Update(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	metadata := service.MetadataFrom(c)
	order, ok := h.repo.UpdateStatus(id, req.Status, metadata.Username)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return
	}
	c.JSON(http.StatusOK, order)
}

// Delete removes an order.
func (h *Handler) Delete(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid order id"})
		return
	}

	if !h.repo.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"message": "order not found"})
		return
	}
	c.Status(http.StatusNoContent)
}
