package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

// @Summary Create order from active cart lines
// @Tags orders
// @Produce json
// @Success 201 {object} domain.OrderDetail
// @Failure 400 {object} map[string]string
// @Security BearerAuth
// @Router /orders [post]
func (s *Server) createOrder(c *gin.Context) {
	detail, err := s.orders.CreateOrder(c, requester(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

// @Summary Get order by id
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.OrderDetail
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{id} [get]
func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	detail, err := s.orders.GetOrder(c, id, requester(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// @Summary Buyer confirms payment (WAITING -> PENDING)
// @Tags orders
// @Produce json
// @Param id path int true "Order ID"
// @Success 200 {object} domain.OrderDetail
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{id}/confirm-payment [post]
func (s *Server) confirmPayment(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	detail, err := s.orders.ConfirmPayment(c, id, requester(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

type setOrderStatusReq struct {
	Status string `json:"status"`
}

// @Summary Set order status (operator)
// @Tags orders
// @Accept json
// @Produce json
// @Param id path int true "Order ID"
// @Param input body setOrderStatusReq true "Status"
// @Success 200 {object} domain.OrderDetail
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{id}/status [put]
func (s *Server) setOrderStatus(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req setOrderStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	detail, err := s.orders.SetStatus(c, id, domain.OrderStatus(req.Status))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// @Summary List orders (operator)
// @Tags orders
// @Produce json
// @Param userId query int false "Filter by user"
// @Param status query string false "Filter by status"
// @Param page query int false "Page, 1-based"
// @Param limit query int false "Page size"
// @Success 200 {object} map[string]any
// @Security BearerAuth
// @Router /orders [get]
func (s *Server) listOrders(c *gin.Context) {
	var f repository.OrderFilter
	if v := c.Query("userId"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			f.UserID = &id
		}
	}
	if v := c.Query("status"); v != "" {
		st := domain.OrderStatus(v)
		f.Status = &st
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 {
		limit = 20
	}
	list, total, err := s.orders.ListOrders(c, f, repository.Page{Offset: (page - 1) * limit, Limit: limit})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": list, "total": total, "page": page, "limit": limit})
}

// @Summary Delete order (operator, hard delete)
// @Tags orders
// @Param id path int true "Order ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /orders/{id} [delete]
func (s *Server) deleteOrder(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.orders.DeleteOrder(c, id); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
