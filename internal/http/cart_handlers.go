package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aerium/internal/service"
)

type addCartItemReq struct {
	ProductID           int64         `json:"productId"`
	AromaID             *int64        `json:"aromaId"`
	UserID              *int64        `json:"userId"` // принимается и игнорируется, см. createConfigurationReq
	ModifiedBoneGroupID *int64        `json:"modifiedBoneGroupId"`
	Quantity            int64         `json:"quantity"`
	ProductColorID      *int64        `json:"productColorId"`
	SelectedColor       colorSelector `json:"selectedColor"`
	Price               *float64      `json:"price"`
}

// @Summary Add cart line
// @Tags cart
// @Accept json
// @Produce json
// @Param input body addCartItemReq true "Line"
// @Success 201 {object} domain.CartLine
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /cart [post]
func (s *Server) addCartItem(c *gin.Context) {
	var req addCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	line, err := s.cart.AddItem(c, requester(c), service.AddItemInput{
		ProductID:           req.ProductID,
		AromaID:             req.AromaID,
		ModifiedBoneGroupID: req.ModifiedBoneGroupID,
		ProductColorID:      req.ProductColorID,
		SelectedColor:       string(req.SelectedColor),
		Quantity:            req.Quantity,
		ExplicitPrice:       req.Price,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, line)
}

// @Summary Get cart with total
// @Tags cart
// @Produce json
// @Success 200 {object} domain.CartView
// @Security BearerAuth
// @Router /cart [get]
func (s *Server) getCart(c *gin.Context) {
	view, err := s.cart.GetCart(c, requester(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

type updateCartItemReq struct {
	Quantity       int64      `json:"quantity"`
	ProductColorID optionalID `json:"productColorId"`
}

// @Summary Update cart line quantity and color
// @Tags cart
// @Accept json
// @Produce json
// @Param id path int true "Line ID"
// @Param input body updateCartItemReq true "Update"
// @Success 200 {object} domain.CartLine
// @Failure 400 {object} map[string]string
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /cart/{id} [put]
func (s *Server) updateCartItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req updateCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	line, err := s.cart.UpdateItem(c, id, requester(c), req.Quantity, req.ProductColorID.Set, req.ProductColorID.Value)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, line)
}

// @Summary Remove cart line (soft delete)
// @Tags cart
// @Param id path int true "Line ID"
// @Success 204
// @Failure 403 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Security BearerAuth
// @Router /cart/{id} [delete]
func (s *Server) removeCartItem(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := s.cart.RemoveItem(c, id, requester(c)); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
