package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"aerium/internal/domain"
	"aerium/internal/repository"
)

// @Summary List products
// @Tags catalog
// @Produce json
// @Param q query string false "Name contains"
// @Param type query string false "MAIN_PRODUCT or ACCESSORY"
// @Success 200 {array} domain.Product
// @Router /products [get]
func (s *Server) listProducts(c *gin.Context) {
	var f repository.ProductFilter
	f.NameSubstring = c.Query("q")
	if v := c.Query("type"); v != "" {
		t := domain.ProductType(v)
		f.Type = &t
	}
	list, err := s.catalog.ListProducts(c, f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// @Summary Get product by id
// @Tags catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} domain.Product
// @Failure 404 {object} map[string]string
// @Router /products/{id} [get]
func (s *Server) getProduct(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	p, err := s.catalog.GetProduct(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary List stylable mesh regions of a product
// @Tags catalog
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {array} domain.Bone
// @Failure 404 {object} map[string]string
// @Router /products/{id}/bones [get]
func (s *Server) listBones(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	bones, err := s.catalog.ListBones(c, id)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, bones)
}

// @Summary List aromas
// @Tags catalog
// @Produce json
// @Success 200 {array} domain.Aroma
// @Router /aromas [get]
func (s *Server) listAromas(c *gin.Context) {
	list, err := s.catalog.ListAromas(c)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

type createProductReq struct {
	Name   string  `json:"name"`
	Price  float64 `json:"price"`
	Type   string  `json:"type"`
	Status string  `json:"status"`
}

// @Summary Create product (operator)
// @Tags catalog
// @Accept json
// @Produce json
// @Param input body createProductReq true "Product"
// @Success 201 {object} domain.Product
// @Failure 400 {object} map[string]string
// @Router /products [post]
func (s *Server) createProduct(c *gin.Context) {
	var req createProductReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	p, err := s.catalog.CreateProduct(c, domain.Product{
		Name:   req.Name,
		Price:  req.Price,
		Type:   domain.ProductType(req.Type),
		Status: domain.ProductStatus(req.Status),
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type addBoneReq struct {
	Name            string `json:"name"`
	DefaultDetail   string `json:"defaultDetail"`
	DefaultStyle    string `json:"defaultStyle"`
	IsConfiguration bool   `json:"isConfiguration"`
}

// @Summary Add mesh region to a product (operator)
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body addBoneReq true "Bone"
// @Success 201 {object} domain.Bone
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id}/bones [post]
func (s *Server) addBone(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req addBoneReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	b, err := s.catalog.AddBone(c, domain.Bone{
		ProductID:       id,
		Name:            req.Name,
		DefaultDetail:   req.DefaultDetail,
		DefaultStyle:    req.DefaultStyle,
		IsConfiguration: req.IsConfiguration,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

type addColorReq struct {
	ColorCode string `json:"colorCode"`
	ColorName string `json:"colorName"`
}

// @Summary Add accessory color (operator)
// @Tags catalog
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param input body addColorReq true "Color"
// @Success 201 {object} domain.ProductColor
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /products/{id}/colors [post]
func (s *Server) addColor(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var req addColorReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	pc, err := s.catalog.AddColor(c, domain.ProductColor{
		ProductID: id,
		ColorCode: req.ColorCode,
		ColorName: req.ColorName,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, pc)
}

type createAromaReq struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// @Summary Create aroma (operator)
// @Tags catalog
// @Accept json
// @Produce json
// @Param input body createAromaReq true "Aroma"
// @Success 201 {object} domain.Aroma
// @Failure 400 {object} map[string]string
// @Router /aromas [post]
func (s *Server) createAroma(c *gin.Context) {
	var req createAromaReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	a, err := s.catalog.CreateAroma(c, domain.Aroma{Name: req.Name, Price: req.Price})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, a)
}
