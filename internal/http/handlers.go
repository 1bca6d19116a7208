package httpapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"aerium/internal/repository"
	"aerium/internal/service"
)

type Server struct {
	engine  *gin.Engine
	auth    *service.AuthService
	catalog *service.CatalogService
	configs *service.ConfigurationService
	cart    *service.CartService
	orders  *service.OrderService
}

func NewServer(corsOrigins []string, auth *service.AuthService, catalog *service.CatalogService,
	configs *service.ConfigurationService, cart *service.CartService, orders *service.OrderService) *Server {
	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
	}))
	s := &Server{engine: r, auth: auth, catalog: catalog, configs: configs, cart: cart, orders: orders}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	// Swagger UI
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	v1 := s.engine.Group("/api/v1")
	{
		v1.POST("/auth/register", s.register)
		v1.POST("/auth/login", s.login)

		v1.GET("/products", s.listProducts)
		v1.GET("/products/:id", s.getProduct)
		v1.GET("/products/:id/bones", s.listBones)
		v1.GET("/aromas", s.listAromas)

		admin := v1.Group("", s.authMiddleware, s.elevatedMiddleware)
		{
			admin.POST("/products", s.createProduct)
			admin.POST("/products/:id/bones", s.addBone)
			admin.POST("/products/:id/colors", s.addColor)
			admin.POST("/aromas", s.createAroma)

			admin.GET("/orders", s.listOrders)
			admin.PUT("/orders/:id/status", s.setOrderStatus)
			admin.DELETE("/orders/:id", s.deleteOrder)
		}

		auth := v1.Group("", s.authMiddleware)
		{
			auth.POST("/configurations", s.createConfiguration)
			auth.GET("/configurations", s.listConfigurations)
			auth.GET("/configurations/:id", s.getConfiguration)
			auth.PUT("/configurations/:id", s.updateConfiguration)

			auth.GET("/cart", s.getCart)
			auth.POST("/cart", s.addCartItem)
			auth.PUT("/cart/:id", s.updateCartItem)
			auth.DELETE("/cart/:id", s.removeCartItem)

			auth.POST("/orders", s.createOrder)
			auth.GET("/orders/:id", s.getOrder)
			auth.POST("/orders/:id/confirm-payment", s.confirmPayment)
		}
	}
}

// optionalID отличает отсутствующий JSON-ключ от явного null:
// присутствие ключа (даже с null) перезаписывает хранимое значение
type optionalID struct {
	Set   bool
	Value *int64
}

func (o *optionalID) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		return nil
	}
	var v int64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// colorSelector легаси-поле selectedColor: на проводе строка или число
type colorSelector string

func (cs *colorSelector) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err == nil {
		*cs = colorSelector(str)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*cs = colorSelector(n.String())
	return nil
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}

func mapErrorToStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrInvalidState),
		errors.Is(err, service.ErrEmptyCart),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(mapErrorToStatus(err), gin.H{"error": err.Error()})
}
