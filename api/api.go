package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"orderdesk"
	"orderdesk/common"
	"orderdesk/domain"
	"orderdesk/srv"
)

func RunServer() *http.Server {
	gin.SetMode(gin.ReleaseMode)
	ctrl, err := NewController()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize controller")
	}
	router := DefineRoutes(ctrl)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", common.GetServerPort()),
		Handler: router.Handler(),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Failed to start API server")
		}
	}()

	return server
}

type Controller struct {
	service srv.Storage

	// defaultCurrency backs product creation when the payload carries no
	// currency; empty falls through to USD.
	defaultCurrency domain.CurrencyType
}

func NewController() (Controller, error) {
	service, err := orderdesk.GetService()
	if err != nil {
		return Controller{}, err
	}

	config, err := common.LoadLocalConfig()
	if err != nil {
		return Controller{}, err
	}

	return Controller{
		service:         service,
		defaultCurrency: domain.CurrencyType(config.DefaultCurrency),
	}, nil
}

func DefineRoutes(ctrl Controller) *gin.Engine {
	r := gin.Default()
	r.ForwardedByClientIP = true
	r.SetTrustedProxies(nil)
	r.Use(otelgin.Middleware("orderdesk"))

	allowedOrigins, err := GetAllowedOrigins()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid allowed origins configuration")
	}
	r.Use(CORSMiddleware(allowedOrigins))

	apiRoutes := r.Group("api/v1")
	apiRoutes.POST("/login", ctrl.LoginHandler)
	apiRoutes.GET("/data", ctrl.GetDataHandler)
	apiRoutes.POST("/data/:key", ctrl.SaveDataHandler)

	workflowRoutes := apiRoutes.Group("/workflows")
	workflowRoutes.POST("", ctrl.CreateWorkflowHandler)
	workflowRoutes.GET("", ctrl.GetWorkflowsHandler)
	workflowRoutes.GET("/:id", ctrl.GetWorkflowHandler)
	workflowRoutes.PUT("/:id", ctrl.UpdateWorkflowHandler)
	workflowRoutes.DELETE("/:id", ctrl.DeleteWorkflowHandler)
	workflowRoutes.GET("/:id/board", ctrl.GetWorkflowBoardHandler)

	orderRoutes := apiRoutes.Group("/orders")
	orderRoutes.POST("", ctrl.CreateOrderHandler)
	orderRoutes.GET("", ctrl.GetOrdersHandler)
	orderRoutes.GET("/:id", ctrl.GetOrderHandler)
	orderRoutes.PUT("/:id", ctrl.UpdateOrderHandler)
	orderRoutes.DELETE("/:id", ctrl.DeleteOrderHandler)
	orderRoutes.GET("/:id/steps/:stepId", ctrl.RenderOrderStepHandler)
	orderRoutes.POST("/:id/steps/:stepId/submit", ctrl.SubmitOrderStepHandler)

	productRoutes := apiRoutes.Group("/products")
	productRoutes.POST("", ctrl.CreateProductHandler)
	productRoutes.GET("", ctrl.GetProductsHandler)
	productRoutes.GET("/:id", ctrl.GetProductHandler)
	productRoutes.PUT("/:id", ctrl.UpdateProductHandler)
	productRoutes.DELETE("/:id", ctrl.DeleteProductHandler)
	productRoutes.POST("/import", ctrl.ImportProductsHandler)
	productRoutes.GET("/import/sample", ctrl.ProductImportSampleHandler)

	proformaRoutes := apiRoutes.Group("/proformas")
	proformaRoutes.POST("", ctrl.CreateProformaHandler)
	proformaRoutes.GET("", ctrl.GetProformasHandler)
	proformaRoutes.GET("/:id", ctrl.GetProformaHandler)
	proformaRoutes.PUT("/:id", ctrl.UpdateProformaHandler)
	proformaRoutes.DELETE("/:id", ctrl.DeleteProformaHandler)
	proformaRoutes.GET("/:id/export", ctrl.ExportProformaHandler)
	proformaRoutes.POST("/items/import", ctrl.ImportProformaItemsHandler)
	proformaRoutes.GET("/items/import/sample", ctrl.ProformaItemsSampleHandler)

	apiRoutes.GET("/reports", ctrl.GetReportHandler)
	apiRoutes.GET("/activity", ctrl.GetActivityLogsHandler)
	apiRoutes.GET("/backup", ctrl.BackupHandler)
	apiRoutes.POST("/restore", ctrl.RestoreHandler)

	return r
}

func (ctrl *Controller) ErrorHandler(c *gin.Context, status int, err error) {
	log.Error().Err(err).Int("status", status).Msg("Request failed")
	c.JSON(status, gin.H{"error": err.Error()})
}
