package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/woodtrack/sawmill/internal/server/handlers"
)

// Handlers groups every HTTP handler wired into the engine.
type Handlers struct {
	Lumber    *handlers.LumberHandler
	Logs      *handlers.LogHandler
	Drying    *handlers.DryingHandler
	Workshop  *handlers.WorkshopHandler
	Warehouse *handlers.WarehouseHandler
}

// New wires the Gin engine with required routes and middlewares.
func New(h Handlers, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	lumber := r.Group("/lumber")
	{
		lumber.POST("/arrivals", h.Lumber.CreateArrival)
		lumber.POST("/arrivals/batch", h.Lumber.CreateArrivalBatch)
		lumber.PUT("/arrivals/:id", h.Lumber.EditArrival)
		lumber.DELETE("/arrivals/:id", h.Lumber.DeleteArrival)
		lumber.GET("/arrivals", h.Lumber.ListArrivals)
		lumber.GET("/arrivals/stats", h.Lumber.ArrivalDayStats)

		lumber.POST("/shipments", h.Lumber.CreateShipment)
		lumber.POST("/shipments/batch", h.Lumber.CreateShipmentBatch)
		lumber.PUT("/shipments/:id", h.Lumber.EditShipment)
		lumber.DELETE("/shipments/:id", h.Lumber.DeleteShipment)
		lumber.GET("/shipments", h.Lumber.ListShipments)
		lumber.GET("/shipments/stats", h.Lumber.ShipmentDayStats)
	}

	logs := r.Group("/logs")
	{
		logs.POST("/arrivals", h.Logs.CreateArrival)
		logs.POST("/arrivals/batch", h.Logs.CreateArrivalBatch)
		logs.PUT("/arrivals/:id", h.Logs.EditArrival)
		logs.DELETE("/arrivals/:id", h.Logs.DeleteArrival)
		logs.GET("/arrivals", h.Logs.ListArrivals)
		logs.GET("/arrivals/stats", h.Logs.ArrivalDayStats)

		logs.POST("/shipments", h.Logs.CreateShipment)
		logs.POST("/shipments/batch", h.Logs.CreateShipmentBatch)
		logs.PUT("/shipments/:id", h.Logs.EditShipment)
		logs.DELETE("/shipments/:id", h.Logs.DeleteShipment)
		logs.GET("/shipments", h.Logs.ListShipments)
		logs.GET("/shipments/stats", h.Logs.ShipmentDayStats)
	}

	drying := r.Group("/drying")
	{
		drying.POST("/chambers/:chamberId/load", h.Drying.Load)
		drying.POST("/chambers/:chamberId/unload", h.Drying.Unload)
		drying.GET("/chambers/:chamberId/batches", h.Drying.ActiveByChamber)
		drying.GET("/batches", h.Drying.ListActive)
		drying.DELETE("/batches/:id", h.Drying.Erase)
	}

	workshops := r.Group("/workshops")
	{
		workshops.POST("/output", h.Workshop.RecordOutput)
		workshops.PUT("/output/:id", h.Workshop.Edit)
		workshops.DELETE("/output/:id", h.Workshop.Delete)
		workshops.GET("/:workshopId/stats", h.Workshop.Stats)
		workshops.GET("/:workshopId/stats/day", h.Workshop.DayStats)
		workshops.GET("/:workshopId/profit", h.Workshop.Profit)
	}

	warehouse := r.Group("/warehouse")
	{
		warehouse.GET("/lumber", h.Warehouse.ListLumber)
		warehouse.GET("/logs", h.Warehouse.ListLogs)
		warehouse.GET("/stats", h.Warehouse.OverallStats)
		warehouse.DELETE("/lumber/:id", h.Warehouse.DeleteLumberRecord)
		warehouse.DELETE("/logs/:id", h.Warehouse.DeleteLogRecord)
		warehouse.POST("/report", h.Warehouse.GenerateReport)
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
