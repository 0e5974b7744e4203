package api

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRoutes wires the HTTP surface. Storefront endpoints (checkout, catalog
// and the two lookups) are public; everything else sits behind bearer auth.
func SetupRoutes(handler *Handler, jwtSecret string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(MetricsMiddleware())

	router.GET("/health", handler.Health)
	router.GET("/ready", handler.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/v1")
	{
		public.POST("/checkout", handler.Checkout)
		public.GET("/catalog", handler.Catalog)
		public.GET("/clients/by-tax-id/:taxId", handler.GetClientByTaxID)
		public.GET("/sellers/by-email/:email", handler.GetSellerByEmail)
	}

	admin := router.Group("/api/v1")
	admin.Use(AuthMiddleware(jwtSecret))
	{
		admin.GET("/products", handler.ListProducts)
		admin.POST("/products", handler.CreateProduct)
		admin.PUT("/products/:id", handler.UpdateProduct)
		admin.DELETE("/products/:id", handler.DeleteProduct)
		admin.GET("/products/:id/movements", handler.GetProductMovements)

		admin.GET("/clients", handler.ListClients)
		admin.POST("/clients", handler.CreateClient)
		admin.PUT("/clients/:id", handler.UpdateClient)
		admin.POST("/clients/:id/payments", handler.RegisterClientPayment)
		admin.GET("/clients/:id/ledger", handler.GetClientLedger)

		admin.GET("/sellers", handler.ListSellers)
		admin.POST("/sellers", handler.CreateSeller)
		admin.PUT("/sellers/:id", handler.UpdateSeller)
		admin.GET("/sellers/:id/commissions", handler.ListSellerCommissions)
		admin.POST("/sellers/:id/commissions/pay-all", handler.PayAllCommissions)
		admin.POST("/commissions/:id/pay", handler.PayCommission)

		admin.GET("/sales", handler.ListSales)
		admin.POST("/sales", handler.CreateSale)
		admin.GET("/sales/:id", handler.GetSale)
		admin.POST("/sales/:id/invoice", handler.IssueInvoice)
		admin.POST("/sales/:id/remito", handler.IssueRemito)
		admin.GET("/sales/:id/pdf", handler.GetSalePDF)
		admin.POST("/sales/:id/share", handler.ShareSale)

		admin.GET("/orders", handler.ListOrders)
		admin.GET("/orders/:id", handler.GetOrder)
		admin.PUT("/orders/:id/status", handler.UpdateOrderStatus)
		admin.PUT("/orders/:id/sale", handler.LinkOrderSale)

		admin.POST("/files", handler.UploadFile)
	}

	return router
}
