// Package router wires the gin engine: middleware, API routes, health and
// metrics endpoints.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/billyapp/billy/internal/config"
	"github.com/billyapp/billy/internal/handler"
	"github.com/billyapp/billy/internal/metrics"
	"github.com/billyapp/billy/internal/middleware"
	"github.com/billyapp/billy/internal/service"
)

// Setup configures the gin engine with all routes.
func Setup(cfg *config.Config, ledger *service.LedgerService, bills *service.BillService) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(middleware.Logging(), middleware.CORS(), metrics.Middleware(), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	profiles := handler.NewProfileHandler(ledger)
	debts := handler.NewDebtsHandler(ledger)
	billh := handler.NewBillHandler(bills)

	api := r.Group("/api/v1")
	{
		api.POST("/profiles", profiles.Create)
		api.GET("/profiles/:id", profiles.Get)
		api.POST("/profiles/:id/expenses", profiles.AddOutcome)
		api.GET("/profiles/:id/expenses", profiles.ListOutcomes)
		api.DELETE("/profiles/:id/expenses/:expenseId", profiles.RemoveOutcome)

		// Debt views work over any scope: profile ID or live bill ID.
		api.GET("/scopes/:id/debts", debts.Calculate)
		api.GET("/scopes/:id/debts/to/:user", debts.ToUser)
		api.GET("/scopes/:id/debts/from/:user", debts.FromUser)
		api.GET("/scopes/:id/total", debts.Total)
		api.POST("/scopes/:id/expenses/:expenseId/paid", debts.MarkPaid)
		api.POST("/scopes/:id/redistribute", debts.Redistribute)

		api.POST("/bills", billh.Create)
		api.DELETE("/bills/:id", billh.Delete)
		api.POST("/bills/:id/participants", billh.AddParticipant)
		api.GET("/bills/:id/participants", billh.Participants)
		api.POST("/bills/:id/transactions", billh.AddOutcome)
		api.GET("/bills/:id/transactions", billh.Transactions)
	}

	return r
}
