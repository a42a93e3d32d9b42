package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mvolosh/jetcharter/api"
	"github.com/mvolosh/jetcharter/config"
	"github.com/mvolosh/jetcharter/internal/service/booking"
	"github.com/mvolosh/jetcharter/internal/service/routes"
)

// Run starts the HTTP API server and blocks until the context is canceled or
// the server fails.
func Run(ctx context.Context, cfg *config.Config, bookingSvc booking.BookingUseCase, routeSvc routes.RouteUseCase) error {
	engine := newEngine(bookingSvc, routeSvc)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: engine,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- httpSrv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func newEngine(bookingSvc booking.BookingUseCase, routeSvc routes.RouteUseCase) *gin.Engine {
	engine := gin.Default()

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := engine.Group("/api/v1")

	bookingHandler := api.NewBookingHandler(bookingSvc)
	bookingHandler.Register(v1.Group("/bookings"))

	routeHandler := api.NewRouteHandler(routeSvc)
	routeHandler.Register(v1.Group("/routes"))
	routeHandler.RegisterAircraft(v1.Group("/aircraft"))

	rightsHandler := api.NewRightsHandler(bookingSvc)
	rightsHandler.Register(v1.Group("/rights"))
	rightsHandler.RegisterAdmin(v1.Group("/admin/rights"))

	return engine
}
