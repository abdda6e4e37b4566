package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mandirtech/edarshan/api"
	"github.com/mandirtech/edarshan/config"
	"github.com/mandirtech/edarshan/internal/metrics"
	bookingsvc "github.com/mandirtech/edarshan/internal/service/booking"
	templesvc "github.com/mandirtech/edarshan/internal/service/temples"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter assembles the HTTP surface: public temple/slot/wizard routes,
// bearer-gated booking routes, metrics and docs.
func NewRouter(cfg *config.Config, templeSvc templesvc.TempleUseCase, bookingSvc bookingsvc.BookingUseCase, m *metrics.Metrics) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	if m != nil {
		router.Use(m.GinMiddleware())
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := router.Group("/api")

	templeHandler := api.NewTempleHandler(templeSvc, bookingSvc)
	templeHandler.Register(apiGroup.Group("/temples"))

	darshanHandler := api.NewDarshanHandler(bookingSvc)
	darshanHandler.Register(apiGroup.Group("/darshan"))
	darshanHandler.RegisterPayments(apiGroup.Group("/payments"))

	bookingHandler := api.NewBookingHandler(bookingSvc)
	protected := apiGroup.Group("/bookings")
	protected.Use(api.RequireAuth(cfg.Auth.JWTSecret))
	bookingHandler.Register(protected)

	if cfg.HTTP.SwaggerDir != "" {
		router.StaticFS("/swagger", http.Dir(cfg.HTTP.SwaggerDir))
		router.GET("/docs", func(c *gin.Context) {
			renderSwaggerUI(c.Writer, "/swagger/edarshan.swagger.json")
		})
	}

	return router
}

// Run serves the router and blocks until the context is canceled or the
// server fails.
func Run(ctx context.Context, cfg *config.Config, router *gin.Engine) error {
	srv := &http.Server{
		Addr:    cfg.HTTP.Address,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}

func renderSwaggerUI(w http.ResponseWriter, jsonURL string) {
	html := fmt.Sprintf(`<!DOCTYPE html>
    <html>
    <head>
        <title>E-Darshan API Docs</title>
        <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@latest/swagger-ui.css">
    </head>
    <body>
        <div id="swagger-ui"></div>
        <script src="https://unpkg.com/swagger-ui-dist@latest/swagger-ui-bundle.js"></script>
        <script>
            window.onload = function() {
                window.ui = SwaggerUIBundle({
                    url: "%s",
                    dom_id: '#swagger-ui'
                });
            };
        </script>
    </body>
    </html>`, jsonURL)

	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(html))
}
