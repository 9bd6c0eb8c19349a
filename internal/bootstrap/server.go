package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/flightbooking/api"
	"github.com/Domenick1991/flightbooking/internal/metrics"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
)

const shutdownTimeout = 5 * time.Second

// NewBookingRouter serves the booking API together with metrics, health and
// the swagger UI over swaggerDir/bookings.swagger.json.
func NewBookingRouter(log *logrus.Logger, bookings *api.BookingHandler, swaggerDir string) *gin.Engine {
	router := newRouter(log)
	bookings.Register(router.Group("/api/booking"))

	if swaggerDir != "" {
		router.StaticFile("/docs/bookings.swagger.json", filepath.Join(swaggerDir, "bookings.swagger.json"))
		router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/docs/bookings.swagger.json"))))
	}
	return router
}

func NewFlightRouter(log *logrus.Logger, flights *api.FlightHandler) *gin.Engine {
	router := newRouter(log)
	flights.Register(router.Group("/api/flight"))
	return router
}

func newRouter(log *logrus.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(log))
	router.GET("/metrics", metrics.Handler())
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func requestLogger(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		})
		if c.Writer.Status() >= http.StatusInternalServerError {
			entry.Warn("request failed")
			return
		}
		entry.Debug("request served")
	}
}

// UnaryLogger logs every failed gRPC call.
func UnaryLogger(log *logrus.Logger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		if err != nil {
			log.WithError(err).WithFields(logrus.Fields{
				"method":   info.FullMethod,
				"duration": time.Since(start).String(),
			}).Info("grpc call returned error")
		}
		return resp, err
	}
}

// Run serves httpSrv and, when grpcSrv is not nil, grpcSrv on grpcAddr until
// ctx is canceled or one of them fails, then stops both.
func Run(ctx context.Context, log *logrus.Logger, httpSrv *http.Server, grpcSrv *grpc.Server, grpcAddr string) error {
	g, gctx := errgroup.WithContext(ctx)

	if grpcSrv != nil {
		lis, err := net.Listen("tcp", grpcAddr)
		if err != nil {
			return fmt.Errorf("listen gRPC %s: %w", grpcAddr, err)
		}
		g.Go(func() error {
			log.WithField("address", grpcAddr).Info("gRPC server started")
			return grpcSrv.Serve(lis)
		})
	}

	g.Go(func() error {
		log.WithField("address", httpSrv.Addr).Info("HTTP server started")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if grpcSrv != nil {
			grpcSrv.GracefulStop()
		}
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		log.Info("servers stopped")
		return nil
	})

	return g.Wait()
}
