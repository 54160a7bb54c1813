package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "devhub_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})

	// ActiveWebSockets is the number of open notification sockets.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "devhub_active_websockets",
		Help: "Number of currently open WebSocket connections",
	})

	promOnce     sync.Once
	promInstance *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the process-wide Fiber Prometheus collector. Collectors
// register with the default registry once, so later calls return the same
// instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promInstance = fiberprometheus.New(serviceName)
	})
	return promInstance
}

// MetricsMiddleware records request count and latency for every route.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
