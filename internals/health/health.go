package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Whateverdoa/vertical-slice-service/pkg/config"
)

// Probe reports whether one backing component is reachable.
type Probe func(ctx context.Context) error

type HealthService struct {
	Probes map[string]Probe

	appName      string
	appVersion   string
	probeTimeout time.Duration
}

func New(probes map[string]Probe) *HealthService {
	s := &HealthService{
		Probes:       probes,
		appName:      config.Service.Name,
		appVersion:   config.Service.Version,
		probeTimeout: 2 * time.Second,
	}
	if s.appName == "" {
		s.appName = "vertical-slice-service"
	}
	if s.appVersion == "" {
		s.appVersion = "0.1.0"
	}
	return s
}

func (s *HealthService) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", s.Check)
}

type CheckResponse struct {
	Status     string            `json:"status"`
	App        string            `json:"app"`
	Version    string            `json:"version"`
	Components map[string]string `json:"components"`
}

func (s *HealthService) Check(c *gin.Context) {
	components := make(map[string]string, len(s.Probes))
	healthy := true

	for name, probe := range s.Probes {
		ctx, cancel := context.WithTimeout(context.Background(), s.probeTimeout)
		err := probe(ctx)
		cancel()

		if err != nil {
			slog.Error("Health probe failed", "component", name, "err", err)
			components[name] = "unavailable"
			healthy = false
			continue
		}
		components[name] = "ok"
	}

	resp := CheckResponse{
		Status:     "healthy",
		App:        s.appName,
		Version:    s.appVersion,
		Components: components,
	}
	code := http.StatusOK
	if !healthy {
		resp.Status = "degraded"
		code = http.StatusServiceUnavailable
	}

	c.JSON(code, resp)
}
