// Package mockserver serves a fixture file as /api/employees/leads so the
// client can be run and tested without the real backend.
package mockserver

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/Makepad-fr/leads/internal/metrics"
	"github.com/Makepad-fr/leads/internal/model"
	"github.com/Makepad-fr/leads/internal/store/jsonstore"
)

const (
	LeadsPath   = "/api/employees/leads"
	MetricsPath = "/metrics"
)

type Options struct {
	Fixture    string // JSON array of leads; missing file serves []
	FailStatus int    // when non-zero, the leads endpoint answers with this status
	Logger     *log.Entry
	Registry   *prometheus.Registry
}

type Server struct {
	engine  *gin.Engine
	fixture string
	logger  *log.Entry
	metrics *metrics.Serve

	mu         sync.RWMutex
	leads      []model.Lead
	failStatus int
}

func New(opt Options) (*Server, error) {
	logger := opt.Logger
	if logger == nil {
		logger = log.WithField("component", "mockserver")
	}
	reg := opt.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Server{
		fixture:    opt.Fixture,
		logger:     logger,
		metrics:    metrics.NewServe(reg),
		failStatus: opt.FailStatus,
	}
	if err := s.Reload(); err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.GET(LeadsPath, s.listLeads)
	r.GET(MetricsPath, gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	s.engine = r
	return s, nil
}

// Handler exposes the gin engine, for http.Server or httptest.
func (s *Server) Handler() http.Handler { return s.engine }

// Reload re-reads the fixture file.
func (s *Server) Reload() error {
	leads, err := jsonstore.Load(s.fixture)
	if err != nil {
		return fmt.Errorf("load fixture: %w", err)
	}
	s.SetLeads(leads)
	s.logger.WithField("count", len(leads)).Info("fixture loaded")
	return nil
}

// SetLeads replaces the served list.
func (s *Server) SetLeads(leads []model.Lead) {
	s.mu.Lock()
	s.leads = model.CloneAll(leads)
	s.mu.Unlock()
}

// SetFailStatus makes the leads endpoint fail with code; 0 turns it off.
func (s *Server) SetFailStatus(code int) {
	s.mu.Lock()
	s.failStatus = code
	s.mu.Unlock()
}

func (s *Server) listLeads(c *gin.Context) {
	s.mu.RLock()
	fail := s.failStatus
	leads := model.CloneAll(s.leads)
	s.mu.RUnlock()

	if fail != 0 {
		c.Status(fail)
		return
	}
	c.JSON(http.StatusOK, leads)
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if c.FullPath() == LeadsPath {
			s.metrics.ObserveServe(status)
		}
		s.logger.WithFields(log.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency_ms": float64(time.Since(start).Microseconds()) / 1000,
			"request_id": c.GetHeader("X-Request-ID"),
		}).Info("http_request")
	}
}
