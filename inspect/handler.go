package inspect

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/minject/di"
	"github.com/kbukum/minject/errors"
	"github.com/kbukum/minject/logger"
	"github.com/kbukum/minject/observability"
)

// Source is what the handler inspects. *di.Container satisfies it.
type Source interface {
	Registrations() []di.RegistrationInfo
	Instances() map[string]any
}

// Handler serves the registered bindings of a Source over HTTP.
type Handler struct {
	source  Source
	service string
	version string
	log     *logger.Logger
}

// NewHandler creates a handler for source. service and version are reported
// by the health route.
func NewHandler(source Source, service, version string, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{
		source:  source,
		service: service,
		version: version,
		log:     log.WithComponent("inspect"),
	}
}

// Register mounts the routes under basePath:
//
//	GET {basePath}/bindings       every binding, sorted by key
//	GET {basePath}/bindings/:key  one binding
//	GET {basePath}/health         health of the built components
func (h *Handler) Register(r gin.IRouter, basePath string) {
	g := r.Group(strings.TrimSuffix(basePath, "/"))
	g.GET("/bindings", h.listBindings)
	g.GET("/bindings/:key", h.getBinding)
	g.GET("/health", h.health)
}

// Engine returns a gin engine with the standard middleware and the routes
// mounted under basePath.
func (h *Handler) Engine(basePath string) *gin.Engine {
	engine := gin.New()
	engine.Use(Recovery(h.log), RequestID(), RequestLogger(h.log))
	h.Register(engine, basePath)
	return engine
}

func (h *Handler) listBindings(c *gin.Context) {
	regs := h.source.Registrations()
	RespondOKWithMeta(c, regs, &Meta{Total: len(regs)})
}

func (h *Handler) getBinding(c *gin.Context) {
	key := c.Param("key")
	for _, reg := range h.source.Registrations() {
		if string(reg.Key) == key {
			RespondOK(c, reg)
			return
		}
	}
	RespondWithError(c, errors.MissingProvider(key))
}

func (h *Handler) health(c *gin.Context) {
	sh := observability.NewServiceHealth(h.service, h.version).
		CheckInstances(c.Request.Context(), h.source.Instances())

	status := http.StatusOK
	if sh.Status == observability.HealthStatusDown {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, sh)
}
