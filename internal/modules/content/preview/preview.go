// Package preview gives the block editor a live slider preview: the admin
// spins up a server-side slider machine and watches its frame changes over
// SSE while poking the transport controls.
package preview

import (
	"errors"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/atrium-events/core/internal/modules/content/blocks"
	"github.com/atrium-events/core/internal/pkg/response"
)

// maxMachines bounds concurrent previews; each one owns a goroutine.
const maxMachines = 64

var (
	ErrTooManyPreviews = errors.New("too many live previews, close one first")
	ErrNotFound        = errors.New("preview not found")
)

type Registry struct {
	mu       sync.Mutex
	machines map[string]*blocks.Machine
}

func NewRegistry() *Registry {
	return &Registry{machines: map[string]*blocks.Machine{}}
}

func (r *Registry) Create(frames int, interval time.Duration) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.machines) >= maxMachines {
		return "", ErrTooManyPreviews
	}
	id := uuid.New().String()
	r.machines[id] = blocks.NewMachine(frames, interval)
	return id, nil
}

func (r *Registry) Get(id string) (*blocks.Machine, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[id]
	if !ok {
		return nil, ErrNotFound
	}
	return m, nil
}

func (r *Registry) Close(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.machines[id]
	if !ok {
		return ErrNotFound
	}
	m.Stop()
	delete(r.machines, id)
	return nil
}

// Shutdown stops every live machine. Called on server teardown.
func (r *Registry) Shutdown() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, m := range r.machines {
		m.Stop()
		delete(r.machines, id)
	}
}

type Handler struct {
	registry *Registry
}

func NewHandler(registry *Registry) *Handler {
	return &Handler{registry: registry}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	sliders := rg.Group("/preview/sliders", authMW)
	{
		sliders.POST("", h.Create)
		sliders.GET("/:id/stream", h.Stream)
		sliders.POST("/:id/next", h.control((*blocks.Machine).Next))
		sliders.POST("/:id/prev", h.control((*blocks.Machine).Prev))
		sliders.POST("/:id/pause", h.control((*blocks.Machine).Pause))
		sliders.POST("/:id/resume", h.control((*blocks.Machine).Resume))
		sliders.POST("/:id/jump", h.Jump)
		sliders.DELETE("/:id", h.Close)
	}
}

type createDTO struct {
	Frames     int `json:"frames" binding:"required,min=1,max=5"`
	IntervalMS int `json:"interval_ms"`
}

func (h *Handler) Create(c *gin.Context) {
	var dto createDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "frames (1-5) is required")
		return
	}
	interval := 5 * time.Second
	if dto.IntervalMS > 0 {
		interval = time.Duration(dto.IntervalMS) * time.Millisecond
	}
	id, err := h.registry.Create(dto.Frames, interval)
	if err != nil {
		response.Conflict(c, err.Error())
		return
	}
	response.Created(c, gin.H{"id": id})
}

// Stream pushes frame changes as SSE until the client disconnects or the
// preview is closed.
func (h *Handler) Stream(c *gin.Context) {
	m, err := h.registry.Get(c.Param("id"))
	if err != nil {
		response.NotFound(c)
		return
	}

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.SSEvent("frame", m.Current())
	c.Writer.Flush()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case frame := <-m.Frames():
			c.SSEvent("frame", frame)
			return true
		case <-m.Done():
			return false
		case <-ctx.Done():
			return false
		}
	})
}

func (h *Handler) control(op func(*blocks.Machine)) gin.HandlerFunc {
	return func(c *gin.Context) {
		m, err := h.registry.Get(c.Param("id"))
		if err != nil {
			response.NotFound(c)
			return
		}
		op(m)
		response.OK(c, gin.H{"frame": m.Current(), "paused": m.Paused()})
	}
}

type jumpDTO struct {
	Index int `json:"index" binding:"min=0"`
}

func (h *Handler) Jump(c *gin.Context) {
	var dto jumpDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, "index is required")
		return
	}
	m, err := h.registry.Get(c.Param("id"))
	if err != nil {
		response.NotFound(c)
		return
	}
	m.JumpTo(dto.Index)
	response.OK(c, gin.H{"frame": m.Current(), "paused": m.Paused()})
}

func (h *Handler) Close(c *gin.Context) {
	if err := h.registry.Close(c.Param("id")); err != nil {
		response.NotFound(c)
		return
	}
	response.NoContent(c)
}
