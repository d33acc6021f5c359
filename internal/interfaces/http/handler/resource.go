package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noman2111ni/Retail-Managment-System/internal/application/resource"
	"github.com/noman2111ni/Retail-Managment-System/internal/domain/retail"
	"github.com/noman2111ni/Retail-Managment-System/internal/interfaces/http/dto"
)

// Collections resolves resource names to slices. *store.Store implements it.
type Collections interface {
	Collection(name string) (resource.Collection, error)
	Names() []string
}

// ResourceHandler exposes the resource slices
type ResourceHandler struct {
	BaseHandler
	collections Collections
}

// NewResourceHandler creates a new ResourceHandler
func NewResourceHandler(collections Collections) *ResourceHandler {
	return &ResourceHandler{collections: collections}
}

// RegisterRoutes implements router.RouteRegistrar
func (h *ResourceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/resources")
	g.GET("", h.Index)
	g.GET("/:name", h.View)
	g.POST("/:name/fetch", h.Fetch)
	g.POST("/:name", h.Create)
	g.GET("/:name/:id", h.Get)
	g.PUT("/:name/:id", h.Update)
	g.DELETE("/:name/:id", h.Delete)
}

// Index returns the state of every slice
func (h *ResourceHandler) Index(c *gin.Context) {
	names := h.collections.Names()
	views := make([]resource.View, 0, len(names))
	for _, name := range names {
		col, err := h.collections.Collection(name)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		views = append(views, col.View())
	}
	h.Success(c, views)
}

// View returns the cached state of one slice without contacting the API
func (h *ResourceHandler) View(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}
	h.Success(c, col.View())
}

// Fetch reloads a slice from the API and returns its new state
func (h *ResourceHandler) Fetch(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}
	if _, err := col.FetchAll(c.Request.Context()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, col.View())
}

// Get retrieves one record from the API
func (h *ResourceHandler) Get(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}
	id, ok := h.id(c)
	if !ok {
		return
	}
	item, err := col.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Create stores a new record
func (h *ResourceHandler) Create(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}
	payload, ok := h.payload(c)
	if !ok {
		return
	}
	item, err := col.Create(c.Request.Context(), payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// Update replaces a record
func (h *ResourceHandler) Update(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}
	id, ok := h.id(c)
	if !ok {
		return
	}
	payload, ok := h.payload(c)
	if !ok {
		return
	}
	item, err := col.Update(c.Request.Context(), id, payload)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, item)
}

// Delete removes a record
func (h *ResourceHandler) Delete(c *gin.Context) {
	col, ok := h.collection(c)
	if !ok {
		return
	}
	id, ok := h.id(c)
	if !ok {
		return
	}
	if err := col.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *ResourceHandler) collection(c *gin.Context) (resource.Collection, bool) {
	col, err := h.collections.Collection(c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return nil, false
	}
	return col, true
}

func (h *ResourceHandler) id(c *gin.Context) (retail.ID, bool) {
	id, err := retail.ParseID(c.Param("id"))
	if err != nil || id <= 0 {
		h.BadRequest(c, "Record id must be a positive integer")
		return 0, false
	}
	return id, true
}

// payload reads the body as a JSON object and forwards it untouched, so
// fields the gateway does not model still reach the API.
func (h *ResourceHandler) payload(c *gin.Context) (json.RawMessage, bool) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Request body exceeds maximum allowed size")
		return nil, false
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' || !json.Valid(body) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "Request body must be a JSON object")
		return nil, false
	}
	return json.RawMessage(body), true
}
