package handler

import (
	"net/http"

	"rental-backend/internal/middleware"
	"rental-backend/internal/model"
	"rental-backend/internal/service"
	"rental-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ItemHandler struct {
	catalogService service.CatalogService
	itemService    service.ItemService
}

func NewItemHandler(catalogService service.CatalogService, itemService service.ItemService) *ItemHandler {
	return &ItemHandler{catalogService: catalogService, itemService: itemService}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *ItemHandler) RegisterRoutes(router *gin.RouterGroup) {
	items := router.Group("/items")
	{
		items.GET("", middleware.RequireAuth(), h.ListItems)
		items.GET("/archived", middleware.RequireAuth(), h.ListArchivedItems)
		items.POST("/:kind", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.CreateItem)
		items.PUT("/:kind/:id", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.UpdateItem)
		items.POST("/:kind/:id/archive", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.ArchiveItem)
		items.POST("/:kind/:id/restore", middleware.RequireRole(model.RoleAdmin, model.RoleManager), h.RestoreItem)
		items.DELETE("/:kind/:id", middleware.RequireAdmin(), h.DeleteItem)
	}
}

func itemKindParam(c *gin.Context) (model.ItemKind, bool) {
	kind := model.ItemKind(c.Param("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unknown item kind"))
		return "", false
	}
	return kind, true
}

func itemIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item ID"))
		return uuid.Nil, false
	}
	return id, true
}

// ListItems handles GET /items with real-time availability per item
// @Summary      List items
// @Description  Retrieves non-archived items of both kinds with real-time availability, optionally filtered by kind and name search
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        kind    query     string  false  "Item kind filter (rental or decoration)"
// @Param        search  query     string  false  "Name search (case-insensitive substring)"
// @Success      200     {object}  response.Response{data=[]model.Item}
// @Failure      500     {object}  response.Response
// @Router       /items [get]
func (h *ItemHandler) ListItems(c *gin.Context) {
	kind := model.ItemKind(c.Query("kind"))
	if kind != "" && !kind.Valid() {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unknown item kind"))
		return
	}

	items, err := h.catalogService.LoadAll(c.Request.Context(), kind, c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// ListArchivedItems handles GET /items/archived
// @Summary      List archived items
// @Description  Retrieves archived items, optionally filtered by kind
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        kind  query     string  false  "Item kind filter"
// @Success      200   {object}  response.Response{data=[]model.Item}
// @Router       /items/archived [get]
func (h *ItemHandler) ListArchivedItems(c *gin.Context) {
	kind := model.ItemKind(c.Query("kind"))
	if kind != "" && !kind.Valid() {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unknown item kind"))
		return
	}

	items, err := h.catalogService.LoadArchived(c.Request.Context(), kind)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, items))
}

// CreateItem handles POST /items/:kind
// @Summary      Create item
// @Description  Creates an inventory item or decoration
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind     path      string                   true  "Item kind (rental or decoration)"
// @Param        payload  body      service.SaveItemRequest  true  "Item payload"
// @Success      201      {object}  response.Response{data=model.Item}
// @Failure      400      {object}  response.Response
// @Router       /items/{kind} [post]
func (h *ItemHandler) CreateItem(c *gin.Context) {
	kind, ok := itemKindParam(c)
	if !ok {
		return
	}

	var req service.SaveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.itemService.Create(c.Request.Context(), c.GetString("userID"), kind, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// UpdateItem handles PUT /items/:kind/:id
// @Summary      Update item
// @Description  Updates an item's name, quantities and price; the availability counter keeps its sale deficit
// @Tags         items
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        kind     path      string                   true  "Item kind"
// @Param        id       path      string                   true  "Item ID"
// @Param        payload  body      service.SaveItemRequest  true  "Item payload"
// @Success      200      {object}  response.Response{data=model.Item}
// @Failure      400      {object}  response.Response
// @Router       /items/{kind}/{id} [put]
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	kind, ok := itemKindParam(c)
	if !ok {
		return
	}
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	var req service.SaveItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	item, err := h.itemService.Update(c.Request.Context(), c.GetString("userID"), kind, id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// ArchiveItem handles POST /items/:kind/:id/archive
// @Summary      Archive item
// @Description  Soft-hides an item from active listings without touching its rental history
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "Item kind"
// @Param        id    path      string  true  "Item ID"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /items/{kind}/{id}/archive [post]
func (h *ItemHandler) ArchiveItem(c *gin.Context) {
	kind, ok := itemKindParam(c)
	if !ok {
		return
	}
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	if err := h.itemService.Archive(c.Request.Context(), c.GetString("userID"), kind, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Item archived"))
}

// RestoreItem handles POST /items/:kind/:id/restore
// @Summary      Restore item
// @Description  Returns an archived item to active listings
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "Item kind"
// @Param        id    path      string  true  "Item ID"
// @Success      200   {object}  response.Response
// @Failure      400   {object}  response.Response
// @Router       /items/{kind}/{id}/restore [post]
func (h *ItemHandler) RestoreItem(c *gin.Context) {
	kind, ok := itemKindParam(c)
	if !ok {
		return
	}
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	if err := h.itemService.Restore(c.Request.Context(), c.GetString("userID"), kind, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Item restored"))
}

// DeleteItem handles DELETE /items/:kind/:id
// @Summary      Delete item
// @Description  Hard-deletes an item; refused while committed rentals reference it
// @Tags         items
// @Produce      json
// @Security     BearerAuth
// @Param        kind  path      string  true  "Item kind"
// @Param        id    path      string  true  "Item ID"
// @Success      200   {object}  response.Response
// @Failure      409   {object}  response.Response
// @Router       /items/{kind}/{id} [delete]
func (h *ItemHandler) DeleteItem(c *gin.Context) {
	kind, ok := itemKindParam(c)
	if !ok {
		return
	}
	id, ok := itemIDParam(c)
	if !ok {
		return
	}

	if err := h.itemService.Delete(c.Request.Context(), c.GetString("userID"), kind, id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, "Item deleted"))
}
