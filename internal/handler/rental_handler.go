package handler

import (
	"net/http"
	"strconv"
	"time"

	"rental-backend/internal/middleware"
	"rental-backend/internal/model"
	"rental-backend/internal/service"
	"rental-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type RentalHandler struct {
	rentalService       service.RentalService
	availabilityService service.AvailabilityService
	returnService       service.ReturnService
	calendarService     service.CalendarService
}

func NewRentalHandler(
	rentalService service.RentalService,
	availabilityService service.AvailabilityService,
	returnService service.ReturnService,
	calendarService service.CalendarService,
) *RentalHandler {
	return &RentalHandler{
		rentalService:       rentalService,
		availabilityService: availabilityService,
		returnService:       returnService,
		calendarService:     calendarService,
	}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *RentalHandler) RegisterRoutes(router *gin.RouterGroup) {
	rentals := router.Group("/rentals")
	{
		rentals.GET("", middleware.RequireAuth(), h.ListRentals)
		rentals.GET("/calendar", middleware.RequireAuth(), h.Calendar)
		rentals.GET("/availability", middleware.RequireAuth(), h.CheckAvailability)
		rentals.GET("/:id", middleware.RequireAuth(), h.GetRental)
		rentals.POST("", middleware.RequireAuth(), h.CreateRental)
		rentals.PUT("/group", middleware.RequireAuth(), h.UpdateGroup)
		rentals.PUT("/:id", middleware.RequireAuth(), h.UpdateRental)
		rentals.POST("/group/archive", middleware.RequireAuth(), h.ArchiveGroup)
		rentals.DELETE("/group", middleware.RequireAdmin(), h.DeleteGroup)
		rentals.POST("/returns/classify", middleware.RequireAuth(), h.ClassifyReturn)
		rentals.POST("/returns/resolve", middleware.RequireAuth(), h.ResolveReturn)
	}
}

type groupIDsRequest struct {
	RentalIDs []string `json:"rental_ids" binding:"required,min=1"`
}

type groupUpdateRequest struct {
	RentalIDs []string                  `json:"rental_ids" binding:"required,min=1"`
	Rental    service.SaveRentalRequest `json:"rental" binding:"required"`
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	ids := make([]uuid.UUID, 0, len(raw))
	for _, s := range raw {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ListRentals handles GET /rentals with rows grouped into logical orders
// @Summary      List rentals
// @Description  Retrieves rental transactions grouped into logical multi-item orders, newest rent date first
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Param        archived  query     bool  false  "List archived orders instead of active ones"
// @Success      200       {object}  response.Response{data=[]model.LogicalOrder}
// @Failure      500       {object}  response.Response
// @Router       /rentals [get]
func (h *RentalHandler) ListRentals(c *gin.Context) {
	archived := c.Query("archived") == "true"

	orders, err := h.rentalService.ListGrouped(c.Request.Context(), archived)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, orders))
}

// GetRental handles GET /rentals/:id
// @Summary      Get rental row
// @Description  Fetch a single rental row by its UUID
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Rental ID"
// @Success      200  {object}  response.Response{data=model.Rental}
// @Failure      404  {object}  response.Response
// @Router       /rentals/{id} [get]
func (h *RentalHandler) GetRental(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rental ID"))
		return
	}

	rental, err := h.rentalService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, rental))
}

// CreateRental handles POST /rentals, committing a cart as one logical order
// @Summary      Create rental order
// @Description  Commits a multi-item cart as rental rows. Every line is availability-checked against the date range inside one transaction; any shortfall aborts the whole order with the full list
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.SaveRentalRequest  true  "Order payload"
// @Success      201      {object}  response.Response{data=service.SaveOutcome}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /rentals [post]
func (h *RentalHandler) CreateRental(c *gin.Context) {
	var req service.SaveRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	outcome, err := h.rentalService.Create(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, outcome))
}

// UpdateRental handles PUT /rentals/:id for single-row orders
// @Summary      Update rental
// @Description  Edits a single-row order. Setting status to returned is intercepted and routed through return classification; item changes trigger delete-and-recreate, refused while incident reports reference the row
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string                     true  "Rental ID"
// @Param        payload  body      service.SaveRentalRequest  true  "Order payload"
// @Success      200      {object}  response.Response{data=service.SaveOutcome}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /rentals/{id} [put]
func (h *RentalHandler) UpdateRental(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rental ID"))
		return
	}

	var req service.SaveRentalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	outcome, err := h.rentalService.Update(c.Request.Context(), c.GetString("userID"), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	if outcome.ReturnChoiceRequired {
		h.interceptReturn(c, outcome.RentalIDs)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, outcome))
}

// UpdateGroup handles PUT /rentals/group for multi-row orders
// @Summary      Update rental group
// @Description  Batch edit of a grouped order: tied lines update in place, new lines insert, missing rows delete. One transaction; one failing line rolls everything back
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      handler.groupUpdateRequest  true  "Group edit payload"
// @Success      200      {object}  response.Response{data=service.SaveOutcome}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /rentals/group [put]
func (h *RentalHandler) UpdateGroup(c *gin.Context) {
	var req groupUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	ids, err := parseIDs(req.RentalIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rental ID in list"))
		return
	}

	outcome, err := h.rentalService.UpdateGroup(c.Request.Context(), c.GetString("userID"), ids, req.Rental)
	if err != nil {
		respondError(c, err)
		return
	}
	if outcome.ReturnChoiceRequired {
		h.interceptReturn(c, outcome.RentalIDs)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, outcome))
}

// interceptReturn classifies an order whose status was being set to
// returned. Decoration-only orders resolve on the spot; everything else
// comes back with the choice the client must make.
func (h *RentalHandler) interceptReturn(c *gin.Context, ids []uuid.UUID) {
	classification, err := h.returnService.Classify(c.Request.Context(), c.GetString("userID"), ids)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, classification))
}

// ArchiveGroup handles POST /rentals/group/archive
// @Summary      Archive rental group
// @Description  Soft-hides the rows of an order. Per-row failures do not stop the remaining rows; the partial success count is returned
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      handler.groupIDsRequest  true  "Rental IDs"
// @Success      200      {object}  response.Response
// @Failure      400      {object}  response.Response
// @Router       /rentals/group/archive [post]
func (h *RentalHandler) ArchiveGroup(c *gin.Context) {
	var req groupIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	ids, err := parseIDs(req.RentalIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rental ID in list"))
		return
	}

	archived, err := h.rentalService.Archive(c.Request.Context(), c.GetString("userID"), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"archived": archived}))
}

// DeleteGroup handles DELETE /rentals/group (admin only)
// @Summary      Delete rental group
// @Description  Hard-deletes the rows of an order. Rows with linked incident reports are skipped with per-row failure messages
// @Tags         rentals
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      handler.groupIDsRequest  true  "Rental IDs"
// @Success      200      {object}  response.Response{data=service.GroupDeleteResult}
// @Failure      400      {object}  response.Response
// @Router       /rentals/group [delete]
func (h *RentalHandler) DeleteGroup(c *gin.Context) {
	var req groupIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	ids, err := parseIDs(req.RentalIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rental ID in list"))
		return
	}

	result, err := h.rentalService.Delete(c.Request.Context(), c.GetString("userID"), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CheckAvailability handles GET /rentals/availability (advisory pre-check)
// @Summary      Check availability
// @Description  Advisory date-range availability for one item; the authoritative check re-runs inside the commit transaction
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Param        kind      query     string  true   "Item kind"
// @Param        item_id   query     string  true   "Item ID"
// @Param        start     query     string  true   "Start date (YYYY-MM-DD)"
// @Param        end       query     string  true   "End date (YYYY-MM-DD)"
// @Param        quantity  query     int     true   "Requested quantity"
// @Param        exclude   query     string  false  "Rental ID to exclude (when editing)"
// @Success      200       {object}  response.Response{data=service.AvailabilityResult}
// @Failure      400       {object}  response.Response
// @Router       /rentals/availability [get]
func (h *RentalHandler) CheckAvailability(c *gin.Context) {
	kind := model.ItemKind(c.Query("kind"))
	if !kind.Valid() {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Unknown item kind"))
		return
	}

	itemID, err := uuid.Parse(c.Query("item_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid item ID"))
		return
	}

	start, err := time.Parse("2006-01-02", c.Query("start"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid start date"))
		return
	}
	end, err := time.Parse("2006-01-02", c.Query("end"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid end date"))
		return
	}

	qty, err := strconv.Atoi(c.Query("quantity"))
	if err != nil || qty <= 0 {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid quantity"))
		return
	}

	var exclude *uuid.UUID
	if raw := c.Query("exclude"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid exclude ID"))
			return
		}
		exclude = &id
	}

	result, err := h.availabilityService.Check(c.Request.Context(), kind, itemID, start, end, qty, exclude)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ClassifyReturn handles POST /rentals/returns/classify
// @Summary      Classify return
// @Description  Inspects an order being returned. Decoration-only orders auto-resolve as sold; mixed or durable orders come back with the resolution choice
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      handler.groupIDsRequest  true  "Rental IDs"
// @Success      200      {object}  response.Response{data=service.ReturnClassification}
// @Failure      400      {object}  response.Response
// @Router       /rentals/returns/classify [post]
func (h *RentalHandler) ClassifyReturn(c *gin.Context) {
	var req groupIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload"))
		return
	}

	ids, err := parseIDs(req.RentalIDs)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid rental ID in list"))
		return
	}

	classification, err := h.returnService.Classify(c.Request.Context(), c.GetString("userID"), ids)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, classification))
}

// ResolveReturn handles POST /rentals/returns/resolve
// @Summary      Resolve return
// @Description  Applies the chosen resolution (all_good, partial_missing or damaged) to every row of the order in one transaction. Missing units permanently shrink inventory; damaged units are flagged but never deducted
// @Tags         returns
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.ResolveReturnRequest  true  "Resolution payload"
// @Success      200      {object}  response.Response{data=service.ReturnOutcome}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /rentals/returns/resolve [post]
func (h *RentalHandler) ResolveReturn(c *gin.Context) {
	var req service.ResolveReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	outcome, err := h.returnService.Resolve(c.Request.Context(), c.GetString("userID"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, outcome))
}

// Calendar handles GET /rentals/calendar
// @Summary      Calendar events
// @Description  Renders non-archived orders overlapping the window as calendar events colored by status
// @Tags         rentals
// @Produce      json
// @Security     BearerAuth
// @Param        from  query     string  true  "Window start (YYYY-MM-DD)"
// @Param        to    query     string  true  "Window end (YYYY-MM-DD)"
// @Success      200   {object}  response.Response{data=[]service.CalendarEvent}
// @Failure      400   {object}  response.Response
// @Router       /rentals/calendar [get]
func (h *RentalHandler) Calendar(c *gin.Context) {
	from, err := time.Parse("2006-01-02", c.Query("from"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid from date"))
		return
	}
	to, err := time.Parse("2006-01-02", c.Query("to"))
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid to date"))
		return
	}

	events, err := h.calendarService.Events(c.Request.Context(), from, to)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, events))
}
