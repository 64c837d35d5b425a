package handlers

import (
	"net/http"
	"strconv"
	"time"

	"thermostat_triggers/internal/models"
	"thermostat_triggers/internal/service"

	"github.com/gin-gonic/gin"
)

// Common response/status constants to avoid magic strings and typos.
const (
	statusOK      = "ok"
	statusToggled = "toggled"
	statusDeleted = "deleted"
	statusRan     = "ran"

	errListTriggers   = "failed to list triggers"
	errGetTrigger     = "failed to load trigger"
	errSaveTrigger    = "failed to save trigger"
	errDeleteTrigger  = "failed to delete trigger"
	errExecuteTrigger = "failed to execute trigger"
	errInvalidBodyPref = "invalid body: "
	errInvalidIDParam  = "invalid id parameter"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

func (h *Handler) parseIDParam(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidIDParam})
		return 0, false
	}
	return id, true
}

// Request DTO for creating/updating triggers.
type triggerRequest struct {
	DeviceID    int       `json:"device_id" binding:"required"`
	Name        string    `json:"name"`
	Time        time.Time `json:"time" binding:"required"`
	Temperature *float64  `json:"temperature"`
	Enabled     *bool     `json:"enabled"`

	RecurMonday    bool `json:"recur_monday"`
	RecurTuesday   bool `json:"recur_tuesday"`
	RecurWednesday bool `json:"recur_wednesday"`
	RecurThursday  bool `json:"recur_thursday"`
	RecurFriday    bool `json:"recur_friday"`
	RecurSaturday  bool `json:"recur_saturday"`
	RecurSunday    bool `json:"recur_sunday"`
}

func (r triggerRequest) params() service.TriggerParams {
	return service.TriggerParams{
		DeviceID:       r.DeviceID,
		Name:           r.Name,
		Time:           r.Time,
		Temperature:    r.Temperature,
		Enabled:        r.Enabled,
		RecurMonday:    r.RecurMonday,
		RecurTuesday:   r.RecurTuesday,
		RecurWednesday: r.RecurWednesday,
		RecurThursday:  r.RecurThursday,
		RecurFriday:    r.RecurFriday,
		RecurSaturday:  r.RecurSaturday,
		RecurSunday:    r.RecurSunday,
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      List triggers split into one-time and recurring
// @Tags         triggers
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/triggers [get]
// @Security     BearerAuth
func (h *Handler) listTriggers(c *gin.Context) {
	ctx := c.Request.Context()
	triggers, err := h.services.Triggers.List(ctx)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListTriggers, "triggers_list_failed", err)
		return
	}

	onetime := make([]models.Trigger, 0, len(triggers))
	recurring := make([]models.Trigger, 0, len(triggers))
	for _, t := range triggers {
		if t.Recurring() {
			recurring = append(recurring, t)
		} else {
			onetime = append(onetime, t)
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"onetime_triggers":   onetime,
		"recurring_triggers": recurring,
	})
}

// @Summary      Create trigger
// @Tags         triggers
// @Accept       json
// @Produce      json
// @Param        body  body  triggerRequest  true  "Trigger payload"
// @Success      200  {object}  models.Trigger
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/triggers [post]
// @Security     BearerAuth
func (h *Handler) createTrigger(c *gin.Context) {
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	trigger, err := h.services.Triggers.Create(c.Request.Context(), req.params())
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, err.Error(), "trigger_create_failed", err)
		return
	}
	c.JSON(http.StatusOK, trigger)
}

// @Summary      Get trigger
// @Tags         triggers
// @Produce      json
// @Param        id  path  int  true  "Trigger ID"
// @Success      200  {object}  models.Trigger
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/triggers/{id} [get]
// @Security     BearerAuth
func (h *Handler) getTrigger(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	trigger, err := h.services.Triggers.Get(c.Request.Context(), id)
	if err != nil {
		h.logAndJSONError(c, http.StatusNotFound, errGetTrigger, "trigger_get_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, trigger)
}

// @Summary      Update trigger
// @Tags         triggers
// @Accept       json
// @Produce      json
// @Param        id    path  int             true  "Trigger ID"
// @Param        body  body  triggerRequest  true  "Trigger payload"
// @Success      200  {object}  models.Trigger
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/triggers/{id} [put]
// @Security     BearerAuth
func (h *Handler) updateTrigger(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	var req triggerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPref + err.Error()})
		return
	}
	trigger, err := h.services.Triggers.Update(c.Request.Context(), id, req.params())
	if err != nil {
		h.logAndJSONError(c, http.StatusBadRequest, errSaveTrigger, "trigger_update_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, trigger)
}

// @Summary      Delete trigger
// @Tags         triggers
// @Produce      json
// @Param        id  path  int  true  "Trigger ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/triggers/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteTrigger(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	if err := h.services.Triggers.Delete(c.Request.Context(), id); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteTrigger, "trigger_delete_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}

// @Summary      Toggle trigger enabled state
// @Description  Re-enabling an outdated one-off trigger rolls its time to today or tomorrow.
// @Tags         triggers
// @Produce      json
// @Param        id  path  int  true  "Trigger ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/triggers/{id}/toggle [post]
// @Security     BearerAuth
func (h *Handler) toggleTrigger(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	trigger, message, err := h.services.Triggers.Toggle(c.Request.Context(), id, time.Now())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errSaveTrigger, "trigger_toggle_failed", err, "id", id)
		return
	}
	resp := gin.H{"status": statusToggled, "trigger": trigger}
	if message != "" {
		resp["message"] = message
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary      Execute trigger immediately
// @Description  Bypasses the due-time check; dedup and one-off disabling still apply.
// @Tags         triggers
// @Produce      json
// @Param        id  path  int  true  "Trigger ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/triggers/{id}/execute [post]
// @Security     BearerAuth
func (h *Handler) executeTrigger(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	if err := h.services.Sync.ExecuteNow(c.Request.Context(), id); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, errExecuteTrigger, "trigger_execute_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusOK})
}

// @Summary      Run a sync cycle now
// @Tags         sync
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/v1/sync/run [post]
// @Security     BearerAuth
func (h *Handler) runSync(c *gin.Context) {
	if err := h.services.Sync.RunCycle(c.Request.Context(), time.Now()); err != nil {
		h.logAndJSONError(c, http.StatusBadGateway, "sync cycle failed", "sync_run_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusRan})
}
