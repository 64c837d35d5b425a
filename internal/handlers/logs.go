package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	errListLogs   = "failed to list logs"
	errDeleteLogs = "failed to delete logs"
)

// @Summary      List recent execution logs
// @Tags         logs
// @Produce      json
// @Param        limit  query  int  false  "Max entries (default 100)"
// @Success      200  {array}   models.TriggerLog
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/logs [get]
// @Security     BearerAuth
func (h *Handler) listLogs(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			limit = v
		}
	}
	logs, err := h.services.Logs.List(c.Request.Context(), 0, limit)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListLogs, "logs_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// @Summary      List a trigger's execution logs
// @Tags         logs
// @Produce      json
// @Param        id  path  int  true  "Trigger ID"
// @Success      200  {array}   models.TriggerLog
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/triggers/{id}/logs [get]
// @Security     BearerAuth
func (h *Handler) listTriggerLogs(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	logs, err := h.services.Logs.List(c.Request.Context(), id, 0)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListLogs, "logs_list_failed", err, "trigger_id", id)
		return
	}
	c.JSON(http.StatusOK, logs)
}

// @Summary      Delete a trigger's logs
// @Description  Clearing history re-arms a recurring trigger inside the dedup window.
// @Tags         logs
// @Produce      json
// @Param        id  path  int  true  "Trigger ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/triggers/{id}/logs [delete]
// @Security     BearerAuth
func (h *Handler) deleteTriggerLogs(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	if err := h.services.Logs.DeleteForTrigger(c.Request.Context(), id); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteLogs, "logs_delete_failed", err, "trigger_id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}
