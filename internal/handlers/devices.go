package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	errListDevices  = "failed to list devices"
	errGetDevice    = "failed to load device"
	errDeleteDevice = "failed to delete device"
)

// @Summary      List synced devices
// @Tags         devices
// @Produce      json
// @Success      200  {array}   models.Device
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/devices [get]
// @Security     BearerAuth
func (h *Handler) listDevices(c *gin.Context) {
	devices, err := h.services.Devices.List(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errListDevices, "devices_list_failed", err)
		return
	}
	c.JSON(http.StatusOK, devices)
}

// @Summary      Get device
// @Tags         devices
// @Produce      json
// @Param        id  path  int  true  "Device ID"
// @Success      200  {object}  models.Device
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/devices/{id} [get]
// @Security     BearerAuth
func (h *Handler) getDevice(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	device, err := h.services.Devices.Get(c.Request.Context(), id)
	if err != nil {
		h.logAndJSONError(c, http.StatusNotFound, errGetDevice, "device_get_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, device)
}

// @Summary      Delete device (cascades to triggers and logs)
// @Tags         devices
// @Produce      json
// @Param        id  path  int  true  "Device ID"
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/devices/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deleteDevice(c *gin.Context) {
	id, ok := h.parseIDParam(c)
	if !ok {
		return
	}
	if err := h.services.Devices.Delete(c.Request.Context(), id); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errDeleteDevice, "device_delete_failed", err, "id", id)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": statusDeleted})
}
