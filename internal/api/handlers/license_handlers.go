package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"licensedesk/internal/dashboard"
	"licensedesk/internal/models"
	"licensedesk/internal/mutation"
	"licensedesk/internal/store"
)

type removeDeviceRequest struct {
	DeviceID string `json:"device_id" binding:"required"`
}

func formatEndDate(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04 MST")
}

func expiryMessage(prefix string, end time.Time) string {
	if end.IsZero() {
		return prefix + "."
	}
	return prefix + ". Expires: " + formatEndDate(end)
}

// CreateLicenseHandler handles POST /licenses/create
func CreateLicenseHandler(d *mutation.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		in := models.NewLicense{
			Type:        strings.TrimSpace(c.PostForm("type")),
			ClientName:  formOptional(c, "client_name"),
			ClientPhone: formOptional(c, "client_phone"),
			DaysValid:   formInt(c, "days", DefaultDays),
			Notes:       strings.TrimSpace(c.PostForm("notes")),
		}

		code, err := d.Create(ctx, in)
		if err != nil {
			redirectWithError(c, "Could not create license", err)
			return
		}
		redirectWithFlash(c, FlashSuccess, "License created: "+code)
	}
}

// UpdateLicenseHandler handles POST /licenses/:id/update
func UpdateLicenseHandler(d *mutation.Dispatcher, licenseStore store.LicenseStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		id, err := parseLicenseID(c)
		if err != nil {
			redirectWithError(c, "Could not update license", err)
			return
		}

		// A blank or malformed max_devices keeps the stored ceiling. Negative
		// values go through so the dispatcher can reject them.
		maxDevices, ok := formIntOK(c, "max_devices")
		if !ok {
			existing, err := licenseStore.GetLicense(ctx, id)
			if err != nil {
				redirectWithError(c, "Could not update license", err)
				return
			}
			maxDevices = existing.MaxDevices
		}

		upd := models.LicenseUpdate{
			ClientName:  formOptional(c, "client_name"),
			ClientPhone: formOptional(c, "client_phone"),
			Notes:       strings.TrimSpace(c.PostForm("notes")),
			MaxDevices:  maxDevices,
		}
		if err := d.Update(ctx, id, upd); err != nil {
			redirectWithError(c, "Could not update license", err)
			return
		}
		redirectWithFlash(c, FlashSuccess, "License updated")
	}
}

// ExtendLicenseHandler handles POST /licenses/:id/extend
func ExtendLicenseHandler(d *mutation.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		id, err := parseLicenseID(c)
		if err != nil {
			redirectWithError(c, "Could not extend license", err)
			return
		}

		end, err := d.Extend(ctx, id, formInt(c, "days", DefaultDays))
		if err != nil {
			redirectWithError(c, "Could not extend license", err)
			return
		}
		redirectWithFlash(c, FlashSuccess, expiryMessage("License extended", end))
	}
}

// ReactivateLicenseHandler handles POST /licenses/:id/reactivate
func ReactivateLicenseHandler(d *mutation.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		id, err := parseLicenseID(c)
		if err != nil {
			redirectWithError(c, "Could not reactivate license", err)
			return
		}

		end, err := d.Reactivate(ctx, id, formInt(c, "days", DefaultDays))
		if err != nil {
			redirectWithError(c, "Could not reactivate license", err)
			return
		}
		redirectWithFlash(c, FlashSuccess, expiryMessage("License reactivated", end))
	}
}

// ToggleBlockHandler handles POST /licenses/:id/toggle-block
func ToggleBlockHandler(d *mutation.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		id, err := parseLicenseID(c)
		if err != nil {
			redirectWithError(c, "Could not change status", err)
			return
		}

		status, err := d.ToggleBlock(ctx, id)
		if err != nil {
			redirectWithError(c, "Could not change status", err)
			return
		}
		redirectWithFlash(c, FlashSuccess, fmt.Sprintf("Status changed to %s", status))
	}
}

// RemoveDeviceHandler handles POST /licenses/:id/remove-device. It answers
// JSON because the console calls it from script.
func RemoveDeviceHandler(d *mutation.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		id, err := parseLicenseID(c)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "License not found"})
			return
		}

		var req removeDeviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "device_id is required"})
			return
		}

		found, err := d.RemoveDevice(ctx, id, req.DeviceID)
		if err != nil {
			status := statusFor(err)
			if status == http.StatusServiceUnavailable || status == http.StatusUnprocessableEntity {
				status = http.StatusInternalServerError
			}
			c.JSON(status, gin.H{"success": false, "message": describe(err)})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Device not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// ResetDevicesHandler handles POST /licenses/:id/reset-devices
func ResetDevicesHandler(d *mutation.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		id, err := parseLicenseID(c)
		if err == nil {
			err = d.ResetDevices(ctx, id)
		}
		if err != nil {
			redirectWithError(c, "Could not reset devices", err)
			return
		}
		redirectWithFlash(c, FlashSuccess, "Devices reset")
	}
}

// RegenerateCodeHandler handles POST /licenses/:id/regenerate-code
func RegenerateCodeHandler(d *mutation.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		id, err := parseLicenseID(c)
		if err != nil {
			redirectWithError(c, "Could not regenerate code", err)
			return
		}

		code, err := d.RegenerateCode(ctx, id)
		if err != nil {
			redirectWithError(c, "Could not regenerate code", err)
			return
		}
		redirectWithFlash(c, FlashSuccess, "New license code: "+code)
	}
}

// DeleteLicenseHandler handles POST /licenses/:id/delete
func DeleteLicenseHandler(d *mutation.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		id, err := parseLicenseID(c)
		if err == nil {
			err = d.Delete(ctx, id)
		}
		if err != nil {
			redirectWithError(c, "Could not delete license", err)
			return
		}
		redirectWithFlash(c, FlashSuccess, "License deleted")
	}
}

// GetLicenseHandler handles GET /api/licenses/:id
func GetLicenseHandler(svc *dashboard.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), requestTimeout)
		defer cancel()

		id, err := parseLicenseID(c)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "License not found"})
			return
		}

		view, err := svc.Get(ctx, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "License not found"})
				return
			}
			c.JSON(statusFor(err), gin.H{"error": "Failed to get license"})
			return
		}

		c.JSON(http.StatusOK, view)
	}
}
