package controllers

import (
	"net/http"
	"strings"

	"github.com/LordZeuss/goroms/internal/app"
	"github.com/LordZeuss/goroms/internal/store"
	"github.com/labstack/echo/v5"
)

type SettingsController struct {
	App *app.Context
}

// GetDownloadDir returns the persisted destination, falling back to the
// configured default when unset.
func (ctrl *SettingsController) GetDownloadDir(c *echo.Context) error {
	saved, err := ctrl.App.Store.GetSetting(c.Request().Context(), store.SettingDownloadDir)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to read setting")
	}

	if strings.TrimSpace(saved) == "" {
		saved = ctrl.App.Config.Download.Dir
	}

	return c.JSON(http.StatusOK, DownloadDirResponse{Path: saved})
}

func (ctrl *SettingsController) SetDownloadDir(c *echo.Context) error {
	var req SetDownloadDirRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if strings.TrimSpace(req.Path) == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Path cannot be empty")
	}

	if err := ctrl.App.Store.SetSetting(c.Request().Context(), store.SettingDownloadDir, req.Path); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to save setting")
	}

	return c.NoContent(http.StatusNoContent)
}

func (ctrl *SettingsController) ClearDownloadDir(c *echo.Context) error {
	if err := ctrl.App.Store.ClearSetting(c.Request().Context(), store.SettingDownloadDir); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to clear setting")
	}

	return c.NoContent(http.StatusNoContent)
}
