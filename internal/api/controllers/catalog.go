package controllers

import (
	"context"
	"net/http"

	"github.com/LordZeuss/goroms/internal/app"
	"github.com/labstack/echo/v5"

	"github.com/LordZeuss/goroms/internal/catalog"
)

type CatalogController struct {
	App *app.Context
}

// Refresh rebuilds the catalog in the background; progress arrives on
// the event stream as startup-progress events.
func (ctrl *CatalogController) Refresh(c *echo.Context) error {
	a := ctrl.App

	go func() {
		err := a.Scraper.Refresh(context.Background(), a.Consoles(), a.Bus.StartupProgress)
		if err != nil {
			a.Logger.Error("catalog refresh failed: %v", err)
		}
	}()

	return c.NoContent(http.StatusAccepted)
}

// Status reports whether the catalog host is reachable.
func (ctrl *CatalogController) Status(c *echo.Context) error {
	online, err := catalog.CheckNetwork(ctrl.App.Config.Catalog.BaseURL)
	if err != nil {
		online = false
	}

	return c.JSON(http.StatusOK, StatusResponse{Online: online})
}
