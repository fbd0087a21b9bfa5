package api

import (
	"github.com/LordZeuss/goroms/internal/api/controllers"
	"github.com/LordZeuss/goroms/internal/app"
	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
)

func RegisterRoutes(e *echo.Echo, app *app.Context) {

	// Middleware: Request Logger
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c *echo.Context, v middleware.RequestLoggerValues) error {
			app.Logger.Info("%s %s | %d | %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	gamesCtrl := &controllers.GamesController{App: app}
	settingsCtrl := &controllers.SettingsController{App: app}
	eventsCtrl := &controllers.EventsController{App: app}
	catalogCtrl := &controllers.CatalogController{App: app}

	// Catalog search + download jobs
	e.GET("/api/games", gamesCtrl.Search)
	e.POST("/api/downloads", gamesCtrl.Download)

	// Live progress stream (SSE)
	e.GET("/api/events", eventsCtrl.Stream)

	// Destination directory setting
	e.GET("/api/settings/download-dir", settingsCtrl.GetDownloadDir)
	e.PUT("/api/settings/download-dir", settingsCtrl.SetDownloadDir)
	e.DELETE("/api/settings/download-dir", settingsCtrl.ClearDownloadDir)

	// Catalog maintenance
	e.POST("/api/catalog/refresh", catalogCtrl.Refresh)
	e.GET("/api/status", catalogCtrl.Status)
}
