package controllers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/LordZeuss/goroms/internal/app"
	"github.com/LordZeuss/goroms/internal/job"
	"github.com/labstack/echo/v5"
)

type GamesController struct {
	App *app.Context
}

// Search looks up catalog entries by (normalized) name.
func (ctrl *GamesController) Search(c *echo.Context) error {
	query := c.QueryParam("q")

	games, err := ctrl.App.Store.SearchGames(c.Request().Context(), query)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Search failed")
	}

	return c.JSON(http.StatusOK, games)
}

// Download starts a fetch-and-extract job for one catalog entry. The job
// runs detached from the request; progress arrives on the event stream.
func (ctrl *GamesController) Download(c *echo.Context) error {
	var req DownloadRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	game, err := ctrl.App.Store.GetGame(c.Request().Context(), req.ID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Catalog lookup failed")
	}
	if game == nil {
		return echo.NewHTTPError(http.StatusNotFound, "Game not found")
	}

	jobID := strconv.FormatInt(game.ID, 10)

	// context.Background: the job must outlive this request.
	ctrl.App.Jobs.Start(context.Background(), job.Request{
		JobID:    jobID,
		URL:      game.DownloadLink,
		FileName: game.Name,
		DestDir:  req.DownloadDir,
	})

	return c.JSON(http.StatusAccepted, DownloadResponse{JobID: jobID})
}
