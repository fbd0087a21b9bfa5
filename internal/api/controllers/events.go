package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/LordZeuss/goroms/internal/app"
	"github.com/labstack/echo/v5"
)

type EventsController struct {
	App *app.Context
}

// Stream pushes progress events to the client as server-sent events
// until the client disconnects.
func (ctrl *EventsController) Stream(c *echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	rc := http.NewResponseController(w)
	rc.Flush()

	ch, cancel := ctrl.App.Bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case ev, ok := <-ch:
			if !ok {
				return nil
			}

			data, err := json.Marshal(ev)
			if err != nil {
				continue
			}

			fmt.Fprintf(w, "data: %s\n\n", data)
			rc.Flush()
		}
	}
}
