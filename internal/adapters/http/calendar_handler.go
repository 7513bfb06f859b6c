package http

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/arrangemylist/planner/internal/application/services"
	"github.com/arrangemylist/planner/internal/domain/entities"
	"github.com/arrangemylist/planner/internal/infrastructure/logger"
	"github.com/arrangemylist/planner/internal/ports"
)

// CalendarHandler handles calendar event requests
type CalendarHandler struct {
	calendarService *services.CalendarService
	logger          *logger.Logger
}

// NewCalendarHandler creates a new calendar handler
func NewCalendarHandler(calendarService *services.CalendarService, logger *logger.Logger) *CalendarHandler {
	return &CalendarHandler{
		calendarService: calendarService,
		logger:          logger,
	}
}

// ListEvents supports ?start=&end= and ?month=&year= filters
func (h *CalendarHandler) ListEvents(c echo.Context) error {
	q, err := parseCalendarQuery(c)
	if err != nil {
		return err
	}
	events, err := h.calendarService.List(c.Request().Context(), getUserIDFromContext(c), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, events)
}

func (h *CalendarHandler) GetEvent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	event, err := h.calendarService.Get(c.Request().Context(), getUserIDFromContext(c), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

func (h *CalendarHandler) CreateEvent(c echo.Context) error {
	var req ports.CreateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	event, err := h.calendarService.Create(c.Request().Context(), getUserIDFromContext(c), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, event)
}

func (h *CalendarHandler) UpdateEvent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	var req ports.UpdateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	event, err := h.calendarService.Update(c.Request().Context(), getUserIDFromContext(c), id, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, event)
}

func (h *CalendarHandler) DeleteEvent(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.calendarService.Delete(c.Request().Context(), getUserIDFromContext(c), id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Event deleted successfully"})
}

func parseCalendarQuery(c echo.Context) (ports.CalendarQuery, error) {
	var q ports.CalendarQuery

	if start, end := c.QueryParam("start"), c.QueryParam("end"); start != "" && end != "" {
		from, err := ports.ParseFlexTime(start)
		if err != nil {
			return q, entities.Validation("Invalid start")
		}
		to, err := ports.ParseFlexTime(end)
		if err != nil {
			return q, entities.Validation("Invalid end")
		}
		q.Start, q.End = &from.Time, &to.Time
		return q, nil
	}

	if month, year := c.QueryParam("month"), c.QueryParam("year"); month != "" && year != "" {
		m, err := strconv.Atoi(month)
		if err != nil {
			return q, entities.Validation("Invalid month")
		}
		y, err := strconv.Atoi(year)
		if err != nil {
			return q, entities.Validation("Invalid year")
		}
		q.Month, q.Year = m, y
	}
	return q, nil
}
