package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-slot-booking/internal/domain/event"
	"github.com/sanosuguru/go-slot-booking/internal/domain/slot"
)

// toHTTPError はドメインエラーをHTTPエラーに変換する
func toHTTPError(err error) error {
	switch {
	case errors.Is(err, slot.ErrSlotNotFound),
		errors.Is(err, event.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())

	case errors.Is(err, slot.ErrSlotAlreadyBooked),
		errors.Is(err, slot.ErrSlotStateChanged),
		errors.Is(err, slot.ErrOptimisticLockConflict),
		errors.Is(err, event.ErrMaxCapacityExceeded):
		return echo.NewHTTPError(http.StatusConflict, err.Error())

	case errors.Is(err, slot.ErrUnauthorizedAccess),
		errors.Is(err, event.ErrUnauthorizedAccess),
		errors.Is(err, event.ErrEventPrivate):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())

	case errors.Is(err, slot.ErrCancellationNotAllowed):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, slot.ErrSlotInPast),
		errors.Is(err, slot.ErrSlotNotBooked),
		errors.Is(err, slot.ErrInvalidDuration),
		errors.Is(err, slot.ErrInvalidSlotTime),
		errors.Is(err, slot.ErrAttendeeNameRequired),
		errors.Is(err, slot.ErrAttendeeEmailRequired),
		errors.Is(err, event.ErrEventNameRequired),
		errors.Is(err, event.ErrHostIDRequired),
		errors.Is(err, event.ErrInvalidEventTime),
		errors.Is(err, event.ErrEventStartInPast),
		errors.Is(err, event.ErrInvalidTimeZone):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())

	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
