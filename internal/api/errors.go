package api

import (
	"errors"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/joeblew999/plat-tours/internal/editor"
	"github.com/joeblew999/plat-tours/internal/planner"
)

// problem maps an editor error onto an RFC 9457 problem response. The
// message is the one the notification channel shows.
func problem(err error) error {
	msg := strings.TrimSpace(err.Error())
	switch {
	case errors.Is(err, editor.ErrBusy):
		return huma.Error409Conflict(msg)
	case errors.Is(err, editor.ErrInfeasible):
		return huma.Error409Conflict(msg)
	case errors.Is(err, editor.ErrPrecondition):
		return huma.Error422UnprocessableEntity(msg)
	case errors.Is(err, editor.ErrNoSuchAction):
		return huma.Error404NotFound(msg)
	default:
		return huma.Error502BadGateway("planner: " + planner.Detail(err))
	}
}
