package editor

import "errors"

var (
	// ErrBusy means the same operation is already in flight for the courier.
	ErrBusy = errors.New("operation already in progress")
	// ErrPrecondition is a client-side check that failed before any planner call.
	ErrPrecondition = errors.New("precondition failed")
	// ErrWarehouseMissing means AddRequest was deferred until a warehouse is set.
	ErrWarehouseMissing = errors.New("courier has no warehouse")
	// ErrInfeasible means the planner's solver found no tour for the edit.
	ErrInfeasible = errors.New("no feasible tour")
	// ErrNoSuchAction is returned when triggering an unknown notification action.
	ErrNoSuchAction = errors.New("no such notification action")
)
