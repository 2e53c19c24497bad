package editor

import (
	"fmt"
	"strings"
)

// Mode is the active map-click selection intent.
type Mode int

const (
	Idle Mode = iota
	AwaitingPickup
	AwaitingDelivery
	AwaitingWarehouse
	AwaitingReorderBefore
	AwaitingReorderAfter
)

var modeNames = map[Mode]string{
	Idle:                  "idle",
	AwaitingPickup:        "pickup",
	AwaitingDelivery:      "delivery",
	AwaitingWarehouse:     "warehouse",
	AwaitingReorderBefore: "reorder-before",
	AwaitingReorderAfter:  "reorder-after",
}

func (m Mode) String() string {
	if s, ok := modeNames[m]; ok {
		return s
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// ParseMode is the inverse of Mode.String.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for m, name := range modeNames {
		if name == s {
			return m, nil
		}
	}
	return Idle, fmt.Errorf("unknown selection mode %q", s)
}

// awaitsStop reports whether the mode only accepts clicks on tour stops.
func (m Mode) awaitsStop() bool {
	return m == AwaitingReorderBefore || m == AwaitingReorderAfter
}

// Panel is the open editing panel.
type Panel int

const (
	PanelNone Panel = iota
	PanelRequest
	PanelReorder
)

var panelNames = map[Panel]string{
	PanelNone:    "none",
	PanelRequest: "request",
	PanelReorder: "reorder",
}

func (p Panel) String() string {
	if s, ok := panelNames[p]; ok {
		return s
	}
	return fmt.Sprintf("panel(%d)", int(p))
}

// ParsePanel is the inverse of Panel.String.
func ParsePanel(s string) (Panel, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for p, name := range panelNames {
		if name == s {
			return p, nil
		}
	}
	return PanelNone, fmt.Errorf("unknown panel %q", s)
}
