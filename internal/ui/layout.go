package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the job panel stacks
	// above the result panes.
	LayoutCompactWidth = 90

	// LayoutPanelMinWidth and LayoutPanelMaxWidth bound the job panel.
	LayoutPanelMinWidth = 32
	LayoutPanelMaxWidth = 48
)

// Log display limits.
const (
	// LogTailLines is the number of log lines read per refresh.
	LogTailLines = 400
)

// Toasts.
const (
	ToastLifetime = 5 * time.Second
	MaxToasts     = 3
)

// Timing constants.
const (
	// DefaultUIInterval is the default snapshot refresh interval.
	DefaultUIInterval = 250 * time.Millisecond
)
