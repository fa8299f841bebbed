package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the command bar drops
	// its descriptions.
	LayoutCompactWidth = 80

	// LayoutMenuWidth is the width of the notes menu overlay.
	LayoutMenuWidth = 36
)

// Editor chrome: header, rule, status line and command bar.
const chromeHeight = 4

// Timing constants.
const (
	// StatusTick refreshes relative save times in the status line.
	StatusTick = time.Second

	// CopyTimeout bounds a clipboard write.
	CopyTimeout = 2 * time.Second
)
