package ui

const (
	// DefaultWidthSmall is the default width for text inputs.
	DefaultWidthSmall = 40

	// DefaultInputCharLimit bounds free-text prompt input.
	DefaultInputCharLimit = 120
)
