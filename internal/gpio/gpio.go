// Package gpio provides digital input and output with hardware abstraction.
// The real implementation uses the Linux GPIO character device. The fake
// implementations allow testing the control core without hardware.
package gpio

// DefaultChip is the GPIO character device on a Raspberry Pi.
const DefaultChip = "gpiochip0"
