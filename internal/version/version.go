// ABOUTME: Version and product identification constants
// ABOUTME: Reported in handshakes, mDNS records and the TUI header
package version

const (
	Version      = "0.3.0"
	Product      = "Resonate Loop"
	Manufacturer = "Resonate"
)
