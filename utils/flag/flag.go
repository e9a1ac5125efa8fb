package flag

import (
	stdflag "flag"
)

var (
	// ServiceName tags logs and metrics with the running service's identity.
	ServiceName = stdflag.String("service", "pulsifi_backend", "name of the service")

	// ServerAddr is the listen address of the HTTP server.
	ServerAddr = stdflag.String("addr", ":8080", "http server listen address")
)

var parsed = false

// ParseFlags parses command line flags exactly once. Call at the top of every
// main function before reading any flag value.
func ParseFlags() {
	if parsed {
		return
	}
	stdflag.Parse()
	parsed = true
}
