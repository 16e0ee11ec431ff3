// Package config parses the exchange's command-line configuration, in the
// same flag-based style the teacher's client used for its connection
// parameters.
package config

import "flag"

// Config holds the exchange server's runtime configuration.
type Config struct {
	Address string
	Debug   bool
}

// Parse parses os.Args into a Config. Call once, from main.
func Parse() Config {
	address := flag.String("address", "0.0.0.0:9001", "address the websocket ingress tier listens on")
	debug := flag.Bool("debug", false, "enable debug-level logging")
	flag.Parse()

	return Config{
		Address: *address,
		Debug:   *debug,
	}
}
