/*
Package config loads the server's YAML configuration file: logging
verbosity and format, the admin listen address, the scheduler's tick
floor, and the reconciler sweep interval. The data path prefix and the
entity id ceiling are deliberately not here — they aren't configurable.

# Usage

	cfg, err := config.Load("boris.yaml")
	if err != nil {
		return err
	}
	srv := health.NewServer(cfg.Listen.Admin, checker)
*/
package config
