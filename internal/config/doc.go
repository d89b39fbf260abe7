// Package config provides configuration loading for the regform server.
//
// Settings are layered: built-in defaults, then an optional YAML file
// (regform.yaml in the working directory, or the path given with --config),
// then environment variables prefixed with REGFORM_.
//
// # Configuration File Structure
//
//	server:
//	  host: localhost
//	  port: 8080
//	  read_timeout: 15s
//	  write_timeout: 15s
//	  idle_timeout: 60s
//	  shutdown_timeout: 10s
//	toast:
//	  duration: 5s
//	upload:
//	  max_size: 5242880
//	  ttl: 30m
//	log:
//	  level: info
//	  format: text
//	metrics:
//	  enabled: true
//	  path: /metrics
//	tracing:
//	  enabled: false
//	  service_name: regform
//	dev_mode: false
//
// # Environment
//
// The first segment after the prefix names the section:
// REGFORM_SERVER_PORT sets server.port, REGFORM_UPLOAD_MAX_SIZE sets
// upload.max_size and REGFORM_DEV_MODE sets dev_mode.
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println("Address:", cfg.Address())
package config
