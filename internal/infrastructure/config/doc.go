// Package config handles loading and validating Customer Core configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// Security Considerations:
//   - Sensitive values (JWT secret, seed passwords) should be set via
//     environment variables rather than committed to the config file
//   - The config file should have restricted permissions (0600)
//   - The JWT secret is base64-encoded and must decode to 256 bits or more
//
// Usage:
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.API.Port)
package config
