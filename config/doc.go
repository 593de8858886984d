// Package config provides configuration management for ProteoVisualizer.
//
// Configuration is assembled in layers: built-in defaults, then any number of JSON or
// YAML files (chosen by extension), then PROTEOVIS_* environment variables. Later layers
// only override the keys they mention, so a file can change a single nested value.
//
//	loader := config.NewLoader()
//	loader.AddLayer("config/base.yaml")
//	loader.AddLayer("config/production.json")
//	loader.EnableValidation(true)
//
//	cfg, err := loader.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//
// Durations accept Go syntax ("250ms", "5s") as well as a day suffix ("1d").
//
// SafeConfig wraps a Config for concurrent readers; Get returns a deep copy and Update
// validates before swapping.
package config
