// Package config loads genericcache application configuration.
//
// Configuration is built in layers: compiled defaults, then each file added
// with AddLayer (JSON or YAML, chosen by extension), then GENERICCACHE_*
// environment variables. Later layers only override the keys they set.
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
// Durations may be written as Go duration strings ("250ms", "2s"), with a
// day suffix ("1d"), or as integer nanoseconds.
//
// # Environment Overrides
//
//	GENERICCACHE_MAX_SIZE      cache.max_size
//	GENERICCACHE_CACHE_NAME    cache.name
//	GENERICCACHE_LOG_LEVEL     log.level
//	GENERICCACHE_LOG_FORMAT    log.format
//	GENERICCACHE_METRICS_PORT  metrics.port (and enables metrics)
//	GENERICCACHE_NATS_URL      notify.url (and enables forwarding)
//	GENERICCACHE_NATS_SUBJECT  notify.subject
package config
