// Package utils carries the shared infrastructure behind every trendops
// command: the Viper-backed ConfigurationLoader, the zap LoggerFactory, and
// the context accessor used to thread the configuration file path.
package utils
