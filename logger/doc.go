// Package logger provides structured logging for minject using zerolog.
//
// The di package logs registrations and resolutions through a component
// logger obtained from Get("di"); applications configure the global logger
// once with Init.
//
// # Configuration
//
//	log:
//	  level: "debug"
//	  format: "json"
//
// # Usage
//
//	log := logger.Get("di")
//	log.Debug("resolved", logger.Fields(logger.FieldKey, "database"))
package logger
