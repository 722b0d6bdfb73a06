// Package observability provides structured logging and tracing for the
// gateway. Logging is backed by zap behind a small Logger interface so that
// packages can be tested with a nop logger; tracing is OpenTelemetry with an
// optional OTLP gRPC exporter.
package observability
