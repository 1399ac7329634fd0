// Package metrics provides observability hooks for lessbuild phase metrics.
//
// Components receive a Recorder through dependency injection and default to
// NoopRecorder, so metrics collection needs no nil checks at call sites:
//
//	plugin := pipeline.NewLessPlugin(cfg, comp) // NoopRecorder
//	plugin = plugin.WithRecorder(metrics.NewPrometheusRecorder(reg))
//
// The CLI activates the Prometheus implementation only when --metrics-file is
// given and writes the registry in text exposition format after the run.
package metrics
