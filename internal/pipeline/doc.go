// Package pipeline implements the two lifecycle phases of the stylesheet
// asset pipeline.
//
// MetadataPhase runs before templates render. It compiles each configured
// source in memory, derives the cache-busting token and integrity attribute,
// and publishes the resulting Records to a write-once Sink.
//
// BuildPhase runs after rendering. It compiles every source again and writes
// the CSS to the output tree. The phases share nothing but configuration;
// because compilation is deterministic both produce the same bytes, which
// BuildPhase double-checks against the published Records when they are
// available.
//
// LessPlugin adapts both phases to the Plugin interface a host drives.
package pipeline
