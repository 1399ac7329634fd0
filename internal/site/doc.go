// Package site drives one generation run through the lifecycle a static
// site host exposes to its plugins: metadata, render, finalize.
//
// The render step here is deliberately small. It turns the published
// stylesheet records into <link> tags and writes them to the configured head
// partial, which is what templates of the host site would otherwise do.
package site
