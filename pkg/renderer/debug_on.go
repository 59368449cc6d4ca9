//go:build rasterdebug

package renderer

// debugChecks turns pipeline invariant violations into panics
const debugChecks = true
