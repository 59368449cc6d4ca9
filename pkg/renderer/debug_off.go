//go:build !rasterdebug

package renderer

const debugChecks = false
