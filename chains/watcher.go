package chains

// Watcher is one running watch unit for a single chain. Watchers share nothing
// with each other; running several chains means running several independent
// instances.
type Watcher interface {
	Start()

	// Stop closes the active transport and lets any in-flight dispatch finish.
	Stop()
}
