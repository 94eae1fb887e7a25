package catalog

import (
	"os/exec"
	"runtime"
	"sync"
)

// Platform names compared against runtime.GOOS.
const (
	PlatformWindows = "windows"
	PlatformDarwin  = "darwin"
	PlatformLinux   = "linux"
)

// DefaultSyncClient is the executable looked up on PATH to decide whether
// rsync transports are usable.
const DefaultSyncClient = "rsync"

// Capabilities is the snapshot of host facts that decides which transports
// can be downloaded. It is computed once and passed to every leaf.
type Capabilities struct {
	Platform      string
	HasSyncClient bool
}

// SyncSupported reports whether rsync transports can be used on this host.
// Windows is excluded even when an rsync binary is present.
func (c Capabilities) SyncSupported() bool {
	return c.HasSyncClient && c.Platform != PlatformWindows
}

// Allows reports whether a leaf with the given transport is downloadable.
func (c Capabilities) Allows(t Transport) bool {
	return t != TransportSync || c.SyncSupported()
}

var detectOnce = sync.OnceValue(func() Capabilities {
	return DetectCapabilitiesFrom(runtime.GOOS, exec.LookPath, DefaultSyncClient)
})

// DetectCapabilities returns the process-wide capability snapshot.
// Host platform and PATH are inspected on the first call only.
func DetectCapabilities() Capabilities {
	return detectOnce()
}

// DetectCapabilitiesFrom builds a snapshot from explicit inputs so callers and
// tests can override the sync client or the platform without touching the
// process-wide cache.
func DetectCapabilitiesFrom(goos string, lookPath func(string) (string, error), client string) Capabilities {
	caps := Capabilities{Platform: goos}
	if client == "" || lookPath == nil {
		return caps
	}
	if _, err := lookPath(client); err == nil {
		caps.HasSyncClient = true
	}
	return caps
}
