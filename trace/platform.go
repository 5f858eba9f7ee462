package trace

// NewPlatformProvider returns the best available Provider for the
// current OS, mirroring create_platform_provider()'s Windows/Linux/
// fallback selection. The platform-specific constructors live in
// platform_linux.go, platform_windows.go and platform_other.go,
// following the same per-OS build-tag split cmd/controller uses for
// its Platform type.
func NewPlatformProvider() (Provider, error) {
	return newPlatformProvider()
}
