package build

// Version and build time information, set at link time.
var (
	Version string = "dev"
	Time    string = "unknown"
)
