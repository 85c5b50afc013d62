package version

// Version is overridden at build time with -ldflags "-X sopgen/internal/version.Version=...".
var Version = "dev"
