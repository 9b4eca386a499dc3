package version

// Version is overridden at build time with -ldflags "-X ifacescan/internal/shared/version.Version=...".
var Version = "dev"
