package version

// Version is overridden at build time with
// -ldflags "-X licensedesk/internal/version.Version=...".
var Version = "dev"
