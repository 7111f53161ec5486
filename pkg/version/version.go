package version

// Version is the application version. Overridden at build time via
// -ldflags "-X lessonlab/pkg/version.Version=...".
var Version = "dev"
