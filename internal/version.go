package internal

// Version is the application version, overridden at build time with -ldflags
var Version = "0.3.0"
