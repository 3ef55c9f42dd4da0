package types

// Version is overwritten at build time by -ldflags
var Version = "dev"
