package guide

// Version is overridden at build time with -ldflags "-X github.com/aretw0/guide.Version=...".
var Version = "dev"
