package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/hotgen/hotgen/version.Version=1.2.3"
var Version = "0.0.0"
