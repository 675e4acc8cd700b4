package version

// Version is set at build time with -ldflags "-X github.com/guiyumin/fbdl/internal/version.Version=..."
var Version = "dev"
