package app

import "fmt"

// Build information, overridden with -ldflags "-X" at release time
var (
	Version   = "0.1.0"
	GitTag    = "2000.01.01.release"
	BuildTime = "2000-01-01T00:00:00+0800"
)

// Name is the product name shown in the banner and the version command
const Name = "Link Editor Service"

// VersionString is the one line form printed by the CLI and the startup banner
func VersionString() string {
	return fmt.Sprintf("%s v%s ( Git:%s ) BuildTime:%s", Name, Version, GitTag, BuildTime)
}
