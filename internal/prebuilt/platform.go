package prebuilt

import "runtime"

// HostPlatform returns the node platform name of the running OS.
func HostPlatform() string {
	return Platform(runtime.GOOS)
}

// HostArch returns the node arch name of the running CPU.
func HostArch() string {
	return Arch(runtime.GOARCH)
}

// Platform maps a GOOS value to node's process.platform.
func Platform(goos string) string {
	switch goos {
	case "windows":
		return "win32"
	default:
		return goos
	}
}

// Arch maps a GOARCH value to node's process.arch.
func Arch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x64"
	case "386":
		return "ia32"
	default:
		return goarch
	}
}
