// Package constants defines shared configuration constants.
package constants

var (
	ConfigFile = "config.yaml"

	DefaultDir = ".electron-inspector"

	// ConfigDirEnv overrides the directory holding ConfigFile.
	ConfigDirEnv = "ELECTRON_INSPECTOR_CONFIG"

	// DefaultDebugPort is the V8 debugger port of the Electron process being debugged.
	DefaultDebugPort = 5858

	DefaultWebHost = "0.0.0.0"

	// DefaultWebPort is the port node-inspector serves its web UI on.
	DefaultWebPort = 8080

	DefaultStackTraceLimit = 50

	// DefaultHeadersURL is where Electron publishes its Node headers tarballs.
	DefaultHeadersURL = "https://electronjs.org/headers"

	// DefaultHeadersDir is the shared node-gyp devdir, relative to the home directory.
	DefaultHeadersDir = ".electron-gyp"
)

// ElectronPackages lists the npm packages that ship an Electron binary, in lookup order.
var ElectronPackages = []string{"electron-prebuilt", "electron", "electron-prebuilt-compile"}

// NativeAddons are the node-inspector dependencies with prebuilt native binaries.
var NativeAddons = []string{"v8-profiler", "v8-debug"}

// InspectorPackage is the npm package whose native dependencies are checked
// and rebuilt.
const InspectorPackage = "node-inspector"

// InspectorScript is the node-inspector entry point, as a module request.
const InspectorScript = "node-inspector/bin/inspector.js"
