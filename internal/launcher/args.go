package launcher

import (
	"strconv"

	"github.com/electron-inspector/electron-inspector/internal/config"
)

// Args translates opts into node-inspector command-line arguments. Unset
// options produce nothing; Preload and Inject only produce a flag when
// explicitly disabled, since node-inspector enables both by default. The
// result depends on nothing but opts.
func Args(opts config.Options) []string {
	args := []string{}

	if opts.DebugPort != 0 {
		args = append(args, "-d", strconv.Itoa(opts.DebugPort))
	}
	if opts.WebHost != "" {
		args = append(args, "--web-host", opts.WebHost)
	}
	if opts.WebPort != 0 {
		args = append(args, "--web-port", strconv.Itoa(opts.WebPort))
	}
	if opts.SaveLiveEdit {
		args = append(args, "--save-live-edit", "true")
	}
	if opts.Preload != nil && !*opts.Preload {
		args = append(args, "--no-preload")
	}
	if opts.Inject != nil && !*opts.Inject {
		args = append(args, "--no-inject")
	}
	for _, pattern := range opts.Hidden {
		args = append(args, "--hidden", pattern)
	}
	if opts.StackTraceLimit != 0 {
		args = append(args, "--stack-trace-limit", strconv.Itoa(opts.StackTraceLimit))
	}
	if opts.SSLKey != "" {
		args = append(args, "--ssl-key", opts.SSLKey)
	}
	if opts.SSLCert != "" {
		args = append(args, "--ssl-cert", opts.SSLCert)
	}
	if opts.NodeInspectorConfig != "" {
		args = append(args, "--config", opts.NodeInspectorConfig)
	}

	return args
}
