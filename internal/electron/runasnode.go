package electron

const (
	// RunAsNodeEnv switches Electron into plain node mode.
	RunAsNodeEnv = "ELECTRON_RUN_AS_NODE"
	// LegacyRunAsNodeEnv is the name early Electron releases read instead.
	LegacyRunAsNodeEnv = "ATOM_SHELL_INTERNAL_RUN_AS_NODE"
)

// RunAsNodeEnviron returns env with the run-as-node switch set under both
// names, so it takes effect whichever one the Electron release reads.
func (i Info) RunAsNodeEnviron(env []string) []string {
	return append(env, RunAsNodeEnv+"=1", LegacyRunAsNodeEnv+"=1")
}
