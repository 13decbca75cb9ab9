package executor

// ServiceDescriptor is the result of the health probe (spec.md §6): a
// fixed name and version plus the bounds and whitelist a caller needs to
// build a valid ExecutionRequest without guessing.
type ServiceDescriptor struct {
	Name              string   `json:"name"`
	Version           string   `json:"version"`
	MaxTimeoutSeconds int      `json:"max_timeout_seconds"`
	MaxMemoryLimitMiB int      `json:"max_memory_limit_mib"`
	PermittedImports  []string `json:"permitted_imports"`
}

// NewServiceDescriptor builds the descriptor from the shipped bounds and a
// caller-supplied whitelist snapshot (policy.Catalog.PermittedImportNames).
func NewServiceDescriptor(name, version string, permittedImports []string) ServiceDescriptor {
	return ServiceDescriptor{
		Name:              name,
		Version:           version,
		MaxTimeoutSeconds: maxTimeoutSeconds,
		MaxMemoryLimitMiB: maxMemoryLimitMiB,
		PermittedImports:  permittedImports,
	}
}
