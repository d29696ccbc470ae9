package configloader

import "os"

// legacyEnvAliases maps environment variables understood by earlier
// ritobin tooling to the suffix of the RITOBIN_LSP_ variable they stand in
// for. A prefixed variable always wins over its alias.
//
//nolint:gochecknoglobals // Read-only lookup table.
var legacyEnvAliases = map[string]string{
	"RB_LOG":      "LOG_LEVEL",
	"RB_LOG_FILE": "LOG_FILE",
}

// lookupEnv returns the value for a RITOBIN_LSP_ suffix, falling back to
// its legacy alias. The second result names the variable that supplied it.
func lookupEnv(suffix string) (string, string) {
	name := envVarPrefix + suffix
	if value := os.Getenv(name); value != "" {
		return value, name
	}
	for alias, target := range legacyEnvAliases {
		if target != suffix {
			continue
		}
		if value := os.Getenv(alias); value != "" {
			return value, alias
		}
	}
	return "", ""
}

// ResolveAlias returns the RITOBIN_LSP_ variable an alias stands in for.
func ResolveAlias(name string) (string, bool) {
	target, ok := legacyEnvAliases[name]
	if !ok {
		return "", false
	}
	return envVarPrefix + target, true
}
