package config

import "strings"

// filterArgs keeps only the given flags and their values so each parser
// sees the arguments it knows about. Both "-f value" and "-f=value" are
// accepted; "--f" is treated like "-f".
func filterArgs(args []string, names ...string) []string {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, _, hasValue := strings.Cut(args[i], "=")
		if !strings.HasPrefix(name, "-") || !known[strings.TrimLeft(name, "-")] {
			continue
		}
		out = append(out, args[i])
		if !hasValue && i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			out = append(out, args[i+1])
			i++
		}
	}
	return out
}
