// Package flagx helps several flag parsers share os.Args: each parser keeps
// only the flags it owns and ignores everything else.
package flagx

import (
	"flag"
	"io"
	"strings"
)

// FilterArgs returns the subset of args made of allowedFlags and their values.
//
// Both "-c conf.json" and "-c=conf.json" forms are recognised. A separate value
// is taken only when the next token does not start with '-'. The result is never
// nil.
func FilterArgs(args []string, allowedFlags []string) []string {
	allowed := make(map[string]struct{}, len(allowedFlags))
	for _, f := range allowedFlags {
		allowed[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if name, _, ok := strings.Cut(arg, "="); ok && strings.HasPrefix(arg, "-") {
			if _, ok := allowed[name]; ok {
				filtered = append(filtered, arg)
			}
			continue
		}

		if _, ok := allowed[arg]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigPath extracts the JSON config path given with -c or -config.
// The last occurrence wins; an empty string means no file was requested.
func ConfigPath(args []string) string {
	return stringFlag(args, "config", "c")
}

// EnvFilePath extracts the dotenv path given with -env.
func EnvFilePath(args []string) string {
	return stringFlag(args, "env", "")
}

func stringFlag(args []string, long, short string) string {
	var value string

	names := []string{"-" + long}
	fs := flag.NewFlagSet(long, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&value, long, "", "")
	if short != "" {
		names = append(names, "-"+short)
		fs.StringVar(&value, short, "", "")
	}

	_ = fs.Parse(FilterArgs(args, names))
	return value
}
