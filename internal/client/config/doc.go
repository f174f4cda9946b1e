// Package config loads settings for the taskkeeper CLI.
//
// Sources, in increasing precedence: built-in defaults, an optional JSON file
// named by -c/-config, then the -a, -l and -r flags.
package config
