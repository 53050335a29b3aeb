package handoff

import (
	"io"
	"strings"

	"github.com/grovetools/syncgate/auth"
	"github.com/spf13/pflag"
)

// Identity variables added to every downstream environment.
const (
	EnvUsername   = "SYNCGATE_USERNAME"
	EnvSessionDir = "SYNCGATE_SESSION_DIR"
)

// Request is everything a strategy needs to launch the downstream tool.
type Request struct {
	// Args are the caller's arguments, excluding the program name.
	Args []string
	// ConfigPath is the downstream configuration document.
	ConfigPath string
	// SessionDir is where the authenticated session was saved.
	SessionDir string
	Session    *auth.Session
	// Env is the base environment; nil means the current process's.
	Env []string
}

// Injection describes the configuration-file flag.
type Injection struct {
	Flag    string
	Aliases []string
	Value   string
}

// Names returns the flag followed by its aliases.
func (i Injection) Names() []string {
	return append([]string{i.Flag}, i.Aliases...)
}

// HasFlag reports whether args set any of names, in any of the spellings
// -f v, -fv, -f=v, --config v and --config=v. Scanning stops at "--".
// Flags it does not know about are skipped along with their values.
func HasFlag(args []string, names []string) bool {
	fs := pflag.NewFlagSet("downstream", pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.Usage = func() {}

	var tracked []string
	for _, name := range names {
		switch {
		case strings.HasPrefix(name, "--") && len(name) > 2:
			long := strings.TrimPrefix(name, "--")
			if fs.Lookup(long) == nil {
				fs.String(long, "", "")
			}
			tracked = append(tracked, long)
		case strings.HasPrefix(name, "-") && len(name) == 2:
			long := "shorthand-" + name[1:]
			if fs.ShorthandLookup(name[1:]) == nil && fs.Lookup(long) == nil {
				fs.StringP(long, name[1:], "", "")
			}
			tracked = append(tracked, long)
		}
	}
	// pflag answers -h/--help with ErrHelp; absorb them unless tracked.
	if fs.Lookup("help") == nil {
		fs.Bool("help", false, "")
	}
	if fs.ShorthandLookup("h") == nil {
		fs.BoolP("shorthand-help", "h", false, "")
	}

	if err := fs.Parse(args); err != nil {
		return scanFlag(args, names)
	}
	for _, long := range tracked {
		if fs.Changed(long) {
			return true
		}
	}
	return false
}

// scanFlag is the literal fallback used when args do not parse, for
// example a trailing -f with no value.
func scanFlag(args []string, names []string) bool {
	for _, arg := range args {
		if arg == "--" {
			return false
		}
		for _, name := range names {
			if arg == name || strings.HasPrefix(arg, name+"=") {
				return true
			}
			if len(name) == 2 && name[0] == '-' && name != "--" &&
				strings.HasPrefix(arg, name) && !strings.HasPrefix(arg, "--") {
				return true
			}
		}
	}
	return false
}

// Inject returns a copy of args with the configuration flag prepended,
// unless args already carry it. Applying it twice changes nothing.
func Inject(args []string, inj Injection) []string {
	if HasFlag(args, inj.Names()) {
		return append([]string(nil), args...)
	}
	out := make([]string, 0, len(args)+2)
	out = append(out, inj.Flag, inj.Value)
	return append(out, args...)
}

// BuildArgv puts the target invocation name in front of args.
func BuildArgv(name string, args []string) []string {
	argv := make([]string, 0, len(args)+1)
	argv = append(argv, name)
	return append(argv, args...)
}

// Environment returns base plus the identity variables, replacing any
// inherited values for them.
func Environment(base []string, req Request) []string {
	env := make([]string, 0, len(base)+2)
	for _, kv := range base {
		if strings.HasPrefix(kv, EnvUsername+"=") || strings.HasPrefix(kv, EnvSessionDir+"=") {
			continue
		}
		env = append(env, kv)
	}
	if req.Session != nil && req.Session.Username != "" {
		env = append(env, EnvUsername+"="+req.Session.Username)
	}
	if req.SessionDir != "" {
		env = append(env, EnvSessionDir+"="+req.SessionDir)
	}
	return env
}
