// session.go — the embedding surface: one-shot runs and persistent sessions.
package edl

import (
	"os"
	"path/filepath"
)

// Version is the interpreter version reported by the CLI.
const Version = "0.1.0"

// RunFile reads, parses, and executes the script at path on a fresh
// interpreter. Relative imports resolve against the script's directory.
// Errors come back annotated with a source snippet.
func RunFile(path string) (Value, error) {
	ip := New()
	return ip.RunFile(path)
}

// RunFile executes the script at path on this interpreter.
func (ip *Interp) RunFile(path string) (Value, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return Nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return Nil, err
	}
	saved := ip.currentFile
	ip.currentFile = filepath.Clean(abs)
	v, err := ip.EvalSource(string(src))
	ip.currentFile = saved
	if err != nil {
		return Nil, WrapErrorWithSource(err, filepath.Base(path), string(src))
	}
	return v, nil
}

// RunSource executes src against a fresh interpreter. name labels the source
// in error snippets.
func RunSource(name, src string) (Value, error) {
	ip := New()
	v, err := ip.EvalSource(src)
	if err != nil {
		return Nil, WrapErrorWithSource(err, name, src)
	}
	return v, nil
}

// Session is a persistent evaluation context: bindings survive across Eval
// calls, and a failed unit leaves earlier bindings intact.
type Session struct {
	ip *Interp
}

// NewSession creates a session with a fresh interpreter.
func NewSession() *Session {
	return &Session{ip: New()}
}

// Interp exposes the session's interpreter for host configuration
// (Stdout/Stdin redirection, extra natives).
func (s *Session) Interp() *Interp { return s.ip }

// Eval parses and executes one input unit. The returned value is the value
// of the unit's last expression statement (Nil when there is none). Errors
// abort only the failing unit.
func (s *Session) Eval(src string) (Value, error) {
	v, err := s.ip.EvalSource(src)
	if err != nil {
		return Nil, WrapErrorWithSource(err, "<repl>", src)
	}
	return v, nil
}
