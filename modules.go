// modules.go — file imports: resolution, caching, cycle detection.
//
// Each module file is evaluated at most once per interpreter, in a fresh
// environment whose parent is Core (imports do not see the importer's
// globals). The record for a file moves through three states:
//
//	loading -> loaded    normal completion
//	loading -> failed    the module raised an error; re-imports re-raise it
//
// Hitting a record still in the loading state means the import chain has
// looped back on itself, which is reported with the full chain.
package edl

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type moduleState int

const (
	modLoading moduleState = iota
	modLoaded
	modFailed
)

type moduleRec struct {
	state moduleState
	mod   *Module
	err   error // set when state == modFailed
}

// edlPathEntries reads the EDLPATH environment variable as an OS path list.
func edlPathEntries() []string {
	raw := os.Getenv("EDLPATH")
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range filepath.SplitList(raw) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// moduleStem derives the binding name for an imported file: the base name
// without the .edl extension, with every character outside [A-Za-z0-9_]
// replaced by '_', and a leading '_' added when the result starts with a
// digit. "lib/math-utils.edl" binds as math_utils.
func moduleStem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".edl")
	var b strings.Builder
	for i := 0; i < len(base); i++ {
		c := base[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
			b.WriteByte(c)
		case c >= '0' && c <= '9':
			if i == 0 {
				b.WriteByte('_')
			}
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}

// Name returns the identifier the module binds to when imported.
func (m *Module) Name() string { return moduleStem(m.Path) }

// resolveModule turns an import path into a canonical absolute path, trying
// it as written and with ".edl" appended, first relative to the
// importing file's directory (the working directory for repl/source input),
// then against each EDLPATH entry. Returns "" when nothing matches.
func (ip *Interp) resolveModule(spec string) string {
	var roots []string
	if filepath.IsAbs(spec) {
		roots = []string{""}
	} else {
		if ip.currentFile != "" {
			roots = append(roots, filepath.Dir(ip.currentFile))
		} else {
			roots = append(roots, ".")
		}
		roots = append(roots, ip.searchPath...)
	}
	for _, root := range roots {
		for _, cand := range []string{spec, spec + ".edl"} {
			p := cand
			if root != "" {
				p = filepath.Join(root, cand)
			}
			info, err := os.Stat(p)
			if err != nil || info.IsDir() {
				continue
			}
			abs, err := filepath.Abs(p)
			if err != nil {
				continue
			}
			return filepath.Clean(abs)
		}
	}
	return ""
}

// execImport resolves, loads (or reuses), and binds the module named by the
// import statement into env.
func (ip *Interp) execImport(n *ImportStmt, env *Env) {
	path := ip.resolveModule(n.Path)
	if path == "" {
		ip.fail(ErrModuleNotFound, n, "cannot find module '%s'", n.Path)
	}

	if rec, ok := ip.modules[path]; ok {
		switch rec.state {
		case modLoading:
			chain := append(append([]string(nil), ip.loadStack...), path)
			names := make([]string, len(chain))
			for i, p := range chain {
				names[i] = filepath.Base(p)
			}
			ip.fail(ErrCyclicImport, n, "cyclic import: %s", strings.Join(names, " -> "))
		case modFailed:
			ip.fail(ErrImport, n, "module '%s' failed to load: %v", n.Path, rec.err)
		case modLoaded:
			env.Define(rec.mod.Name(), Value{Tag: VTModule, Data: rec.mod})
			return
		}
	}

	rec := &moduleRec{state: modLoading}
	ip.modules[path] = rec
	ip.loadStack = append(ip.loadStack, path)

	mod, err := ip.loadModuleFile(path)
	ip.loadStack = ip.loadStack[:len(ip.loadStack)-1]
	if err != nil {
		rec.state = modFailed
		rec.err = err
		// A cycle detected deeper in the chain keeps its kind and chain
		// message all the way back to the root importer.
		if re, ok := err.(*RuntimeError); ok && re.Kind == ErrCyclicImport {
			ip.fail(ErrCyclicImport, n, "%s", re.Msg)
		}
		ip.fail(ErrImport, n, "error in module '%s': %v", n.Path, err)
	}
	rec.state = modLoaded
	rec.mod = mod
	env.Define(mod.Name(), Value{Tag: VTModule, Data: mod})
}

// loadModuleFile reads, parses, and evaluates the file at path (already
// canonical), returning its exported top-level bindings.
func (ip *Interp) loadModuleFile(path string) (*Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	stmts, err := Parse(string(src))
	if err != nil {
		return nil, WrapErrorWithSource(err, filepath.Base(path), string(src))
	}

	modEnv := NewEnv(ip.Core)
	saved := ip.currentFile
	ip.currentFile = path
	_, err = ip.EvalProgram(stmts, modEnv)
	ip.currentFile = saved
	if err != nil {
		if re, ok := err.(*RuntimeError); ok && re.Kind == ErrCyclicImport {
			return nil, re
		}
		return nil, WrapErrorWithSource(err, filepath.Base(path), string(src))
	}

	exports := make(map[string]Value, len(modEnv.table))
	keys := make([]string, 0, len(modEnv.table))
	for k, v := range modEnv.table {
		exports[k] = v
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Module{Path: path, Exports: exports, Keys: keys}, nil
}
