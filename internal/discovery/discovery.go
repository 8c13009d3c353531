// Package discovery implements deterministic locustfile discovery under a
// workspace root. The walk order, candidate filter, and output ordering are
// stable: the same workspace snapshot always yields the same candidate list,
// shallow and alphabetically-first files winning. Resolution of an explicit
// caller-supplied path enforces workspace containment before anything else.
package discovery

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"locustmcp/internal/fsutil"
	"locustmcp/internal/protocol"
)

// markerToken must appear in a candidate's filename (case-insensitive).
const markerToken = "locust"

// scriptExtension is the expected source extension for runner scripts.
const scriptExtension = ".py"

// ignoredDirs lists directory names skipped during the walk.
var ignoredDirs = map[string]struct{}{
	".git":         {},
	"node_modules": {},
	"__pycache__":  {},
	".venv":        {},
	"venv":         {},
}

// ScriptFile is one discovered runner script. Path is absolute and always
// strictly under the workspace root; Depth counts directories below the root.
type ScriptFile struct {
	Path  string
	Name  string
	Depth int
}

// IsScriptName reports whether name follows the runner script naming
// convention: the marker token somewhere in the name plus the expected
// extension.
func IsScriptName(name string) bool {
	lower := strings.ToLower(name)
	return strings.Contains(lower, markerToken) && strings.HasSuffix(lower, scriptExtension)
}

// FindAll recursively scans root for script files, ordered ascending by
// (depth, case-insensitive name). Hidden and ignored directories are skipped.
func FindAll(root string) ([]ScriptFile, error) {
	rootAbs, err := fsutil.CanonicalRoot(root)
	if err != nil {
		return nil, protocol.NotFoundf("workspace root %s: %v", root, err)
	}

	var found []ScriptFile
	err = filepath.WalkDir(rootAbs, func(path string, d os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		name := d.Name()
		if d.IsDir() {
			if path == rootAbs {
				return nil
			}
			if _, ignored := ignoredDirs[name]; ignored || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !IsScriptName(name) {
			return nil
		}
		rel, err := filepath.Rel(rootAbs, path)
		if err != nil {
			return err
		}
		found = append(found, ScriptFile{
			Path:  path,
			Name:  name,
			Depth: strings.Count(rel, string(os.PathSeparator)),
		})
		return nil
	})
	if err != nil {
		return nil, protocol.NotFoundf("scan workspace %s: %v", root, err)
	}

	sort.SliceStable(found, func(i, j int) bool {
		if found[i].Depth != found[j].Depth {
			return found[i].Depth < found[j].Depth
		}
		return strings.ToLower(found[i].Name) < strings.ToLower(found[j].Name)
	})

	return found, nil
}

// Resolve picks the script to operate on. A non-empty preferred path is
// resolved against root, must stay inside it, and must follow the script
// naming convention; on any miss Resolve falls back to the first FindAll
// candidate. With no candidate anywhere it reports not_found.
func Resolve(root, preferred string) (ScriptFile, error) {
	if preferred != "" {
		resolved, err := fsutil.ResolvePath(root, preferred)
		if err != nil {
			return ScriptFile{}, protocol.InvalidInputf("script path %s: %v", preferred, err)
		}
		if info, err := os.Stat(resolved); err == nil && info.Mode().IsRegular() && IsScriptName(filepath.Base(resolved)) {
			rootAbs, err := fsutil.CanonicalRoot(root)
			if err != nil {
				return ScriptFile{}, protocol.NotFoundf("workspace root %s: %v", root, err)
			}
			rel, err := filepath.Rel(rootAbs, resolved)
			if err != nil {
				return ScriptFile{}, protocol.InvalidInputf("script path %s: %v", preferred, err)
			}
			return ScriptFile{
				Path:  resolved,
				Name:  filepath.Base(resolved),
				Depth: strings.Count(rel, string(os.PathSeparator)),
			}, nil
		}
	}

	all, err := FindAll(root)
	if err != nil {
		return ScriptFile{}, err
	}
	if len(all) == 0 {
		return ScriptFile{}, protocol.NotFoundf("no locustfile found under %s", root)
	}
	return all[0], nil
}
