// Package introspect extracts structural metadata from locustfile source:
// declared task names and tag labels. Parsing is purely textual pattern
// matching over the source, never executes it, and never fails on malformed
// input: no match simply means empty sets.
package introspect

import (
	"regexp"
	"sort"
	"strings"

	"locustmcp/internal/fsutil"
	"locustmcp/internal/protocol"
)

// maxScriptBytes caps how much script source ParseFile will read.
const maxScriptBytes = 1 << 20

// taskPattern matches a @task decorator (bare or with arguments) followed by
// a def on the same or next line, capturing the function name.
var taskPattern = regexp.MustCompile(`@task(?:\s*\([^)]*\))?[ \t]*(?:\r?\n)?[ \t]*def\s+([A-Za-z_]\w*)`)

// tagPattern matches a @tag decorator, capturing its raw argument list.
var tagPattern = regexp.MustCompile(`@tag\s*\(([^)]*)\)`)

// literalPattern matches a single- or double-quoted string literal.
var literalPattern = regexp.MustCompile(`"([^"]*)"|'([^']*)'`)

// ParsedScript holds the sorted, deduplicated task names and tag labels found
// in one script.
type ParsedScript struct {
	Path  string
	Tasks []string
	Tags  []string
}

// Parse scans source for task declarations and tag labels. The two scans are
// independent; results are deduplicated and sorted for determinism.
func Parse(source string) ParsedScript {
	return ParsedScript{
		Tasks: scanTasks(source),
		Tags:  scanTags(source),
	}
}

// ParseFile resolves path inside root with containment enforced, reads the
// script, and parses it. Recomputed on every call; nothing is cached.
func ParseFile(root, path string) (ParsedScript, error) {
	resolved, err := fsutil.ResolvePath(root, path)
	if err != nil {
		return ParsedScript{}, protocol.InvalidInputf("script path %s: %v", path, err)
	}
	data, err := fsutil.ReadFileMax(resolved, maxScriptBytes)
	if err != nil {
		return ParsedScript{}, protocol.NotFoundf("read script %s: %v", path, err)
	}
	parsed := Parse(string(data))
	parsed.Path = resolved
	return parsed, nil
}

func scanTasks(source string) []string {
	seen := make(map[string]struct{})
	for _, m := range taskPattern.FindAllStringSubmatch(source, -1) {
		seen[m[1]] = struct{}{}
	}
	return sortedKeys(seen)
}

func scanTags(source string) []string {
	seen := make(map[string]struct{})
	for _, tag := range tagPattern.FindAllStringSubmatch(source, -1) {
		for _, lit := range literalPattern.FindAllStringSubmatch(tag[1], -1) {
			label := lit[1]
			if label == "" {
				label = lit[2]
			}
			if strings.TrimSpace(label) == "" {
				continue
			}
			seen[label] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
