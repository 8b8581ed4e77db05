// Package ignore implements the glob-style ignore-pattern matcher the core
// consumes through a narrow interface (spec.md §1, §6). Pattern matching
// itself is explicitly out of core scope, but the core still needs a real
// implementation to walk against — this one is grounded in the teacher's
// .gitignore-subset matcher.
package ignore

import (
	"bufio"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/complexairport/dit/internal/diterr"
	"github.com/complexairport/dit/internal/repo"
)

// DefaultPatterns are always active, even with no .ditignore file present
// (spec.md §3: "The default pattern set includes .dit itself").
var DefaultPatterns = []string{".dit"}

type pattern struct {
	raw      string
	negation bool
	dirOnly  bool
}

// Filter matches repository-relative paths against .ditignore patterns.
type Filter struct {
	repo     *repo.Repository
	patterns []pattern
}

// Load reads .ditignore (if present) plus the default pattern set.
func Load(r *repo.Repository) (*Filter, error) {
	f := &Filter{repo: r}
	for _, p := range DefaultPatterns {
		f.patterns = append(f.patterns, pattern{raw: p})
	}

	file, err := os.Open(r.IgnorePath())
	if err != nil {
		if os.IsNotExist(err) {
			return f, nil
		}
		return nil, diterr.Wrap(diterr.KindFilesystem, "failed to read .ditignore", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		f.addLine(scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, diterr.Wrap(diterr.KindFilesystem, "failed to read .ditignore", err)
	}
	return f, nil
}

func (f *Filter) addLine(line string) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}
	p := pattern{}
	if strings.HasPrefix(line, "!") {
		p.negation = true
		line = line[1:]
	}
	if strings.HasSuffix(line, "/") {
		p.dirOnly = true
		line = strings.TrimSuffix(line, "/")
	}
	p.raw = line
	f.patterns = append(f.patterns, p)
}

// IsIgnored reports whether relPath (slash-separated, relative to the
// repository root) should be excluded from tracking.
func (f *Filter) IsIgnored(relPath string, isDir bool) bool {
	relPath = filepath.ToSlash(relPath)
	if relPath == repo.DitDir || strings.HasPrefix(relPath, repo.DitDir+"/") {
		return true
	}

	ignored := false
	for _, p := range f.patterns {
		if p.dirOnly && !isDir {
			continue
		}
		if matches(p.raw, relPath) {
			ignored = !p.negation
		}
	}
	return ignored
}

// WalkFiles walks root (the repository root), invoking fn with the
// repo-relative slash path of every non-ignored file. Directories matched
// by the filter are pruned entirely, matching spec.md's
// "walk_files(root, callback)" interface.
func (f *Filter) WalkFiles(root string, fn func(relPath string) error) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if f.IsIgnored(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		return fn(rel)
	})
}

func matches(pat, path string) bool {
	if !strings.Contains(pat, "/") {
		return matchGlob(pat, filepath.Base(path))
	}
	pat = strings.TrimPrefix(pat, "/")
	return matchGlob(pat, path)
}

func matchGlob(pat, name string) bool {
	if strings.Contains(pat, "**") {
		return matchDoublestar(pat, name)
	}
	matched, _ := filepath.Match(pat, name)
	return matched
}

func matchDoublestar(pat, name string) bool {
	if pat == "**" {
		return true
	}
	if strings.HasPrefix(pat, "**/") {
		suffix := pat[3:]
		// Try the suffix against the path and against every tail of it
		// that starts after a "/", so "**/" matches at any depth.
		for rest := name; ; {
			if matchGlob(suffix, rest) {
				return true
			}
			i := strings.Index(rest, "/")
			if i < 0 {
				return false
			}
			rest = rest[i+1:]
		}
	}
	if strings.HasSuffix(pat, "/**") {
		prefix := pat[:len(pat)-3]
		return strings.HasPrefix(name, prefix+"/") || name == prefix
	}
	parts := strings.SplitN(pat, "**", 2)
	prefix, suffix := parts[0], parts[1]
	if prefix != "" && !strings.HasPrefix(name, prefix) {
		return false
	}
	if suffix != "" && !strings.HasSuffix(name, suffix) {
		return false
	}
	return true
}

// Patterns returns the user-added patterns (excluding defaults), sorted,
// for `dit ignore list`.
func (f *Filter) Patterns() []string {
	var out []string
	for _, p := range f.patterns {
		isDefault := false
		for _, d := range DefaultPatterns {
			if p.raw == d && !p.negation && !p.dirOnly {
				isDefault = true
				break
			}
		}
		if isDefault {
			continue
		}
		line := p.raw
		if p.dirOnly {
			line += "/"
		}
		if p.negation {
			line = "!" + line
		}
		out = append(out, line)
	}
	sort.Strings(out)
	return out
}

// AddPattern appends pat to .ditignore and the in-memory filter.
func (f *Filter) AddPattern(pat string) error {
	f.addLine(pat)
	return f.persist()
}

// RemovePattern removes all occurrences of pat from .ditignore.
func (f *Filter) RemovePattern(pat string) error {
	filtered := f.patterns[:0]
	for _, p := range f.patterns {
		line := p.raw
		if p.dirOnly {
			line += "/"
		}
		if p.negation {
			line = "!" + line
		}
		if line == pat {
			continue
		}
		filtered = append(filtered, p)
	}
	f.patterns = filtered
	return f.persist()
}

func (f *Filter) persist() error {
	lines := f.Patterns()
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(f.repo.IgnorePath(), []byte(content), 0o644); err != nil {
		return diterr.Wrap(diterr.KindFilesystem, "failed to write .ditignore", err)
	}
	return nil
}
