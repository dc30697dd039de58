package purify

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/gobwas/glob"
)

// SourcePattern selects the files scanned inside directories.
const SourcePattern = "*.{js,jsx,ts,tsx,mjs,html,htm,vue}"

var (
	sourceGlob  = glob.MustCompile(SourcePattern)
	wordPattern = regexp.MustCompile(`[A-Za-z0-9_-]+`)
)

// Scan collects the words used by the files under paths. Directories are
// walked and filtered by SourcePattern; files named directly are always read.
// Relative paths resolve against base.
func Scan(base string, paths ...string) (Set, error) {
	used := make(Set)

	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}

		if !info.IsDir() {
			if err := scanFile(p, used); err != nil {
				return nil, err
			}
			continue
		}

		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if d.Name() == "node_modules" {
					return filepath.SkipDir
				}
				return nil
			}
			if !sourceGlob.Match(d.Name()) {
				return nil
			}
			return scanFile(path, used)
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", p, err)
		}
	}

	return used, nil
}

func scanFile(path string, used Set) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	for _, w := range wordPattern.FindAll(data, -1) {
		used.Add(string(w))
	}
	return nil
}
