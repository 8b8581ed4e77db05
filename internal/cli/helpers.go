package cli

import (
	"path/filepath"

	"github.com/complexairport/dit/internal/dit"
)

// relArgs resolves each CLI-given path argument to a repo-relative,
// slash-separated path.
func relArgs(d *dit.Dit, args []string) ([]string, error) {
	out := make([]string, 0, len(args))
	for _, a := range args {
		abs, err := filepath.Abs(a)
		if err != nil {
			return nil, err
		}
		rel, err := d.Repo.RelPath(abs)
		if err != nil {
			return nil, err
		}
		out = append(out, rel)
	}
	return out, nil
}
