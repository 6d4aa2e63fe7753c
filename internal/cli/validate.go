package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/stagehand/pkg/script"
)

// Validate loads (and so validates) every script in paths and reports each one to out.
// The returned error joins the failures of all scripts.
func Validate(out io.Writer, paths []string) error {
	if len(paths) == 0 {
		return fmt.Errorf("%w: no script given", script.ErrInvalidScript)
	}
	var errs []error
	for _, path := range paths {
		s, err := script.Load(path)
		if err != nil {
			fmt.Fprintf(out, "✘ %s\n", path)
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
			continue
		}
		fmt.Fprintf(out, "✔ %s (%d containers, %d steps)\n", path, len(s.Containers), len(s.Steps))
	}
	return errors.Join(errs...)
}
