//go:build mage

package main

import (
	"fmt"
	"os"
)

// Clean removes generated artifacts: the compiled binary, saved summaries,
// and the run history database. Secrets are left alone.
func Clean() error {
	for _, dir := range []string{binDir, "summaries", "history"} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("removing %s: %w", dir, err)
		}
		fmt.Println("removed", dir)
	}
	return nil
}
