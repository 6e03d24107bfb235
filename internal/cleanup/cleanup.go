// Package cleanup entfernt Thumbs.db-, Office-Sperr- und Temp-Dateien
// vom Fileserver.
package cleanup

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// DefaultPatterns sind die üblichen Kandidaten; Vergleich gegen den
// kleingeschriebenen Dateinamen.
var DefaultPatterns = []string{
	"thumbs.db",
	"~$*.docx",
	"~$*.doc",
	"~$*.xlsx",
	"~$*.xls",
	"~$*.pptx",
	"~$*.ppt",
	"~*.tmp",
}

// Stats sind die Zähler eines Aufräumlaufs.
type Stats struct {
	Scanned int
	Deleted int
	Errors  int
}

// Cleaner löscht Dateien, deren Name eines der Muster trifft.
type Cleaner struct {
	Fs       afero.Fs
	Patterns []string
}

// Run räumt den Baum unter root auf. visit wird pro gelöschter Datei
// gerufen, errFn pro fehlgeschlagenem Eintrag. Ein fehlender Wurzelpfad
// ist fatal.
func (c *Cleaner) Run(root string, visit func(path string), errFn func(path string, err error)) (Stats, error) {
	var stats Stats
	fi, err := c.Fs.Stat(root)
	if err != nil {
		return stats, fmt.Errorf("wurzelpfad %s: %w", root, err)
	}
	if !fi.IsDir() {
		return stats, fmt.Errorf("wurzelpfad %s ist kein verzeichnis", root)
	}

	patterns := c.Patterns
	if len(patterns) == 0 {
		patterns = DefaultPatterns
	}

	walkErr := afero.Walk(c.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			stats.Errors++
			errFn(path, err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		stats.Scanned++

		name := strings.ToLower(info.Name())
		for _, pattern := range patterns {
			match, _ := filepath.Match(pattern, name)
			if !match {
				continue
			}
			if err := c.Fs.Remove(path); err != nil {
				stats.Errors++
				errFn(path, err)
			} else {
				stats.Deleted++
				visit(path)
			}
			break
		}
		return nil
	})
	return stats, walkErr
}
