// Package rename bereinigt Dateinamen um Zeichen, die bei Synchronisation
// und Archivierung auf dem Fileserver Ärger machen.
package rename

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// ErrTargetExists meldet eine Namenskollision; der Eintrag wird übersprungen,
// der Lauf geht weiter.
var ErrTargetExists = errors.New("zielname existiert bereits")

// Stats sind die Zähler eines Umbenennungslaufs.
type Stats struct {
	Scanned int
	Renamed int
	Skipped int
	Errors  int
}

// CleanName ersetzt jedes Zeichen aus chars durch replacement und trimmt
// anschließend Leerzeichen an den Rändern des Namens.
func CleanName(name, chars, replacement string) string {
	if chars == "" {
		return name
	}
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if strings.ContainsRune(chars, r) {
			b.WriteString(replacement)
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// Renamer läuft einen Baum ab und benennt Dateien mit Problemzeichen um.
type Renamer struct {
	Fs          afero.Fs
	Chars       string // zu bereinigende Zeichen
	Replacement string // Ersatz, üblicherweise leer oder "_"
}

// Run benennt alle betroffenen Dateien unter root um. visit wird pro
// erfolgreicher Umbenennung gerufen, errFn pro übersprungenem Eintrag.
// Ein fehlender Wurzelpfad ist fatal.
func (r *Renamer) Run(root string, visit func(oldPath, newPath string), errFn func(path string, err error)) (Stats, error) {
	var stats Stats
	fi, err := r.Fs.Stat(root)
	if err != nil {
		return stats, fmt.Errorf("wurzelpfad %s: %w", root, err)
	}
	if !fi.IsDir() {
		return stats, fmt.Errorf("wurzelpfad %s ist kein verzeichnis", root)
	}

	walkErr := afero.Walk(r.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			stats.Errors++
			errFn(path, err)
			return nil
		}
		if info.IsDir() {
			return nil
		}
		stats.Scanned++

		cleaned := CleanName(info.Name(), r.Chars, r.Replacement)
		if cleaned == info.Name() {
			return nil
		}
		if cleaned == "" || cleaned == filepath.Ext(cleaned) {
			stats.Skipped++
			errFn(path, fmt.Errorf("bereinigter name wäre leer"))
			return nil
		}

		target := filepath.Join(filepath.Dir(path), cleaned)
		if ok, _ := afero.Exists(r.Fs, target); ok {
			stats.Skipped++
			errFn(path, fmt.Errorf("%w: %s", ErrTargetExists, target))
			return nil
		}
		if err := r.Fs.Rename(path, target); err != nil {
			stats.Errors++
			errFn(path, err)
			return nil
		}
		stats.Renamed++
		visit(path, target)
		return nil
	})
	return stats, walkErr
}
