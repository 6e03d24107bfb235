// Package scrub entfernt bzw. ersetzt herstellerspezifische Texte in
// Berichtsdateien, bevor sie weitergegeben werden.
package scrub

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
)

// Replacement ist eine wörtliche Ersetzung.
type Replacement struct {
	Find    string
	Replace string
}

// PatternReplacement ist eine Ersetzung über einen regulären Ausdruck.
type PatternReplacement struct {
	Pattern *regexp.Regexp
	Replace string
}

// Stats sind die Zähler eines Bereinigungslaufs.
type Stats struct {
	Scanned int
	Changed int
	Errors  int
}

// Scrubber wendet erst die wörtlichen, dann die Muster-Ersetzungen auf alle
// Berichtsdateien mit passender Endung an. Dateien werden nur
// zurückgeschrieben, wenn sich der Inhalt tatsächlich geändert hat.
type Scrubber struct {
	Fs         afero.Fs
	Extensions []string // z.B. ".csv", ".txt"; leer = alle Dateien
	Literals   []Replacement
	Patterns   []PatternReplacement
}

// ParsePatterns übersetzt "muster=>ersatz"-Angaben in PatternReplacements.
func ParsePatterns(specs []string) ([]PatternReplacement, error) {
	out := make([]PatternReplacement, 0, len(specs))
	for _, s := range specs {
		pattern, replace, ok := strings.Cut(s, "=>")
		if !ok {
			return nil, fmt.Errorf("ungültige muster-angabe %q (erwartet muster=>ersatz)", s)
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("muster %q: %w", pattern, err)
		}
		out = append(out, PatternReplacement{Pattern: re, Replace: replace})
	}
	return out, nil
}

// ParseLiterals übersetzt "text=>ersatz"-Angaben in Replacements.
func ParseLiterals(specs []string) ([]Replacement, error) {
	out := make([]Replacement, 0, len(specs))
	for _, s := range specs {
		find, replace, ok := strings.Cut(s, "=>")
		if !ok {
			return nil, fmt.Errorf("ungültige ersetzungs-angabe %q (erwartet text=>ersatz)", s)
		}
		if find == "" {
			return nil, fmt.Errorf("leerer suchtext in %q", s)
		}
		out = append(out, Replacement{Find: find, Replace: replace})
	}
	return out, nil
}

func (s *Scrubber) wantsFile(name string) bool {
	if len(s.Extensions) == 0 {
		return true
	}
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range s.Extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}

// Apply führt alle Ersetzungen auf einem Inhalt aus.
func (s *Scrubber) Apply(content string) string {
	for _, r := range s.Literals {
		content = strings.ReplaceAll(content, r.Find, r.Replace)
	}
	for _, p := range s.Patterns {
		content = p.Pattern.ReplaceAllString(content, p.Replace)
	}
	return content
}

// Run bereinigt alle passenden Dateien unter root. visit wird pro
// geänderter Datei gerufen, errFn pro unlesbarem Eintrag. Ein fehlender
// Wurzelpfad ist fatal.
func (s *Scrubber) Run(root string, visit func(path string), errFn func(path string, err error)) (Stats, error) {
	var stats Stats
	fi, err := s.Fs.Stat(root)
	if err != nil {
		return stats, fmt.Errorf("wurzelpfad %s: %w", root, err)
	}
	if !fi.IsDir() {
		return stats, fmt.Errorf("wurzelpfad %s ist kein verzeichnis", root)
	}

	walkErr := afero.Walk(s.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			stats.Errors++
			errFn(path, err)
			return nil
		}
		if info.IsDir() || !s.wantsFile(info.Name()) {
			return nil
		}
		stats.Scanned++

		data, err := afero.ReadFile(s.Fs, path)
		if err != nil {
			stats.Errors++
			errFn(path, err)
			return nil
		}
		cleaned := s.Apply(string(data))
		if cleaned == string(data) {
			return nil
		}
		if err := afero.WriteFile(s.Fs, path, []byte(cleaned), info.Mode()); err != nil {
			stats.Errors++
			errFn(path, err)
			return nil
		}
		stats.Changed++
		visit(path)
		return nil
	})
	return stats, walkErr
}
