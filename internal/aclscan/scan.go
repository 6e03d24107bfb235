package aclscan

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// ErrPathNotFound meldet einen fehlenden oder unzugänglichen Wurzelpfad.
// Der Fehler ist fatal: es wird kein einziges Verzeichnis angefasst.
var ErrPathNotFound = errors.New("pfad nicht gefunden")

// Source liest und schreibt die Zugriffsregeln eines Dateisystem-Objekts.
// Die Windows-Implementierung steckt in descriptor_windows.go; Tests
// verwenden eine Attrappe.
type Source interface {
	// Entries liefert die Regeln des Objekts. Bei includeInherited=false
	// werden vererbte Regeln bereits beim Abruf verworfen, nicht erst
	// nachträglich gefiltert.
	Entries(path string, includeInherited bool) ([]Entry, error)
	// Apply ersetzt die expliziten Regeln des Objekts durch keep und
	// schreibt den Descriptor zurück. Vererbte Regeln bleiben unberührt.
	Apply(path string, keep []Entry) error
}

// Scanner führt den Verzeichnislauf aus. Nach dem Start unveränderlich;
// keine Nebenläufigkeit, ein Verzeichnis nach dem anderen.
type Scanner struct {
	Fs      afero.Fs
	Source  Source
	Recurse bool
	// IncludeInherited nimmt auch vererbte Regeln in Berichte auf.
	// Standard ist false: nur explizit gesetzte Regeln.
	IncludeInherited bool
}

// ReportStats sind die Zähler eines Berichtslaufs.
type ReportStats struct {
	Folders int // besuchte Verzeichnisse
	Entries int // ausgegebene Regeln
	Errors  int // übersprungene Verzeichnisse
}

// RemoveStats sind die Zähler eines Remove-Laufs.
type RemoveStats struct {
	Folders int
	Changed int // Verzeichnisse mit zurückgeschriebenem Descriptor
	Removed int // gelöschte Regeln
	Errors  int
}

// RemoveResult beschreibt die Mutation eines einzelnen Verzeichnisses:
// Regelbestand vorher, entfernte Regeln, Bestand nach dem Zurückschreiben.
type RemoveResult struct {
	Path    string
	Before  []Entry
	Removed []Entry
	After   []Entry
}

// ErrFunc wird pro fehlgeschlagenem Verzeichnis gerufen; der Lauf geht weiter.
type ErrFunc func(path string, err error)

func (s *Scanner) checkRoot(root string) error {
	fi, err := s.Fs.Stat(root)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrPathNotFound, root, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("%w: %s ist kein Verzeichnis", ErrPathNotFound, root)
	}
	return nil
}

// folders ruft fn für jedes zu prüfende Verzeichnis in Traversierungs-
// Reihenfolge: bei Recurse den ganzen Baum, sonst die Wurzel und ihre
// direkten Unterverzeichnisse.
func (s *Scanner) folders(root string, errFn ErrFunc, fn func(path string)) error {
	if err := s.checkRoot(root); err != nil {
		return err
	}
	if !s.Recurse {
		fn(root)
		infos, err := afero.ReadDir(s.Fs, root)
		if err != nil {
			errFn(root, err)
			return nil
		}
		for _, fi := range infos {
			if fi.IsDir() {
				fn(filepath.Join(root, fi.Name()))
			}
		}
		return nil
	}
	return afero.Walk(s.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			errFn(path, err)
			if os.IsPermission(err) {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			fn(path)
		}
		return nil
	})
}

// Report läuft den Baum ab und ruft visit pro Verzeichnis mit den gefilterten
// Regeln. Bei allEntries wird die Ausschlussliste komplett umgangen
// (ungefilterter Audit-Lauf). Lesefehler einzelner Verzeichnisse werden über
// errFn gemeldet, der Lauf bricht deswegen nicht ab.
func (s *Scanner) Report(root string, excl ExclusionSet, allEntries bool, visit func(FolderRecord), errFn ErrFunc) (ReportStats, error) {
	var stats ReportStats
	err := s.folders(root, func(path string, err error) {
		stats.Errors++
		errFn(path, err)
	}, func(path string) {
		stats.Folders++
		entries, err := s.Source.Entries(path, s.IncludeInherited)
		if err != nil {
			stats.Errors++
			errFn(path, err)
			return
		}
		kept := entries
		if !allEntries {
			kept = make([]Entry, 0, len(entries))
			for _, e := range entries {
				if !excl.Contains(e.Identity) {
					kept = append(kept, e)
				}
			}
		}
		stats.Entries += len(kept)
		visit(FolderRecord{Path: path, Entries: kept})
	})
	return stats, err
}

// Remove löscht in jedem Verzeichnis alle expliziten Regeln, deren Identität
// nicht von keep gehalten wird, und schreibt den Descriptor sofort zurück
// (synchrones Read-Modify-Write pro Verzeichnis, kein Rollback). Beide Hooks
// werden nur für Verzeichnisse mit anstehenden Löschungen gerufen: pre vor
// dem Zurückschreiben mit Vorbild und zu entfernenden Regeln, damit das
// Protokoll auch bei fehlschlagendem oder abgebrochenem Schreibvorgang das
// Vorbild enthält; post erst nach erfolgreicher Mutation, mit dem neu
// gelesenen Bestand in After. Der Lauf ist idempotent: ein zweiter Durchgang
// über einen konformen Baum löscht nichts mehr.
func (s *Scanner) Remove(root string, keep KeepSet, pre func(RemoveResult), post func(RemoveResult), errFn ErrFunc) (RemoveStats, error) {
	var stats RemoveStats
	err := s.folders(root, func(path string, err error) {
		stats.Errors++
		errFn(path, err)
	}, func(path string) {
		stats.Folders++
		entries, err := s.Source.Entries(path, false)
		if err != nil {
			stats.Errors++
			errFn(path, err)
			return
		}
		// Behaltene Regeln in eine neue Liste, nie die gerade
		// iterierte Liste verändern.
		retained := make([]Entry, 0, len(entries))
		removed := make([]Entry, 0)
		for _, e := range entries {
			if keep.Keep(e.Identity) {
				retained = append(retained, e)
			} else {
				removed = append(removed, e)
			}
		}
		if len(removed) == 0 {
			return
		}
		// Vorbild vor dem Zurückschreiben melden, damit es auch bei
		// einem fehlschlagenden Apply schon protokolliert ist.
		r := RemoveResult{Path: path, Before: entries, Removed: removed}
		pre(r)
		if err := s.Source.Apply(path, retained); err != nil {
			stats.Errors++
			errFn(path, err)
			return
		}
		stats.Changed++
		stats.Removed += len(removed)
		after, err := s.Source.Entries(path, false)
		if err != nil {
			// Mutation ist durch; das Nachbild fehlt dann im Log.
			errFn(path, err)
			after = retained
		}
		r.After = after
		post(r)
	})
	return stats, err
}
