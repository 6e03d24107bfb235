// Package runlog schreibt die Laufprotokolle der Wartungswerkzeuge:
// zeitgestempelte CSV-Dateien mit Action/Path/Details-Zeilen bzw. ein
// menschenlesbares Textprotokoll für destruktive Läufe.
package runlog

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

const fileTimestamp = "20060102_150405"

// Filename baut den zeitgestempelten Protokollnamen <prefix>_<stempel><ext>.
func Filename(prefix, ext string) string {
	return fmt.Sprintf("%s_%s%s", prefix, time.Now().Format(fileTimestamp), ext)
}

// CSV ist das tabellarische Laufprotokoll. Erste Zeile ist der Kopf
// Action,Path,Details, zweite eine START-Zeile mit der Lauf-ID, letzte
// die SUMMARY-Zeile.
type CSV struct {
	Path  string
	RunID string

	file afero.File
	w    *csv.Writer
}

// NewCSV legt <prefix>_<Zeitstempel>.csv an und schreibt Kopf- und
// START-Zeile.
func NewCSV(fs afero.Fs, prefix string) (*CSV, error) {
	name := Filename(prefix, ".csv")
	f, err := fs.Create(name)
	if err != nil {
		return nil, fmt.Errorf("logdatei %s anlegen: %w", name, err)
	}
	l := &CSV{Path: name, RunID: uuid.NewString(), file: f, w: csv.NewWriter(f)}
	l.w.Write([]string{"Action", "Path", "Details"})
	l.w.Write([]string{"START", "", fmt.Sprintf("Lauf %s am %s", l.RunID, time.Now().Format(time.RFC3339))})
	return l, nil
}

// Row schreibt eine beliebige Protokollzeile.
func (l *CSV) Row(action, path, details string) {
	l.w.Write([]string{action, path, details})
}

// Error protokolliert einen übersprungenen Eintrag.
func (l *CSV) Error(path string, err error) {
	l.Row("ERROR", path, err.Error())
}

// Summary schreibt die abschließende Zusammenfassung.
func (l *CSV) Summary(root, details string) {
	l.Row("SUMMARY", root, details)
}

// Close leert den Puffer und schließt die Datei.
func (l *CSV) Close() error {
	l.w.Flush()
	if err := l.w.Error(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}

// Text ist das menschenlesbare Protokoll des Remove-Laufs, mit
// Start-/Endmarken und Zeitstempel pro Zeile.
type Text struct {
	Path  string
	RunID string

	file afero.File
	w    *bufio.Writer
}

// NewText legt <prefix>_<Zeitstempel>.log an und schreibt die Startmarke.
func NewText(fs afero.Fs, prefix string) (*Text, error) {
	name := Filename(prefix, ".log")
	f, err := fs.Create(name)
	if err != nil {
		return nil, fmt.Errorf("logdatei %s anlegen: %w", name, err)
	}
	l := &Text{Path: name, RunID: uuid.NewString(), file: f, w: bufio.NewWriter(f)}
	fmt.Fprintf(l.w, "==== START %s (Lauf %s) ====\n", time.Now().Format(time.RFC3339), l.RunID)
	return l, nil
}

// Printf schreibt eine Zeile mit Zeitstempel.
func (l *Text) Printf(format string, args ...any) {
	fmt.Fprintf(l.w, "%s ", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(l.w, format, args...)
	l.w.WriteByte('\n')
}

// Close schreibt die Endmarke und schließt die Datei.
func (l *Text) Close() error {
	fmt.Fprintf(l.w, "==== ENDE %s ====\n", time.Now().Format(time.RFC3339))
	if err := l.w.Flush(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
