// report-scrub ersetzt herstellerspezifische Texte in Berichtsdateien,
// wörtlich oder per regulärem Ausdruck, bevor Berichte das Haus verlassen.
package main

import (
	"fmt"
	"os"

	"fileserver-wartung/internal/runlog"
	"fileserver-wartung/internal/scrub"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	rootPath := pflag.StringP("path", "p", ".", "Wurzelverzeichnis der Berichte")
	extensions := pflag.StringSlice("ext", []string{".csv", ".txt"}, "zu bereinigende Dateiendungen")
	literals := pflag.StringSlice("replace", nil, "wörtliche Ersetzung als text=>ersatz (mehrfach möglich)")
	patterns := pflag.StringSlice("regex", nil, "Muster-Ersetzung als muster=>ersatz (mehrfach möglich)")
	pflag.Parse()

	if len(*literals) == 0 && len(*patterns) == 0 {
		fmt.Println("Fehler: keine Ersetzungen angegeben (--replace / --regex)")
		pflag.Usage()
		os.Exit(1)
	}

	lits, err := scrub.ParseLiterals(*literals)
	if err != nil {
		fmt.Printf("Fehler: %v\n", err)
		os.Exit(1)
	}
	pats, err := scrub.ParsePatterns(*patterns)
	if err != nil {
		fmt.Printf("Fehler: %v\n", err)
		os.Exit(1)
	}

	log, err := runlog.NewCSV(afero.NewOsFs(), "report_scrub")
	if err != nil {
		fmt.Printf("Fehler: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	s := &scrub.Scrubber{
		Fs:         afero.NewOsFs(),
		Extensions: *extensions,
		Literals:   lits,
		Patterns:   pats,
	}
	stats, err := s.Run(*rootPath,
		func(path string) {
			fmt.Printf("Bereinigt: %s\n", path)
			log.Row("SCRUB", path, "")
		},
		func(path string, err error) {
			fmt.Printf("Fehler bei %s: %v\n", path, err)
			log.Error(path, err)
		})
	if err != nil {
		fmt.Printf("Fehler: %v\n", err)
		log.Close()
		os.Remove(log.Path)
		os.Exit(1)
	}

	summary := fmt.Sprintf("Überprüft: %d, Geändert: %d, Fehler: %d",
		stats.Scanned, stats.Changed, stats.Errors)
	log.Summary(*rootPath, summary)
	fmt.Printf("\nZusammenfassung: %s\n", summary)
}
