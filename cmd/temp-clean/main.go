// temp-clean löscht Thumbs.db-, Office-Sperr- und Temp-Dateien unterhalb
// eines Wurzelverzeichnisses und protokolliert jede Löschung.
package main

import (
	"fmt"
	"os"
	"time"

	"fileserver-wartung/internal/cleanup"
	"fileserver-wartung/internal/runlog"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	rootPath := pflag.StringP("path", "p", ".", "Wurzelverzeichnis")
	patterns := pflag.StringSlice("pattern", cleanup.DefaultPatterns, "Dateimuster (kleingeschrieben)")
	interactive := pflag.BoolP("interactive", "i", false, "Pfad interaktiv abfragen")
	pflag.Parse()

	if *interactive {
		fmt.Print("Wurzelverzeichnis (Standard '.'): ")
		var input string
		fmt.Scanln(&input)
		if input != "" {
			*rootPath = input
		}
	}

	log, err := runlog.NewCSV(afero.NewOsFs(), "tempfiles_cleanup")
	if err != nil {
		fmt.Printf("Fehler: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	c := &cleanup.Cleaner{Fs: afero.NewOsFs(), Patterns: *patterns}
	stats, err := c.Run(*rootPath,
		func(path string) {
			log.Row("DELETE", path, time.Now().Format(time.RFC3339))
		},
		func(path string, err error) {
			log.Error(path, err)
		})
	if err != nil {
		fmt.Printf("Fehler: %v\n", err)
		log.Close()
		os.Remove(log.Path)
		os.Exit(1)
	}

	summary := fmt.Sprintf("Überprüft: %d, Gelöscht: %d, Fehler: %d",
		stats.Scanned, stats.Deleted, stats.Errors)
	log.Summary(*rootPath, summary)
	fmt.Printf("Zusammenfassung: %s\n", summary)
}
