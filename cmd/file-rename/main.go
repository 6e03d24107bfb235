// file-rename entfernt Problemzeichen aus Dateinamen unterhalb eines
// Wurzelverzeichnisses. Kollidiert der bereinigte Name, wird die Datei
// übersprungen und protokolliert.
package main

import (
	"fmt"
	"os"

	"fileserver-wartung/internal/rename"
	"fileserver-wartung/internal/runlog"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	rootPath := pflag.StringP("path", "p", ".", "Wurzelverzeichnis")
	chars := pflag.String("chars", "#%&{}~+", "zu bereinigende Zeichen")
	replacement := pflag.String("replace", "", "Ersatzzeichen (Standard: ersatzlos entfernen)")
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

	log, err := runlog.NewCSV(afero.NewOsFs(), "file_rename")
	if err != nil {
		fmt.Printf("Fehler: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	r := &rename.Renamer{Fs: afero.NewOsFs(), Chars: *chars, Replacement: *replacement}
	stats, err := r.Run(*rootPath,
		func(oldPath, newPath string) {
			fmt.Printf("Umbenannt: %s -> %s\n", oldPath, newPath)
			log.Row("RENAME", oldPath, newPath)
		},
		func(path string, err error) {
			fmt.Printf("Übersprungen: %s (%v)\n", path, err)
			log.Error(path, err)
		})
	if err != nil {
		// Fatal vor der ersten Datei: leeres Protokoll wieder wegräumen.
		fmt.Printf("Fehler: %v\n", err)
		log.Close()
		os.Remove(log.Path)
		os.Exit(1)
	}

	summary := fmt.Sprintf("Überprüft: %d, Umbenannt: %d, Übersprungen: %d, Fehler: %d",
		stats.Scanned, stats.Renamed, stats.Skipped, stats.Errors)
	log.Summary(*rootPath, summary)
	fmt.Printf("\nZusammenfassung: %s\n", summary)
}
