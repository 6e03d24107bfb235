// file-count zählt die Dateien unter einem Wurzelverzeichnis und misst
// die Dauer des Laufs.
package main

import (
	"fmt"
	"os"

	"fileserver-wartung/internal/cleanup"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	rootPath := pflag.StringP("path", "p", ".", "Wurzelverzeichnis")
	pflag.Parse()

	fmt.Printf("Scanne Verzeichnis: %s\n", *rootPath)
	count, dauer, err := cleanup.CountFiles(afero.NewOsFs(), *rootPath)
	if err != nil {
		fmt.Printf("Fehler: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Scan abgeschlossen in: %v Sekunden\n", dauer.Seconds())
	fmt.Printf("Anzahl der Dateien: %d\n", count)
}
