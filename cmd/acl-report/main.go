// acl-report zeigt die expliziten (nicht vererbten) Zugriffsregeln eines
// Verzeichnisses und seiner direkten Unterverzeichnisse an.
package main

import (
	"errors"
	"fmt"
	"os"

	"fileserver-wartung/internal/aclscan"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func main() {
	rootPath := pflag.StringP("path", "p", ".", "zu prüfendes Verzeichnis")
	exclude := pflag.StringSlice("exclude", []string{"SYSTEM", "Administrators"},
		"auszufilternde Kontonamen (nackter Name ohne Domäne, exakter Vergleich)")
	all := pflag.Bool("all", false, "alle Regeln ausgeben, Ausschlussliste ignorieren")
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

	s := &aclscan.Scanner{
		Fs:      afero.NewOsFs(),
		Source:  aclscan.NewSystemSource(),
		Recurse: false,
	}
	excl := aclscan.NewExclusionSet(*exclude...)

	stats, err := s.Report(*rootPath, excl, *all,
		func(rec aclscan.FolderRecord) {
			fmt.Println(rec.Path)
			if len(rec.Entries) == 0 {
				fmt.Println("    (keine expliziten Regeln)")
				return
			}
			for _, e := range rec.Entries {
				fmt.Printf("    %-45s %-5s %s\n", e.Identity, e.Type, e.RightsString())
			}
		},
		func(path string, err error) {
			fmt.Printf("Fehler bei %s: %v\n", path, err)
		})
	if err != nil {
		if errors.Is(err, aclscan.ErrPathNotFound) {
			fmt.Printf("Fehler: Pfad %s nicht gefunden\n", *rootPath)
		} else {
			fmt.Printf("Fehler: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("\nZusammenfassung: %d Verzeichnisse, %d Regeln, %d Fehler\n",
		stats.Folders, stats.Entries, stats.Errors)
}
