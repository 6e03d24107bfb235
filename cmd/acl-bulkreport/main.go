// acl-bulkreport läuft einen Verzeichnisbaum rekursiv ab und exportiert
// die expliziten Zugriffsregeln in eine zeitgestempelte CSV-Datei.
package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"fileserver-wartung/internal/aclscan"
	"fileserver-wartung/internal/runlog"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

// padRow füllt Markerzeilen (START, ERROR, SUMMARY) mit Leerfeldern auf
// Kopfzeilenbreite auf, damit die Datei von strikten CSV-Parsern mit
// fester Feldzahl gelesen werden kann.
func padRow(width int, fields ...string) []string {
	row := make([]string, width)
	copy(row, fields)
	return row
}

func main() {
	rootPath := pflag.StringP("path", "p", ".", "Wurzelverzeichnis")
	exclude := pflag.StringSlice("exclude", []string{"SYSTEM", "Administrators"},
		"auszufilternde Kontonamen (nackter Name ohne Domäne, exakter Vergleich)")
	all := pflag.Bool("all", false, "ungefilterter Audit-Lauf mit erweiterten Spalten")
	inherited := pflag.Bool("inherited", false, "auch vererbte Regeln mit abrufen")
	quiet := pflag.BoolP("quiet", "q", false, "keine Fortschrittszeilen ausgeben")
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
		Fs:               afero.NewOsFs(),
		Source:           aclscan.NewSystemSource(),
		Recurse:          true,
		IncludeInherited: *inherited,
	}
	excl := aclscan.NewExclusionSet(*exclude...)

	reportName := runlog.Filename("acl_bulkreport", ".csv")
	reportFile, err := os.Create(reportName)
	if err != nil {
		fmt.Printf("Fehler beim Anlegen der Berichtsdatei: %v\n", err)
		os.Exit(1)
	}
	defer reportFile.Close()

	writer := csv.NewWriter(reportFile)
	defer writer.Flush()

	header := []string{"FolderPath", "IdentityReference", "FileSystemRights"}
	if *all {
		header = append(header, "AccessControlType", "IsInherited", "InheritanceFlags", "PropagationFlags")
	}
	writer.Write(header)
	writer.Write(padRow(len(header), "#", "START",
		fmt.Sprintf("Lauf %s am %s", uuid.NewString(), time.Now().Format(time.RFC3339))))

	stats, err := s.Report(*rootPath, excl, *all,
		func(rec aclscan.FolderRecord) {
			if !*quiet {
				fmt.Printf("Verarbeite: %s\n", rec.Path)
			}
			for _, e := range rec.Entries {
				row := []string{rec.Path, e.Identity, e.RightsString()}
				if *all {
					row = append(row, e.Type.String(), strconv.FormatBool(e.Inherited),
						e.InheritanceString(), e.PropagationString())
				}
				writer.Write(row)
			}
		},
		func(path string, err error) {
			fmt.Printf("Fehler bei %s: %v\n", path, err)
			writer.Write(padRow(len(header), path, "ERROR", err.Error()))
		})
	if err != nil {
		// Fataler Fehler vor dem ersten Verzeichnis: keine halbe
		// Berichtsdatei liegen lassen.
		writer.Flush()
		reportFile.Close()
		os.Remove(reportName)
		if errors.Is(err, aclscan.ErrPathNotFound) {
			fmt.Printf("Fehler: Pfad %s nicht gefunden\n", *rootPath)
		} else {
			fmt.Printf("Fehler: %v\n", err)
		}
		os.Exit(1)
	}

	summary := fmt.Sprintf("Verzeichnisse: %d, Regeln: %d, Fehler: %d",
		stats.Folders, stats.Entries, stats.Errors)
	writer.Write(padRow(len(header), *rootPath, "SUMMARY", summary))
	fmt.Printf("\nZusammenfassung: %s\nBericht: %s\n", summary, reportName)
}
