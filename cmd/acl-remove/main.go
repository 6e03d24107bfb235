// acl-remove löscht rekursiv alle expliziten Zugriffsregeln eines Baums,
// deren Identität weder zu den geschützten Systemkonten (SYSTEM,
// Administrators, NETWORK SERVICE) noch zur Keep-Liste gehört, und
// schreibt die Descriptors sofort zurück. Destruktiv, kein Probelauf.
package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"fileserver-wartung/internal/aclscan"
	"fileserver-wartung/internal/runlog"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
)

func confirm(root string) bool {
	fmt.Printf("Alle nicht geschützten expliziten Regeln unter %s werden ENDGÜLTIG entfernt.\n", root)
	fmt.Print("Fortfahren? [j/N]: ")
	r := bufio.NewReader(os.Stdin)
	s, err := r.ReadString('\n')
	if err != nil {
		return false
	}
	s = strings.TrimSpace(strings.ToLower(s))
	return s == "j" || s == "ja" || s == "y" || s == "yes"
}

func main() {
	rootPath := pflag.StringP("path", "p", "", "Wurzelverzeichnis (Pflicht)")
	keepList := pflag.StringSlice("keep", nil,
		"zusätzlich zu behaltende Identitäten (voller Name, z.B. CONTOSO\\Backup_Ops)")
	yes := pflag.BoolP("yes", "y", false, "ohne Rückfrage loslegen (für den Scheduler)")
	pflag.Parse()

	if *rootPath == "" {
		fmt.Println("Fehler: --path fehlt")
		pflag.Usage()
		os.Exit(1)
	}

	s := &aclscan.Scanner{
		Fs:      afero.NewOsFs(),
		Source:  aclscan.NewSystemSource(),
		Recurse: true,
	}
	keep := aclscan.NewKeepSet(*keepList...)

	// Wurzel prüfen, bevor irgendetwas angefasst oder eine Logdatei
	// angelegt wird.
	if fi, err := os.Stat(*rootPath); err != nil || !fi.IsDir() {
		fmt.Printf("Fehler: Pfad %s nicht gefunden\n", *rootPath)
		os.Exit(1)
	}

	if !*yes && !confirm(*rootPath) {
		fmt.Println("Abgebrochen, nichts verändert.")
		return
	}

	log, err := runlog.NewText(afero.NewOsFs(), "acl_remove")
	if err != nil {
		fmt.Printf("Fehler: %v\n", err)
		os.Exit(1)
	}
	log.Printf("Wurzel: %s, Keep-Liste: %s", *rootPath, strings.Join(*keepList, ", "))

	stats, err := s.Remove(*rootPath, keep,
		func(r aclscan.RemoveResult) {
			// Vorbild landet im Protokoll, bevor zurückgeschrieben wird.
			fmt.Printf("Bereinige: %s (%d Regeln zu entfernen)\n", r.Path, len(r.Removed))
			log.Printf("Verzeichnis %s", r.Path)
			for _, e := range r.Before {
				log.Printf("  vorher:   %s", e)
			}
			for _, e := range r.Removed {
				log.Printf("  entfernt: %s", e)
			}
		},
		func(r aclscan.RemoveResult) {
			for _, e := range r.After {
				log.Printf("  nachher:  %s", e)
			}
		},
		func(path string, err error) {
			fmt.Printf("Fehler bei %s: %v\n", path, err)
			log.Printf("FEHLER %s: %v", path, err)
		})

	log.Printf("Zusammenfassung: %d Verzeichnisse, %d verändert, %d Regeln entfernt, %d Fehler",
		stats.Folders, stats.Changed, stats.Removed, stats.Errors)
	if closeErr := log.Close(); closeErr != nil {
		fmt.Printf("Fehler beim Schließen des Protokolls: %v\n", closeErr)
	}
	if protErr := aclscan.ProtectLog(log.Path); protErr != nil {
		fmt.Printf("Warnung: Protokoll %s konnte nicht eingeschränkt werden: %v\n", log.Path, protErr)
	}

	if err != nil {
		if errors.Is(err, aclscan.ErrPathNotFound) {
			fmt.Printf("Fehler: Pfad %s nicht gefunden\n", *rootPath)
		} else {
			fmt.Printf("Fehler: %v\n", err)
		}
		os.Exit(1)
	}

	fmt.Printf("\nZusammenfassung: %d Verzeichnisse, %d verändert, %d Regeln entfernt, %d Fehler\nProtokoll: %s\n",
		stats.Folders, stats.Changed, stats.Removed, stats.Errors, log.Path)
}
