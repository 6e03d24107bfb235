package cleanup

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// CountFiles zählt die Dateien unter root. Zählung und Verzeichnislauf
// laufen in getrennten Goroutinen über einen gepufferten Kanal, damit das
// Zählen großer Bäume den Lauf nicht bremst.
func CountFiles(fs afero.Fs, root string) (int, time.Duration, error) {
	if _, err := fs.Stat(root); err != nil {
		return 0, 0, fmt.Errorf("wurzelpfad %s: %w", root, err)
	}

	var count int
	var wg sync.WaitGroup
	fileChan := make(chan string, 100)

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range fileChan {
			count++
		}
	}()

	start := time.Now()
	afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			fileChan <- path
		}
		return nil
	})
	close(fileChan)
	wg.Wait()

	return count, time.Since(start), nil
}
