//go:build !windows
// +build !windows

package aclscan

import (
	"errors"
	"os"
)

var errWindowsOnly = errors.New("NTFS-ACL-Zugriff ist nur unter Windows verfügbar")

type systemSource struct{}

// NewSystemSource liefert auf Nicht-Windows-Systemen eine Source, deren
// Aufrufe fehlschlagen; die Werkzeuge melden das als Verzeichnisfehler.
func NewSystemSource() Source {
	return systemSource{}
}

func (systemSource) Entries(path string, includeInherited bool) ([]Entry, error) {
	return nil, errWindowsOnly
}

func (systemSource) Apply(path string, keep []Entry) error {
	return errWindowsOnly
}

// ProtectLog entspricht hier einem einfachen Chmod.
func ProtectLog(path string) error {
	return os.Chmod(path, 0640)
}
