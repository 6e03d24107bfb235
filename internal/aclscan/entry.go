// Package aclscan enumeriert und filtert explizite (nicht vererbte)
// NTFS-Zugriffsregeln eines Verzeichnisbaums.
package aclscan

import (
	"fmt"
	"strings"
)

// AccessType unterscheidet Allow- und Deny-Regeln.
type AccessType int

const (
	AccessAllow AccessType = iota
	AccessDeny
)

func (t AccessType) String() string {
	if t == AccessDeny {
		return "Deny"
	}
	return "Allow"
}

// ACE-Header-Flags (Winnt.h)
const (
	FlagObjectInherit      = 0x01
	FlagContainerInherit   = 0x02
	FlagNoPropagateInherit = 0x04
	FlagInheritOnly        = 0x08
	FlagInherited          = 0x10
)

// FileSystemRights-Masken wie von NTFS vergeben
const (
	RightsRead           = 0x020089
	RightsWrite          = 0x000116
	RightsReadAndExecute = 0x0200A9
	RightsModify         = 0x0301BF
	RightsFullControl    = 0x1F01FF
)

// Entry ist eine einzelne Zugriffsregel eines Verzeichnisses, aufgelöst
// auf einen Kontonamen.
type Entry struct {
	Identity  string // z.B. "CONTOSO\Finance" oder "BUILTIN\Administrators"
	SID       string // textuelle SID, für das Zurückschreiben
	Rights    uint32
	Type      AccessType
	Inherited bool
	Flags     uint32 // ObjectInherit/ContainerInherit/NoPropagateInherit/InheritOnly
}

// zusammengesetzte Rechte zuerst, einzelne danach
var rightsNames = []struct {
	mask uint32
	name string
}{
	{RightsFullControl, "FullControl"},
	{RightsModify, "Modify"},
	{RightsReadAndExecute, "ReadAndExecute"},
	{RightsRead, "Read"},
	{RightsWrite, "Write"},
}

// RightsString formatiert eine Rechtemaske wie die bekannte
// FileSystemRights-Darstellung; unbekannte Restbits erscheinen hexadezimal.
func RightsString(mask uint32) string {
	if mask == 0 {
		return "None"
	}
	rest := mask
	var parts []string
	for _, r := range rightsNames {
		if rest&r.mask == r.mask {
			parts = append(parts, r.name)
			rest &^= r.mask
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%X", rest))
	}
	return strings.Join(parts, ", ")
}

// RightsString liefert die formatierten Rechte des Eintrags.
func (e Entry) RightsString() string {
	return RightsString(e.Rights)
}

// InheritanceString rendert die Vererbungs-Flags (ContainerInherit/ObjectInherit).
func (e Entry) InheritanceString() string {
	var parts []string
	if e.Flags&FlagContainerInherit != 0 {
		parts = append(parts, "ContainerInherit")
	}
	if e.Flags&FlagObjectInherit != 0 {
		parts = append(parts, "ObjectInherit")
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}

// PropagationString rendert die Weitergabe-Flags (NoPropagateInherit/InheritOnly).
func (e Entry) PropagationString() string {
	var parts []string
	if e.Flags&FlagNoPropagateInherit != 0 {
		parts = append(parts, "NoPropagateInherit")
	}
	if e.Flags&FlagInheritOnly != 0 {
		parts = append(parts, "InheritOnly")
	}
	if len(parts) == 0 {
		return "None"
	}
	return strings.Join(parts, ", ")
}

func (e Entry) String() string {
	return fmt.Sprintf("%s %s (%s)", e.Identity, e.Type, e.RightsString())
}

// FolderRecord ist ein Verzeichnis mit seinen gefilterten Regeln.
type FolderRecord struct {
	Path    string
	Entries []Entry
}
