//go:build windows
// +build windows

package aclscan

import (
	"fmt"
	"unsafe"

	"github.com/hectane/go-acl"
	"github.com/hectane/go-acl/api"
	"golang.org/x/sys/windows"
)

// Winnt.h
const (
	aclRevision    = 2
	aceTypeAllowed = 0
	aceTypeDenied  = 1
)

// GetAclInformation fehlt in x/sys, daher wie üblich über advapi32.
var (
	advapi32              = windows.NewLazySystemDLL("advapi32.dll")
	procGetAclInformation = advapi32.NewProc("GetAclInformation")
	procInitializeAcl     = advapi32.NewProc("InitializeAcl")
)

type aclSizeInformation struct {
	AceCount      uint32
	AclBytesInUse uint32
	AclBytesFree  uint32
}

const aclSizeInformationClass = 2

// systemSource liest und schreibt NTFS-Security-Descriptors über die
// Win32-API.
type systemSource struct{}

// NewSystemSource liefert die Source für das lokale Dateisystem.
func NewSystemSource() Source {
	return systemSource{}
}

func (systemSource) Entries(path string, includeInherited bool) ([]Entry, error) {
	sd, err := windows.GetNamedSecurityInfo(path, windows.SE_FILE_OBJECT, windows.DACL_SECURITY_INFORMATION)
	if err != nil {
		return nil, fmt.Errorf("security-info für %s: %w", path, err)
	}
	dacl, _, err := sd.DACL()
	if err == windows.ERROR_OBJECT_NOT_FOUND {
		// Descriptor ohne DACL: keine expliziten Regeln vorhanden.
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("dacl für %s: %w", path, err)
	}
	if dacl == nil {
		// Null-DACL erlaubt alles, enthält aber keine Regeln.
		return nil, nil
	}

	var info aclSizeInformation
	ret, _, callErr := procGetAclInformation.Call(
		uintptr(unsafe.Pointer(dacl)),
		uintptr(unsafe.Pointer(&info)),
		unsafe.Sizeof(info),
		aclSizeInformationClass)
	if ret == 0 {
		return nil, fmt.Errorf("acl-info für %s: %v", path, callErr)
	}

	entries := make([]Entry, 0, info.AceCount)
	for i := uint32(0); i < info.AceCount; i++ {
		var ace *windows.ACCESS_ALLOWED_ACE
		if err := windows.GetAce(dacl, i, &ace); err != nil {
			return nil, fmt.Errorf("ace %d von %s: %w", i, path, err)
		}

		var accessType AccessType
		switch ace.Header.AceType {
		case aceTypeAllowed:
			accessType = AccessAllow
		case aceTypeDenied:
			accessType = AccessDeny
		default:
			// Audit- und Objekt-ACEs interessieren hier nicht.
			continue
		}

		inherited := ace.Header.AceFlags&FlagInherited != 0
		if inherited && !includeInherited {
			continue
		}

		sid := (*windows.SID)(unsafe.Pointer(&ace.SidStart))
		entries = append(entries, Entry{
			Identity:  translateSID(sid),
			SID:       sid.String(),
			Rights:    uint32(ace.Mask),
			Type:      accessType,
			Inherited: inherited,
			Flags: uint32(ace.Header.AceFlags) &
				(FlagObjectInherit | FlagContainerInherit | FlagNoPropagateInherit | FlagInheritOnly),
		})
	}
	return entries, nil
}

// Apply ersetzt die expliziten Regeln durch keep. Die DACL bleibt
// unprotected, vererbte Regeln fließen also weiterhin vom Elternobjekt.
func (systemSource) Apply(path string, keep []Entry) error {
	if len(keep) == 0 {
		return applyEmptyDacl(path)
	}

	explicit := make([]api.ExplicitAccess, 0, len(keep))
	for _, e := range keep {
		sid, err := windows.StringToSid(e.SID)
		if err != nil {
			return fmt.Errorf("sid %s (%s): %w", e.SID, e.Identity, err)
		}
		ea := api.ExplicitAccess{
			AccessPermissions: e.Rights,
			AccessMode:        api.GRANT_ACCESS,
			Inheritance:       e.Flags,
			Trustee: api.Trustee{
				TrusteeForm: api.TRUSTEE_IS_SID,
				Name:        (*uint16)(unsafe.Pointer(sid)),
			},
		}
		if e.Type == AccessDeny {
			ea.AccessMode = api.DENY_ACCESS
		}
		explicit = append(explicit, ea)
	}

	if err := acl.Apply(path, true, true, explicit...); err != nil {
		return fmt.Errorf("acl zurückschreiben für %s: %w", path, err)
	}
	return nil
}

// applyEmptyDacl schreibt eine leere (aber initialisierte) DACL: alle
// expliziten Regeln weg, Vererbung bleibt aktiv.
func applyEmptyDacl(path string) error {
	buf := make([]byte, unsafe.Sizeof(windows.ACL{}))
	ret, _, callErr := procInitializeAcl.Call(
		uintptr(unsafe.Pointer(&buf[0])),
		uintptr(len(buf)),
		aclRevision)
	if ret == 0 {
		return fmt.Errorf("leere acl für %s: %v", path, callErr)
	}
	err := windows.SetNamedSecurityInfo(
		path,
		windows.SE_FILE_OBJECT,
		windows.DACL_SECURITY_INFORMATION|windows.UNPROTECTED_DACL_SECURITY_INFORMATION,
		nil,
		nil,
		(*windows.ACL)(unsafe.Pointer(&buf[0])),
		nil)
	if err != nil {
		return fmt.Errorf("leere acl zurückschreiben für %s: %w", path, err)
	}
	return nil
}

// translateSID löst eine SID in DOMAIN\Name auf; nicht auflösbare SIDs
// erscheinen als S-1-...-Text.
func translateSID(sid *windows.SID) string {
	account, domain, _, err := sid.LookupAccount("")
	if err != nil {
		return sid.String()
	}
	if domain == "" {
		return account
	}
	return domain + `\` + account
}

// ProtectLog nimmt der Log-Datei die Jedermann-Rechte; Remove-Protokolle
// enthalten den kompletten Regelbestand des Servers.
func ProtectLog(path string) error {
	return acl.Chmod(path, 0640)
}
