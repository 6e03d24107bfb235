package aclscan_test

import (
	"errors"
	"path/filepath"
	"testing"

	"fileserver-wartung/internal/aclscan"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

// fakeSource hält Regeln pro Pfad im Speicher und verhält sich wie die
// Windows-Source: vererbte Regeln werden schon beim Abruf verworfen,
// Apply ersetzt den Bestand.
type fakeSource struct {
	entries       map[string][]aclscan.Entry
	failures      map[string]error
	applyFailures map[string]error
	applies       int
	events        []string
}

func (f *fakeSource) Entries(path string, includeInherited bool) ([]aclscan.Entry, error) {
	if err, ok := f.failures[path]; ok {
		return nil, err
	}
	var out []aclscan.Entry
	for _, e := range f.entries[path] {
		if e.Inherited && !includeInherited {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeSource) Apply(path string, keep []aclscan.Entry) error {
	f.events = append(f.events, "apply:"+path)
	if err, ok := f.applyFailures[path]; ok {
		return err
	}
	f.applies++
	f.entries[path] = append([]aclscan.Entry(nil), keep...)
	return nil
}

func allow(identity string, rights uint32) aclscan.Entry {
	return aclscan.Entry{Identity: identity, SID: "S-1-5-21-0-0-0-1000", Rights: rights}
}

func newTree(t *testing.T, dirs ...string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, d := range dirs {
		require.NoError(t, fs.MkdirAll(d, 0755))
	}
	return fs
}

func TestReportFiltersByBareFragment(t *testing.T) {
	fs := newTree(t, "/srv/share")
	src := &fakeSource{entries: map[string][]aclscan.Entry{
		"/srv/share": {
			allow("NT AUTHORITY\\SYSTEM", aclscan.RightsFullControl),
			allow("BUILTIN\\Administrators", aclscan.RightsFullControl),
			allow("CONTOSO\\Finance", aclscan.RightsModify),
		},
	}}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: true}

	var got []aclscan.Entry
	stats, err := s.Report("/srv/share", aclscan.NewExclusionSet("SYSTEM", "Administrators"), false,
		func(rec aclscan.FolderRecord) { got = append(got, rec.Entries...) },
		func(path string, err error) { t.Fatalf("unexpected folder error at %s: %v", path, err) })
	require.NoError(t, err)

	require.Len(t, got, 1)
	require.Equal(t, "CONTOSO\\Finance", got[0].Identity)
	require.Equal(t, 1, stats.Folders)
	require.Equal(t, 1, stats.Entries)
}

func TestReportAllEntriesBypassesExclusions(t *testing.T) {
	fs := newTree(t, "/srv/share")
	src := &fakeSource{entries: map[string][]aclscan.Entry{
		"/srv/share": {
			allow("NT AUTHORITY\\SYSTEM", aclscan.RightsFullControl),
			allow("CONTOSO\\Finance", aclscan.RightsModify),
		},
	}}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: true}

	var got []aclscan.Entry
	_, err := s.Report("/srv/share", aclscan.NewExclusionSet("SYSTEM", "Finance"), true,
		func(rec aclscan.FolderRecord) { got = append(got, rec.Entries...) },
		func(path string, err error) { t.Fatalf("unexpected folder error: %v", err) })
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestReportDropsInheritedAtRetrieval(t *testing.T) {
	fs := newTree(t, "/srv/share")
	src := &fakeSource{entries: map[string][]aclscan.Entry{
		"/srv/share": {
			allow("CONTOSO\\Finance", aclscan.RightsModify),
			{Identity: "CONTOSO\\Everyone-Inherited", Rights: aclscan.RightsRead, Inherited: true},
		},
	}}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: true}

	var got []aclscan.Entry
	_, err := s.Report("/srv/share", aclscan.NewExclusionSet(), false,
		func(rec aclscan.FolderRecord) { got = append(got, rec.Entries...) },
		func(path string, err error) { t.Fatalf("unexpected folder error: %v", err) })
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "CONTOSO\\Finance", got[0].Identity)

	s.IncludeInherited = true
	got = nil
	_, err = s.Report("/srv/share", aclscan.NewExclusionSet(), false,
		func(rec aclscan.FolderRecord) { got = append(got, rec.Entries...) },
		func(path string, err error) { t.Fatalf("unexpected folder error: %v", err) })
	require.NoError(t, err)
	require.Len(t, got, 2)
}

func TestReportMissingRootIsFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	src := &fakeSource{entries: map[string][]aclscan.Entry{}}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: true}

	stats, err := s.Report("/does/not/exist", aclscan.NewExclusionSet(), false,
		func(rec aclscan.FolderRecord) { t.Fatal("no folder may be visited") },
		func(path string, err error) { t.Fatal("no folder error may be reported") })
	require.ErrorIs(t, err, aclscan.ErrPathNotFound)
	require.Equal(t, 0, stats.Folders)
}

func TestReportRootMustBeDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/datei.txt", []byte("x"), 0644))
	s := &aclscan.Scanner{Fs: fs, Source: &fakeSource{}, Recurse: true}

	_, err := s.Report("/srv/datei.txt", aclscan.NewExclusionSet(), false,
		func(rec aclscan.FolderRecord) {}, func(path string, err error) {})
	require.ErrorIs(t, err, aclscan.ErrPathNotFound)
}

func TestReportContinuesAfterFolderError(t *testing.T) {
	fs := newTree(t, "/srv/a", "/srv/b")
	src := &fakeSource{
		entries: map[string][]aclscan.Entry{
			"/srv":   {},
			"/srv/a": {allow("CONTOSO\\Finance", aclscan.RightsRead)},
			"/srv/b": {allow("CONTOSO\\Marketing", aclscan.RightsRead)},
		},
		failures: map[string]error{"/srv/a": errors.New("Zugriff verweigert")},
	}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: true}

	var got []aclscan.Entry
	var failed []string
	stats, err := s.Report("/srv", aclscan.NewExclusionSet(), false,
		func(rec aclscan.FolderRecord) { got = append(got, rec.Entries...) },
		func(path string, err error) { failed = append(failed, path) })
	require.NoError(t, err)

	require.Equal(t, []string{"/srv/a"}, failed)
	require.Len(t, got, 1)
	require.Equal(t, "CONTOSO\\Marketing", got[0].Identity)
	require.Equal(t, 3, stats.Folders)
	require.Equal(t, 1, stats.Errors)
}

func TestReportNonRecursiveVisitsRootAndChildren(t *testing.T) {
	fs := newTree(t, "/srv/a/tief", "/srv/b")
	src := &fakeSource{entries: map[string][]aclscan.Entry{}}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: false}

	var visited []string
	_, err := s.Report("/srv", aclscan.NewExclusionSet(), false,
		func(rec aclscan.FolderRecord) { visited = append(visited, rec.Path) },
		func(path string, err error) { t.Fatalf("unexpected folder error: %v", err) })
	require.NoError(t, err)
	require.Equal(t, []string{"/srv", filepath.Join("/srv", "a"), filepath.Join("/srv", "b")}, visited)
}

func TestRemoveKeepsProtectedAndKeepList(t *testing.T) {
	fs := newTree(t, "/srv/share")
	src := &fakeSource{entries: map[string][]aclscan.Entry{
		"/srv/share": {
			allow("NT AUTHORITY\\SYSTEM", aclscan.RightsFullControl),
			allow("CONTOSO\\Backup_Ops", aclscan.RightsModify),
			allow("CONTOSO\\Marketing", aclscan.RightsModify),
		},
	}}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: true}

	var pres, posts []aclscan.RemoveResult
	stats, err := s.Remove("/srv/share", aclscan.NewKeepSet("CONTOSO\\Backup_Ops"),
		func(r aclscan.RemoveResult) { pres = append(pres, r) },
		func(r aclscan.RemoveResult) { posts = append(posts, r) },
		func(path string, err error) { t.Fatalf("unexpected folder error: %v", err) })
	require.NoError(t, err)

	require.Len(t, pres, 1)
	require.Len(t, pres[0].Before, 3)
	require.Len(t, pres[0].Removed, 1)
	require.Equal(t, "CONTOSO\\Marketing", pres[0].Removed[0].Identity)

	require.Len(t, posts, 1)
	r := posts[0]
	require.Len(t, r.After, 2)
	require.Equal(t, "NT AUTHORITY\\SYSTEM", r.After[0].Identity)
	require.Equal(t, "CONTOSO\\Backup_Ops", r.After[1].Identity)

	require.Equal(t, 1, stats.Changed)
	require.Equal(t, 1, stats.Removed)
}

func TestRemoveIsIdempotent(t *testing.T) {
	fs := newTree(t, "/srv/share")
	src := &fakeSource{entries: map[string][]aclscan.Entry{
		"/srv/share": {
			allow("NT AUTHORITY\\SYSTEM", aclscan.RightsFullControl),
			allow("CONTOSO\\Marketing", aclscan.RightsModify),
		},
	}}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: true}
	keep := aclscan.NewKeepSet()

	first, err := s.Remove("/srv/share", keep,
		func(aclscan.RemoveResult) {}, func(aclscan.RemoveResult) {}, func(string, error) {})
	require.NoError(t, err)
	require.Equal(t, 1, first.Removed)
	require.Equal(t, 1, src.applies)

	second, err := s.Remove("/srv/share", keep,
		func(aclscan.RemoveResult) { t.Fatal("zweiter Lauf darf nichts mehr verändern") },
		func(aclscan.RemoveResult) { t.Fatal("zweiter Lauf darf nichts mehr verändern") },
		func(string, error) {})
	require.NoError(t, err)
	require.Equal(t, 0, second.Removed)
	require.Equal(t, 0, second.Changed)
	require.Equal(t, 1, src.applies, "kein zweites Zurückschreiben")
}

func TestRemoveContinuesAfterApplyError(t *testing.T) {
	fs := newTree(t, "/srv/a", "/srv/b")
	src := &fakeSource{
		entries: map[string][]aclscan.Entry{
			"/srv":   {},
			"/srv/a": {allow("CONTOSO\\Marketing", aclscan.RightsRead)},
			"/srv/b": {allow("CONTOSO\\Vertrieb", aclscan.RightsRead)},
		},
		applyFailures: map[string]error{"/srv/a": errors.New("Zugriff verweigert")},
	}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: true}

	var failed []string
	stats, err := s.Remove("/srv", aclscan.NewKeepSet(),
		func(aclscan.RemoveResult) {},
		func(aclscan.RemoveResult) {},
		func(path string, err error) { failed = append(failed, path) })
	require.NoError(t, err)

	require.Equal(t, []string{"/srv/a"}, failed)
	require.Equal(t, 1, stats.Changed)
	require.Empty(t, src.entries["/srv/b"], "übriger Baum muss trotzdem bereinigt werden")
}

func TestRemoveSurfacesPreImageBeforeWriteBack(t *testing.T) {
	fs := newTree(t, "/srv/share")
	src := &fakeSource{
		entries: map[string][]aclscan.Entry{
			"/srv/share": {
				allow("NT AUTHORITY\\SYSTEM", aclscan.RightsFullControl),
				allow("CONTOSO\\Marketing", aclscan.RightsModify),
			},
		},
		applyFailures: map[string]error{"/srv/share": errors.New("Zugriff verweigert")},
	}
	s := &aclscan.Scanner{Fs: fs, Source: src, Recurse: true}

	var pres []aclscan.RemoveResult
	var failed []string
	stats, err := s.Remove("/srv/share", aclscan.NewKeepSet(),
		func(r aclscan.RemoveResult) {
			src.events = append(src.events, "pre:"+r.Path)
			pres = append(pres, r)
		},
		func(aclscan.RemoveResult) { t.Fatal("nach fehlgeschlagenem Zurückschreiben darf kein Nachbild gemeldet werden") },
		func(path string, err error) { failed = append(failed, path) })
	require.NoError(t, err)

	// Das Vorbild muss vor dem Schreibversuch gemeldet worden sein,
	// sonst fehlt es im Protokoll, wenn das Zurückschreiben scheitert.
	require.Equal(t, []string{"pre:/srv/share", "apply:/srv/share"}, src.events)
	require.Len(t, pres, 1)
	require.Len(t, pres[0].Before, 2)
	require.Len(t, pres[0].Removed, 1)
	require.Equal(t, "CONTOSO\\Marketing", pres[0].Removed[0].Identity)

	require.Equal(t, []string{"/srv/share"}, failed)
	require.Equal(t, 0, stats.Changed)
	require.Equal(t, 1, stats.Errors)
}
