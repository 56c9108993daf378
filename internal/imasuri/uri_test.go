package imasuri

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParse_BarePath(t *testing.T) {
	u := Parse("/work/data/run42")
	if u.Backend != BackendHDF5 {
		t.Fatalf("bare path backend = %s, want hdf5", u.Backend)
	}
	if u.Path != "/work/data/run42" || u.IsRemote {
		t.Fatalf("bare path parsed wrong: %+v", u)
	}

	u = Parse("/work/data/run42/profiles.nc")
	if u.Backend != BackendNetCDF {
		t.Fatalf(".nc path backend = %s, want netcdf", u.Backend)
	}
}

func TestParse_LocalShortForm(t *testing.T) {
	u := Parse("imas:hdf5?path=/work/data/run42")
	if u.Backend != BackendHDF5 {
		t.Fatalf("backend = %s, want hdf5", u.Backend)
	}
	if u.IsRemote {
		t.Fatal("local short form should not be remote")
	}
	if u.Path != "/work/data/run42" {
		t.Fatalf("path = %s", u.Path)
	}
	if u.CanConvertToLocal() {
		t.Fatal("non-remote URIs never convert")
	}
}

func TestParse_RemoteURI(t *testing.T) {
	u := Parse("imas://uda.iter.org:56565/uda?path=/public/imasdb/ITER/3/105027/1&backend=hdf5")
	if !u.IsRemote {
		t.Fatal("expected remote")
	}
	if u.Server != "uda.iter.org" {
		t.Fatalf("server = %s", u.Server)
	}
	if u.Port == nil || *u.Port != 56565 {
		t.Fatalf("port = %v", u.Port)
	}
	if u.Backend != BackendHDF5 {
		t.Fatalf("backend query param should win, got %s", u.Backend)
	}
	if u.Path != "/public/imasdb/ITER/3/105027/1" {
		t.Fatalf("path = %s", u.Path)
	}
}

func TestParse_BackendFromPathSegment(t *testing.T) {
	u := Parse("imas://uda.iter.org/uda?path=/public/imasdb/ITER/3/105027/1")
	if u.Backend != BackendUDA {
		t.Fatalf("backend = %s, want uda from first path segment", u.Backend)
	}
}

func TestParse_LegacyIdentifiers(t *testing.T) {
	u := Parse("imas:mdsplus?shot=105027&run=1&database=ITER&user=public&version=3")
	if u.Shot == nil || *u.Shot != 105027 {
		t.Fatalf("shot = %v", u.Shot)
	}
	if u.Run == nil || *u.Run != 1 {
		t.Fatalf("run = %v", u.Run)
	}
	if u.Database != "ITER" || u.User != "public" || u.Version != "3" {
		t.Fatalf("legacy fields: %+v", u)
	}
}

func TestParse_MalformedLegacyIntsDropped(t *testing.T) {
	u := Parse("imas:mdsplus?shot=abc&run=1x")
	if u.Shot != nil || u.Run != nil {
		t.Fatalf("malformed shot/run should be nil, got %v %v", u.Shot, u.Run)
	}
}

func TestParse_NeverFails(t *testing.T) {
	for _, raw := range []string{"", "imas:", "imas:%zz", ":::"} {
		u := Parse(raw)
		if u == nil {
			t.Fatalf("Parse(%q) returned nil", raw)
		}
		if u.Raw != raw {
			t.Fatalf("Raw not preserved for %q", raw)
		}
	}
}

func remoteHDF5(path string) *URI {
	return Parse("imas://uda.iter.org:56565/uda?path=" + path + "&backend=hdf5")
}

func TestCanConvertToLocal_HDF5(t *testing.T) {
	dir := t.TempDir()
	u := remoteHDF5(dir)
	if u.CanConvertToLocal() {
		t.Fatal("empty dir should not convert")
	}
	if err := os.WriteFile(filepath.Join(dir, "master.h5"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !u.CanConvertToLocal() {
		t.Fatal("dir with master.h5 should convert")
	}
}

func TestCanConvertToLocal_NetCDF(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "profiles.nc")

	u := Parse("imas://uda.iter.org/uda?path=" + file + "&backend=netcdf")
	if u.CanConvertToLocal() {
		t.Fatal("missing .nc file should not convert")
	}
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !u.CanConvertToLocal() {
		t.Fatal("existing .nc file should convert")
	}

	// Directory form matches any *.nc inside.
	dirURI := Parse("imas://uda.iter.org/uda?path=" + dir + "&backend=netcdf")
	if !dirURI.CanConvertToLocal() {
		t.Fatal("dir containing .nc should convert")
	}
}

func TestCanConvertToLocal_ASCII(t *testing.T) {
	dir := t.TempDir()
	u := Parse("imas://uda.iter.org/uda?path=" + dir + "&backend=ascii")
	if u.CanConvertToLocal() {
		t.Fatal("empty dir should not convert")
	}
	if err := os.WriteFile(filepath.Join(dir, "equilibrium.ids"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if !u.CanConvertToLocal() {
		t.Fatal("dir containing .ids should convert")
	}
}

func TestString_RewritesWhenLocal(t *testing.T) {
	dir := t.TempDir()
	u := remoteHDF5(dir)

	if got := u.String(); got != u.Raw {
		t.Fatalf("without local data String() = %s, want raw", got)
	}

	if err := os.WriteFile(filepath.Join(dir, "master.h5"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	want := "imas:hdf5?path=" + dir
	if got := u.String(); got != want {
		t.Fatalf("String() = %s, want %s", got, want)
	}

	// Availability is re-evaluated each call.
	if err := os.Remove(filepath.Join(dir, "master.h5")); err != nil {
		t.Fatal(err)
	}
	if got := u.String(); got != u.Raw {
		t.Fatalf("after removal String() = %s, want raw", got)
	}
}

func TestToLocal_PassthroughForLocalURI(t *testing.T) {
	u := Parse("imas:hdf5?path=/nonexistent")
	if got := u.ToLocal(); got != u.Raw {
		t.Fatalf("local URI should pass through, got %s", got)
	}
}
