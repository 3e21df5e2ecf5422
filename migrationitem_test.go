package archmigrate

import "testing"

func TestParseMigrationItem(t *testing.T) {
	archs := NewArchTable("amd64", "i386")
	tests := []struct {
		in   string
		want MigrationItem
	}{
		{"lightgreen", MigrationItem{Name: "lightgreen", Arch: SourceArch}},
		{"-lightgreen", MigrationItem{Name: "lightgreen", Arch: SourceArch, IsRemoval: true}},
		{"lightgreen/amd64", MigrationItem{Name: "lightgreen", Arch: "amd64"}},
		{"lightgreen/1.1~beta", MigrationItem{Name: "lightgreen", Arch: SourceArch, Version: ParseVersion("1.1~beta")}},
		{"lightgreen_unstable", MigrationItem{Name: "lightgreen", Arch: SourceArch, FromSuite: "unstable"}},
	}
	for _, tt := range tests {
		got := ParseMigrationItem(tt.in, archs)
		if got.Name != tt.want.Name || got.Arch != tt.want.Arch || got.IsRemoval != tt.want.IsRemoval ||
			got.FromSuite != tt.want.FromSuite || got.Version.Compare(tt.want.Version) != 0 {
			t.Errorf("ParseMigrationItem(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestMigrationItemKey(t *testing.T) {
	m := MigrationItem{Name: "green", Arch: "amd64"}
	if got, want := m.Key(), "green/amd64"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
	s := MigrationItem{Name: "green", Arch: SourceArch}
	if got, want := s.Key(), "green"; got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
}
