package main

import (
	"testing"

	"github.com/tenjam/shopsync/internal/core"
)

func TestParseProductVersions(t *testing.T) {
	tests := []struct {
		name    string
		specs   []string
		want    []core.ProductVersion
		wantErr bool
	}{
		{
			name:  "single version with default",
			specs: []string{"Tenjam Blue:v1.0:1:default"},
			want:  []core.ProductVersion{{Name: "Tenjam Blue", VersionName: "v1.0", VersionNumber: 1, Default: true}},
		},
		{
			name:  "two versions",
			specs: []string{"Tenjam Blue:v1.0:1:default", "Tenjam White:v1.0:1"},
			want: []core.ProductVersion{
				{Name: "Tenjam Blue", VersionName: "v1.0", VersionNumber: 1, Default: true},
				{Name: "Tenjam White", VersionName: "v1.0", VersionNumber: 1},
			},
		},
		{name: "none given", specs: nil, wantErr: true},
		{name: "missing number", specs: []string{"Tenjam Blue:v1.0"}, wantErr: true},
		{name: "non-numeric number", specs: []string{"Tenjam Blue:v1.0:one"}, wantErr: true},
		{name: "zero number", specs: []string{"Tenjam Blue:v1.0:0"}, wantErr: true},
		{name: "bad fourth segment", specs: []string{"Tenjam Blue:v1.0:1:primary"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseProductVersions(tt.specs)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseProductVersions(%v) succeeded, want error", tt.specs)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d versions, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("version[%d] = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
