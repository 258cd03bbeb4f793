package drive

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"dvc-go/internal/config"
)

func TestMemoryDrive(t *testing.T) {
	ctx := context.Background()
	d := NewMemoryDrive("root")
	d.AddFolder("f1", "Folder", "root")
	rev1 := d.AddFile("a", "a.txt", "f1", "one")
	rev2 := d.Write("a", "two")

	if rev1 == rev2 {
		t.Fatal("Write() kept the old revision")
	}
	for rev, want := range map[string]string{rev1: "one", rev2: "two"} {
		got, err := d.FetchContent(ctx, "a", rev)
		if err != nil {
			t.Fatalf("FetchContent(%s) error = %v", rev, err)
		}
		if got != want {
			t.Errorf("FetchContent(%s) = %q, want %q", rev, got, want)
		}
	}

	children, _ := d.Children(ctx, "root")
	if !reflect.DeepEqual(children, []string{"f1"}) {
		t.Errorf("Children(root) = %v, want [f1]", children)
	}

	d.Move("a", "root")
	d.Rename("a", "b.txt")
	remote, _ := d.Fetch(ctx, "a")
	if remote.Name != "b.txt" || remote.ContainerExternalID != "root" {
		t.Errorf("Fetch() after move = %+v", remote)
	}

	d.Delete("a")
	remote, _ = d.Fetch(ctx, "a")
	if !remote.Deleted {
		t.Error("Fetch() after Delete: Deleted = false")
	}

	boom := errors.New("boom")
	d.Fail(boom)
	if _, err := d.Fetch(ctx, "f1"); !errors.Is(err, boom) {
		t.Errorf("Fetch() error = %v, want %v", err, boom)
	}
}

func TestNewDriveFromConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.DriveConfig
		wantErr bool
	}{
		{"memory", config.DriveConfig{Type: "memory"}, false},
		{"default is memory", config.DriveConfig{}, false},
		{"filesystem", config.DriveConfig{Type: "filesystem", Root: t.TempDir()}, false},
		{"filesystem without root", config.DriveConfig{Type: "filesystem"}, true},
		{"unknown", config.DriveConfig{Type: "ftp"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewDriveFromConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewDriveFromConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got == nil {
				t.Error("NewDriveFromConfig() returned nil")
			}
		})
	}
}
