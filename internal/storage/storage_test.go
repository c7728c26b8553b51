package storage

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"testing"
)

func TestJoin(t *testing.T) {
	tests := []struct {
		name     string
		segments []string
		want     string
	}{
		{
			name:     "plain segments",
			segments: []string{"repos", "octocat", "hello-world", ".env"},
			want:     "repos/octocat/hello-world/.env",
		},
		{
			name:     "empty root dropped",
			segments: []string{"", "repos", "octocat"},
			want:     "repos/octocat",
		},
		{
			name:     "doubled separators collapsed",
			segments: []string{"root/", "/repos/", "owner//name"},
			want:     "root/repos/owner/name",
		},
		{
			name:     "nested relative path",
			segments: []string{"repos", "o", "n", "configs/app.yaml"},
			want:     "repos/o/n/configs/app.yaml",
		},
		{
			name:     "all empty",
			segments: []string{"", ""},
			want:     "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Join(tt.segments...); got != tt.want {
				t.Errorf("Join(%v) = %q, want %q", tt.segments, got, tt.want)
			}
		})
	}
}

func TestMem_ReadWriteExists(t *testing.T) {
	ctx := t.Context()
	store := NewMem()

	exists, err := store.Exists(ctx, "repos/o/n/.env")
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Error("Exists() = true for empty store")
	}

	if err := store.Write(ctx, "repos/o/n/.env", []byte("KEY=value\n")); err != nil {
		t.Fatal(err)
	}

	exists, err = store.Exists(ctx, "repos/o/n/.env")
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Error("Exists() = false after Write")
	}

	data, err := store.Read(ctx, "repos/o/n/.env")
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "KEY=value\n" {
		t.Errorf("Read() = %q, want 'KEY=value\\n'", data)
	}
}

func TestMem_ReadMissing(t *testing.T) {
	store := NewMem()
	_, err := store.Read(t.Context(), "missing")
	if !errors.Is(err, ErrNotExist) {
		t.Errorf("Read() error = %v, want ErrNotExist", err)
	}
}

func TestMem_ListPrefix(t *testing.T) {
	ctx := t.Context()
	store := NewMem()
	for _, p := range []string{
		"repos/o/n/configs/a.txt",
		"repos/o/n/configs/b.txt",
		"repos/o/n/.env",
		"repos/o/other/.env",
	} {
		if err := store.Write(ctx, p, []byte(p)); err != nil {
			t.Fatal(err)
		}
	}

	paths, err := store.List(ctx, "repos/o/n/configs/")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"repos/o/n/configs/a.txt", "repos/o/n/configs/b.txt"}
	if len(paths) != len(want) {
		t.Fatalf("List() = %v, want %v", paths, want)
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("List()[%d] = %q, want %q", i, paths[i], want[i])
		}
	}
}

func TestMem_MD5(t *testing.T) {
	ctx := t.Context()
	store := NewMem()
	content := []byte("k: v")
	if err := store.Write(ctx, "config.yaml", content); err != nil {
		t.Fatal(err)
	}

	got, err := store.MD5(ctx, "config.yaml")
	if err != nil {
		t.Fatal(err)
	}
	sum := md5.Sum(content)
	if want := hex.EncodeToString(sum[:]); got != want {
		t.Errorf("MD5() = %q, want %q", got, want)
	}

	if _, err := store.MD5(ctx, "missing"); !errors.Is(err, ErrNotExist) {
		t.Errorf("MD5() error = %v, want ErrNotExist", err)
	}
}

func TestMem_ReadReturnsCopy(t *testing.T) {
	ctx := t.Context()
	store := NewMem()
	if err := store.Write(ctx, "file", []byte("original")); err != nil {
		t.Fatal(err)
	}

	data, err := store.Read(ctx, "file")
	if err != nil {
		t.Fatal(err)
	}
	copy(data, "mutated!")

	again, err := store.Read(ctx, "file")
	if err != nil {
		t.Fatal(err)
	}
	if string(again) != "original" {
		t.Errorf("stored object mutated through returned slice: %q", again)
	}
}
