package gitrepo

import (
	"errors"
	"testing"
)

func TestParseRemoteURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		want    RepoKey
		wantErr bool
	}{
		{
			name: "scp-style ssh with .git",
			url:  "git@github.com:octocat/hello-world.git",
			want: RepoKey{Owner: "octocat", Name: "hello-world"},
		},
		{
			name: "scp-style ssh without .git",
			url:  "git@github.com:octocat/hello-world",
			want: RepoKey{Owner: "octocat", Name: "hello-world"},
		},
		{
			name: "https with .git",
			url:  "https://github.com/octocat/hello-world.git",
			want: RepoKey{Owner: "octocat", Name: "hello-world"},
		},
		{
			name: "https without .git",
			url:  "https://github.com/octocat/hello-world",
			want: RepoKey{Owner: "octocat", Name: "hello-world"},
		},
		{
			name: "ssh scheme",
			url:  "ssh://git@github.com/octocat/hello-world.git",
			want: RepoKey{Owner: "octocat", Name: "hello-world"},
		},
		{
			name: "https with trailing slash",
			url:  "https://github.com/octocat/hello-world/",
			want: RepoKey{Owner: "octocat", Name: "hello-world"},
		},
		{
			name: "nested group path takes last two segments",
			url:  "https://gitlab.example.com/group/subgroup/project.git",
			want: RepoKey{Owner: "subgroup", Name: "project"},
		},
		{
			name:    "empty",
			url:     "",
			wantErr: true,
		},
		{
			name:    "whitespace only",
			url:     "   ",
			wantErr: true,
		},
		{
			name:    "no path",
			url:     "https://github.com/",
			wantErr: true,
		},
		{
			name:    "single segment",
			url:     "https://github.com/justonename",
			wantErr: true,
		},
		{
			name:    "local path",
			url:     "/home/user/repos/thing",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRemoteURL(tt.url)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseRemoteURL(%q) expected error, got %+v", tt.url, got)
				}
				if !errors.Is(err, ErrNoRemote) {
					t.Errorf("ParseRemoteURL(%q) error = %v, want ErrNoRemote", tt.url, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRemoteURL(%q) error = %v", tt.url, err)
			}
			if got != tt.want {
				t.Errorf("ParseRemoteURL(%q) = %+v, want %+v", tt.url, got, tt.want)
			}
		})
	}
}

func TestRepoKey_String(t *testing.T) {
	key := RepoKey{Owner: "octocat", Name: "hello-world"}
	if key.String() != "octocat/hello-world" {
		t.Errorf("String() = %q, want 'octocat/hello-world'", key.String())
	}
}
