package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "job.toml")
	job := `
stage = "fragment"
version = 100
options = ["enforce_output_to_essl3"]
default_precision = "mediump"
`
	if err := os.WriteFile(path, []byte(job), 0o644); err != nil {
		t.Fatal(err)
	}

	stdout, stderr, err := run(t, "--verbose", "header", "--job", path)
	if err != nil {
		t.Fatalf("header: %v", err)
	}
	want := "#version 300 es\nprecision mediump float;\n\nvoid main() {\n}\n"
	if stdout != want {
		t.Errorf("stdout:\n%s\nwant:\n%s", stdout, want)
	}
	if !strings.Contains(stderr, "output version raised") {
		t.Errorf("verbose log missing the version decision:\n%s", stderr)
	}
}

func TestHeader_Errors(t *testing.T) {
	if _, _, err := run(t, "header"); err == nil {
		t.Error("header without --job succeeded")
	}
	if _, _, err := run(t, "header", "--job", filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("header with a missing job succeeded")
	}
}

func TestRename(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"legacy", []string{"rename", "texture2DLodEXT", "texture2D"}, "texture2DLodEXT -> texture2DLod\ntexture2D -> texture2D\n"},
		{"essl3", []string{"rename", "--essl3", "texture2D", "textureCubeGradEXT", "foo"}, "texture2D -> texture\ntextureCubeGradEXT -> textureGrad\nfoo -> foo\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stdout, _, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("rename: %v", err)
			}
			if stdout != tt.want {
				t.Errorf("stdout = %q, want %q", stdout, tt.want)
			}
		})
	}
	if _, _, err := run(t, "rename"); err == nil {
		t.Error("rename without names succeeded")
	}
}

func TestEmulate(t *testing.T) {
	tests := []struct {
		stage string
		want  string
	}{
		{"vertex", "#define emu_precision highp\n"},
		{"fragment", "#if defined(GL_FRAGMENT_PRECISION_HIGH)\n"},
	}
	for _, tt := range tests {
		t.Run(tt.stage, func(t *testing.T) {
			stdout, _, err := run(t, "emulate", "--stage", tt.stage)
			if err != nil {
				t.Fatalf("emulate: %v", err)
			}
			if !strings.Contains(stdout, tt.want) {
				t.Errorf("missing %q:\n%s", tt.want, stdout)
			}
			for _, sig := range []string{"float atan_emu(", "vec2 atan_emu(", "vec3 atan_emu(", "vec4 atan_emu("} {
				if !strings.Contains(stdout, sig) {
					t.Errorf("missing %q:\n%s", sig, stdout)
				}
			}
		})
	}
	if _, _, err := run(t, "emulate", "--stage", "pixel"); err == nil {
		t.Error("emulate with an unknown stage succeeded")
	}
}

func TestVersion(t *testing.T) {
	stdout, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if stdout != "essltool version "+toolVersion+"\n" {
		t.Errorf("stdout = %q", stdout)
	}
}
