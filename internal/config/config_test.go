package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	for i, tt := range []struct {
		content string
		want    Config
		wantErr bool
	}{
		{
			content: "",
			want:    Default(),
		},
		{
			content: "tco: false\nstats: true\nload:\n  - a.liscript\n  - b.liscript\n",
			want: func() Config {
				c := Default()
				c.TCO = false
				c.Stats = true
				c.Load = []string{"a.liscript", "b.liscript"}
				return c
			}(),
		},
		{
			content: "prompt: \"> \"\nlog_level: debug\n",
			want: func() Config {
				c := Default()
				c.Prompt = "> "
				c.LogLevel = "debug"
				return c
			}(),
		},
		{
			content: "tco: [",
			wantErr: true,
		},
	} {
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := Load(path)
		if tt.wantErr {
			if err == nil {
				t.Errorf("%d) expected error", i)
			}
			continue
		}
		if err != nil {
			t.Errorf("%d) load error %v", i, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%d) got %+v want %+v", i, got, tt.want)
		}
	}
}

func TestLoadMissingFile(t *testing.T) {
	got, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, Default()) {
		t.Errorf("got %+v want defaults", got)
	}
}

func TestLevel(t *testing.T) {
	c := Default()
	c.LogLevel = "debug"
	lvl, err := c.Level()
	if err != nil {
		t.Fatal(err)
	}
	if lvl != slog.LevelDebug {
		t.Errorf("got %v want debug", lvl)
	}
	c.LogLevel = "loud"
	if _, err := c.Level(); err == nil {
		t.Errorf("expected error for unknown level")
	}
}
