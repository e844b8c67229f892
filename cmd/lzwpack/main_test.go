package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func execute(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("lzwpack %s: error = %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lzwpack.toml")
	writeFile(t, path, `
data_dir = "/srv/lzwpack"
codec = "zstd"
max_width = 14
shards = 64
`)

	values, err := loadConfig(path)
	if err != nil {
		t.Fatalf("loadConfig() error = %v", err)
	}
	want := map[string]string{
		"data-dir":  "/srv/lzwpack",
		"codec":     "zstd",
		"max-width": "14",
		"shards":    "64",
	}
	if len(values) != len(want) {
		t.Errorf("loadConfig() = %v, want %v", values, want)
	}
	for k, v := range want {
		if values[k] != v {
			t.Errorf("values[%q] = %q, want %q", k, values[k], v)
		}
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	dir := t.TempDir()

	unknown := filepath.Join(dir, "unknown.toml")
	writeFile(t, unknown, `shard_count = 3`)
	if _, err := loadConfig(unknown); err == nil {
		t.Error("loadConfig() with unknown key succeeded")
	}

	if _, err := loadConfig(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("loadConfig() of missing file succeeded")
	}
}

func TestApplyConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lzwpack.toml")
	writeFile(t, path, `
codec = "gzip"
workers = 8
max_width = 16
`)

	var (
		codec    string
		workers  int
		maxWidth uint
	)
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&codec, "codec", "lzw", "")
	cmd.Flags().IntVar(&workers, "workers", 4, "")
	// max-width is not a flag of cmd and is ignored.
	if err := cmd.Flags().Parse([]string{"--workers", "2"}); err != nil {
		t.Fatal(err)
	}

	if err := applyConfigFile(cmd, path); err != nil {
		t.Fatalf("applyConfigFile() error = %v", err)
	}
	if codec != "gzip" {
		t.Errorf("codec = %q, want %q from config", codec, "gzip")
	}
	if workers != 2 {
		t.Errorf("workers = %d, want 2 from the command line", workers)
	}
	if maxWidth != 0 {
		t.Errorf("maxWidth = %d, want untouched", maxWidth)
	}
}

func TestCompressDecompress(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.txt")
	packed := filepath.Join(dir, "notes.txt.lzw")
	output := filepath.Join(dir, "notes.out")
	content := strings.Repeat("TOBEORNOTTOBEORTOBEORNOT\n", 200)
	writeFile(t, input, content)

	execute(t, "compress", input, "-o", packed, "--max-width", "10")
	execute(t, "decompress", packed, "-o", output, "--max-width", "10")

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != content {
		t.Errorf("round trip mismatch: got %d bytes, want %d", len(got), len(content))
	}

	info, err := os.Stat(packed)
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() >= int64(len(content)) {
		t.Errorf("packed size %d not smaller than %d", info.Size(), len(content))
	}

	out := execute(t, "inspect", packed, "--max-width", "10")
	for _, want := range []string{"Sessions:", "Ratio:", "Widths:"} {
		if !strings.Contains(out, want) {
			t.Errorf("inspect output missing %q:\n%s", want, out)
		}
	}
}

func TestPutGet(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "hello.txt")
	output := filepath.Join(dir, "hello.out")
	writeFile(t, input, "hello, lzwpack")

	data := filepath.Join(dir, "data")
	if err := os.MkdirAll(data, 0755); err != nil {
		t.Fatal(err)
	}

	execute(t, "put", "greetings/hello.txt", input, "--data-dir", data, "--shards", "16", "--codec", "lzw", "--max-width", "12")
	execute(t, "get", "greetings/hello.txt", "-o", output, "--data-dir", data, "--shards", "16", "--codec", "lzw", "--max-width", "12")

	got, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "hello, lzwpack" {
		t.Errorf("get = %q", got)
	}

	out := execute(t, "list", "--data-dir", data, "--shards", "16", "--codec", "lzw", "--max-width", "12")
	if strings.TrimSpace(out) != "greetings/hello.txt" {
		t.Errorf("list = %q", out)
	}
}

func TestPackVerify(t *testing.T) {
	dir := t.TempDir()
	source := filepath.Join(dir, "source")
	if err := os.MkdirAll(filepath.Join(source, "docs"), 0755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(source, "docs", "a.txt"), strings.Repeat("alpha ", 300))
	writeFile(t, filepath.Join(source, "b.txt"), "beta")
	data := filepath.Join(dir, "data")

	execute(t, "pack", "--source", source, "--output", data, "--shards", "8", "--workers", "2")

	out := execute(t, "verify", "--data-dir", data)
	if !strings.Contains(out, "Verifying 2 files") || !strings.Contains(out, "verified successfully") {
		t.Errorf("verify output:\n%s", out)
	}
	if strings.Contains(out, "WARNING") {
		t.Errorf("verify warned on a fresh pack:\n%s", out)
	}

	extra := filepath.Join(dir, "extra.txt")
	writeFile(t, extra, "added after packing")
	execute(t, "put", "extra.txt", extra, "--data-dir", data)

	out = execute(t, "verify", "--data-dir", data)
	if !strings.Contains(out, "WARNING: manifest lists 2 files, found 3") {
		t.Errorf("verify output missing manifest count warning:\n%s", out)
	}
}
