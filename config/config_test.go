package config_test

import (
	"reflect"
	"runtime"
	"testing"

	"github.com/Mooling0602/MCDRServerRunner/config"
)

func TestServerCommandPlain(t *testing.T) {
	cfg := config.New()
	cfg.Buffering = config.BufferNone

	want := []string{"java", "-jar", config.DefaultJar, "nogui"}
	if got := cfg.ServerCommand(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestServerCommandStdbufWrap(t *testing.T) {
	cfg := config.New()
	cfg.Buffering = config.BufferStdbuf

	want := []string{"stdbuf", "-oL", "java", "-jar", config.DefaultJar, "nogui"}
	if got := cfg.ServerCommand(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestServerCommandPtySkipsStdbuf(t *testing.T) {
	cfg := config.New()
	cfg.Buffering = config.BufferPty

	want := []string{"java", "-jar", config.DefaultJar, "nogui"}
	if got := cfg.ServerCommand(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestServerCommandJVMArgs(t *testing.T) {
	cfg := config.New()
	cfg.Buffering = config.BufferNone
	cfg.Java = "/opt/java/bin/java"
	cfg.Jar = "paper.jar"
	cfg.JVMArgs = []string{"-Xmx4G", "-Xms4G"}

	want := []string{"/opt/java/bin/java", "-Xmx4G", "-Xms4G", "-jar", "paper.jar", "nogui"}
	if got := cfg.ServerCommand(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestServerCommandOverride(t *testing.T) {
	cfg := config.New()
	cfg.Command = config.ParseCommand("./run.sh --forwarded")

	want := []string{"./run.sh", "--forwarded"}
	if got := cfg.ServerCommand(); !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestDefaultBuffering(t *testing.T) {
	want := config.BufferStdbuf
	if runtime.GOOS == "windows" {
		want = config.BufferNone
	}
	if got := config.DefaultBuffering(); got != want {
		t.Fatalf("got %v, want %v", got, want)
	}
}
