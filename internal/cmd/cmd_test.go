// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/relabs-tech/mpu9150/internal/config"
)

func newInitCmd(args ...string) (*cobra.Command, *bytes.Buffer) {
	c := &cobra.Command{Use: "init-config", RunE: initConfig}
	initCmdFlags(c)
	var out bytes.Buffer
	c.SetOut(&out)
	c.SetArgs(args)
	return c, &out
}

func TestInitConfig_Print(t *testing.T) {
	c, out := newInitCmd("--print")
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if out.String() != config.Template() {
		t.Fatalf("printed template differs")
	}
}

func TestInitConfig_Write(t *testing.T) {
	p := filepath.Join(t.TempDir(), "cfg.txt")

	c, _ := newInitCmd("-o", p)
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if _, err := config.Load(p, nil); err != nil {
		t.Fatalf("written template does not load: %v", err)
	}

	c, _ = newInitCmd("-o", p)
	if err := c.Execute(); err == nil || !strings.Contains(err.Error(), "-y") {
		t.Fatalf("expected overwrite refusal, got %v", err)
	}

	os.WriteFile(p, []byte("stale"), 0o644)
	c, _ = newInitCmd("-o", p, "-y")
	if err := c.Execute(); err != nil {
		t.Fatalf("Execute -y: %v", err)
	}
	b, _ := os.ReadFile(p)
	if string(b) != config.Template() {
		t.Fatalf("file not overwritten")
	}
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := getRootCmd()
	want := []string{"probe", "read", "produce", "console", "display", "regdebug", "dump", "calibrate", "init-config"}
	for _, name := range want {
		c, _, err := root.Find([]string{name})
		if err != nil || c.Name() != name {
			t.Fatalf("subcommand %s: %v", name, err)
		}
	}
	for _, f := range []string{"config", "bus", "backend", "addr", "mag-addr", "log-level", "broker", "port"} {
		if root.PersistentFlags().Lookup(f) == nil {
			t.Fatalf("missing --%s", f)
		}
	}
}
