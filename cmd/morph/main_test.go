package main

import (
	"strings"
	"testing"
)

func TestNBestCostNeedsOneArgument(t *testing.T) {
	err := app.Run([]string{"morph", "nbest-cost"})
	if err == nil {
		t.Fatalf("expected nbest-cost without examples to fail")
	}
	if !strings.Contains(err.Error(), nbestUsage) {
		t.Fatalf("expected usage in error, got %q", err.Error())
	}
}

func TestCommandsAreRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, name := range []string{"tokenize", "nbest-cost"} {
		if !names[name] {
			t.Fatalf("command %q not registered", name)
		}
	}
}
