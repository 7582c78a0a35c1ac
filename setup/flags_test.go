package setup

import (
	"flag"
	"os"
	"testing"
)

func TestParseFlagsDefaults(t *testing.T) {
	flag.CommandLine = flag.NewFlagSet("test", flag.ExitOnError)
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"cmd"}

	slots, profilePath, pretty := ParseFlags()

	if slots != 0 {
		t.Errorf("Expected default slots 0, got %d", slots)
	}
	if profilePath != "" {
		t.Errorf("Expected empty default profile path, got '%s'", profilePath)
	}
	if pretty {
		t.Errorf("Expected pretty to default to false")
	}
}

func TestParseFlagsWithCustomValues(t *testing.T) {
	// Simulate command-line arguments
	flag.CommandLine = flag.NewFlagSet("test", flag.ExitOnError)
	// Save original os.Args and restore after test
	origArgs := os.Args
	defer func() { os.Args = origArgs }()
	os.Args = []string{"cmd", "-s", "8", "-p", "/etc/launcher/profiles.yaml", "-pretty"}

	slots, profilePath, pretty := ParseFlags()

	if slots != 8 {
		t.Errorf("Expected slots 8, got %d", slots)
	}
	if profilePath != "/etc/launcher/profiles.yaml" {
		t.Errorf("Expected profile path '/etc/launcher/profiles.yaml', got '%s'", profilePath)
	}
	if !pretty {
		t.Errorf("Expected pretty to be true")
	}
}
