package setup

import "flag"

// ParseFlags parses command-line flags for configuring the launcher.
// It returns the number of concurrent launch slots, the directive
// profile path and whether to use pretty log output. Zero-valued flags
// defer to the environment configuration.
// Flags:
//
//	-s int: The number of concurrent launch slots (0 = use LAUNCH_SLOTS).
//	-p string: Path to the directive profile YAML file (optional).
//	-pretty: Use human-readable log output instead of JSON.
func ParseFlags() (int, string, bool) {
	launchSlots := flag.Int("s", 0, "The number of concurrent launch slots (0 = use LAUNCH_SLOTS)")
	profilePath := flag.String("p", "", "Path to the directive profile YAML file (optional)")
	pretty := flag.Bool("pretty", false, "Use human-readable log output instead of JSON")

	flag.Parse()

	return *launchSlots, *profilePath, *pretty
}
