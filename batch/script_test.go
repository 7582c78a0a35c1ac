package batch

import (
	"strings"
	"testing"
	"time"

	"github.com/polarclim/analysis_launcher/types"
	"github.com/stretchr/testify/assert"
)

func validDirectives() types.DirectiveSet {
	return types.DirectiveSet{
		JobName:    "mpas_analysis",
		Partition:  "regular",
		QOS:        "premium",
		Constraint: "haswell",
		Nodes:      1,
		Tasks:      1,
		Walltime:   time.Hour,
		Account:    "e3sm",
		Output:     "mpas_analysis.o%j",
		Error:      "mpas_analysis.e%j",
		Licenses:   []string{"cscratch1", "project"},
	}
}

func TestRender_FullDirectiveSet(t *testing.T) {
	script, err := Render(validDirectives())
	assert.NoError(t, err)

	assert.True(t, strings.HasPrefix(script, "#!/bin/bash\n"), "script must start with a shebang")
	assert.Contains(t, script, "#SBATCH --job-name=mpas_analysis\n")
	assert.Contains(t, script, "#SBATCH --partition=regular\n")
	assert.Contains(t, script, "#SBATCH --qos=premium\n")
	assert.Contains(t, script, "#SBATCH --constraint=haswell\n")
	assert.Contains(t, script, "#SBATCH --nodes=1\n")
	assert.Contains(t, script, "#SBATCH --ntasks=1\n")
	assert.Contains(t, script, "#SBATCH --time=01:00:00\n")
	assert.Contains(t, script, "#SBATCH --account=e3sm\n")
	assert.Contains(t, script, "#SBATCH --licenses=cscratch1,project\n")
}

func TestRender_PreservesJobIDToken(t *testing.T) {
	script, err := Render(validDirectives())
	assert.NoError(t, err)

	// %j must survive rendering untouched; it is expanded by the
	// scheduler, not by us.
	assert.Contains(t, script, "--output=mpas_analysis.o%j")
	assert.Contains(t, script, "--error=mpas_analysis.e%j")
}

func TestRender_OmitsEmptyFields(t *testing.T) {
	d := types.DirectiveSet{
		JobName:  "bare",
		Nodes:    1,
		Tasks:    1,
		Walltime: 30 * time.Minute,
	}
	script, err := Render(d)
	assert.NoError(t, err)

	assert.NotContains(t, script, "--partition")
	assert.NotContains(t, script, "--qos")
	assert.NotContains(t, script, "--licenses")
}

func TestRender_Deterministic(t *testing.T) {
	a, err := Render(validDirectives())
	assert.NoError(t, err)
	b, err := Render(validDirectives())
	assert.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestValidate_RejectsBadDirectives(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*types.DirectiveSet)
		errSub string
	}{
		{"MissingJobName", func(d *types.DirectiveSet) { d.JobName = "" }, "job name is required"},
		{"ZeroNodes", func(d *types.DirectiveSet) { d.Nodes = 0 }, "node count"},
		{"ZeroTasks", func(d *types.DirectiveSet) { d.Tasks = 0 }, "task count"},
		{"ZeroWalltime", func(d *types.DirectiveSet) { d.Walltime = 0 }, "walltime"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := validDirectives()
			tc.mutate(&d)
			_, err := Render(d)
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tc.errSub)
		})
	}
}

func TestWalltime_RoundTrip(t *testing.T) {
	for _, d := range []time.Duration{
		time.Hour,
		90 * time.Minute,
		26*time.Hour + 5*time.Minute + 9*time.Second,
	} {
		parsed, err := ParseWalltime(FormatWalltime(d))
		assert.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
}

func TestParseWalltime_MinutesSecondsForm(t *testing.T) {
	d, err := ParseWalltime("15:30")
	assert.NoError(t, err)
	assert.Equal(t, 15*time.Minute+30*time.Second, d)
}

func TestParseWalltime_Invalid(t *testing.T) {
	for _, spec := range []string{"", "1", "aa:bb:cc", "1:2:3:4", "-1:00:00"} {
		_, err := ParseWalltime(spec)
		assert.Error(t, err, "spec %q should not parse", spec)
	}
}
