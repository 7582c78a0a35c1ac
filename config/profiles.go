package config

import (
	"fmt"
	"os"

	"github.com/polarclim/analysis_launcher/batch"
	"github.com/polarclim/analysis_launcher/types"
	"gopkg.in/yaml.v3"
)

// profileSpec is the YAML shape of one directive profile. Walltime is a
// string in the scheduler's HH:MM:SS form and parsed on load.
type profileSpec struct {
	JobName    string   `yaml:"job_name"`
	Partition  string   `yaml:"partition"`
	QOS        string   `yaml:"qos"`
	Constraint string   `yaml:"constraint"`
	Nodes      int      `yaml:"nodes"`
	Tasks      int      `yaml:"tasks"`
	Walltime   string   `yaml:"walltime"`
	Account    string   `yaml:"account"`
	Output     string   `yaml:"output"`
	Error      string   `yaml:"error"`
	Licenses   []string `yaml:"licenses"`
}

type profileFile struct {
	Profiles map[string]profileSpec `yaml:"profiles"`
}

// LoadProfiles reads named directive presets from a YAML file. An empty
// path yields an empty map so running without presets stays valid.
func LoadProfiles(path string) (map[string]types.DirectiveSet, error) {
	if path == "" {
		return map[string]types.DirectiveSet{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile file: %w", err)
	}

	var file profileFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse profile file %s: %w", path, err)
	}

	profiles := make(map[string]types.DirectiveSet, len(file.Profiles))
	for name, spec := range file.Profiles {
		d := types.DirectiveSet{
			JobName:    spec.JobName,
			Partition:  spec.Partition,
			QOS:        spec.QOS,
			Constraint: spec.Constraint,
			Nodes:      spec.Nodes,
			Tasks:      spec.Tasks,
			Account:    spec.Account,
			Output:     spec.Output,
			Error:      spec.Error,
			Licenses:   spec.Licenses,
		}
		if spec.Walltime != "" {
			wt, err := batch.ParseWalltime(spec.Walltime)
			if err != nil {
				return nil, fmt.Errorf("profile %q: %w", name, err)
			}
			d.Walltime = wt
		}
		profiles[name] = d
	}

	return profiles, nil
}
