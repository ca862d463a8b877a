package validator

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// checkFile is the on-disk layout of a check definition file:
//
//	checks:
//	  - name: age_valid
//	    expression: age between 0:120
//	  - name: income_present
//	    expression: income_* not missing using all
type checkFile struct {
	Checks []Check `yaml:"checks"`
}

// LoadChecks reads check definitions from a YAML file.
func LoadChecks(path string) ([]Check, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read check file: %w", err)
	}
	var file checkFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse check file %s: %w", path, err)
	}
	if len(file.Checks) == 0 {
		return nil, fmt.Errorf("check file %s defines no checks", path)
	}
	return file.Checks, nil
}
