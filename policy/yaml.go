package policy

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// policyFile is the on-disk shape consumed by LoadYAML:
//
//	policies:
//	  - pattern: "POST|/api/users|**"
//	    fields: [email, username]
//	  - pattern: "GET|/api/items/*|"
//	    fields: [id]
//
// The list is ordered; its order defines wildcard match precedence.
type policyFile struct {
	Policies []policyEntry `yaml:"policies"`
}

type policyEntry struct {
	Pattern string   `yaml:"pattern"`
	Fields  []string `yaml:"fields"`
}

// LoadYAML registers policies from YAML configuration. Entries register in
// list order, so the file order controls wildcard precedence.
func (r *Registry) LoadYAML(src io.Reader) error {
	data, err := io.ReadAll(src)
	if err != nil {
		return fmt.Errorf("policy: read config: %w", err)
	}

	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("policy: parse config: %w", err)
	}

	for i, p := range file.Policies {
		if p.Pattern == "" {
			return fmt.Errorf("policy: config entry %d has no pattern", i)
		}

		r.Register(p.Pattern, p.Fields)
	}

	return nil
}

// LoadYAMLFile registers policies from the YAML file at path.
func (r *Registry) LoadYAMLFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("policy: open config: %w", err)
	}
	defer f.Close()

	return r.LoadYAML(f)
}
