package catalog

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// MetaFile is the case definition file inside every case directory.
const MetaFile = "meta.yaml"

// Reserved keys of an experiment entry; every other key names a host.
const (
	keyDomain        = "domain"
	keyFileTemplates = "file_templates"
	keyPathTemplate  = "path_template"
)

// Experiment is one named model run of a case.
type Experiment struct {
	Name          string
	Domain        string
	FileTemplates []string
	// PathTemplates maps host name to the directory template on that host
	PathTemplates map[string]string
}

// PathTemplate returns the directory template for host.
func (e *Experiment) PathTemplate(host string) (string, bool) {
	pt, ok := e.PathTemplates[host]
	return pt, ok
}

// Hosts returns the hosts the experiment is available on, sorted.
func (e *Experiment) Hosts() []string {
	hosts := make([]string, 0, len(e.PathTemplates))
	for h := range e.PathTemplates {
		hosts = append(hosts, h)
	}
	sort.Strings(hosts)
	return hosts
}

// ParseMeta decodes a case definition:
//
//	EXP:
//	  domain: METCOOP25D
//	  file_templates: ["fc%Y%m%d%H+%LLL.grib"]
//	  atos:
//	    path_template: "ec:/user/exp/%Y/%m/%d/%H/"
func ParseMeta(data []byte) (map[string]*Experiment, error) {
	var raw map[string]map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", MetaFile, err)
	}

	exps := make(map[string]*Experiment, len(raw))
	for name, fields := range raw {
		exp := &Experiment{Name: name, PathTemplates: make(map[string]string)}
		for key, node := range fields {
			switch key {
			case keyDomain:
				if err := node.Decode(&exp.Domain); err != nil {
					return nil, fmt.Errorf("experiment %s: invalid %s: %w", name, keyDomain, err)
				}
			case keyFileTemplates:
				templates, err := decodeStrings(&node)
				if err != nil {
					return nil, fmt.Errorf("experiment %s: invalid %s: %w", name, keyFileTemplates, err)
				}
				exp.FileTemplates = templates
			default:
				var host struct {
					PathTemplate *string `yaml:"path_template"`
				}
				if err := node.Decode(&host); err != nil {
					return nil, fmt.Errorf("experiment %s: invalid host entry %s: %w", name, key, err)
				}
				if host.PathTemplate == nil {
					return nil, fmt.Errorf("experiment %s: host %s has no %s", name, key, keyPathTemplate)
				}
				exp.PathTemplates[key] = *host.PathTemplate
			}
		}
		if len(exp.FileTemplates) == 0 {
			return nil, fmt.Errorf("experiment %s: no %s", name, keyFileTemplates)
		}
		exps[name] = exp
	}

	return exps, nil
}

// decodeStrings accepts a single string or a list of strings.
func decodeStrings(node *yaml.Node) ([]string, error) {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return nil, err
		}
		return []string{s}, nil
	}
	var list []string
	if err := node.Decode(&list); err != nil {
		return nil, err
	}
	return list, nil
}
