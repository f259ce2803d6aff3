package main

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/JonMunkholm/graticard/internal/output"
)

// job describes one merge run. It can be read from a YAML file and is
// overridden by explicit flags.
//
//	list: recipients.csv
//	list_map: "Name,,Address Line 1,City,State,Postal Code"
//	skip_rows: 1
//	doc: gifts.docx
//	doc_map: "Name,Gift"
//	out: merged.csv
//	floor: 20
type job struct {
	List     string   `yaml:"list"`
	ListMap  string   `yaml:"list_map"`
	SkipRows int      `yaml:"skip_rows"`
	Doc      string   `yaml:"doc"`
	DocMap   string   `yaml:"doc_map"`
	Out      string   `yaml:"out"`
	Floor    *float64 `yaml:"floor"`
}

// loadJob reads a YAML job file. Unknown keys are rejected.
func loadJob(path string) (job, error) {
	var j job
	data, err := os.ReadFile(path)
	if err != nil {
		return j, fmt.Errorf("read job file: %w", err)
	}
	if err := yaml.UnmarshalWithOptions(data, &j, yaml.Strict()); err != nil {
		return j, fmt.Errorf("parse job file %s: %w", path, err)
	}
	return j, nil
}

// check reports missing inputs. The output destination is checked first.
func (j job) check() error {
	if j.Out == "" {
		return output.ErrNoDestination
	}
	switch {
	case j.List == "":
		return fmt.Errorf("no recipient list given (--list)")
	case j.Doc == "":
		return fmt.Errorf("no gift document given (--doc)")
	case j.ListMap == "":
		return fmt.Errorf("no column mapping given for %s (--list-map)", j.List)
	case j.DocMap == "":
		return fmt.Errorf("no column mapping given for %s (--doc-map)", j.Doc)
	case j.SkipRows < 0:
		return fmt.Errorf("--skip-rows must not be negative, got %d", j.SkipRows)
	case j.Floor != nil && (*j.Floor < 0 || *j.Floor > 100):
		return fmt.Errorf("--floor must be between 0 and 100, got %v", *j.Floor)
	}
	return nil
}
