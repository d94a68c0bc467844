package output

import (
	"bytes"
	"time"

	"gopkg.in/yaml.v3"
)

type yamlOutput struct {
	Directories []yamlDirectory `yaml:"directories"`
	Summary     yamlSummary     `yaml:"summary"`
}

type yamlDirectory struct {
	Directory string        `yaml:"directory"`
	Passed    bool          `yaml:"passed"`
	Errors    []string      `yaml:"errors"`
	Warnings  []string      `yaml:"warnings,omitempty"`
	Removed   []yamlRemoved `yaml:"removed,omitempty"`
}

type yamlRemoved struct {
	Path      string    `yaml:"path"`
	Size      int64     `yaml:"size"`
	SizeHuman string    `yaml:"size_human"`
	ModTime   time.Time `yaml:"mod_time"`
}

type yamlSummary struct {
	Directories  int    `yaml:"directories"`
	Errors       int    `yaml:"errors"`
	Warnings     int    `yaml:"warnings"`
	RemovedFiles int    `yaml:"removed_files"`
	RemovedBytes int64  `yaml:"removed_bytes"`
	Failed       bool   `yaml:"failed"`
	Duration     string `yaml:"duration,omitempty"`
}

// YAMLFormatter formats output as YAML with the same structure as
// JSONFormatter.
type YAMLFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, r *Result) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(buildYAML(r)); err != nil {
		return err
	}
	return encoder.Close()
}

func buildYAML(r *Result) yamlOutput {
	js := buildJSON(r)

	dirs := make([]yamlDirectory, len(js.Directories))
	for i, d := range js.Directories {
		yd := yamlDirectory{
			Directory: d.Directory,
			Passed:    d.Passed,
			Errors:    d.Errors,
			Warnings:  d.Warnings,
		}
		for _, rm := range d.Removed {
			yd.Removed = append(yd.Removed, yamlRemoved(rm))
		}
		dirs[i] = yd
	}

	return yamlOutput{
		Directories: dirs,
		Summary:     yamlSummary(js.Summary),
	}
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
