package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TaskFile is a YAML task definition for `pilot agent --task-file`.
//
//	task: |
//	  Entra en linkedin y ...
//	max_steps: 40
//	allowed_domains: ["*.linkedin.com", "linkedin.com"]
type TaskFile struct {
	Task           string   `yaml:"task"`
	MaxSteps       int      `yaml:"max_steps"`
	AllowedDomains []string `yaml:"allowed_domains"`
}

// LoadTaskFile reads and checks a task file.
func LoadTaskFile(path string) (*TaskFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read task file: %w", err)
	}

	var tf TaskFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return nil, fmt.Errorf("failed to parse task file: %w", err)
	}
	tf.Task = strings.TrimSpace(tf.Task)
	if tf.Task == "" {
		return nil, fmt.Errorf("task file %s has no task", path)
	}
	if tf.MaxSteps < 0 {
		return nil, fmt.Errorf("task file %s: max_steps cannot be negative", path)
	}
	return &tf, nil
}

// Apply copies the non-zero task file fields onto the agent and browser
// settings.
func (tf *TaskFile) Apply(c *Config) {
	c.Agent.Task = tf.Task
	if tf.MaxSteps > 0 {
		c.Agent.MaxSteps = tf.MaxSteps
	}
	if len(tf.AllowedDomains) > 0 {
		c.Browser.AllowedDomains = tf.AllowedDomains
	}
}
