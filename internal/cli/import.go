package cli

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ShinnosukeUesaka/XLearn/internal/material"
)

type importFile struct {
	Materials []importEntry `yaml:"materials"`
}

type importEntry struct {
	Kind         string `yaml:"kind"`
	Content      string `yaml:"content"`
	Question     string `yaml:"question"`
	Answer       string `yaml:"answer"`
	RevealAnswer bool   `yaml:"reveal_answer"`
	Source       string `yaml:"source"`
}

// Import bulk-loads materials for an owner from a YAML file. The whole file
// is validated before anything is stored, so a bad entry rejects the batch.
func (c *MaterialCLI) Import(ctx context.Context, ownerID, path string) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("os.ReadFile(%s) > %w", path, err)
	}

	var file importFile
	if err := yaml.Unmarshal(contents, &file); err != nil {
		return fmt.Errorf("yaml.Unmarshal() > %w", err)
	}
	if len(file.Materials) == 0 {
		return fmt.Errorf("no materials found in %s", path)
	}

	items := make([]*material.Material, 0, len(file.Materials))
	for i, entry := range file.Materials {
		m := &material.Material{
			OwnerID:      ownerID,
			Kind:         material.Kind(entry.Kind),
			Content:      entry.Content,
			Question:     entry.Question,
			Answer:       entry.Answer,
			RevealAnswer: entry.RevealAnswer,
			Source:       entry.Source,
		}
		if err := m.Validate(); err != nil {
			return fmt.Errorf("entry %d: m.Validate() > %w", i, err)
		}
		items = append(items, m)
	}

	for _, m := range items {
		if err := c.submit(ctx, m); err != nil {
			return err
		}
	}
	fmt.Fprintf(c.stdoutWriter, "Imported %d materials\n", len(items))
	return nil
}
