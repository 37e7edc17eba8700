package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/example/worklog-reconciler/internal/worklog"
)

// catalogueFile mirrors the on-disk YAML layout of the issue catalogue.
type catalogueFile struct {
	Issues []struct {
		Key     string `yaml:"key"`
		Summary string `yaml:"summary"`
		Project string `yaml:"project"`
	} `yaml:"issues"`
}

// loadCatalogue reads the issue catalogue used to resolve commit references.
func loadCatalogue(path string) (worklog.Catalogue, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read issue catalogue: %w", err)
	}

	var doc catalogueFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse issue catalogue: %w", err)
	}

	issues := make([]worklog.Issue, 0, len(doc.Issues))
	for _, issue := range doc.Issues {
		issues = append(issues, worklog.Issue{
			Key:         issue.Key,
			Summary:     issue.Summary,
			ProjectName: issue.Project,
		})
	}
	return worklog.NewCatalogue(issues), nil
}
