package domain

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AuditParameter describes one selectable audit check.
type AuditParameter struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Category    string `json:"category" yaml:"category"`
}

// DefaultParameters is the built-in audit parameter catalog.
func DefaultParameters() []AuditParameter {
	return []AuditParameter{
		{ID: "greeting", Name: "Professional Greeting", Description: "Agent properly greets the customer", Category: "Opening"},
		{ID: "introduction", Name: "Agent Introduction", Description: "Agent introduces themselves and company", Category: "Opening"},
		{ID: "active-listening", Name: "Active Listening", Description: "Agent demonstrates active listening skills", Category: "Communication"},
		{ID: "empathy", Name: "Empathy", Description: "Agent shows empathy towards customer concerns", Category: "Communication"},
		{ID: "clarity", Name: "Clear Communication", Description: "Agent speaks clearly and concisely", Category: "Communication"},
		{ID: "solution-oriented", Name: "Solution-Oriented", Description: "Agent focuses on solving customer problems", Category: "Problem Solving"},
		{ID: "product-knowledge", Name: "Product Knowledge", Description: "Agent demonstrates good product knowledge", Category: "Knowledge"},
		{ID: "objection-handling", Name: "Objection Handling", Description: "Agent effectively handles customer objections", Category: "Sales"},
		{ID: "closing", Name: "Proper Closing", Description: "Agent properly closes the call", Category: "Closing"},
		{ID: "follow-up", Name: "Follow-up Commitment", Description: "Agent commits to follow-up actions", Category: "Closing"},
	}
}

// LoadParameters reads a parameter catalog from a YAML file. An empty path
// returns the built-in catalog.
func LoadParameters(path string) ([]AuditParameter, error) {
	if path == "" {
		return DefaultParameters(), nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read parameters file: %w", err)
	}
	var doc struct {
		Parameters []AuditParameter `yaml:"parameters"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse parameters file: %w", err)
	}
	if len(doc.Parameters) == 0 {
		return nil, fmt.Errorf("parameters file %s defines no parameters", path)
	}
	for i, p := range doc.Parameters {
		if p.ID == "" {
			return nil, fmt.Errorf("parameters file %s: entry %d has no id", path, i)
		}
	}
	return doc.Parameters, nil
}
