package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"traffic-service/internal/model"
)

type catalogueEntry struct {
	Name        string `yaml:"name"`
	BaseFine    int64  `yaml:"base_fine"`
	Description string `yaml:"description"`
	Active      *bool  `yaml:"active"`
}

func loadViolationTypes(path string) ([]model.ViolationType, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}
	return parseViolationTypes(raw)
}

func parseViolationTypes(raw []byte) ([]model.ViolationType, error) {
	var entries []catalogueEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse catalogue: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("catalogue is empty")
	}

	types := make([]model.ViolationType, 0, len(entries))
	for _, entry := range entries {
		active := true
		if entry.Active != nil {
			active = *entry.Active
		}
		types = append(types, model.ViolationType{
			Name:        entry.Name,
			BaseFine:    entry.BaseFine,
			Description: entry.Description,
			IsActive:    active,
		})
	}
	return types, nil
}

// Fines are in whole kwacha.
func defaultViolationTypes() []model.ViolationType {
	return []model.ViolationType{
		{Name: "Speeding", BaseFine: 20000, Description: "Exceeding the posted speed limit", IsActive: true},
		{Name: "Running a red light", BaseFine: 15000, Description: "Failing to stop at a red traffic signal", IsActive: true},
		{Name: "No seatbelt", BaseFine: 5000, Description: "Driver or passenger not wearing a seatbelt", IsActive: true},
		{Name: "Using phone while driving", BaseFine: 10000, Description: "Handheld mobile phone use while driving", IsActive: true},
		{Name: "Expired road licence", BaseFine: 10000, Description: "Vehicle road licence not renewed", IsActive: true},
		{Name: "No driving licence", BaseFine: 25000, Description: "Driving without a valid licence", IsActive: true},
		{Name: "Overloading", BaseFine: 30000, Description: "Carrying passengers or cargo above the permitted load", IsActive: true},
		{Name: "Illegal parking", BaseFine: 5000, Description: "Parking in a prohibited area", IsActive: true},
	}
}
