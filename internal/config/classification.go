package config

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"NetSentra/internal/model"
)

const classificationPrefix = "config classification:"

// Classification maps a rule classtype shortname to its description and
// priority band (1..4).
type Classification struct {
	Description string
	Priority    int
}

// ClassificationMap is the loaded classification table. The zero value is
// usable and resolves everything to the default priority.
type ClassificationMap struct {
	entries map[string]Classification
}

// LoadClassification parses a classification.config file. Lines look like
//
//	config classification: shortname, description, priority
//
// Comments start with '#'. Malformed lines are skipped with a warning; a
// missing file yields an empty table, never an error.
func LoadClassification(filePath string) *ClassificationMap {
	cm := &ClassificationMap{entries: make(map[string]Classification)}

	f, err := os.Open(filePath)
	if err != nil {
		log.Printf("Classification file not found: %s", filePath)
		return cm
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, classificationPrefix) {
			continue
		}
		entry, name, err := parseClassificationLine(line)
		if err != nil {
			log.Printf("Skipping malformed classification line %d: %v", lineNo, err)
			continue
		}
		cm.entries[name] = entry
	}
	if err := scanner.Err(); err != nil {
		log.Printf("Failed reading classification file %s: %v", filePath, err)
	}

	log.Printf("Loaded %d classifications from %s", len(cm.entries), filePath)
	return cm
}

func parseClassificationLine(line string) (Classification, string, error) {
	content := strings.TrimSpace(strings.TrimPrefix(line, classificationPrefix))
	parts := strings.Split(content, ",")
	if len(parts) < 3 {
		return Classification{}, "", fmt.Errorf("expected shortname, description, priority: %q", line)
	}
	name := strings.TrimSpace(parts[0])
	desc := strings.TrimSpace(parts[1])
	prio, err := strconv.Atoi(strings.TrimSpace(parts[2]))
	if err != nil {
		return Classification{}, "", fmt.Errorf("invalid priority in %q: %w", line, err)
	}
	if prio < 1 || prio > 4 {
		return Classification{}, "", fmt.Errorf("priority out of range in %q", line)
	}
	return Classification{Description: desc, Priority: prio}, name, nil
}

// Lookup returns (priority, description) for a classtype, defaulting to
// priority 3 / "Unknown Class Type" for unknown names.
func (cm *ClassificationMap) Lookup(classtype string) (int, string) {
	if cm != nil && cm.entries != nil {
		if c, ok := cm.entries[classtype]; ok {
			return c.Priority, c.Description
		}
	}
	return 3, "Unknown Class Type"
}

// Len reports the number of loaded classifications.
func (cm *ClassificationMap) Len() int {
	if cm == nil {
		return 0
	}
	return len(cm.entries)
}

// SeverityFromPriority maps a classification priority band to an alert
// severity: 1 is High, 2 is Medium, 3 and 4 are Low.
func SeverityFromPriority(priority int) string {
	switch priority {
	case 1:
		return model.SeverityHigh
	case 2:
		return model.SeverityMedium
	default:
		return model.SeverityLow
	}
}
