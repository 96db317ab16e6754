package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatHuman OutputFormat = "human"
)

// FormatResponse formats a response according to the specified format
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		return formatJSON(resp)
	case FormatHuman:
		return formatHuman(resp)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

func formatJSON(resp interface{}) (string, error) {
	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}

func formatHuman(resp interface{}) (string, error) {
	switch v := resp.(type) {
	case *CheckResponseCLI:
		return formatCheckHuman(v), nil
	case *ImportsResponseCLI:
		return formatImportsHuman(v), nil
	case *SyncResponseCLI:
		return formatSyncHuman(v), nil
	default:
		return formatJSON(resp)
	}
}

func formatCheckHuman(resp *CheckResponseCLI) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Dependency report (%s pass)\n\n", resp.Pass))
	for _, file := range resp.Files {
		if len(file.Facts) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("%s (module %s)\n", file.FilePath, file.ModulePath))
		for _, fact := range file.Facts {
			marker := ""
			if fact.Ignored {
				marker = "  [ignored]"
			}
			sb.WriteString(fmt.Sprintf("  %s:%d  %s%s\n", fact.Kind, fact.ImportLine, fact.ModulePath, marker))
		}
		sb.WriteString("\n")
	}

	if len(resp.Failures) > 0 {
		sb.WriteString("Failures:\n")
		for _, failure := range resp.Failures {
			sb.WriteString(fmt.Sprintf("  %s: %s\n", failure.FilePath, failure.Error))
		}
		sb.WriteString("\n")
	}

	sb.WriteString(fmt.Sprintf("Checked %d files, %d failures.\n", len(resp.Files), len(resp.Failures)))
	return sb.String()
}

func formatImportsHuman(resp *ImportsResponseCLI) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s imports in %s\n\n", resp.Kind, resp.FilePath))
	if len(resp.Imports) == 0 {
		sb.WriteString("None found.\n")
		return sb.String()
	}
	for _, imp := range resp.Imports {
		sb.WriteString(fmt.Sprintf("  %d: %s\n", imp.LineNumber, imp.ModulePath))
	}
	return sb.String()
}

func formatSyncHuman(resp *SyncResponseCLI) string {
	var sb strings.Builder
	if len(resp.Added) == 0 && len(resp.Removed) == 0 {
		sb.WriteString("Configuration already matches extracted dependencies.\n")
		return sb.String()
	}
	for _, edge := range resp.Added {
		sb.WriteString(fmt.Sprintf("  + %s -> %s\n", edge.Module, edge.Dependency))
	}
	for _, edge := range resp.Removed {
		sb.WriteString(fmt.Sprintf("  - %s -> %s\n", edge.Module, edge.Dependency))
	}
	if resp.Applied {
		sb.WriteString("\nConfiguration updated.\n")
	} else {
		sb.WriteString("\nDry run, no changes written.\n")
	}
	return sb.String()
}
