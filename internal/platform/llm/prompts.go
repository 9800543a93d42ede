package llm

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Prompt file names under the configured prompts directory.
const (
	SystemPromptFile   = "system_prompt.txt"
	AnalysisPromptFile = "symptom_analysis_prompt.txt"
)

// Prompts holds the instruction texts loaded once at startup.
type Prompts struct {
	System   string
	Analysis string
}

// LoadPrompts reads the conversational system prompt and the symptom
// analysis instruction from dir. Both files are required.
func LoadPrompts(dir string) (*Prompts, error) {
	system, err := loadPrompt(filepath.Join(dir, SystemPromptFile))
	if err != nil {
		return nil, err
	}
	analysis, err := loadPrompt(filepath.Join(dir, AnalysisPromptFile))
	if err != nil {
		return nil, err
	}
	return &Prompts{System: system, Analysis: analysis}, nil
}

func loadPrompt(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load prompt %s: %w", filepath.Base(path), err)
	}
	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("prompt %s is empty", filepath.Base(path))
	}
	return text, nil
}
