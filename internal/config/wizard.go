package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to fulfillment! Let's configure your webhook.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. Listen port.
	portPrompt := promptui.Prompt{
		Label:    "HTTP port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(strings.TrimSpace(portStr))

	// 2. Log format.
	formatPrompt := promptui.Select{
		Label: "Select log format",
		Items: []string{"text", "json"},
	}
	_, format, err := formatPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log format: %w", err)
	}
	cfg.Log.Format = LogFormat(format)

	// 3. Transcripts.
	transcriptPrompt := promptui.Prompt{
		Label:     "Record webhook transcripts",
		IsConfirm: true,
		Default:   "y",
	}
	if _, err := transcriptPrompt.Run(); err != nil {
		if !errors.Is(err, promptui.ErrAbort) {
			return nil, fmt.Errorf("transcripts: %w", err)
		}
		cfg.Transcripts.Enabled = false
	}

	// 4. Fallback answer.
	fallbackPrompt := promptui.Prompt{
		Label:   "Fallback answer for unknown actions",
		Default: DefaultFallbackText,
	}
	fallback, err := fallbackPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("fallback text: %w", err)
	}
	if fallback = strings.TrimSpace(fallback); fallback != "" {
		cfg.Fallback = []ResponseSpec{{Text: fallback}}
	}

	// 5. Starter action names.
	actionsPrompt := promptui.Prompt{
		Label:   "Action names to scaffold (comma-separated, blank for none)",
		Default: "",
	}
	actionsStr, err := actionsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("actions: %w", err)
	}
	for _, name := range splitAndTrim(actionsStr) {
		cfg.Actions = append(cfg.Actions, ActionConfig{
			Name:      name,
			Responses: []ResponseSpec{{Text: "Handled " + name + "."}},
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("port must be a number")
	}
	if n <= 0 || n > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	return nil
}

// splitAndTrim splits a comma-separated string and drops empty entries.
func splitAndTrim(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if token := strings.TrimSpace(part); token != "" {
			result = append(result, token)
		}
	}
	return result
}
