package config

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result
// to path and returns it.
func RunWizard(path string) (*Config, error) {
	fmt.Println("Welcome to simcheck! Let's point it at your analysis server.")
	fmt.Println()

	cfg := DefaultConfig()

	// 1. API location.
	urlPrompt := promptui.Prompt{
		Label:    "Analysis API base URL",
		Default:  cfg.API.BaseURL,
		Validate: validateURL,
	}
	baseURL, err := urlPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("api base url: %w", err)
	}
	cfg.API.BaseURL = strings.TrimRight(baseURL, "/")

	// 2. Log format.
	formatPrompt := promptui.Select{
		Label: "Log format",
		Items: []string{"text", "json"},
	}
	_, format, err := formatPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("log format: %w", err)
	}
	cfg.Log.Format = format

	// 3. Web UI port.
	portPrompt := promptui.Prompt{
		Label:    "Web UI port",
		Default:  strconv.Itoa(cfg.Server.Port),
		Validate: validatePort,
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("server port: %w", err)
	}
	cfg.Server.Port, _ = strconv.Atoi(portStr)

	// 4. Batch parallelism.
	concPrompt := promptui.Prompt{
		Label:    "Parallel requests for batch analysis",
		Default:  strconv.Itoa(cfg.Batch.Concurrency),
		Validate: validatePositive,
	}
	concStr, err := concPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("batch concurrency: %w", err)
	}
	cfg.Batch.Concurrency, _ = strconv.Atoi(concStr)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(path); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}

	fmt.Printf("\nConfiguration saved to %s\n", path)
	return cfg, nil
}

func validateURL(s string) error {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("enter an http(s) URL")
	}
	return nil
}

func validatePort(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return errors.New("enter a port between 1 and 65535")
	}
	return nil
}

func validatePositive(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return errors.New("enter a positive number")
	}
	return nil
}

// SplitList splits a comma-separated list and trims whitespace, dropping
// empty entries.
func SplitList(s string) []string {
	var result []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
