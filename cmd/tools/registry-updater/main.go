// cmd/tools/registry-updater/main.go
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"metasearch-engine/pkg/registry"
)

var registryPath string

func main() {
	addCmd := flag.NewFlagSet("add", flag.ExitOnError)
	toggleCmd := flag.NewFlagSet("toggle", flag.ExitOnError)
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)

	// Add command flags
	idAdd := addCmd.String("id", "", "Provider ID (e.g., serpapi-google)")
	displayName := addCmd.String("displayName", "", "Display Name (e.g., SerpApi (Google))")
	provType := addCmd.String("type", "", "Provider type (serpapi, google_cse, elasticsearch, postgres)")
	engine := addCmd.String("engine", "", "SerpApi engine name (serpapi type only)")
	enabled := addCmd.Bool("enabled", false, "Register the provider enabled")
	addCmd.StringVar(&registryPath, "path", "configs/registry.json", "Path to registry file")

	// Toggle command flags
	idToggle := toggleCmd.String("id", "", "Provider ID to toggle")
	setEnabled := toggleCmd.Bool("enabled", true, "Desired enabled state")
	toggleCmd.StringVar(&registryPath, "path", "configs/registry.json", "Path to registry file")

	// Validate command flags
	validateCmd.StringVar(&registryPath, "path", "configs/registry.json", "Path to registry file")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "add":
		addCmd.Parse(os.Args[2:])
		if *idAdd == "" || *provType == "" {
			fmt.Println("Error: id and type are required for add.")
			addCmd.Usage()
			os.Exit(1)
		}
		spec := registry.ProviderSpec{
			ID:          *idAdd,
			DisplayName: *displayName,
			Type:        *provType,
			Engine:      *engine,
			Enabled:     *enabled,
		}
		if err := addProvider(spec); err != nil {
			fmt.Printf("Error adding provider: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added provider: %s\n", *idAdd)

	case "toggle":
		toggleCmd.Parse(os.Args[2:])
		if *idToggle == "" {
			fmt.Println("Error: id is required for toggle.")
			toggleCmd.Usage()
			os.Exit(1)
		}
		if err := toggleProvider(*idToggle, *setEnabled); err != nil {
			fmt.Printf("Error toggling provider: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Provider %s enabled=%v\n", *idToggle, *setEnabled)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		reg, err := registry.Load(registryPath)
		if err != nil {
			fmt.Printf("Registry validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Registry validation passed: %d providers, %d enabled.\n",
			len(reg.Providers), len(reg.Enabled()))

	case "help":
		fallthrough
	default:
		help()
	}
}

func addProvider(spec registry.ProviderSpec) error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		// A missing file starts a fresh registry.
		if errors.Is(err, os.ErrNotExist) {
			reg = &registry.ProviderRegistry{Version: "1.0"}
		} else {
			return fmt.Errorf("failed to load registry: %w", err)
		}
	}

	for _, p := range reg.Providers {
		if p.ID == spec.ID {
			return fmt.Errorf("provider %q already exists", spec.ID)
		}
	}

	reg.Providers = append(reg.Providers, spec)
	return saveRegistry(reg)
}

func toggleProvider(id string, enabled bool) error {
	reg, err := registry.Load(registryPath)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	for i := range reg.Providers {
		if reg.Providers[i].ID == id {
			reg.Providers[i].Enabled = enabled
			return saveRegistry(reg)
		}
	}
	return fmt.Errorf("provider %q not found", id)
}

// saveRegistry round-trips through Parse so an edit that breaks the schema
// never lands on disk.
func saveRegistry(reg *registry.ProviderRegistry) error {
	reg.LastUpdated = time.Now().Format("2006-01-02")

	data, err := json.MarshalIndent(reg, "", "  ")
	if err != nil {
		return err
	}
	if _, err := registry.Parse(data); err != nil {
		return err
	}
	return os.WriteFile(registryPath, data, 0o644)
}

func help() {
	fmt.Println(`registry-updater manages the provider registry file.

Usage:
  registry-updater add -id <id> -type <type> [-displayName <name>] [-engine <engine>] [-enabled] [-path <file>]
  registry-updater toggle -id <id> [-enabled=false] [-path <file>]
  registry-updater validate [-path <file>]`)
}
