// Package main generates the OpenAPI specification for the BrandLens API.
// It registers the shared route definitions against empty handlers, so the
// spec comes straight from the real operations with no database or services
// involved.
//
// Usage:
//
//	go run ./cmd/brandlens-openapi > openapi.json
//	go run ./cmd/brandlens-openapi -yaml > openapi.yaml
//	go run ./cmd/brandlens-openapi -output openapi.json
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"gopkg.in/yaml.v3"

	"github.com/brandlens/brandlens-api/internal/config"
	"github.com/brandlens/brandlens-api/internal/http/handlers"
	"github.com/brandlens/brandlens-api/internal/http/routes"
	"github.com/brandlens/brandlens-api/internal/repository"
	"github.com/brandlens/brandlens-api/internal/service"
	"github.com/brandlens/brandlens-api/internal/version"
)

func main() {
	outputFile := flag.String("output", "", "Output file path (default: stdout)")
	outputYAML := flag.Bool("yaml", false, "Output as YAML instead of JSON")
	baseURL := flag.String("base-url", "https://api.brandlens.dev", "Base URL for the API server")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Get().String())
		return
	}

	// A minimal chi router; no requests are ever served.
	router := chi.NewRouter()
	api := humachi.New(router, routes.NewHumaConfig(*baseURL))

	// Huma only reads handler type signatures during registration, so empty
	// wiring is enough to produce the full spec.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	repos := &repository.Repositories{}
	h := handlers.New(nil, repos, service.New(repos, &config.Config{}, logger), &config.Config{}, logger)
	routes.Register(api, h)

	spec := api.OpenAPI()

	var data []byte
	var err error
	if *outputYAML {
		data, err = yaml.Marshal(spec)
	} else {
		data, err = json.MarshalIndent(spec, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling OpenAPI spec: %v\n", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing to file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "OpenAPI spec written to %s\n", *outputFile)
	} else {
		fmt.Print(string(data))
	}
}
