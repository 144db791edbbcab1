// Package main is the entry point for the toontrack2ad2 API server
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/james-see/toontrack2ad2/pkg/api"
	"github.com/james-see/toontrack2ad2/pkg/config"
)

func main() {
	port := flag.Int("port", 8080, "Server port")
	types := flag.String("types", "", "YAML file with category substitutions")
	flag.Parse()

	normalizer, err := config.Normalizer(*types)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Starting toontrack2ad2 API server on port %d...\n", *port)
	fmt.Printf("Swagger docs available at http://localhost:%d/swagger/index.html\n", *port)

	if err := api.StartServer(*port, normalizer); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
