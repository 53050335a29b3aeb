package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/syncgate/config"
)

func main() {
	schemaBytes, err := config.GenerateSchema()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	// go:generate runs from config/, the embedded copy lives in schema/.
	outputPath := filepath.Join("..", "schema", "syncgate.embedded.schema.json")
	if err := os.WriteFile(outputPath, append(schemaBytes, '\n'), 0644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated schema at %s", outputPath)
}
