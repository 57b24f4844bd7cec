// Command schema-generator writes the configuration JSON Schema to
// schema/searchcore.schema.json for editors and CI.
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/grovetools/searchcore/schema"
)

func main() {
	output := flag.String("o", filepath.Join("schema", "searchcore.schema.json"), "output file")
	flag.Parse()

	data, err := schema.Generate()
	if err != nil {
		log.Fatalf("Error generating schema: %v", err)
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0o755); err != nil {
		log.Fatalf("Error creating schema directory: %v", err)
	}
	if err := os.WriteFile(*output, append(data, '\n'), 0o644); err != nil {
		log.Fatalf("Error writing schema file: %v", err)
	}

	log.Printf("Successfully generated schema at %s", *output)
}
