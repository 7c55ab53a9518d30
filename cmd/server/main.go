package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/RahulBhaskar05/lugXieee-datathon/internal/cli"
)

const version = "1.0.0"

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	if err := cli.NewCLIApp(version).Execute(); err != nil {
		log.Fatalf("Error: %v", err)
	}
}
