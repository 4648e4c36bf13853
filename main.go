package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spigell/talent-scout/cmd"
)

func main() {
	// Environment from .env is optional.
	_ = godotenv.Load()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
