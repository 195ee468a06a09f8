package main

import (
	"github.com/KaramelBytes/reviewlens/cmd"
	"github.com/joho/godotenv"
)

func main() {
	// REVIEWLENS_* variables may come from a local .env file.
	_ = godotenv.Load()
	cmd.Execute()
}
