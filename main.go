package main

import (
	"github.com/joho/godotenv"

	"github.com/a2n2k3p4/omise-payments/commands"
)

func main() {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	commands.Execute()
}
