package main

import (
	"github.com/joho/godotenv"

	"github.com/routeblend/routeblend/internal/cmd"
)

func main() {
	// Tokens like STRAVA_ACCESS_TOKEN typically live in a local .env.
	_ = godotenv.Load()

	cmd.Execute()
}
