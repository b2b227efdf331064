package main

import (
	"github.com/joho/godotenv"

	"github.com/pineunity/apmec-horizon/cmd"
)

// Version can be set during build with -ldflags
var version = "dev"

func main() {
	// A .env file in the working directory may provide MECPANEL_* settings.
	_ = godotenv.Load()

	cmd.SetVersion(version)
	cmd.Execute()
}
