package main

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const releaseVersion = "0.1.0"

func main() {
	log.SetFlags(0)

	// .env is optional, real deployments set the environment directly.
	_ = godotenv.Load()

	cobra.CheckErr(newCmd().Execute())
}
