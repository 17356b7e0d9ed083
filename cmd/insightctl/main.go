// Package main is the entry point for insightctl, the offline companion of
// the social-insights-service API.
package main

import (
	"os"

	"social-insights-service/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
