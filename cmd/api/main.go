// cmd/api/main.go
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "retail-analytics",
		Short:        "Retail analytics dashboard API",
		SilenceUsage: true,
		RunE:         runServe,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the retail-analytics version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println(version)
		},
	}

	// version is set at build time with -ldflags "-X main.version=..."
	version = "dev"
)

func main() {
	rootCmd.AddCommand(versionCmd, serveCmd, migrateCmd, seedCmd, tokenCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
}
