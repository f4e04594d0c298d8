package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Back-end de la boutique de Noël",
	Long: `API de la boutique : catalogue, panier par session, brouillons de commande,
commandes et back-office (ScyllaDB, Redis, MinIO, Elasticsearch).`,
}

// Execute lance la commande demandée
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}
}
