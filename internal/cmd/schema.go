package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"noel_back_end/internal/config"
	"noel_back_end/internal/database"
	"noel_back_end/internal/repository"
)

var printOnly bool

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Crée les tables ScyllaDB manquantes",
	Long: `Applique le schéma CQL des keyspaces produits et commandes.
Avec --print, affiche seulement les instructions.`,
	RunE: applySchema,
}

func init() {
	rootCmd.AddCommand(schemaCmd)
	schemaCmd.Flags().BoolVar(&printOnly, "print", false, "Afficher le schéma sans l'appliquer")
}

func applySchema(cmd *cobra.Command, _ []string) error {
	if printOnly {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "-- keyspace produits")
		fmt.Fprintln(out, strings.Join(repository.ProductsSchema, ";\n\n")+";")
		fmt.Fprintln(out, "\n-- keyspace commandes")
		fmt.Fprintln(out, strings.Join(repository.OrdersSchema, ";\n\n")+";")
		return nil
	}

	config.Load()
	cfg := config.FromEnv()
	if err := database.InitScyllaDB(cfg.Scylla); err != nil {
		return fmt.Errorf("initialisation ScyllaDB: %w", err)
	}
	defer database.Close()

	return database.ApplySchema(repository.ProductsSchema, repository.OrdersSchema)
}
