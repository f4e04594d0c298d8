package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"noel_back_end/internal/auth"
	"noel_back_end/internal/config"
	"noel_back_end/internal/middleware"
)

var (
	tokenUser  string
	tokenEmail string
	tokenRole  string
	tokenTTL   time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Émet un jeton d'accès au back-office",
	Long: `Signe un jeton HS256 avec JWT_SECRET, utile quand le service
d'authentification n'est pas disponible (développement, exploitation).`,
	RunE: issueToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().StringVar(&tokenUser, "user", "", "Identifiant de l'utilisateur")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "E-mail de l'utilisateur")
	tokenCmd.Flags().StringVar(&tokenRole, "role", middleware.RoleAdmin, "Rôle")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", auth.DefaultTokenTTL, "Durée de validité")
	_ = tokenCmd.MarkFlagRequired("user")
}

func issueToken(cmd *cobra.Command, _ []string) error {
	config.Load()
	cfg := config.FromEnv()
	token, err := auth.IssueToken([]byte(cfg.JWTSecret), auth.Claims{
		UserID: tokenUser,
		Email:  tokenEmail,
		Role:   tokenRole,
	}, tokenTTL)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	return nil
}
