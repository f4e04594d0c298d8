package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"noel_back_end/internal/checkout"
)

const ContextSessionID = "session_id"

// CheckoutSession résout (ou crée) la session du cookie checkout_session_id
// et réémet le cookie sur chaque réponse.
func CheckoutSession(sessions *checkout.Sessions) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := sessions.Resolve(c.Writer, c.Request)
		if err != nil {
			log.Printf("❌ Session de commande: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Erro de sessão"})
			return
		}
		c.Set(ContextSessionID, id)
		c.Next()
	}
}
