package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

const RoleAdmin = "admin"

// RequireAdmin vérifie que l'utilisateur a le rôle "admin" (après AuthRequired)
func RequireAdmin(c *gin.Context) {
	if role, _ := c.Get(ContextRole); role != RoleAdmin {
		log.Printf("⛔ Accès admin refusé pour %s", c.GetString(ContextUserID))
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Acesso restrito a administradores"})
		return
	}
	c.Next()
}
