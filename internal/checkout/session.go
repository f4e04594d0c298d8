package checkout

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
)

const (
	CookieName = "checkout_session_id"

	sessionIDKey         = "id"
	DefaultSessionMaxAge = 7 * 24 * time.Hour
)

// Sessions émet le cookie de session du tunnel de commande. Le cookie est
// réécrit à chaque requête pour prolonger sa durée de vie.
type Sessions struct {
	store *sessions.CookieStore
}

func NewSessions(secret string, maxAge time.Duration, secure bool) *Sessions {
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	store := sessions.NewCookieStore([]byte(secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
	return &Sessions{store: store}
}

// NewSessionID : session_<timestamp ms>_<aléatoire>
func NewSessionID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("session_%d_%s", now.UnixMilli(), random)
}

// Resolve lit l'identifiant de session du cookie ou en crée un, puis
// réémet le cookie.
func (s *Sessions) Resolve(w http.ResponseWriter, r *http.Request) (string, error) {
	// un cookie illisible (secret changé, altération) donne une session neuve
	session, _ := s.store.Get(r, CookieName)

	id, _ := session.Values[sessionIDKey].(string)
	if id == "" {
		id = NewSessionID(time.Now())
		session.Values[sessionIDKey] = id
	}

	if err := session.Save(r, w); err != nil {
		return "", fmt.Errorf("écriture cookie session: %w", err)
	}
	return id, nil
}
