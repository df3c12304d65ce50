package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"st-blogs/internal/domain"
)

// SessionService emite y valida los tokens de sesión y de reset de contraseña.
// Las sesiones son puramente criptográficas: no hay lista de revocación del
// lado del servidor, sólo la expiración fuerza el cierre.
type SessionService struct {
	secret []byte
	issuer string
}

const (
	// SessionTTL es la vida del token de sesión transportado en cookie.
	SessionTTL = 24 * time.Hour
	// ResetTokenTTL es la vida del token del link de reset de contraseña.
	ResetTokenTTL = time.Hour

	tokenTypeSession = "session"
	tokenTypeReset   = "reset"
)

type SessionClaims struct {
	UserID    string `json:"id"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

var (
	ErrTokenInvalid = errors.New("token invalid")
	ErrTokenExpired = errors.New("token expired")
)

func NewSessionService(secret string) *SessionService {
	return &SessionService{
		secret: []byte(secret),
		issuer: "st-blogs",
	}
}

// IssueSession firma un token de sesión de 1 día para un usuario verificado.
func (s *SessionService) IssueSession(user domain.User) (string, error) {
	return s.sign(user.ID, user.Email, tokenTypeSession, SessionTTL)
}

// ParseSession valida un token de sesión y devuelve sus claims.
func (s *SessionService) ParseSession(token string) (SessionClaims, error) {
	return s.parse(token, tokenTypeSession)
}

// IssueResetToken firma el token de 1 hora embebido en el link de reset.
func (s *SessionService) IssueResetToken(user domain.User) (string, error) {
	return s.sign(user.ID, "", tokenTypeReset, ResetTokenTTL)
}

// ParseResetToken valida un token de reset y devuelve el id de usuario.
func (s *SessionService) ParseResetToken(token string) (string, error) {
	claims, err := s.parse(token, tokenTypeReset)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

func (s *SessionService) sign(userID, email, tokenType string, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrTokenInvalid
	}
	now := time.Now().UTC()
	claims := SessionClaims{
		UserID:    userID,
		Email:     email,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *SessionService) parse(tokenString, wantType string) (SessionClaims, error) {
	if len(s.secret) == 0 {
		return SessionClaims{}, ErrTokenInvalid
	}
	if strings.TrimSpace(tokenString) == "" {
		return SessionClaims{}, ErrTokenInvalid
	}

	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return SessionClaims{}, ErrTokenExpired
		}
		return SessionClaims{}, ErrTokenInvalid
	}

	if claims.TokenType != wantType {
		return SessionClaims{}, ErrTokenInvalid
	}
	if !s.isValidClaims(claims) {
		return SessionClaims{}, ErrTokenInvalid
	}
	return claims, nil
}

func (s *SessionService) isValidClaims(claims SessionClaims) bool {
	if strings.TrimSpace(claims.UserID) == "" {
		return false
	}
	if claims.Subject != claims.UserID {
		return false
	}
	return strings.TrimSpace(claims.Issuer) == s.issuer
}
