// Package jwt decodifica os tokens de usuário entregues pelo provedor de login. A assinatura não é
// verificada aqui: o token chega do próprio provedor e só é lido para checar a expiração e a
// identidade do usuário.
package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken é retornado quando o token não pode ser decodificado
	ErrInvalidToken = errors.New("token inválido")
	// ErrNoExpiry é retornado quando o token não tem a claim exp
	ErrNoExpiry = errors.New("token sem data de expiração")
)

// Claims representa as claims lidas do token do usuário
type Claims struct {
	Name              string `json:"name,omitempty"`
	UserPrincipalName string `json:"upn,omitempty"`
	jwt.RegisteredClaims
}

// Decoder lê tokens sem verificar a assinatura
type Decoder struct {
	parser *jwt.Parser
}

// NewDecoder cria um novo Decoder
func NewDecoder() *Decoder {
	return &Decoder{parser: jwt.NewParser()}
}

// Decode retorna as claims do token
func (d *Decoder) Decode(tokenString string) (*Claims, error) {
	claims := &Claims{}
	if _, _, err := d.parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, errors.Join(ErrInvalidToken, err)
	}
	return claims, nil
}

// ExpiresAt retorna o instante de expiração do token
func (d *Decoder) ExpiresAt(tokenString string) (time.Time, error) {
	claims, err := d.Decode(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// Identity retorna as claims name e upn do token
func (d *Decoder) Identity(tokenString string) (name, upn string, err error) {
	claims, err := d.Decode(tokenString)
	if err != nil {
		return "", "", err
	}
	return claims.Name, claims.UserPrincipalName, nil
}

// GenerateToken gera um token HS256 com as claims de usuário. Usado pelo provedor de
// desenvolvimento e pelos testes.
func GenerateToken(secret []byte, subject, name, upn string, expiresIn time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Name:              name,
		UserPrincipalName: upn,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(expiresIn)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
