package utils

import (
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

// DefaultJWTSecret используется, если секрет не задан в конфигурации
const DefaultJWTSecret = "foodbank-secret-key-change-in-production"

var (
	jwtMu     sync.RWMutex
	jwtSecret = DefaultJWTSecret
	jwtTTL    = 24 * time.Hour
)

// Claims представляет структуру JWT токена
type Claims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// ConfigureJWT задает секрет и время жизни токенов
func ConfigureJWT(secret string, ttl time.Duration) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	if secret != "" {
		jwtSecret = secret
	}
	if ttl > 0 {
		jwtTTL = ttl
	}
}

// JWTSecret возвращает текущий секрет подписи
func JWTSecret() string {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	return jwtSecret
}

func jwtLifetime() time.Duration {
	jwtMu.RLock()
	defer jwtMu.RUnlock()
	return jwtTTL
}

// GenerateJWT создает JWT токен для пользователя
func GenerateJWT(userID uint, email, role string) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(jwtLifetime())),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(JWTSecret()))
}

// ValidateJWT проверяет и парсит JWT токен
func ValidateJWT(tokenString string) (*Claims, error) {
	secret := JWTSecret()
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithLeeway(5*time.Minute))
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid && claims.UserID != 0 {
		return claims, nil
	}

	return nil, jwt.ErrTokenMalformed
}

// AuthMiddleware middleware для проверки JWT токена
func AuthMiddleware(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Status(401).JSON(fiber.Map{
			"error": "Authorization header required",
		})
	}

	// Bearer <token>
	tokenParts := strings.Split(authHeader, " ")
	if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
		return c.Status(401).JSON(fiber.Map{
			"error": "Invalid authorization header format",
		})
	}

	claims, err := ValidateJWT(tokenParts[1])
	if err != nil {
		return c.Status(401).JSON(fiber.Map{
			"error": "Invalid token",
		})
	}

	c.Locals("user_id", claims.UserID)
	c.Locals("user_email", claims.Email)
	c.Locals("user_role", claims.Role)

	return c.Next()
}

// RequireRole пропускает только пользователей с указанной ролью.
// Должен стоять после AuthMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		current, _ := c.Locals("user_role").(string)
		if current != role {
			return c.Status(403).JSON(fiber.Map{
				"error": "You do not have permission to access this resource",
			})
		}
		return c.Next()
	}
}
