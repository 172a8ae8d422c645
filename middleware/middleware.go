package middleware

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"

	"shopledger/models"
	"shopledger/utils"
)

const (
	LocalUserID   = "userID"
	LocalUserRole = "userRole"
	LocalShopID   = "shopID"
	LocalClaims   = "claims"
)

// JWTMiddleware validates the JWT token provided in the Authorization header
// and stores the caller's identity in c.Locals.
func JWTMiddleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Missing or malformed JWT"})
		}

		claims := &models.JwtClaims{}
		token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.ErrUnauthorized
			}
			return secret, nil
		})
		if err != nil || !token.Valid || claims.ShopID == "" || claims.UserID == "" || !utils.IsValidRole(claims.Role) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "Invalid or expired JWT"})
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalUserRole, claims.Role)
		c.Locals(LocalShopID, claims.ShopID)
		c.Locals(LocalClaims, claims)

		return c.Next()
	}
}

// ExtractClaims returns the claims stored by JWTMiddleware.
func ExtractClaims(c *fiber.Ctx) (*models.JwtClaims, bool) {
	claims, ok := c.Locals(LocalClaims).(*models.JwtClaims)
	return claims, ok && claims != nil
}

// CreateJWT signs an HS256 access token for user.
func CreateJWT(secret []byte, user *models.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := models.JwtClaims{
		UserID: user.ID,
		ShopID: user.ShopID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
