package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/flicky/shopsphere-api/internal/dto"
	"github.com/flicky/shopsphere-api/internal/model"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, dto.Response{Success: false, Message: msg})
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abort(c, http.StatusUnauthorized, "Not authorized to access this route")
			return
		}
		actor, err := parseToken(header[7:], secret)
		if err != nil {
			abort(c, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		setActor(c, actor)
		c.Next()
	}
}

// RequireRole must run after AuthMiddleware.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := GetUserRole(c)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		abort(c, http.StatusForbidden, "User role "+string(role)+" is not authorized to access this route")
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(model.RoleAdmin)
}

func parseToken(raw, secret string) (model.Actor, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return model.Actor{}, jwt.ErrTokenInvalidClaims
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return model.Actor{}, jwt.ErrTokenInvalidClaims
	}
	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return model.Actor{}, jwt.ErrTokenInvalidSubject
	}
	role, _ := claims["role"].(string)
	return model.Actor{ID: userID, Role: model.Role(role)}, nil
}

func setActor(c *gin.Context, actor model.Actor) {
	c.Set(userIDKey, actor.ID)
	c.Set(userRoleKey, actor.Role)
}

func GetUserID(c *gin.Context) uuid.UUID {
	id, _ := c.Get(userIDKey)
	uid, _ := id.(uuid.UUID)
	return uid
}

func GetUserRole(c *gin.Context) model.Role {
	role, _ := c.Get(userRoleKey)
	r, _ := role.(model.Role)
	return r
}

// GetActor returns the authenticated caller; the zero Actor when anonymous.
func GetActor(c *gin.Context) model.Actor {
	return model.Actor{ID: GetUserID(c), Role: GetUserRole(c)}
}
