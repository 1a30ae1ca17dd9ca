package app

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"landledger.io/registry/internal/api/handlers"
	"landledger.io/registry/internal/api/middleware"
	"landledger.io/registry/internal/config"
	"landledger.io/registry/internal/pkg/metrics"
)

// APIBasePath prefixes every registry route.
const APIBasePath = "/api/v1"

// TokenIssuer is the iss claim of tokens this registry issues and accepts.
const TokenIssuer = "land-registry"

func newRouter(cfg *config.Config, server *handlers.Server, m *metrics.Metrics) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.Metrics(m))
	if corsCfg, ok := buildCORSConfig(cfg); ok {
		router.Use(cors.New(corsCfg))
	}
	router.Use(middleware.ErrorHandler())

	if jwtCfg := JWTConfig(cfg); jwtCfg.Enabled() {
		router.Use(middleware.JWTAuth(jwtCfg))
	}
	if cfg.Server.OpenAPIValidation {
		validator, err := middleware.NewOpenAPIValidator(APIBasePath)
		if err != nil {
			return nil, err
		}
		router.Use(validator)
	}

	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}
	server.RegisterRoutes(router.Group(APIBasePath))
	return router, nil
}

// JWTConfig derives bearer-token settings from cfg. A blank signing key
// leaves authentication off.
func JWTConfig(cfg *config.Config) middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey: []byte(strings.TrimSpace(cfg.Security.JWTSigningKey)),
		Issuer:     TokenIssuer,
		ExpiresIn:  cfg.Security.TokenTTL,
	}
}

// buildCORSConfig reports false when no origins are configured. A "*"
// entry allows every origin and turns credentials off.
func buildCORSConfig(cfg *config.Config) (cors.Config, bool) {
	origins := make([]string, 0, len(cfg.Server.CORSAllowedOrigins))
	allowAll := false
	for _, origin := range cfg.Server.CORSAllowedOrigins {
		origin = strings.TrimSpace(origin)
		switch origin {
		case "":
		case "*":
			allowAll = true
		default:
			origins = append(origins, origin)
		}
	}
	if !allowAll && len(origins) == 0 {
		return cors.Config{}, false
	}

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders: []string{middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if allowAll {
		corsCfg.AllowAllOrigins = true
		return corsCfg, true
	}
	corsCfg.AllowOrigins = origins
	corsCfg.AllowCredentials = true
	return corsCfg, true
}
