package app

import (
	"context"
	"net/http"

	"link-service/internal/auth/credentials"
	"link-service/internal/auth/handler"
	"link-service/internal/auth/linkage"
	"link-service/internal/auth/provider/facebook"
	"link-service/internal/config"
	"link-service/internal/middleware"
	"link-service/internal/session"

	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}

	router, err := newRouter(cfg, infra)
	if err != nil {
		_ = infra.Close()
		return nil, nil, err
	}

	return router, infra.Close, nil
}

// newRouter wires the components over an already opened account store.
func newRouter(cfg config.Config, infra *Infra) (*gin.Engine, error) {

	// ----------------------------
	// Dependencies
	// ----------------------------

	facebookProvider, err := facebook.New(facebook.Config{
		AppID:         cfg.AppID,
		AppSecret:     cfg.AppSecret,
		GraphVersion:  cfg.GraphVersion,
		DialogBaseURL: cfg.FacebookDialogURL,
		GraphBaseURL:  cfg.FacebookGraphURL,
		Timeout:       cfg.ProviderTimeout,
	})
	if err != nil {
		return nil, err
	}

	linker, err := linkage.New(linkage.Config{
		CallbackBaseURL: cfg.CallbackBaseURL,
		Scopes:          cfg.ProviderScopes,
	}, infra.Accounts, facebookProvider)
	if err != nil {
		return nil, err
	}

	tokens, err := credentials.NewJWTIssuer(credentials.JWTConfig{
		Secret: cfg.JWTSecret,
		Issuer: "link-service",
		TTL:    cfg.SessionTTL,
	})
	if err != nil {
		return nil, err
	}

	sessions := session.New(
		session.Config{
			Cookie: session.CookieOptions{
				Secure:   cfg.CookieSecure,
				SameSite: http.SameSiteLaxMode,
			},
		},
		infra.Accounts,
		credentials.NewBcryptHasher(cfg.BcryptCost),
		tokens,
	)

	authHandler := handler.NewHandler(linker, sessions, cfg.LoginRedirectURL)
	authMiddleware := middleware.NewAuthMiddleware(tokens)

	// ----------------------------
	// Router
	// ----------------------------

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Cors(cfg.FrontendURL))

	// ----------------------------
	// Routes
	// ----------------------------

	authHandler.RegisterRoutes(router, middleware.GinRequireAuth(authMiddleware))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router, nil
}
