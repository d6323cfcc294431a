package main

import (
	"net/http"
	"os"
	"time"

	"authgate/api/handler"
	apiMiddleware "authgate/api/middleware"
	"authgate/api/routes"
	"authgate/config"
	"authgate/internal/repository"
	"authgate/internal/service"
	"authgate/internal/utils"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("config")
	}

	db, err := config.ConnectDB(cfg.DatabaseURL)
	if err != nil {
		logger.WithError(err).Fatal("database connection")
	}

	validate := validator.New()

	jwtManager := utils.JWTManager{
		Secret:     cfg.JWTSecret,
		Issuer:     cfg.JWTIssuer,
		SessionTTL: cfg.SessionTTL,
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	eventRepo := repository.NewAuthEventRepository(db)
	txManager := repository.NewTxManager(db)

	hasher := service.BcryptPasswordHasher{}
	clock := service.RealClock{}

	verifier := service.NewCredentialVerifier(userRepo, hasher)
	tokenIssuer := service.NewTokenIssuer(tokenRepo, clock)
	sessionIssuer := service.NewJWTSessionIssuer(userRepo, sessionRepo, hasher, &jwtManager, clock, cfg.SessionTTL)
	emailSender := service.NewResendEmailSender(cfg.ResendAPIKey, cfg.FromEmail, cfg.AppBaseURL)

	authService := service.NewAuthService(
		userRepo,
		tokenRepo,
		txManager,
		eventRepo,
		verifier,
		tokenIssuer,
		emailSender,
		sessionIssuer,
		hasher,
		clock,
		service.AuthConfig{
			VerificationTokenTTL: cfg.VerificationTokenTTL,
			ResetTokenTTL:        cfg.ResetTokenTTL,
			SessionTTL:           cfg.SessionTTL,
		},
	)

	authHandler := handler.NewAuthHandler(authService, validate)
	authHandler.SecureCookies = cfg.SecureCookies

	app := echo.New()
	app.HideBanner = true
	app.HidePort = true
	app.Use(echoMiddleware.Recover())
	app.Use(echoMiddleware.RequestLoggerWithConfig(echoMiddleware.RequestLoggerConfig{
		LogStatus:   true,
		LogMethod:   true,
		LogURI:      true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echoMiddleware.RequestLoggerValues) error {
			entry := logger.WithFields(logrus.Fields{
				"status": v.Status,
				"method": v.Method,
				"uri":    v.URI,
				"ip":     v.RemoteIP,
			})
			if v.Error != nil {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}))

	sessionMiddleware := apiMiddleware.SessionMiddleware{JWT: &jwtManager, Sessions: sessionRepo}
	router := routes.NewRouter(app, authHandler, sessionMiddleware)
	router.RegisterRoutes()

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.WithField("addr", cfg.HTTPAddr).Info("server started")
	if err := app.StartServer(server); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
}
