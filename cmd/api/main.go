package main

import (
	"context"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"google.golang.org/api/option"

	"citywatch/internal/adapter/api"
	"citywatch/internal/adapter/api/handler"
	apimiddleware "citywatch/internal/adapter/api/middleware"
	"citywatch/internal/adapter/api/router"
	"citywatch/internal/adapter/repository"
	"citywatch/internal/infrastructure/auth"
	"citywatch/internal/infrastructure/geocode"
	"citywatch/internal/infrastructure/mail"
	"citywatch/internal/infrastructure/storage"
	"citywatch/internal/usecase"
	"citywatch/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsPath := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsPath))
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.GoogleProject, opts...)
	if err != nil {
		log.Fatalf("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	blobStore, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	if err != nil {
		log.Fatalf("Failed to initialize Cloud Storage: %v", err)
	}
	defer blobStore.Close()

	geocoder := geocode.NewNominatimClient(cfg.GeocoderURL)

	mailer := mail.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPSender)
	notifier := mail.NewDispatcher(mailer, cfg.MailQueueSize)
	notifier.Start()
	defer notifier.Stop()

	tokenService := auth.NewTokenService(cfg.JWTSecret, cfg.JWTExpiry)

	reportRepo := repository.NewFirestoreReportRepository(firestoreClient)
	userRepo := repository.NewFirestoreUserRepository(firestoreClient)

	reportUseCase := usecase.NewReportUseCase(reportRepo, userRepo, blobStore, geocoder, notifier)
	authUseCase := usecase.NewAuthUseCase(userRepo, tokenService, notifier, cfg.AdminEmail)

	reportHandler := handler.NewReportHandler(reportUseCase)
	adminHandler := handler.NewAdminHandler(reportUseCase)
	authHandler := handler.NewAuthHandler(authUseCase)

	e := echo.New()

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	e.Validator = api.NewValidator()

	authMiddleware := apimiddleware.NewAuthMiddleware(tokenService)
	adminMiddleware := apimiddleware.NewAdminMiddleware()

	router.Setup(e, reportHandler, adminHandler, authHandler, authMiddleware, adminMiddleware)

	log.Printf("Starting server on port %s...", cfg.ServerPort)
	e.Logger.Fatal(e.Start(":" + cfg.ServerPort))
}
