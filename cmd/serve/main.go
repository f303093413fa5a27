// Package classification PAPA Volunteer Manager.
//
// Events, volunteer signups and waitlists, shipment tracking and the FAQ chat of the PAPA
// volunteer program
//
//	Version: 0.1.0
//	Contact: <volunteers@asianpilots.org> https://www.asianpilots.org
//
//	Consumes:
//	  - application/json
//
//	Produces:
//	  - application/json
//
//	SecurityDefinitions:
//	  oauth2:
//	    type: oauth2
//	    authorizationUrl: /auth/discord
//	    flow: implicit
//	  webhook:
//	    type: apiKey
//	    name: Authorization
//	    in: header
//
// swagger:meta
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/asianpilots/volunteer-manager/internal/handler"
	"github.com/asianpilots/volunteer-manager/internal/log"
	"github.com/asianpilots/volunteer-manager/internal/metrics"
	"github.com/asianpilots/volunteer-manager/internal/middleware"
	"github.com/asianpilots/volunteer-manager/internal/server"
	"github.com/asianpilots/volunteer-manager/internal/tracing"
	"github.com/asianpilots/volunteer-manager/internal/util"
	"github.com/asianpilots/volunteer-manager/pkg/chat"
	"github.com/asianpilots/volunteer-manager/pkg/config"
	"github.com/asianpilots/volunteer-manager/pkg/event"
	"github.com/asianpilots/volunteer-manager/pkg/geocode"
	"github.com/asianpilots/volunteer-manager/pkg/profile"
	"github.com/asianpilots/volunteer-manager/pkg/shipment"
	"github.com/asianpilots/volunteer-manager/pkg/signup"
	"github.com/asianpilots/volunteer-manager/pkg/storage"
	"github.com/asianpilots/volunteer-manager/pkg/token"
	"github.com/asianpilots/volunteer-manager/pkg/tracking"
	"github.com/asianpilots/volunteer-manager/pkg/weather"
	"github.com/gorilla/sessions"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/discord"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Failed to start server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.New()
	if err != nil {
		return err
	}

	logger := slog.New(log.New(log.NewPrettyJSONHandler(os.Stdout, &log.PrettyJSONHandlerOptions{
		HandlerOptions: slog.HandlerOptions{AddSource: true},
		PrettyPrint:    cfg.LogPretty,
	})))
	slog.SetDefault(logger)

	shutdownTracing, err := tracing.Setup(cfg.JaegerEndpoint)
	if err != nil {
		return fmt.Errorf("failed to setup tracing: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Error("Failed to shutdown tracing", "error", err)
		}
	}()

	metrics.Register()

	err = handler.RegisterValidation()
	if err != nil {
		return err
	}

	db, err := storage.NewDatabase(logger, cfg.Postgresql)
	if err != nil {
		return err
	}

	redis, err := storage.NewRedis(cfg.Redis.Host, cfg.Redis.Port)
	if err != nil {
		return err
	}

	httpClient := util.NewHTTPClient(20 * time.Second)

	geocodeClient := geocode.NewClient(logger, httpClient, geocode.DefaultBaseURL, storage.NewCache(redis, "geocode:"))
	weatherClient := weather.NewClient(logger, httpClient, weather.DefaultBaseURL, storage.NewCache(redis, "weather:"))
	trackingClient := tracking.NewClient(logger, httpClient, tracking.DefaultBaseURL, cfg.Ship24.APIKey)

	profileRepository := profile.NewRepository(db)
	profileService := profile.NewService(logger, profileRepository, cfg.Authentication.AdminDiscordIDs)

	shipmentRepository := shipment.NewRepository(db)
	shipmentService := shipment.NewService(logger, shipmentRepository, trackingClient)

	eventRepository := event.NewRepository(db)
	signupRepository := signup.NewRepository(db)
	signupService := signup.NewService(logger, signupRepository, eventRepository, cfg.SignupSerializable)
	eventService := event.NewService(logger, eventRepository, signupService, shipmentService, geocodeClient, weatherClient)

	chatService := chat.NewService(logger, chat.NewRepository(db), nil)
	if cfg.OpenAI.APIKey != "" {
		chatService = chat.NewService(logger, chat.NewRepository(db), chat.NewOpenAIClient(httpClient, "", cfg.OpenAI.APIKey))
	}

	tokenService := token.NewService(cfg.Authentication.PrivateKey, cfg.Authentication.AccessTokenExpirationSeconds)

	store := sessions.NewCookieStore([]byte(cfg.Authentication.SessionSecret))
	store.Options.HttpOnly = true
	store.Options.Secure = strings.HasPrefix(cfg.SiteURL, "https://")
	gothic.Store = store
	goth.UseProviders(discord.New(cfg.Discord.Key, cfg.Discord.Secret, cfg.CallbackURL("discord"), discord.ScopeIdentify))

	authentication := middleware.NewAuthentication(logger, tokenService.PublicKey())
	authorization := middleware.NewAuthorization(logger, profileService)
	sso := middleware.NewSSOMiddleware(logger, profileService, tokenService, cfg.SiteURL, cfg.Hostname)

	r := server.GetEngine(logger, cfg.SiteURL)
	api := r.Group(cfg.BasePath)
	profile.Routes(api, authentication.TokenAuthentication, sso, profile.NewHandler(profileService))
	event.Routes(api, authentication.OptionalTokenAuthentication, authentication.TokenAuthentication, authorization.RequireAdministrator, event.NewHandler(eventService))
	signup.Routes(api, authentication.TokenAuthentication, signup.NewHandler(signupService))
	shipment.Routes(api, authentication.TokenAuthentication, authorization.RequireAdministrator, middleware.WebhookSecret(cfg.Ship24.WebhookSecret), shipment.NewHandler(shipmentService))
	chat.Routes(api, authentication.TokenAuthentication, authorization.RequireAdministrator, chat.NewHandler(chatService))

	logger.Info("Listening", "port", cfg.Port, "basePath", cfg.BasePath)
	return r.Run(fmt.Sprintf(":%d", cfg.Port))
}
