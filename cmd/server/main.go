package main

import (
	"database/sql"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "github.com/lib/pq"

	"github.com/business-nexus/nexus/pkg/configpkg"
	"github.com/business-nexus/nexus/pkg/dbpkg"

	"github.com/business-nexus/nexus/internal/accountdelivery"
	"github.com/business-nexus/nexus/internal/accountrepo"
	"github.com/business-nexus/nexus/internal/accountservice"
	"github.com/business-nexus/nexus/internal/authdelivery"
	"github.com/business-nexus/nexus/internal/authservice"
	"github.com/business-nexus/nexus/internal/events"
	"github.com/business-nexus/nexus/internal/ledgerdelivery"
	"github.com/business-nexus/nexus/internal/ledgerrepo"
	"github.com/business-nexus/nexus/internal/ledgerservice"
	"github.com/business-nexus/nexus/internal/middleware"
	"github.com/business-nexus/nexus/internal/otprepo"
	"github.com/business-nexus/nexus/internal/profileservice"
	"github.com/business-nexus/nexus/internal/rediscache"
	"github.com/business-nexus/nexus/internal/sessionrepo"
	"github.com/business-nexus/nexus/internal/sessionservice"
)

// Account snapshots are invalidated on every write, so a short TTL only
// bounds staleness after missed invalidations.
const accountCacheTTL = time.Minute

func main() {
	config, err := configpkg.Load("./configs")
	if err != nil {
		log.Fatal().Err(err).Msg("cannot load config")
	}

	logger := middleware.CreateLogger(config)

	conn, err := dbpkg.Setup(config.DBDriver, config.DBSource)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot connect to db")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: config.RedisAddress})

	server, err := createServer(conn, redisClient, logger, config)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot create server")
	}

	err = server.Run(config.ServerAddress)
	if err != nil {
		logger.Fatal().Err(err).Msg("cannot start server")
	}
}

func createServer(conn *sql.DB, redisClient *redis.Client, logger zerolog.Logger, config configpkg.Config) (*gin.Engine, error) {
	accountRepo := accountrepo.NewRepoPGS(conn)
	ledgerRepo := ledgerrepo.NewRepoPGS(conn)
	sessionRepo := sessionrepo.NewRepoPGS(conn)
	otpRepo := otprepo.NewRepoRedis(redisClient, config.OTPDuration, config.ResetTokenDuration)

	accountCache := rediscache.New(redisClient, accountCacheTTL)

	var publisher events.Publisher = events.NopPublisher{}
	if len(config.KafkaBrokers) > 0 {
		publisher = events.NewKafkaPublisher(config.KafkaBrokers)
	}

	accountService := accountservice.New(accountRepo, accountCache)
	profileService := profileservice.New(accountRepo, accountCache)
	ledgerService := ledgerservice.New(ledgerRepo, accountService, publisher, accountCache)
	authService := authservice.New(accountRepo, otpRepo)

	sessionService, err := sessionservice.New(sessionRepo, config)
	if err != nil {
		return nil, errors.New("cannot initialize session service")
	}

	authHandler := authdelivery.NewHandler(authService, sessionService)
	accountHandler := accountdelivery.NewHandler(accountService, profileService)
	ledgerHandler := ledgerdelivery.NewHandler(ledgerService)

	gin.SetMode(gin.ReleaseMode)
	server := gin.New()

	server.Use(middleware.RequestLogger(logger))
	server.Use(gin.Recovery())

	server.POST("/auth/register", authHandler.Register)
	server.POST("/auth/login", authHandler.Login)
	server.POST("/auth/otp/verify", authHandler.VerifyOTP)
	server.POST("/auth/password/forgot", authHandler.ForgotPassword)
	server.POST("/auth/password/reset", authHandler.ResetPassword)
	server.POST("/sessions/renew", authHandler.RenewAccessToken)

	authRoutes := server.Group("/").Use(middleware.AuthMiddleware(sessionService.TokenMaker))

	authRoutes.GET("/accounts/:id", accountHandler.Get)
	authRoutes.PATCH("/accounts/:id/profile", accountHandler.UpdateProfile)

	authRoutes.POST("/accounts/:id/deposit", ledgerHandler.Deposit)
	authRoutes.POST("/accounts/:id/withdraw", ledgerHandler.Withdraw)
	authRoutes.POST("/accounts/:id/transfers", ledgerHandler.Transfer)
	authRoutes.GET("/accounts/:id/transactions", ledgerHandler.ListTransactions)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("role", authdelivery.ValidRole)
		if err != nil {
			return nil, errors.New("cannot register role validator")
		}
	}

	return server, nil
}
