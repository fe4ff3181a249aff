// Package httpserver manages server creation and api routing.
package httpserver

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/go-petr/pln-wallet/internal/middleware"
	"github.com/go-petr/pln-wallet/internal/nbpclient"
	"github.com/go-petr/pln-wallet/internal/ratedelivery"
	"github.com/go-petr/pln-wallet/internal/raterepo"
	"github.com/go-petr/pln-wallet/internal/rateservice"
	"github.com/go-petr/pln-wallet/internal/userdelivery"
	"github.com/go-petr/pln-wallet/internal/userrepo"
	"github.com/go-petr/pln-wallet/internal/userservice"
	"github.com/go-petr/pln-wallet/internal/valuationservice"
	"github.com/go-petr/pln-wallet/internal/walletdelivery"
	"github.com/go-petr/pln-wallet/internal/walletrepo"
	"github.com/go-petr/pln-wallet/internal/walletservice"
	"github.com/go-petr/pln-wallet/pkg/configpkg"
	"github.com/go-petr/pln-wallet/pkg/currencypkg"
	"github.com/go-petr/pln-wallet/pkg/tokenpkg"
)

// Server holds db and cache connections, handlers router and configuration.
type Server struct {
	DB     *sql.DB
	Redis  *redis.Client
	Engine *gin.Engine
	Config configpkg.Config
}

// ServeHTTP implements the http.Handler interface for the Server type.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Engine.ServeHTTP(w, r)
}

// New creates Server type with instantiated domains and routes.
func New(conn *sql.DB, rdb *redis.Client, logger zerolog.Logger, config configpkg.Config) (*Server, error) {
	userRepo := userrepo.NewRepoPGS(conn)
	walletRepo := walletrepo.NewRepoPGS(conn)
	rateRepo := raterepo.NewRepoRedis(rdb, config.RateCacheTTL)

	rateProvider := nbpclient.New(config.RateProviderURL, config.RateProviderTimeout)

	tokenMaker, err := tokenpkg.NewPasetoMaker(config.TokenSymmetricKey)
	if err != nil {
		return nil, errors.New("cannot create token maker")
	}

	userService := userservice.New(userRepo)
	walletService := walletservice.New(walletRepo)
	rateService := rateservice.New(rateRepo, rateProvider, config.RateCacheTTL)
	valuationService := valuationservice.New(walletService, rateService)

	userHandler := userdelivery.NewHandler(userService, tokenMaker, config.AccessTokenDuration)
	walletHandler := walletdelivery.NewHandler(walletService, valuationService)
	rateHandler := ratedelivery.NewHandler(rateService)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	engine.Use(middleware.RequestLogger(logger))
	engine.Use(gin.Recovery())

	engine.POST("/users", userHandler.Create)
	engine.POST("/users/login", userHandler.Login)

	authRoutes := engine.Group("/").Use(middleware.AuthMiddleware(tokenMaker))

	authRoutes.GET("/wallet", walletHandler.Get)
	authRoutes.POST("/wallet/add", walletHandler.Add)
	authRoutes.POST("/wallet/subtract", walletHandler.Subtract)

	authRoutes.GET("/rates", rateHandler.List)
	authRoutes.GET("/rates/:currency", rateHandler.Get)
	authRoutes.GET("/currencies", rateHandler.ListCurrencies)

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		err := v.RegisterValidation("currency", currencypkg.ValidCurrency)
		if err != nil {
			return nil, errors.New("cannot register currency validator")
		}
	}

	server := &Server{
		DB:     conn,
		Redis:  rdb,
		Engine: engine,
		Config: config,
	}

	return server, nil
}
