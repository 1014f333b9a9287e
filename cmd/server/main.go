package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/obrentanasic/drs-projekat/internal/application/auth"
	"github.com/obrentanasic/drs-projekat/internal/application/ports"
	appquiz "github.com/obrentanasic/drs-projekat/internal/application/quiz"
	"github.com/obrentanasic/drs-projekat/internal/application/retention"
	appuser "github.com/obrentanasic/drs-projekat/internal/application/user"
	"github.com/obrentanasic/drs-projekat/internal/config"
	"github.com/obrentanasic/drs-projekat/internal/domain"
	infraauth "github.com/obrentanasic/drs-projekat/internal/infrastructure/auth"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/cache"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/email"
	httprouter "github.com/obrentanasic/drs-projekat/internal/infrastructure/http"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/http/handlers"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/http/middleware"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/persistence/postgres"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/queue"
	"github.com/obrentanasic/drs-projekat/internal/infrastructure/security"
	"github.com/obrentanasic/drs-projekat/internal/throttle"
)

// loginAttemptRetentionDays bounds how long the audit trail is kept.
const loginAttemptRetentionDays = 90

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	healthHandler := handlers.NewHealthHandler(pool, redisClient)

	userRepo := postgres.NewUserRepository(pool)
	quizRepo := postgres.NewQuizRepository(pool)
	resultRepo := postgres.NewResultRepository(pool)
	submissionRepo := postgres.NewSubmissionRepository(pool)
	attemptRepo := postgres.NewLoginAttemptRepository(pool)

	var mailer ports.Mailer
	if cfg.SMTP.Host != "" {
		mailer = email.NewSMTPMailer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)
	} else {
		mailer = email.NewLogMailer(log)
	}

	var taskEnqueuer ports.TaskEnqueuer
	var asynqWorker *queue.Worker
	if redisClient != nil {
		redisOpt, _ := redis.ParseURL(cfg.Redis.URL)
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqEnq, err := queue.NewAsynqEnqueuer(asynqOpt, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create asynq enqueuer")
		}
		defer asynqEnq.Close()
		taskEnqueuer = asynqEnq
		asynqWorker = queue.NewWorker(asynqOpt, submissionRepo, quizRepo, resultRepo, mailer, log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		log.Warn().Msg("redis unavailable; submissions will not be scored until it returns")
		taskEnqueuer = queue.NewNoopEnqueuer()
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	pemBytes, err := cfg.LoadJWTPrivateKey()
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT private key")
	}
	privateKey, err := infraauth.LoadRSAPrivateKeyFromPEM(pemBytes)
	if err != nil {
		log.Fatal().Err(err).Msg("parse JWT private key")
	}
	issuer := infraauth.NewTokenIssuer(privateKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	// The throttle degrades to an in-process store when Redis is down so
	// lockouts keep working on a single instance.
	var throttleStore throttle.Store
	var blacklist ports.TokenBlacklist
	if redisClient != nil {
		throttleStore = throttle.NewFailoverStore(throttle.NewRedisStore(redisClient), log)
		blacklist = cache.NewRedisBlacklist(redisClient)
	} else {
		throttleStore = throttle.NewMemoryStore()
		blacklist = cache.NewMemoryBlacklist()
	}
	throttleSvc := throttle.NewService(throttleStore, throttle.Config{
		MaxAttempts:    cfg.Throttle.MaxAttempts,
		BlockDuration:  cfg.Throttle.BlockDuration,
		WindowDuration: cfg.Throttle.WindowDuration,
	})

	if err := seedAdmin(ctx, userRepo, hasher, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("seed admin account")
	}

	registerUC := auth.NewRegisterUser(userRepo, hasher)
	loginUC := auth.NewLogin(userRepo, hasher, issuer, throttleSvc, attemptRepo, log, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	refreshUC := auth.NewRefresh(userRepo, issuer, blacklist, cfg.JWT.AccessExpiry, cfg.JWT.RefreshExpiry)
	logoutUC := auth.NewLogout(issuer, blacklist)

	getProfileUC := appuser.NewGetProfile(userRepo)
	updateProfileUC := appuser.NewUpdateProfile(userRepo)
	changePasswordUC := appuser.NewChangePassword(userRepo, hasher)
	listUsersUC := appuser.NewListUsers(userRepo)
	updateUserUC := appuser.NewUpdateUser(userRepo, taskEnqueuer, log)
	deleteUserUC := appuser.NewDeleteUser(userRepo)
	blockUserUC := appuser.NewBlockUser(userRepo)
	userStatsUC := appuser.NewGetUserStats(userRepo)

	createQuizUC := appquiz.NewCreateQuiz(quizRepo)
	updateQuizUC := appquiz.NewUpdateQuiz(quizRepo)
	listQuizzesUC := appquiz.NewListQuizzes(quizRepo)
	getForPlayUC := appquiz.NewGetQuizForPlay(quizRepo)
	reviewQuizUC := appquiz.NewReviewQuiz(quizRepo)
	deleteQuizUC := appquiz.NewDeleteQuiz(quizRepo)
	submitQuizUC := appquiz.NewSubmitQuiz(quizRepo, submissionRepo, taskEnqueuer)
	leaderboardUC := appquiz.NewGetLeaderboard(quizRepo, resultRepo)
	myResultsUC := appquiz.NewGetMyResults(resultRepo)
	statisticsUC := appquiz.NewGetQuizStatistics(quizRepo, resultRepo)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.IsDevelopment()))
	requireJWT := middleware.NewAuthValidator(issuer, blacklist).Handler

	authHandler := handlers.NewAuthHandler(registerUC, loginUC, refreshUC, logoutUC, log)
	usersHandler := handlers.NewUsersHandler(getProfileUC, updateProfileUC, changePasswordUC, log)
	quizHandler := handlers.NewQuizHandler(createQuizUC, updateQuizUC, listQuizzesUC, getForPlayUC, reviewQuizUC, deleteQuizUC, submitQuizUC, leaderboardUC, myResultsUC, statisticsUC, userRepo, log)
	adminHandler := handlers.NewAdminHandler(listUsersUC, updateUserUC, deleteUserUC, blockUserUC, userStatsUC, attemptRepo, log)

	router := httprouter.NewRouter(httprouter.RouterConfig{
		AuthHandler:   authHandler,
		HealthHandler: healthHandler,
		UsersHandler:  usersHandler,
		QuizHandler:   quizHandler,
		AdminHandler:  adminHandler,
		RequireJWT:    requireJWT,
		Log:           log,
		Secure:        secureMiddleware,
		CORS:          middleware.CORS(cfg.Server.CORSOrigins, nil, nil),
		IPRateLimit:   ipLimit,
		Metrics:       true,
	})

	purgeCtx, stopPurge := context.WithCancel(ctx)
	defer stopPurge()
	go purgeLoginAttempts(purgeCtx, attemptRepo, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}

// seedAdmin creates the default administrator account on first boot. Existing
// accounts are left alone so a changed env password does not overwrite one
// set through the API.
func seedAdmin(ctx context.Context, users ports.UserRepository, hasher ports.PasswordHasher, cfg *config.Config, log zerolog.Logger) error {
	if cfg.Admin.Password == "" {
		log.Warn().Msg("ADMIN_PASSWORD not set; skipping admin seed")
		return nil
	}
	email := auth.SanitizeEmail(cfg.Admin.Email)
	existing, err := users.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}
	hash, err := hasher.Hash(cfg.Admin.Password)
	if err != nil {
		return err
	}
	now := time.Now()
	admin := &domain.User{
		ID:           domain.NewUserID(uuid.New()),
		FirstName:    "Admin",
		LastName:     "Admin",
		Email:        email,
		PasswordHash: hash,
		DateOfBirth:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
		Role:         domain.RoleAdministrator,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := users.Create(ctx, admin); err != nil {
		return err
	}
	log.Info().Str("email", email).Msg("seeded administrator account")
	return nil
}

// purgeLoginAttempts trims the audit trail once a day.
func purgeLoginAttempts(ctx context.Context, attempts ports.LoginAttemptRepository, log zerolog.Logger) {
	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := retention.RunPurgeLoginAttempts(ctx, attempts, loginAttemptRetentionDays)
			if err != nil {
				log.Warn().Err(err).Msg("purge login attempts failed")
				continue
			}
			if deleted > 0 {
				log.Info().Int64("deleted", deleted).Msg("purged old login attempts")
			}
		}
	}
}
