package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"reminder/internal/cache"
	"reminder/internal/config"
	"reminder/internal/repo"
	"reminder/internal/scheduler"
	"reminder/internal/service"
)

// reminderJob is the name of the recurring pass that promotes due todos.
const reminderJob = "reminder-check"

type App struct {
	cfg    config.Config
	db     *pgxpool.Pool // nil when the in-memory store is used
	redis  *redis.Client // nil when the listing cache is disabled
	sched  *scheduler.Scheduler
	todos  *service.TodoService
	router *gin.Engine
}

func New(cfg config.Config) (*App, error) {
	a := &App{cfg: cfg, sched: scheduler.New()}

	var (
		todoRepo repo.TodoRepo
		userRepo repo.UserRepo
	)
	if cfg.Store.DSN != "" {
		db, err := newPostgres(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		a.db = db
		if err := runMigrations(cfg.Store.DSN, cfg.Store.MigrationsDir); err != nil {
			a.db.Close()
			return nil, err
		}
		todoRepo = repo.NewPGTodoRepo(db)
		userRepo = repo.NewPGUserRepo(db)
	} else {
		todoRepo = repo.NewMemoryTodoRepo()
		userRepo = repo.NewMemoryUserRepo()
	}

	var todoCache *cache.TodoCache
	if cfg.Redis.Addr != "" {
		rdb, err := newRedis(cfg.Redis)
		if err != nil {
			if a.db != nil {
				a.db.Close()
			}
			return nil, err
		}
		a.redis = rdb
		todoCache = cache.NewTodoCache(rdb, cfg.Redis.DefaultTTL.Duration())
	}

	a.todos = service.NewTodoService(todoRepo, userRepo, todoCache)
	users := service.NewUserService(userRepo)
	a.router = newRouter(cfg, a.todos, users)
	return a, nil
}

func (a *App) Router() *gin.Engine {
	return a.router
}

// StartReminderJob registers the recurring reminder pass on the scheduler.
func (a *App) StartReminderJob() error {
	return a.sched.ScheduleRecurring(reminderJob, a.cfg.Reminder.Interval.Duration(), func(ctx context.Context) error {
		now := time.Now().UTC()
		n, err := a.todos.ProcessReminders(ctx, now)
		if err != nil {
			return err
		}
		if n > 0 {
			log.Printf("reminder job: promoted %d todo(s) to REMINDER_DUE", n)
		}
		return nil
	})
}

func (a *App) Close(ctx context.Context) error {
	_ = ctx
	a.sched.Close()
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
	return nil
}

func newPostgres(dsn string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pg parse config: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnIdleTime = 5 * time.Minute
	cfg.MaxConnLifetime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("pg connect: %w", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}

	return pool, nil
}

func newRedis(cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return rdb, nil
}

func runMigrations(dsn string, migrationsDir string) error {
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return fmt.Errorf("goose open db: %w", err)
	}
	defer db.Close()

	if err := goose.Up(db, migrationsDir); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

func newRouter(cfg config.Config, todos *service.TodoService, users *service.UserService) *gin.Engine {
	r := gin.Default()

	r.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS", "HEAD"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders: []string{"Content-Length", "Content-Type"},
		MaxAge:        12 * time.Hour,
	}))

	Setup(r, cfg, todos, users)
	return r
}
