package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/sync/errgroup"

	outreachmod "github.com/athletereach/outreach/modules/outreach"
	"github.com/athletereach/outreach/pkg/blob"
	"github.com/athletereach/outreach/pkg/config"
	"github.com/athletereach/outreach/pkg/delivery"
	"github.com/athletereach/outreach/pkg/email"
	"github.com/athletereach/outreach/pkg/httpserver"
	"github.com/athletereach/outreach/pkg/limits"
	"github.com/athletereach/outreach/pkg/logger"
	"github.com/athletereach/outreach/pkg/pg"
	"github.com/athletereach/outreach/pkg/rawemail"
	"github.com/athletereach/outreach/pkg/redis"
	"github.com/athletereach/outreach/svc/dispatch"
	"github.com/athletereach/outreach/svc/outreach"

	"github.com/google/uuid"
)

type appConfig struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	// Delivery provider: "gmail" for the connected mailbox, "dev" to write
	// messages to disk.
	DeliveryMode       string `env:"DELIVERY_MODE" envDefault:"dev"`
	DevOutboxDir       string `env:"DEV_OUTBOX_DIR" envDefault:"./outbox"`
	GoogleClientID     string `env:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `env:"GOOGLE_CLIENT_SECRET"`
	GmailRefreshToken  string `env:"GMAIL_REFRESH_TOKEN"`

	SenderEmail  string `env:"OUTREACH_SENDER_EMAIL,required"`
	ReplyToEmail string `env:"OUTREACH_REPLY_TO_EMAIL"`
	BccSelf      bool   `env:"OUTREACH_BCC_SELF" envDefault:"true"`

	// Address that receives dispatch failure notices.
	NotifyEmail string `env:"OUTREACH_NOTIFY_EMAIL"`

	PlansPath   string `env:"LIMITS_PLANS_PATH" envDefault:"plans.yaml"`
	DefaultPlan string `env:"LIMITS_DEFAULT_PLAN" envDefault:"starter"`

	// Blob backend: "local" or "s3".
	BlobBackend    string `env:"BLOB_BACKEND" envDefault:"local"`
	AttachmentsDir string `env:"ATTACHMENTS_DIR" envDefault:"./attachments"`
	S3Bucket       string `env:"S3_BUCKET"`
	S3Region       string `env:"S3_REGION"`
	S3AccessKeyID  string `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey    string `env:"S3_SECRET_KEY"`
	S3Endpoint     string `env:"S3_ENDPOINT"`

	OpenAIAPIKey string `env:"OPENAI_API_KEY"`

	Workers int `env:"DISPATCH_WORKERS" envDefault:"2"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var cfg appConfig
	if err := config.Load(&cfg); err != nil {
		return err
	}

	log := logger.New(logger.WithEnvironment(cfg.Environment, "outreach"))
	logger.SetAsDefault(log)

	var pgCfg pg.Config
	if err := config.Load(&pgCfg); err != nil {
		return err
	}
	pool, err := pg.Connect(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	if err := pg.Migrate(ctx, pool, pgCfg, log); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	var redisCfg redis.Config
	if err := config.Load(&redisCfg); err != nil {
		return err
	}
	redisClient, err := redis.Connect(ctx, redisCfg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = redisClient.Close() }()

	limiter, err := limits.NewService(ctx,
		limits.NewFileSource(cfg.PlansPath),
		limits.NewRedisUsageStore(redisClient),
		func(context.Context, uuid.UUID) (string, error) { return cfg.DefaultPlan, nil },
	)
	if err != nil {
		return fmt.Errorf("limits: %w", err)
	}

	storage, err := newBlobStorage(ctx, cfg)
	if err != nil {
		return fmt.Errorf("blob storage: %w", err)
	}
	loader, err := blob.NewLoader(storage)
	if err != nil {
		return err
	}

	client, err := newDeliveryClient(ctx, cfg)
	if err != nil {
		return fmt.Errorf("delivery client: %w", err)
	}

	policy := rawemail.AddressPolicy{
		From:    cfg.SenderEmail,
		ReplyTo: cfg.ReplyToEmail,
		BccSelf: cfg.BccSelf,
	}

	repo := dispatch.NewPgRepository(pool)
	enqueuer, err := dispatch.NewEnqueuer(repo)
	if err != nil {
		return err
	}

	records := outreach.NewRecords(outreach.NewPgRecordRepository(pool))

	workerOpts := []dispatch.WorkerOption{
		dispatch.WithLogger(log),
		dispatch.WithAddressPolicy(policy),
		dispatch.WithContactRecorder(records),
		dispatch.WithAttachmentLoader(loader),
	}
	if notifier := newFailureNotifier(cfg, log); notifier != nil {
		workerOpts = append(workerOpts, dispatch.WithFailureNotifier(notifier))
	}

	svcOpts := []outreach.ServiceOption{
		outreach.WithDeliveryClient(client, policy),
		outreach.WithServiceLogger(log),
	}
	if cfg.OpenAIAPIKey != "" {
		svcOpts = append(svcOpts, outreach.WithPersonalizer(outreach.NewOpenAIPersonalizer(cfg.OpenAIAPIKey)))
	}

	svc, err := outreach.NewService(
		outreach.NewPgTemplateRepository(pool), records, limiter, enqueuer, svcOpts...)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Get("/health", httpserver.HealthCheckHandler(ctx, log,
		pg.Healthcheck(pool), redis.Healthcheck(redisClient)))
	r.Mount("/api/outreach", outreachmod.Router(outreachmod.RouterOptions{
		Service:     svc,
		Enqueuer:    enqueuer,
		Queue:       repo,
		Attachments: storage,
		Logger:      log,
	}))

	var httpCfg httpserver.Config
	if err := config.Load(&httpCfg); err != nil {
		return err
	}
	server := httpserver.NewFromConfig(httpCfg, httpserver.WithLogger(log))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(gctx, r)
	})
	for i := 0; i < cfg.Workers; i++ {
		worker, err := dispatch.NewWorker(repo, client, workerOpts...)
		if err != nil {
			return err
		}
		g.Go(worker.Run(gctx))
	}

	log.InfoContext(ctx, "outreach service started")
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func newBlobStorage(ctx context.Context, cfg appConfig) (blob.Storage, error) {
	switch cfg.BlobBackend {
	case "s3":
		return blob.NewS3Storage(ctx, blob.S3Config{
			Bucket:         cfg.S3Bucket,
			Region:         cfg.S3Region,
			AccessKeyID:    cfg.S3AccessKeyID,
			SecretKey:      cfg.S3SecretKey,
			Endpoint:       cfg.S3Endpoint,
			ForcePathStyle: cfg.S3Endpoint != "",
		})
	case "local":
		return blob.NewLocalStorage(cfg.AttachmentsDir, "/attachments/")
	default:
		return nil, fmt.Errorf("unknown blob backend %q", cfg.BlobBackend)
	}
}

func newDeliveryClient(ctx context.Context, cfg appConfig) (delivery.Client, error) {
	switch cfg.DeliveryMode {
	case "gmail":
		var gmailCfg delivery.GmailConfig
		if err := config.Load(&gmailCfg); err != nil {
			return nil, err
		}
		oauthCfg := &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			Endpoint:     google.Endpoint,
		}
		ts := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.GmailRefreshToken})
		return delivery.NewGmailClient(gmailCfg, ts)
	case "dev":
		return delivery.NewDevSender(cfg.DevOutboxDir), nil
	default:
		return nil, fmt.Errorf("unknown delivery mode %q", cfg.DeliveryMode)
	}
}

// newFailureNotifier builds the failure-notice mailer when a notify address
// is configured. Postmark is used when its tokens are present, the dev
// sender otherwise.
func newFailureNotifier(cfg appConfig, log *slog.Logger) *outreach.FailureMailer {
	if cfg.NotifyEmail == "" {
		return nil
	}

	var emailCfg email.Config
	if err := config.Load(&emailCfg); err != nil {
		log.Warn("failure notices disabled", logger.Error(err))
		return nil
	}

	var sender email.EmailSender
	if emailCfg.PostmarkServerToken != "" && emailCfg.PostmarkAccountToken != "" {
		s, err := email.NewPostmarkClient(emailCfg)
		if err != nil {
			log.Warn("failure notices disabled", logger.Error(err))
			return nil
		}
		sender = s
	} else {
		sender = email.NewDevSender(cfg.DevOutboxDir)
	}

	lookup := func(context.Context, uuid.UUID) (string, error) {
		return cfg.NotifyEmail, nil
	}
	return outreach.NewFailureMailer(sender, lookup, log)
}
