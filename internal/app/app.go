// Package app assembles the assistant from configuration. The API server
// and the queue worker share one wiring path so a payload processed
// inline behaves exactly like one drained from the queue.
package app

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/freightdesk/internal/agents"
	"github.com/ignite/freightdesk/internal/config"
	"github.com/ignite/freightdesk/internal/containers"
	"github.com/ignite/freightdesk/internal/forwarders"
	"github.com/ignite/freightdesk/internal/llm"
	"github.com/ignite/freightdesk/internal/market"
	"github.com/ignite/freightdesk/internal/notify"
	"github.com/ignite/freightdesk/internal/outbound"
	"github.com/ignite/freightdesk/internal/pkg/logger"
	"github.com/ignite/freightdesk/internal/ports"
	"github.com/ignite/freightdesk/internal/queue"
	"github.com/ignite/freightdesk/internal/rates"
	"github.com/ignite/freightdesk/internal/responder"
	"github.com/ignite/freightdesk/internal/salesteam"
	"github.com/ignite/freightdesk/internal/threadstore"
	"github.com/ignite/freightdesk/internal/workflow"
)

// App holds the assembled components a binary needs.
type App struct {
	Config       *config.Config
	Store        threadstore.Store
	Orchestrator *workflow.Orchestrator
	Redis        *redis.Client // nil when the queue is disabled
	Queue        *queue.Queue  // nil when the queue is disabled
	LockDB       *sql.DB       // advisory-lock fallback, nil unless configured
	ratesStore   *market.RatesStore
}

// Build wires every component from the configuration.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg}

	completer, err := buildCompleter(ctx, cfg)
	if err != nil {
		return nil, err
	}
	registry := agents.NewLLMRegistry(completer)

	dir := loadPorts(ctx, cfg.Ports)
	registry.PortLookup = dir.Collaborator()
	registry.ContainerStandardizer = containers.Collaborator()

	if cfg.Market.Snowflake.Enabled {
		store, err := market.NewRatesStore(market.WarehouseConfig{
			Account:   cfg.Market.Snowflake.Account,
			User:      cfg.Market.Snowflake.User,
			Password:  cfg.Market.Snowflake.Password,
			Database:  cfg.Market.Snowflake.Database,
			Schema:    cfg.Market.Snowflake.Schema,
			Warehouse: cfg.Market.Snowflake.Warehouse,
		})
		if err != nil {
			return nil, fmt.Errorf("app: connecting rates warehouse: %w", err)
		}
		a.ratesStore = store
		registry.RateRecommender = rates.NewRecommender(store).Collaborator()
	}

	gen, err := responder.New(responder.WithTeamName(cfg.SES.FromName))
	if err != nil {
		return nil, fmt.Errorf("app: compiling response templates: %w", err)
	}
	registry.ClarificationGen = gen.Clarification()
	registry.ConfirmationGen = gen.Confirmation()
	registry.AcknowledgmentGen = gen.Acknowledgment()
	registry.ConfirmationAckGen = gen.ConfirmationAck()
	registry.QuoteGen = gen.Quote()

	var delivery *outbound.SESSender
	if cfg.SES.Enabled {
		delivery, err = outbound.NewSESSender(ctx,
			cfg.SES.AccessKey, cfg.SES.SecretKey, cfg.SES.Region, cfg.SES.FromName)
		if err != nil {
			return nil, fmt.Errorf("app: building SES sender: %w", err)
		}
	}

	var notifyOpts []notify.Option
	if len(cfg.Market.NewsFeeds) > 0 {
		notifyOpts = append(notifyOpts, notify.WithNews(
			market.NewNewsFeed(cfg.Market.NewsFeeds, cfg.Market.NewsLimit)))
	}
	var notifyDelivery notify.Deliverer
	if delivery != nil {
		notifyDelivery = delivery
	}
	notifier := notify.New(notifyDelivery, cfg.SES.SalesDesk, cfg.SES.FromAddress, notifyOpts...)
	registry.SalesNotifier = notifier.Collaborator()

	a.Store, err = buildStore(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	opts := []workflow.Option{
		workflow.WithSalesTeam(loadSalesTeam(cfg.SalesTeam)),
		workflow.WithForwarders(loadForwarders(cfg.Forwarders)),
		workflow.WithFromAddress(cfg.SES.FromAddress),
	}
	if delivery != nil {
		opts = append(opts, workflow.WithDelivery(delivery))
	}
	a.Orchestrator, err = workflow.New(a.Store, registry, opts...)
	if err != nil {
		return nil, fmt.Errorf("app: building orchestrator: %w", err)
	}

	if cfg.Redis.Enabled {
		a.Redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("app: connecting redis at %s: %w", cfg.Redis.Addr, err)
		}
		a.Queue = queue.New(a.Redis, cfg.Redis.QueueKey)
	} else if cfg.Postgres.DSN != "" {
		// No Redis means no queue; inline processing still takes a
		// cross-process advisory lock per thread when a DSN is configured.
		a.LockDB, err = sql.Open("postgres", cfg.Postgres.DSN)
		if err != nil {
			return nil, fmt.Errorf("app: opening lock database: %w", err)
		}
		if err := a.LockDB.PingContext(ctx); err != nil {
			return nil, fmt.Errorf("app: pinging lock database: %w", err)
		}
	}

	return a, nil
}

// Close releases external connections.
func (a *App) Close() {
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			logger.Warn("app: closing redis", "error", err.Error())
		}
	}
	if a.LockDB != nil {
		if err := a.LockDB.Close(); err != nil {
			logger.Warn("app: closing lock database", "error", err.Error())
		}
	}
	if a.ratesStore != nil {
		if err := a.ratesStore.Close(); err != nil {
			logger.Warn("app: closing rates warehouse", "error", err.Error())
		}
	}
}

func buildCompleter(ctx context.Context, cfg *config.Config) (llm.Completer, error) {
	if cfg.Bedrock.Enabled {
		client, err := llm.NewBedrockClient(ctx, cfg.Bedrock.ModelID, cfg.Bedrock.Region)
		if err != nil {
			return nil, fmt.Errorf("app: building bedrock client: %w", err)
		}
		return client, nil
	}
	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("app: no model configured: set OPENAI_API_KEY or enable bedrock")
	}
	var opts []llm.ClientOption
	if cfg.OpenAI.BaseURL != "" {
		opts = append(opts, llm.WithBaseURL(cfg.OpenAI.BaseURL))
	}
	return llm.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, opts...), nil
}

func buildStore(ctx context.Context, cfg config.StorageConfig) (threadstore.Store, error) {
	switch cfg.Backend {
	case "memory":
		return threadstore.NewMemoryStore(), nil
	case "dynamodb":
		store, err := threadstore.NewDynamoStore(ctx, cfg.DynamoTable, cfg.Region, cfg.AWSProfile)
		if err != nil {
			return nil, fmt.Errorf("app: building dynamo store: %w", err)
		}
		return store, nil
	case "file", "":
		store, err := threadstore.NewFileStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("app: building file store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("app: unknown storage backend %q", cfg.Backend)
	}
}

// loadPorts resolves the port directory from the configured source.
// Failures fall back to the built-in directory so a bad file never keeps
// the assistant from answering mail.
func loadPorts(ctx context.Context, cfg config.PortsConfig) *ports.Directory {
	if cfg.File != "" {
		dir, err := ports.LoadFile(cfg.File)
		if err == nil {
			return dir
		}
		logger.Warn("app: loading port directory file, using builtin", "path", cfg.File, "error", err.Error())
	}
	if cfg.S3Bucket != "" {
		dir, err := ports.LoadS3(ctx, cfg.S3Bucket, cfg.S3Key, cfg.S3Region)
		if err == nil {
			return dir
		}
		logger.Warn("app: loading port directory from s3, using builtin",
			"bucket", cfg.S3Bucket, "key", cfg.S3Key, "error", err.Error())
	}
	return ports.Builtin()
}

func loadForwarders(cfg config.ForwardersConfig) *forwarders.Registry {
	if cfg.File != "" {
		reg, err := forwarders.LoadFile(cfg.File)
		if err == nil {
			return reg
		}
		logger.Warn("app: loading forwarder roster, using default", "path", cfg.File, "error", err.Error())
	}
	return forwarders.Default()
}

func loadSalesTeam(cfg config.SalesTeamConfig) *salesteam.Roster {
	if len(cfg.Members) == 0 {
		return salesteam.Default()
	}
	members := make([]salesteam.Member, 0, len(cfg.Members))
	for _, m := range cfg.Members {
		members = append(members, salesteam.Member{
			Name:    m.Name,
			Email:   m.Email,
			Regions: m.Regions,
		})
	}
	return salesteam.NewRoster(members)
}
