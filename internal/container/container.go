// Package container wires the application together: database, repositories,
// dispatcher, progression engine, services and side-effect handlers, with
// ordered startup and reverse-order teardown.
package container

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/yashturmbekar/pmcrms/internal/application/assignment"
	"github.com/yashturmbekar/pmcrms/internal/application/directory"
	"github.com/yashturmbekar/pmcrms/internal/application/dispatcher"
	"github.com/yashturmbekar/pmcrms/internal/application/handler"
	"github.com/yashturmbekar/pmcrms/internal/application/port"
	"github.com/yashturmbekar/pmcrms/internal/application/service"
	"github.com/yashturmbekar/pmcrms/internal/application/workflow"
	"github.com/yashturmbekar/pmcrms/internal/config"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/certificate"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/export"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/notify"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/persistence/repository"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/persistence/sqlite"
	"github.com/yashturmbekar/pmcrms/internal/infrastructure/worker"
	"github.com/yashturmbekar/pmcrms/pkg/database"
)

// RepositoryBundle groups all repositories for convenient access
type RepositoryBundle struct {
	Applications port.ApplicationRepository
	Officers     port.OfficerRepository
	Assignments  port.AssignmentHistoryRepository
	Progressions port.ProgressionHistoryRepository
	Certificates port.CertificateRepository
}

// ServiceBundle groups all application services
type ServiceBundle struct {
	Applications service.ApplicationService
	Actions      service.ActionService
	Queries      service.QueryService
	Officers     service.OfficerService
}

// Container manages application dependencies and lifecycle
type Container struct {
	config *config.Config
	logger *zap.Logger

	sqlDB        *sql.DB
	db           *sqlite.DB
	repositories *RepositoryBundle

	dispatcher dispatcher.Dispatcher
	engine     workflow.Engine
	services   *ServiceBundle
	exporter   *export.RegisterExporter
	workers    *worker.Manager

	mu     sync.Mutex
	ready  atomic.Bool
	closed atomic.Bool
}

// New creates a container from configuration. Call Start to initialize.
func New(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &Container{
		config: cfg,
		logger: logger,
	}, nil
}

// Start initializes all components in dependency order: database and
// repositories, then dispatcher and engine, then services and side effects.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container has been closed")
	}
	if c.ready.Load() {
		return fmt.Errorf("container already started")
	}

	if err := c.initDatabase(); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	c.initDispatcherAndEngine()
	c.initServices()
	c.registerSideEffects()

	if err := c.startWorkers(ctx); err != nil {
		return fmt.Errorf("failed to start workers: %w", err)
	}

	c.ready.Store(true)
	c.logger.Info("Container started")
	return nil
}

// Close shuts down components in reverse order. The dispatcher drains its
// in-flight handlers before the database closes under them.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed.Load() {
		return fmt.Errorf("container already closed")
	}
	c.closed.Store(true)

	var errs []error
	if c.workers != nil {
		if err := c.workers.StopAll(); err != nil {
			errs = append(errs, fmt.Errorf("stop workers: %w", err))
		}
	}
	if c.dispatcher != nil {
		if err := c.dispatcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close dispatcher: %w", err))
		}
	}
	if c.sqlDB != nil {
		if err := c.sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close: %v", errs)
	}
	c.logger.Info("Container closed")
	return nil
}

func (c *Container) initDatabase() error {
	sqlDB, err := database.Open(database.Config{
		Path:            c.config.Database.Path,
		MaxOpenConns:    c.config.Database.MaxOpenConns,
		MaxIdleConns:    c.config.Database.MaxIdleConns,
		ConnMaxLifetime: c.config.Database.ConnMaxLifetime,
	}, c.logger)
	if err != nil {
		return err
	}

	migrator := database.NewMigrator(sqlDB, c.logger)
	if err := migrator.Run(c.config.Database.MigrationsDir); err != nil {
		sqlDB.Close()
		return err
	}

	c.sqlDB = sqlDB
	c.db = sqlite.NewDB(sqlDB, c.logger)
	c.repositories = &RepositoryBundle{
		Applications: repository.NewApplicationRepository(sqlDB, c.logger),
		Officers:     repository.NewOfficerRepository(sqlDB, c.logger),
		Assignments:  repository.NewAssignmentHistoryRepository(sqlDB, c.logger),
		Progressions: repository.NewProgressionHistoryRepository(sqlDB, c.logger),
		Certificates: repository.NewCertificateRepository(sqlDB, c.logger),
	}
	return nil
}

func (c *Container) initDispatcherAndEngine() {
	c.dispatcher = dispatcher.New(c.logger)

	officerDirectory := directory.New(c.repositories.Officers)
	selector := assignment.NewSelector(
		officerDirectory,
		c.repositories.Applications,
		c.repositories.Assignments,
		c.logger,
	)

	c.engine = workflow.NewEngine(
		c.repositories.Applications,
		c.repositories.Assignments,
		c.repositories.Progressions,
		selector,
		c.db,
		c.logger,
		workflow.WithDispatcher(c.dispatcher),
		workflow.WithStrategy(c.config.Strategy()),
		workflow.WithResubmitPolicy(c.config.Resubmit()),
	)
}

func (c *Container) initServices() {
	c.services = &ServiceBundle{
		Applications: service.NewApplicationService(c.repositories.Applications, c.engine, c.logger),
		Actions:      service.NewActionService(c.repositories.Applications, c.engine, c.logger),
		Queries: service.NewQueryService(
			c.repositories.Applications,
			c.repositories.Officers,
			c.repositories.Assignments,
			c.repositories.Progressions,
		),
		Officers: service.NewOfficerService(c.repositories.Officers, c.repositories.Applications, c.logger),
	}
	c.exporter = export.NewRegisterExporter(c.repositories.Applications, c.logger)
}

func (c *Container) registerSideEffects() {
	var notifier port.StageNotifier
	if c.config.SMTP.Host != "" {
		notifier = notify.NewSMTPNotifier(notify.Config{
			Host:     c.config.SMTP.Host,
			Port:     c.config.SMTP.Port,
			Username: c.config.SMTP.Username,
			Password: c.config.SMTP.Password,
			From:     c.config.SMTP.From,
		}, c.logger)
	} else {
		c.logger.Warn("SMTP host not configured, stage notifications disabled")
	}

	docs := certificate.NewGenerator(c.repositories.Certificates, c.config.Certificate.OutputDir, c.logger)

	effects := handler.NewSideEffects(c.repositories.Applications, notifier, docs, c.logger)
	effects.Register(c.dispatcher)
}

func (c *Container) startWorkers(ctx context.Context) error {
	if c.config.Workflow.RetryInterval <= 0 {
		c.logger.Info("Assignment retry worker disabled")
		return nil
	}

	c.workers = worker.NewManager(c.logger)
	c.workers.Register(worker.NewAssignmentRetryWorker(
		worker.RetryConfig{
			PollInterval: c.config.Workflow.RetryInterval,
			BatchSize:    c.config.Workflow.RetryBatchSize,
		},
		c.repositories.Applications,
		c.engine,
		c.logger,
	))
	return c.workers.StartAll(ctx)
}

// Services returns the application service bundle
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Repositories returns the repository bundle
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Engine returns the progression engine
func (c *Container) Engine() workflow.Engine {
	return c.engine
}

// Exporter returns the register exporter
func (c *Container) Exporter() *export.RegisterExporter {
	return c.exporter
}
