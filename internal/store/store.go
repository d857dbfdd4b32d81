// Package store is the data management layer: agents, clients and
// calls in a relational backend. Two interchangeable engines are
// supported, a networked MySQL server and an embedded SQLite file,
// selected by configuration.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"call-insights-go/internal/config"
	"call-insights-go/internal/logger"
	"call-insights-go/internal/types"
)

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

// Open connects to the configured backend and prepares the pool.
func Open(cfg config.DatabaseConfig, log *logger.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Backend {
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		// FK enforcement is off by default in SQLite.
		dialector = sqlite.Open(fmt.Sprintf("%s?_foreign_keys=on", cfg.Path))
	default:
		return nil, fmt.Errorf("unknown database backend %q", cfg.Backend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.Backend, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.WithField("backend", cfg.Backend).Info("connected to database")
	return &Store{db: db, log: log}, nil
}

// Migrate creates the call center schema tables.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&types.Agent{}, &types.Client{}, &types.Call{}); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	s.log.Info("database schema ready")
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertAgents writes agent rows in one transaction.
func (s *Store) InsertAgents(ctx context.Context, agents []types.Agent) error {
	if len(agents) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&agents).Error; err != nil {
		return wrapWriteErr("insert agents", err)
	}
	s.log.WithField("count", len(agents)).Info("agents inserted")
	return nil
}

// InsertClients writes client rows in one transaction.
func (s *Store) InsertClients(ctx context.Context, clients []types.Client) error {
	if len(clients) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(&clients).Error; err != nil {
		return wrapWriteErr("insert clients", err)
	}
	s.log.WithField("count", len(clients)).Info("clients inserted")
	return nil
}

// InsertCalls ingests new call rows and returns their audio file
// paths in insertion order, ready to hand to the analysis stages.
func (s *Store) InsertCalls(ctx context.Context, calls []types.Call) ([]string, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	if err := s.db.WithContext(ctx).Create(&calls).Error; err != nil {
		return nil, wrapWriteErr("insert calls", err)
	}
	audioFiles := make([]string, 0, len(calls))
	for _, c := range calls {
		audioFiles = append(audioFiles, c.AudioFile)
	}
	s.log.WithField("count", len(calls)).Info("calls inserted")
	return audioFiles, nil
}

func (s *Store) GetAgents(ctx context.Context) ([]types.Agent, error) {
	var agents []types.Agent
	if err := s.db.WithContext(ctx).Order("agent_id").Find(&agents).Error; err != nil {
		return nil, fmt.Errorf("get agents: %w", err)
	}
	return agents, nil
}

func (s *Store) GetClients(ctx context.Context) ([]types.Client, error) {
	var clients []types.Client
	if err := s.db.WithContext(ctx).Order("client_id").Find(&clients).Error; err != nil {
		return nil, fmt.Errorf("get clients: %w", err)
	}
	return clients, nil
}

// CallFilter narrows GetCalls. Zero values mean "any".
type CallFilter struct {
	Status   types.CallStatus
	AgentID  string
	ClientID string
}

func (s *Store) GetCalls(ctx context.Context, filter CallFilter) ([]types.Call, error) {
	q := s.db.WithContext(ctx).Model(&types.Call{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.AgentID != "" {
		q = q.Where("agent_id = ?", filter.AgentID)
	}
	if filter.ClientID != "" {
		q = q.Where("client_id = ?", filter.ClientID)
	}
	var calls []types.Call
	if err := q.Order("call_time").Find(&calls).Error; err != nil {
		return nil, fmt.Errorf("get calls: %w", err)
	}
	return calls, nil
}

// GetCall fetches a single call by id.
func (s *Store) GetCall(ctx context.Context, callID string) (*types.Call, error) {
	var call types.Call
	err := s.db.WithContext(ctx).First(&call, "call_id = ?", callID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("call %s: %w", callID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get call %s: %w", callID, err)
	}
	return &call, nil
}

func wrapWriteErr(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return fmt.Errorf("%s: %w: %v", op, ErrConstraint, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
