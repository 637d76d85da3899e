package steps

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
	"gorm.io/gorm"

	"github.com/andrescamacho/xnova-go/internal/adapters/persistence"
	"github.com/andrescamacho/xnova-go/internal/infrastructure/database"
)

type persistenceContext struct {
	engine *EngineContext
	db     *gorm.DB
}

func (pc *persistenceContext) theEngineStoresPlayersInSQLite() error {
	db, err := database.NewTestConnection()
	if err != nil {
		return err
	}
	pc.db = db
	pc.connect()
	return nil
}

// connect points the engine at the database through a fresh gateway, as a
// restarted daemon would
func (pc *persistenceContext) connect() {
	repo := persistence.NewGormPlayerStateRepository(pc.db)
	pc.engine.gateway = persistence.NewGateway(repo, persistence.NewPlayerLocks())
	pc.engine.store = nil
	pc.engine.mediator = nil
}

func (pc *persistenceContext) theEngineRestarts() error {
	if pc.db == nil {
		return fmt.Errorf("engine is not backed by a database")
	}
	pc.connect()
	return nil
}

func (pc *persistenceContext) row(playerID string) (*persistence.PlayerStateModel, error) {
	var model persistence.PlayerStateModel
	if err := pc.db.Where("player_id = ?", playerID).First(&model).Error; err != nil {
		return nil, err
	}
	return &model, nil
}

func (pc *persistenceContext) theStoredVersionOfShouldBe(playerID string, version int) error {
	model, err := pc.row(playerID)
	if err != nil {
		return err
	}
	if model.Version != int64(version) {
		return fmt.Errorf("expected version %d, got %d", version, model.Version)
	}
	return nil
}

func (pc *persistenceContext) theStoredDocumentOfIsTamperedWith(playerID string) error {
	return pc.db.Model(&persistence.PlayerStateModel{}).
		Where("player_id = ?", playerID).
		Update("document", gorm.Expr("REPLACE(document, '\"amount\":', '\"amount\":9')")).Error
}

func (pc *persistenceContext) theStoredDocumentOfShouldRecordJobs(playerID string, n int) error {
	model, err := pc.row(playerID)
	if err != nil {
		return err
	}
	doc, err := persistence.DecodeDocument(model.Document, model.Checksum)
	if err != nil {
		return err
	}
	jobs := 0
	for _, queue := range doc.Queues {
		jobs += len(queue)
	}
	if jobs != n {
		return fmt.Errorf("expected %d stored jobs, got %d", n, jobs)
	}
	return nil
}

// InitializePersistenceScenario registers steps that run the engine on SQLite
func InitializePersistenceScenario(sc *godog.ScenarioContext, ec *EngineContext) {
	pc := &persistenceContext{engine: ec}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		pc.db = nil
		return ctx, nil
	})
	sc.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		if pc.db != nil {
			_ = database.Close(pc.db)
		}
		return ctx, nil
	})

	sc.Step(`^the engine stores players in SQLite$`, pc.theEngineStoresPlayersInSQLite)
	sc.Step(`^the engine restarts$`, pc.theEngineRestarts)
	sc.Step(`^the stored version of "([^"]*)" should be (\d+)$`, pc.theStoredVersionOfShouldBe)
	sc.Step(`^the stored document of "([^"]*)" is tampered with$`, pc.theStoredDocumentOfIsTamperedWith)
	sc.Step(`^the stored document of "([^"]*)" should record (\d+) jobs?$`, pc.theStoredDocumentOfShouldRecordJobs)
}
