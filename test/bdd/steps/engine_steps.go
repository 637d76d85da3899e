package steps

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/cucumber/godog"

	"github.com/andrescamacho/xnova-go/internal/application/engine"
	"github.com/andrescamacho/xnova-go/internal/application/engine/commands"
	"github.com/andrescamacho/xnova-go/internal/application/engine/queries"
	"github.com/andrescamacho/xnova-go/internal/application/mediator"
	"github.com/andrescamacho/xnova-go/internal/application/setup"
	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
	"github.com/andrescamacho/xnova-go/test/helpers"
)

// EngineContext is the state shared by all engine scenarios
type EngineContext struct {
	catalog  *colony.Catalog
	clock    *shared.MockClock
	options  engine.Options
	gateway  colony.PersistenceGateway
	store    *helpers.MemoryStore
	mediator mediator.Mediator

	response mediator.Response
	err      error
	errs     []error

	before helpers.StoreStats
}

var scenarioStart = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func (ec *EngineContext) reset() {
	ec.catalog = nil
	ec.clock = shared.NewMockClock(scenarioStart)
	ec.options = engine.DefaultOptions()
	ec.gateway, ec.store = helpers.NewMemoryGateway()
	ec.mediator = nil
	ec.response = nil
	ec.err = nil
	ec.errs = nil
	ec.before = helpers.StoreStats{}
}

// engine builds the mediator on first use so Given steps can still change
// options
func (ec *EngineContext) engine() (mediator.Mediator, error) {
	if ec.mediator != nil {
		return ec.mediator, nil
	}
	if ec.catalog == nil {
		return nil, fmt.Errorf("no universe configured")
	}
	m, err := setup.NewHandlerRegistry(ec.gateway, ec.catalog, ec.clock, ec.options, nil).CreateConfiguredMediator()
	if err != nil {
		return nil, err
	}
	ec.mediator = m
	return m, nil
}

// send records the outcome of request, snapshotting store counters first
func (ec *EngineContext) send(request mediator.Request) error {
	m, err := ec.engine()
	if err != nil {
		return err
	}
	if ec.store != nil {
		ec.before = ec.store.Stats()
	}
	ec.response, ec.err = m.Send(context.Background(), request)
	return nil
}

// query runs a read whose failure fails the step
func (ec *EngineContext) query(request mediator.Request) (mediator.Response, error) {
	m, err := ec.engine()
	if err != nil {
		return nil, err
	}
	return m.Send(context.Background(), request)
}

func (ec *EngineContext) status(playerID string) (*engine.StatusResult, error) {
	response, err := ec.query(&queries.GetStatusQuery{PlayerID: playerID})
	if err != nil {
		return nil, err
	}
	return response.(*engine.StatusResult), nil
}

// Given steps

func (ec *EngineContext) theSmallTestUniverse() error {
	catalog, err := helpers.ParseSmallCatalog()
	if err != nil {
		return err
	}
	ec.catalog = catalog
	return nil
}

func (ec *EngineContext) theClassicUniverse() error {
	ec.catalog = colony.DefaultCatalog()
	return nil
}

func (ec *EngineContext) newPlayersStartWithMetal(metal int) error {
	ec.options.StartingResources = colony.Cost{colony.Metal: float64(metal)}
	return nil
}

func (ec *EngineContext) cancelledJobsRefundPercent(percent int) error {
	ec.options.Settings.RefundFraction = float64(percent) / 100
	return nil
}

func (ec *EngineContext) playerIsRegistered(playerID string) error {
	if err := ec.send(&commands.RegisterPlayerCommand{PlayerID: playerID}); err != nil {
		return err
	}
	return ec.err
}

func (ec *EngineContext) secondsPass(seconds int) error {
	ec.clock.Advance(time.Duration(seconds) * time.Second)
	return nil
}

// When steps

func (ec *EngineContext) playerRegisters(playerID string) error {
	return ec.send(&commands.RegisterPlayerCommand{PlayerID: playerID})
}

func (ec *EngineContext) startsBuilding(playerID, target string) error {
	return ec.send(&commands.StartJobCommand{PlayerID: playerID, Category: "building", Target: target, Quantity: 1})
}

func (ec *EngineContext) startsResearching(playerID, target string) error {
	return ec.send(&commands.StartJobCommand{PlayerID: playerID, Category: "research", Target: target, Quantity: 1})
}

func (ec *EngineContext) ordersUnits(playerID string, quantity int, target, category string) error {
	return ec.send(&commands.StartJobCommand{PlayerID: playerID, Category: category, Target: target, Quantity: quantity})
}

func (ec *EngineContext) cancelsJob(playerID, category string, jobID int) error {
	return ec.send(&commands.CancelJobCommand{PlayerID: playerID, Category: category, JobID: int64(jobID)})
}

func (ec *EngineContext) checksStatus(playerID string) error {
	return ec.send(&queries.GetStatusQuery{PlayerID: playerID})
}

func (ec *EngineContext) checksResources(playerID string) error {
	return ec.send(&queries.GetResourcesQuery{PlayerID: playerID})
}

func (ec *EngineContext) deletesTheAccount(playerID string) error {
	return ec.send(&commands.DeletePlayerCommand{PlayerID: playerID})
}

func (ec *EngineContext) ordersUnitsConcurrently(playerID string, quantity int, target, category string, clients int) error {
	m, err := ec.engine()
	if err != nil {
		return err
	}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	ec.errs = nil
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Send(context.Background(), &commands.StartJobCommand{
				PlayerID: playerID, Category: category, Target: target, Quantity: quantity,
			})
			mu.Lock()
			ec.errs = append(ec.errs, err)
			mu.Unlock()
		}()
	}
	wg.Wait()
	return nil
}

func (ec *EngineContext) theStoreFailsTheNextLoads(n int) error {
	ec.store.FailNextLoads(n)
	return nil
}

func (ec *EngineContext) theStoreFailsTheNextSaves(n int) error {
	ec.store.FailNextSaves(n)
	return nil
}

// Then steps

func (ec *EngineContext) theRequestShouldSucceed() error {
	if ec.err != nil {
		return fmt.Errorf("expected success, got %v", ec.err)
	}
	return nil
}

func (ec *EngineContext) theRequestShouldBeRejectedWith(code string) error {
	if ec.err == nil {
		return fmt.Errorf("expected %s, request succeeded", code)
	}
	if got := shared.CodeOf(ec.err); got != shared.ErrorCode(code) {
		return fmt.Errorf("expected %s, got %s (%v)", code, got, ec.err)
	}
	return nil
}

func (ec *EngineContext) theErrorMessageShouldBe(message string) error {
	if ec.err == nil {
		return fmt.Errorf("expected an error")
	}
	if ec.err.Error() != message {
		return fmt.Errorf("expected message %q, got %q", message, ec.err.Error())
	}
	return nil
}

func (ec *EngineContext) thePlayerShouldHaveBeenCreated(outcome string) error {
	result, ok := ec.response.(*engine.RegisterResult)
	if !ok {
		return fmt.Errorf("expected a registration result, got %T (%v)", ec.response, ec.err)
	}
	if want := outcome == "created"; result.Created != want {
		return fmt.Errorf("expected created=%v", want)
	}
	return nil
}

func (ec *EngineContext) playerShouldHaveResource(playerID string, amount int, kind string) error {
	response, err := ec.query(&queries.GetResourcesQuery{PlayerID: playerID})
	if err != nil {
		return err
	}
	for _, line := range response.(*engine.ResourcesResult).Resources.Resources {
		if string(line.Kind) == kind {
			if line.Amount != int64(amount) {
				return fmt.Errorf("expected %d %s, got %d", amount, kind, line.Amount)
			}
			return nil
		}
	}
	return fmt.Errorf("no %s line in resources", kind)
}

func (ec *EngineContext) playerShouldHaveAt(playerID, category, target string, value int) error {
	result, err := ec.status(playerID)
	if err != nil {
		return err
	}
	var counts map[string]int
	switch category {
	case "building":
		counts = result.Status.Buildings
	case "research":
		counts = result.Status.Research
	case "fleet":
		counts = result.Status.Fleet
	case "defense":
		counts = result.Status.Defense
	default:
		return fmt.Errorf("unknown category %s", category)
	}
	if counts[target] != value {
		return fmt.Errorf("expected %s %s at %d, got %d", category, target, value, counts[target])
	}
	return nil
}

func (ec *EngineContext) theQueueShouldHoldJobs(category, playerID string, n int) error {
	queue, err := ec.queue(playerID, category)
	if err != nil {
		return err
	}
	if len(queue.Jobs) != n {
		return fmt.Errorf("expected %d %s jobs, got %d", n, category, len(queue.Jobs))
	}
	return nil
}

func (ec *EngineContext) jobShouldFinishIn(jobID int, category, playerID, countdown string) error {
	queue, err := ec.queue(playerID, category)
	if err != nil {
		return err
	}
	for _, job := range queue.Jobs {
		if job.ID == int64(jobID) {
			if job.Countdown != countdown {
				return fmt.Errorf("expected job %d to finish in %s, got %s", jobID, countdown, job.Countdown)
			}
			return nil
		}
	}
	return fmt.Errorf("job %d is not in the %s queue", jobID, category)
}

func (ec *EngineContext) queue(playerID, category string) (*engine.QueueView, error) {
	result, err := ec.status(playerID)
	if err != nil {
		return nil, err
	}
	for i := range result.Status.Queues {
		if string(result.Status.Queues[i].Category) == category {
			return &result.Status.Queues[i], nil
		}
	}
	return nil, fmt.Errorf("no %s queue", category)
}

func (ec *EngineContext) completions() ([]engine.CompletionView, error) {
	switch r := ec.response.(type) {
	case *engine.RegisterResult:
		return r.Completed, nil
	case *engine.StartJobResult:
		return r.Completed, nil
	case *engine.CancelJobResult:
		return r.Completed, nil
	case *engine.StatusResult:
		return r.Completed, nil
	case *engine.ResourcesResult:
		return r.Completed, nil
	}
	return nil, fmt.Errorf("no response to inspect (error: %v)", ec.err)
}

func (ec *EngineContext) theResponseShouldReportCompletions(n int) error {
	events, err := ec.completions()
	if err != nil {
		return err
	}
	if len(events) != n {
		return fmt.Errorf("expected %d completions, got %d", n, len(events))
	}
	return nil
}

func (ec *EngineContext) theCompletionsShouldBeInOrder(table *godog.Table) error {
	events, err := ec.completions()
	if err != nil {
		return err
	}
	rows := table.Rows[1:]
	if len(events) != len(rows) {
		return fmt.Errorf("expected %d completions, got %d", len(rows), len(events))
	}
	for i, row := range rows {
		e := events[i]
		target := getCellValue(table, row, "target")
		at := getCellValue(table, row, "after seconds")
		got := fmt.Sprintf("%d", int64(e.CompletedAt.Sub(scenarioStart).Seconds()))
		if e.Target != target || got != at {
			return fmt.Errorf("completion %d: expected %s after %ss, got %s after %ss", i+1, target, at, e.Target, got)
		}
		if v := getCellValue(table, row, "value"); v != "" && v != fmt.Sprintf("%d", e.NewValue) {
			return fmt.Errorf("completion %d: expected value %s, got %d", i+1, v, e.NewValue)
		}
	}
	return nil
}

func (ec *EngineContext) theRegisteredPlayersShouldBe(list string) error {
	response, err := ec.query(&queries.ListPlayersQuery{})
	if err != nil {
		return err
	}
	got := strings.Join(response.(*engine.PlayerListResult).PlayerIDs, ", ")
	if got != list {
		return fmt.Errorf("expected players %q, got %q", list, got)
	}
	return nil
}

func (ec *EngineContext) nothingShouldHaveBeenSaved() error {
	if saves := ec.store.Stats().Saves - ec.before.Saves; saves != 0 {
		return fmt.Errorf("expected no save, got %d", saves)
	}
	return nil
}

func (ec *EngineContext) theStateShouldHaveBeenSavedOnce() error {
	if saves := ec.store.Stats().Saves - ec.before.Saves; saves != 1 {
		return fmt.Errorf("expected one save, got %d", saves)
	}
	return nil
}

func (ec *EngineContext) theStoreShouldHaveBeenLoaded(n int) error {
	if loads := ec.store.Stats().Loads - ec.before.Loads; loads != n {
		return fmt.Errorf("expected %d loads, got %d", n, loads)
	}
	return nil
}

func (ec *EngineContext) requestsShouldSucceedAndTheRestBeRejected(n int, code string) error {
	succeeded := 0
	for _, err := range ec.errs {
		switch {
		case err == nil:
			succeeded++
		case shared.CodeOf(err) != shared.ErrorCode(code):
			return fmt.Errorf("unexpected error: %v", err)
		}
	}
	if succeeded != n {
		return fmt.Errorf("expected %d successes, got %d of %d", n, succeeded, len(ec.errs))
	}
	return nil
}

// InitializeEngineScenario registers the engine steps and returns their
// context for the scenarios layered on top
func InitializeEngineScenario(sc *godog.ScenarioContext) *EngineContext {
	ec := &EngineContext{}

	sc.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		ec.reset()
		return ctx, nil
	})

	sc.Step(`^the small test universe$`, ec.theSmallTestUniverse)
	sc.Step(`^the classic universe$`, ec.theClassicUniverse)
	sc.Step(`^new players start with (\d+) metal$`, ec.newPlayersStartWithMetal)
	sc.Step(`^cancelled jobs refund (\d+)% of their cost$`, ec.cancelledJobsRefundPercent)
	sc.Step(`^player "([^"]*)" is registered$`, ec.playerIsRegistered)
	sc.Step(`^(\d+) seconds pass$`, ec.secondsPass)
	sc.Step(`^the store fails the next (\d+) loads?$`, ec.theStoreFailsTheNextLoads)
	sc.Step(`^the store fails the next (\d+) saves?$`, ec.theStoreFailsTheNextSaves)

	sc.Step(`^"([^"]*)" registers$`, ec.playerRegisters)
	sc.Step(`^"([^"]*)" starts building "([^"]*)"$`, ec.startsBuilding)
	sc.Step(`^"([^"]*)" starts researching "([^"]*)"$`, ec.startsResearching)
	sc.Step(`^"([^"]*)" orders (\d+) x "([^"]*)" in the (\w+) queue$`, ec.ordersUnits)
	sc.Step(`^"([^"]*)" orders (\d+) x "([^"]*)" in the (\w+) queue from (\d+) clients at once$`, ec.ordersUnitsConcurrently)
	sc.Step(`^"([^"]*)" cancels (\w+) job (\d+)$`, ec.cancelsJob)
	sc.Step(`^"([^"]*)" checks the status$`, ec.checksStatus)
	sc.Step(`^"([^"]*)" checks the resources$`, ec.checksResources)
	sc.Step(`^"([^"]*)" deletes the account$`, ec.deletesTheAccount)

	sc.Step(`^the request should succeed$`, ec.theRequestShouldSucceed)
	sc.Step(`^the request should be rejected with ([A-Z_]+)$`, ec.theRequestShouldBeRejectedWith)
	sc.Step(`^the error message should be "([^"]*)"$`, ec.theErrorMessageShouldBe)
	sc.Step(`^the player should have been (created|found)$`, ec.thePlayerShouldHaveBeenCreated)
	sc.Step(`^"([^"]*)" should have (\d+) (metal|crystal|deuterium)$`, ec.playerShouldHaveResource)
	sc.Step(`^"([^"]*)" should have (building|research|fleet|defense) "([^"]*)" at (\d+)$`, ec.playerShouldHaveAt)
	sc.Step(`^the (\w+) queue of "([^"]*)" should hold (\d+) jobs?$`, ec.theQueueShouldHoldJobs)
	sc.Step(`^job (\d+) in the (\w+) queue of "([^"]*)" should finish in "([^"]*)"$`, ec.jobShouldFinishIn)
	sc.Step(`^the response should report (\d+) completions?$`, ec.theResponseShouldReportCompletions)
	sc.Step(`^the completions should be, in order:$`, ec.theCompletionsShouldBeInOrder)
	sc.Step(`^the registered players should be "([^"]*)"$`, ec.theRegisteredPlayersShouldBe)
	sc.Step(`^nothing should have been saved$`, ec.nothingShouldHaveBeenSaved)
	sc.Step(`^the state should have been saved once$`, ec.theStateShouldHaveBeenSavedOnce)
	sc.Step(`^the store should have been loaded (\d+) times?$`, ec.theStoreShouldHaveBeenLoaded)
	sc.Step(`^(\d+) of the requests should succeed and the rest be rejected with ([A-Z_]+)$`, ec.requestsShouldSucceedAndTheRestBeRejected)

	return ec
}
