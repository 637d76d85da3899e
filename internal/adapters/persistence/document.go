package persistence

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"lukechampine.com/blake3"

	"github.com/andrescamacho/xnova-go/internal/domain/colony"
	"github.com/andrescamacho/xnova-go/internal/domain/shared"
)

// DocumentSchemaVersion is bumped on incompatible layout changes
const DocumentSchemaVersion = 1

// PlayerDocument is the persisted layout of a player's state. Timestamps
// are epoch seconds.
type PlayerDocument struct {
	SchemaVersion int                       `json:"schema_version" jsonschema:"title=Schema version,minimum=1"`
	PlayerID      string                    `json:"player_id" jsonschema:"title=Player id,minLength=1,maxLength=64"`
	CreatedAt     int64                     `json:"created_at" jsonschema:"description=Epoch seconds"`
	LastSyncedAt  int64                     `json:"last_synced_at" jsonschema:"description=Epoch seconds the resource amounts are valid for"`
	NextJobID     int64                     `json:"next_job_id" jsonschema:"minimum=1"`
	Resources     map[string]ResourceRecord `json:"resources" jsonschema:"description=Resource kind to stockpile"`
	Queues        map[string][]JobRecord    `json:"queues" jsonschema:"description=Category to pending jobs in execution order"`
	Buildings     map[string]int            `json:"buildings"`
	Research      map[string]int            `json:"research"`
	Fleet         map[string]int            `json:"fleet"`
	Defense       map[string]int            `json:"defense"`
}

// ResourceRecord is one persisted resource account
type ResourceRecord struct {
	Amount        float64 `json:"amount" jsonschema:"minimum=0"`
	RatePerSecond float64 `json:"rate_per_second"`
	Capacity      float64 `json:"capacity" jsonschema:"description=0 means unbounded"`
}

// JobRecord is one persisted pending job
type JobRecord struct {
	ID          int64              `json:"id" jsonschema:"minimum=1"`
	Target      string             `json:"target" jsonschema:"minLength=1"`
	Quantity    int                `json:"quantity" jsonschema:"minimum=1"`
	Cost        map[string]float64 `json:"cost"`
	EnqueuedAt  int64              `json:"enqueued_at"`
	StartsAt    int64              `json:"starts_at"`
	CompletesAt int64              `json:"completes_at"`
}

// ToDocument converts a player state into its persisted layout
func ToDocument(state *colony.PlayerState) *PlayerDocument {
	doc := &PlayerDocument{
		SchemaVersion: DocumentSchemaVersion,
		PlayerID:      state.PlayerID.Value(),
		CreatedAt:     shared.ToEpoch(state.CreatedAt),
		LastSyncedAt:  shared.ToEpoch(state.Ledger.LastSyncedAt()),
		NextJobID:     int64(state.NextJobID),
		Resources:     make(map[string]ResourceRecord),
		Queues:        make(map[string][]JobRecord),
		Buildings:     copyCounts(state.Buildings),
		Research:      copyCounts(state.Research),
		Fleet:         copyCounts(state.Fleet),
		Defense:       copyCounts(state.Defense),
	}
	for kind, acc := range state.Ledger.Snapshot() {
		doc.Resources[string(kind)] = ResourceRecord{
			Amount:        acc.Amount,
			RatePerSecond: acc.RatePerSecond,
			Capacity:      acc.Capacity,
		}
	}
	for _, cat := range colony.AllCategories() {
		records := []JobRecord{}
		for _, job := range state.Queue(cat).Jobs() {
			cost := make(map[string]float64, len(job.Cost))
			for kind, v := range job.Cost {
				cost[string(kind)] = v
			}
			records = append(records, JobRecord{
				ID:          int64(job.ID),
				Target:      job.Target,
				Quantity:    job.Quantity,
				Cost:        cost,
				EnqueuedAt:  shared.ToEpoch(job.EnqueuedAt),
				StartsAt:    shared.ToEpoch(job.StartsAt),
				CompletesAt: shared.ToEpoch(job.CompletesAt),
			})
		}
		doc.Queues[string(cat)] = records
	}
	return doc
}

// FromDocument rebuilds a player state, validating every record
func FromDocument(doc *PlayerDocument) (*colony.PlayerState, error) {
	if doc.SchemaVersion != DocumentSchemaVersion {
		return nil, fmt.Errorf("unsupported document schema version %d", doc.SchemaVersion)
	}
	playerID, err := shared.NewPlayerID(doc.PlayerID)
	if err != nil {
		return nil, fmt.Errorf("invalid player id in document: %w", err)
	}

	accounts := make(map[colony.ResourceKind]colony.ResourceAccount, len(doc.Resources))
	for name, rec := range doc.Resources {
		kind, err := colony.ParseResourceKind(name)
		if err != nil {
			return nil, err
		}
		accounts[kind] = colony.ResourceAccount{
			Amount:        rec.Amount,
			RatePerSecond: rec.RatePerSecond,
			Capacity:      rec.Capacity,
		}
	}

	state := &colony.PlayerState{
		PlayerID:  playerID,
		Ledger:    colony.ReconstructLedger(accounts, shared.FromEpoch(doc.LastSyncedAt)),
		Queues:    make(map[colony.Category]*colony.JobQueue),
		Buildings: copyCounts(doc.Buildings),
		Research:  copyCounts(doc.Research),
		Fleet:     copyCounts(doc.Fleet),
		Defense:   copyCounts(doc.Defense),
		NextJobID: colony.JobID(doc.NextJobID),
		CreatedAt: shared.FromEpoch(doc.CreatedAt),
	}

	names := make([]string, 0, len(doc.Queues))
	for name := range doc.Queues {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		cat, err := colony.ParseCategory(name)
		if err != nil {
			return nil, err
		}
		jobs := make([]*colony.Job, 0, len(doc.Queues[name]))
		for _, rec := range doc.Queues[name] {
			cost := make(colony.Cost, len(rec.Cost))
			for kindName, v := range rec.Cost {
				kind, err := colony.ParseResourceKind(kindName)
				if err != nil {
					return nil, err
				}
				cost[kind] = v
			}
			jobs = append(jobs, &colony.Job{
				ID:          colony.JobID(rec.ID),
				Category:    cat,
				Target:      rec.Target,
				Quantity:    rec.Quantity,
				Cost:        cost,
				EnqueuedAt:  shared.FromEpoch(rec.EnqueuedAt),
				StartsAt:    shared.FromEpoch(rec.StartsAt),
				CompletesAt: shared.FromEpoch(rec.CompletesAt),
			})
		}
		queue, err := colony.ReconstructJobQueue(cat, jobs)
		if err != nil {
			return nil, err
		}
		if last := queue.Last(); last != nil && state.NextJobID <= last.ID {
			state.NextJobID = last.ID + 1
		}
		state.Queues[cat] = queue
	}
	for _, cat := range colony.AllCategories() {
		state.Queue(cat)
	}
	return state, nil
}

// EncodeDocument serializes a document and returns it with its checksum
func EncodeDocument(doc *PlayerDocument) (string, string, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return "", "", fmt.Errorf("failed to marshal player document: %w", err)
	}
	return string(data), Checksum(data), nil
}

// DecodeDocument verifies the checksum and deserializes a document
func DecodeDocument(data, checksum string) (*PlayerDocument, error) {
	if sum := Checksum([]byte(data)); sum != checksum {
		return nil, fmt.Errorf("checksum mismatch: stored %s, computed %s", checksum, sum)
	}
	var doc PlayerDocument
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("failed to unmarshal player document: %w", err)
	}
	return &doc, nil
}

// Checksum returns the blake3 hex digest of data
func Checksum(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

func copyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
