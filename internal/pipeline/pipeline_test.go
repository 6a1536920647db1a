package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/claimsight/claimsight/internal/decision"
	"github.com/claimsight/claimsight/internal/docproc"
	"github.com/claimsight/claimsight/internal/extractor"
	"github.com/claimsight/claimsight/internal/index"
	"github.com/claimsight/claimsight/internal/models"
	"github.com/claimsight/claimsight/internal/storage"
)

// offlineClient simulates a fully unreachable AI backend: every call fails
// and Available is false, so each stage exercises its local fallback.
type offlineClient struct{}

func (offlineClient) GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error) {
	return "", errors.New("backend unreachable")
}

func (offlineClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("backend unreachable")
}

func (offlineClient) Available(ctx context.Context) bool { return false }
func (offlineClient) Name() string                       { return "offline" }

// panicClient blows up on first use, exercising the pipeline's catch-all.
type panicClient struct{}

func (panicClient) GenerateText(ctx context.Context, prompt, systemPrompt string) (string, error) {
	panic("scripted failure")
}

func (panicClient) GenerateEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	panic("scripted failure")
}

func (panicClient) Available(ctx context.Context) bool { return true }
func (panicClient) Name() string                       { return "panic" }

func newOfflinePipeline(t *testing.T, seed bool) *Pipeline {
	t.Helper()
	logger := zap.NewNop()
	client := offlineClient{}
	idx, err := index.New(storage.NewMemoryStore(), client, logger, index.Options{Dimensions: 64})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	if seed {
		if _, err := docproc.Seed(context.Background(), idx); err != nil {
			t.Fatalf("Seed: %v", err)
		}
	}
	return New(extractor.New(client, logger), idx, decision.New(client, logger), 10, logger)
}

func TestProcessFullyOffline(t *testing.T) {
	p := newOfflinePipeline(t, true)

	result := p.Process(context.Background(),
		"46-year-old male, knee surgery in Pune, 3-month-old insurance policy", "")

	if result.Query.Category != models.CategoryInsuranceClaim {
		t.Errorf("category = %s, want insurance_claim", result.Query.Category)
	}
	if len(result.Query.Entities) == 0 {
		t.Error("expected pattern entities")
	}
	if len(result.Fragments) == 0 {
		t.Fatal("expected keyword-fallback retrieval hits")
	}
	for _, f := range result.Fragments {
		if f.Similarity < 0.2 {
			t.Errorf("fragment %s similarity %v below keyword threshold", f.ID, f.Similarity)
		}
	}

	if result.Decision.Outcome != models.OutcomeApproved {
		t.Errorf("outcome = %s, want approved from rule fallback", result.Decision.Outcome)
	}
	if result.Decision.Amount == nil || *result.Decision.Amount != 200000 {
		t.Errorf("amount = %v, want 200000", result.Decision.Amount)
	}
	if result.Decision.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", result.Decision.Confidence)
	}
}

func TestProcessHRQuery(t *testing.T) {
	p := newOfflinePipeline(t, true)

	result := p.Process(context.Background(), "How many sick leave days do employees get?", "")

	if result.Query.Category != models.CategoryHRPolicy {
		t.Errorf("category = %s, want hr_policy", result.Query.Category)
	}
	if result.Decision.Outcome != models.OutcomeApproved {
		t.Errorf("outcome = %s, want approved", result.Decision.Outcome)
	}
	if result.Decision.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", result.Decision.Confidence)
	}
}

func TestProcessEmptyIndex(t *testing.T) {
	p := newOfflinePipeline(t, false)

	result := p.Process(context.Background(), "knee surgery coverage", "")

	if result.Decision.Outcome != models.OutcomeRejected {
		t.Errorf("outcome = %s, want rejected", result.Decision.Outcome)
	}
	if result.Decision.Confidence != 0.1 {
		t.Errorf("confidence = %v, want 0.1", result.Decision.Confidence)
	}
	if len(result.Fragments) != 0 {
		t.Errorf("fragments = %v, want none", result.Fragments)
	}
}

func TestProcessRecoversFromPanic(t *testing.T) {
	logger := zap.NewNop()
	client := panicClient{}
	idx, err := index.New(storage.NewMemoryStore(), offlineClient{}, logger, index.Options{Dimensions: 64})
	if err != nil {
		t.Fatalf("index.New: %v", err)
	}
	p := New(extractor.New(client, logger), idx, decision.New(client, logger), 10, logger)

	result := p.Process(context.Background(), "knee surgery", models.CategoryInsuranceClaim)

	if result.Decision.Outcome != models.OutcomePending {
		t.Errorf("outcome = %s, want pending", result.Decision.Outcome)
	}
	if result.Decision.Confidence != 0.0 {
		t.Errorf("confidence = %v, want 0.0", result.Decision.Confidence)
	}
	if !strings.HasPrefix(result.Decision.Justification, "Error processing query:") {
		t.Errorf("justification = %q", result.Decision.Justification)
	}
	if result.Query.Intent != "error processing query" {
		t.Errorf("intent = %q", result.Query.Intent)
	}
	if result.Query.Category != models.CategoryInsuranceClaim {
		t.Errorf("category hint not preserved: %s", result.Query.Category)
	}
}

func TestStatusReport(t *testing.T) {
	p := newOfflinePipeline(t, true)

	status := p.StatusReport(context.Background())
	if status.Status != "healthy" {
		t.Errorf("status = %s, want healthy", status.Status)
	}
	if status.IndexStats.Count != 5 {
		t.Errorf("fragment count = %d, want 5", status.IndexStats.Count)
	}
	for _, name := range []string{"extractor", "index", "synthesizer"} {
		if status.Components[name] != "healthy" {
			t.Errorf("component %s = %s", name, status.Components[name])
		}
	}
}
