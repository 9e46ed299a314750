package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/mikesamcali-dev/memoryconnector-backend/internal/platform/logger"
	"github.com/mikesamcali-dev/memoryconnector-backend/internal/types"
)

func TestCreateOrFindCreatesThenFinds(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWordRepo()
	svc := NewWordsService(repo, logger.NewNop())

	first, err := svc.CreateOrFind(ctx, "serendipity")
	if err != nil {
		t.Fatalf("CreateOrFind: %v", err)
	}
	if first.Status != WordStatusCreated {
		t.Errorf("Status = %q, want created", first.Status)
	}

	second, err := svc.CreateOrFind(ctx, "serendipity")
	if err != nil {
		t.Fatalf("CreateOrFind second: %v", err)
	}
	if second.Status != WordStatusExisting {
		t.Errorf("Status = %q, want existing", second.Status)
	}
	if second.Word.ID != first.Word.ID {
		t.Errorf("second call returned different word: %s vs %s", second.Word.ID, first.Word.ID)
	}
}

func TestCreateOrFindTrimsInput(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWordRepo()
	svc := NewWordsService(repo, logger.NewNop())

	result, err := svc.CreateOrFind(ctx, "  ephemeral  ")
	if err != nil {
		t.Fatalf("CreateOrFind: %v", err)
	}
	if result.Word.Text != "ephemeral" {
		t.Errorf("Text = %q, want trimmed", result.Word.Text)
	}
}

func TestCreateOrFindRejectsEmpty(t *testing.T) {
	svc := NewWordsService(newFakeWordRepo(), logger.NewNop())
	if _, err := svc.CreateOrFind(context.Background(), "   "); err == nil {
		t.Fatal("CreateOrFind accepted blank text, want error")
	}
}

func TestCreateOrFindRecoversFromInsertRace(t *testing.T) {
	ctx := context.Background()
	repo := newFakeWordRepo()
	svc := NewWordsService(repo, logger.NewNop())

	// Simulate a concurrent insert winning between the lookup and the create.
	repo.missFirstGet = 1
	repo.createErr = fmt.Errorf("unique constraint violation on word.text")
	repo.words["paradigm"] = &types.Word{Text: "paradigm"}

	result, err := svc.CreateOrFind(ctx, "paradigm")
	if err != nil {
		t.Fatalf("CreateOrFind: %v", err)
	}
	if result.Status != WordStatusExisting {
		t.Errorf("Status = %q, want existing after race recovery", result.Status)
	}
}
