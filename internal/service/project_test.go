package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"testing"

	"github.com/anvaya-ai/anvaya/internal/domain"
	"github.com/anvaya-ai/anvaya/internal/ingest"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type memFile struct {
	*bytes.Reader
}

func (memFile) Close() error { return nil }

func upload(name string) Upload {
	return Upload{
		Filename:    name,
		ContentType: "application/pdf",
		Open: func() (multipart.File, error) {
			return memFile{bytes.NewReader([]byte("content"))}, nil
		},
	}
}

func newProjectFixture() (*ProjectService, *mockProjectStore, *ingest.MockClient) {
	projects := newMockProjectStore()
	ingestor := ingest.NewMockClient()
	svc := NewProjectService(projects, ingestor, zap.NewNop())
	return svc, projects, ingestor
}

func TestCreateProjectRequiresName(t *testing.T) {
	svc, _, _ := newProjectFixture()

	_, err := svc.Create(context.Background(), CreateInput{UserID: "user-1"})
	if !errors.Is(err, ErrProjectNameMissing) {
		t.Fatalf("expected ErrProjectNameMissing, got %v", err)
	}
}

func TestCreateProjectRequiresUser(t *testing.T) {
	svc, _, _ := newProjectFixture()

	_, err := svc.Create(context.Background(), CreateInput{Name: "Checkout Revamp"})
	if !errors.Is(err, ErrUserIDMissing) {
		t.Fatalf("expected ErrUserIDMissing, got %v", err)
	}
}

func TestCreateProjectStartsAtStageZero(t *testing.T) {
	svc, _, _ := newProjectFixture()

	project, err := svc.Create(context.Background(), CreateInput{
		UserID:      "user-1",
		Name:        "Checkout Revamp",
		Description: "Rebuild checkout for Q4",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if project.Stage != domain.StageInitialized {
		t.Errorf("expected stage %v, got %v", domain.StageInitialized, project.Stage)
	}
	if project.Files == nil || len(project.Files) != 0 {
		t.Error("new project should have an empty, non-nil files list")
	}
}

func TestAttachFilesLimit(t *testing.T) {
	svc, projects, _ := newProjectFixture()
	project := projects.addProject(domain.StageInitialized, nil)

	var uploads []Upload
	for i := 0; i < 11; i++ {
		uploads = append(uploads, upload(fmt.Sprintf("doc-%d.pdf", i)))
	}

	_, err := svc.AttachFiles(context.Background(), project.ID, uploads)
	if !errors.Is(err, ErrTooManyFiles) {
		t.Fatalf("expected ErrTooManyFiles, got %v", err)
	}
}

func TestAttachFilesAdvancesStage(t *testing.T) {
	svc, projects, ingestor := newProjectFixture()
	project := projects.addProject(domain.StageInitialized, nil)

	updated, err := svc.AttachFiles(context.Background(), project.ID, []Upload{
		upload("requirements.pdf"),
		upload("notes.txt"),
	})
	if err != nil {
		t.Fatalf("AttachFiles failed: %v", err)
	}

	if len(updated.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(updated.Files))
	}
	if updated.Files[0].URI != "mock://files/requirements.pdf" {
		t.Errorf("unexpected file uri: %s", updated.Files[0].URI)
	}
	if updated.Stage != domain.StageContextReady {
		t.Errorf("expected stage %v, got %v", domain.StageContextReady, updated.Stage)
	}
	if len(ingestor.IngestCalls) != 2 {
		t.Errorf("expected 2 ingest calls, got %d", len(ingestor.IngestCalls))
	}
}

func TestAttachFilesDoesNotLowerStage(t *testing.T) {
	svc, projects, _ := newProjectFixture()
	project := projects.addProject(domain.StageFactsMapped, nil)

	updated, err := svc.AttachFiles(context.Background(), project.ID, []Upload{upload("late.pdf")})
	if err != nil {
		t.Fatalf("AttachFiles failed: %v", err)
	}
	if updated.Stage != domain.StageFactsMapped {
		t.Errorf("stage must never move backwards, got %v", updated.Stage)
	}
}

func TestAttachFilesIngestFailureAborts(t *testing.T) {
	svc, projects, ingestor := newProjectFixture()
	project := projects.addProject(domain.StageInitialized, nil)
	ingestor.IngestError = errors.New("ingest service down")

	_, err := svc.AttachFiles(context.Background(), project.ID, []Upload{upload("doc.pdf")})
	if err == nil {
		t.Fatal("expected error from failed ingest")
	}

	p, _ := projects.GetByID(context.Background(), project.ID)
	if len(p.Files) != 0 {
		t.Error("no file refs should be stored when ingestion fails")
	}
}

func TestAdvanceStageCapsAtSynthesized(t *testing.T) {
	svc, projects, _ := newProjectFixture()
	project := projects.addProject(domain.StageSynthesized, nil)

	_, err := svc.AdvanceStage(context.Background(), project.ID)
	if !errors.Is(err, ErrStageComplete) {
		t.Fatalf("expected ErrStageComplete, got %v", err)
	}

	p, _ := projects.GetByID(context.Background(), project.ID)
	if p.Stage != domain.StageSynthesized {
		t.Errorf("stage must not move past the cap, got %v", p.Stage)
	}
}

func TestAdvanceStageIncrements(t *testing.T) {
	svc, projects, _ := newProjectFixture()
	project := projects.addProject(domain.StageContextReady, nil)

	updated, err := svc.AdvanceStage(context.Background(), project.ID)
	if err != nil {
		t.Fatalf("AdvanceStage failed: %v", err)
	}
	if updated.Stage != domain.StageStakeholdersMapped {
		t.Errorf("expected stage %v, got %v", domain.StageStakeholdersMapped, updated.Stage)
	}
}

func TestUpdateKeepsUnsetFields(t *testing.T) {
	svc, projects, _ := newProjectFixture()
	project := projects.addProject(domain.StageInitialized, nil)
	newName := "Checkout Revamp v2"

	updated, err := svc.Update(context.Background(), project.ID, UpdateInput{Name: &newName})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.Name != newName {
		t.Errorf("expected updated name, got %q", updated.Name)
	}
}

func TestGetUnknownProject(t *testing.T) {
	svc, _, _ := newProjectFixture()

	_, err := svc.GetByID(context.Background(), uuid.New())
	if !errors.Is(err, ErrProjectNotFound) {
		t.Fatalf("expected ErrProjectNotFound, got %v", err)
	}
}
