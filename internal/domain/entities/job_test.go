package entities_test

import (
	"errors"
	"testing"
	"time"

	"pdfcompress/internal/domain/entities"
)

func newTestJob(sizes ...int64) *entities.Job {
	handles := make([]*entities.FileHandle, len(sizes))
	for i, size := range sizes {
		handles[i] = &entities.FileHandle{Name: "f.pdf", Size: size, MimeType: entities.MimePDF}
	}
	return entities.NewJob("job-1", handles, entities.DefaultCompressionSettings(), time.Now())
}

func TestJob_TransitionIsMonotonic(t *testing.T) {
	job := newTestJob(10)

	steps := []entities.JobStatus{
		entities.JobValidating,
		entities.JobAnalyzing,
		entities.JobPreparing,
		entities.JobProcessing,
		entities.JobFinalizing,
		entities.JobCompleted,
	}
	for _, s := range steps {
		if err := job.Transition(s); err != nil {
			t.Fatalf("Transition to %s failed: %v", s, err)
		}
	}

	if err := job.Transition(entities.JobFailed); err == nil {
		t.Error("Expected terminal job to reject further transitions")
	}
}

func TestJob_TransitionRejectsBackwards(t *testing.T) {
	job := newTestJob(10)
	_ = job.Transition(entities.JobProcessing)

	if err := job.Transition(entities.JobValidating); err == nil {
		t.Error("Expected backwards transition to fail")
	}
	if err := job.Transition(entities.JobCompleted); err == nil {
		t.Error("Expected completed to require finalizing")
	}
	if err := job.Transition(entities.JobCancelled); err != nil {
		t.Errorf("Expected cancel from processing to succeed: %v", err)
	}
}

func TestJob_ComputeSummary(t *testing.T) {
	job := newTestJob(1000000, 500000, 600000)
	now := time.Now()
	job.Files[0].Succeed(&entities.CompressionOutput{OriginalSize: 1000000, CompressedSize: 500000, CompressedBlob: []byte{1}}, now)
	job.Files[1].Fail(errors.New("boom"), now)
	job.Files[2].Succeed(&entities.CompressionOutput{OriginalSize: 600000, CompressedSize: 300000, CompressedBlob: []byte{1}}, now)

	s := job.ComputeSummary()
	if s.SuccessfulFiles != 2 || s.FailedFiles != 1 {
		t.Errorf("Expected 2 successful and 1 failed, got %d/%d", s.SuccessfulFiles, s.FailedFiles)
	}
	if s.TotalOriginalSize != 1600000 || s.TotalCompressedSize != 800000 {
		t.Errorf("Unexpected totals: %d/%d", s.TotalOriginalSize, s.TotalCompressedSize)
	}
	if s.SpaceSaved != 800000 || s.SpaceSavedPercent != 50 {
		t.Errorf("Unexpected savings: %d (%.2f%%)", s.SpaceSaved, s.SpaceSavedPercent)
	}
}

func TestJob_SummaryPercentClamped(t *testing.T) {
	job := newTestJob(100)
	job.Files[0].Succeed(&entities.CompressionOutput{OriginalSize: 100, CompressedSize: 150, CompressedBlob: []byte{1}}, time.Now())

	if p := job.ComputeSummary().SpaceSavedPercent; p != 0 {
		t.Errorf("Expected growth to clamp to 0%%, got %.2f", p)
	}

	empty := newTestJob(0)
	if p := empty.ComputeSummary().SpaceSavedPercent; p != 0 {
		t.Errorf("Expected 0%% for empty totals, got %.2f", p)
	}
}

func TestJob_ComputeProgress(t *testing.T) {
	job := newTestJob(10, 10, 10)
	job.ValidFiles = 3

	if p := job.ComputeProgress(0); p != 0 {
		t.Errorf("Expected 0, got %d", p)
	}
	job.Files[0].Succeed(&entities.CompressionOutput{OriginalSize: 10, CompressedSize: 5, CompressedBlob: []byte{1}}, time.Now())
	if p := job.ComputeProgress(0); p != 33 {
		t.Errorf("Expected 33, got %d", p)
	}
	if p := job.ComputeProgress(0.5); p != 50 {
		t.Errorf("Expected 50, got %d", p)
	}
	if p := job.ComputeProgress(5); p >= 67 {
		t.Errorf("Expected fraction to stay below the next file, got %d", p)
	}
}

func TestFileEntry_Invariants(t *testing.T) {
	job := newTestJob(10)
	entry := job.Files[0]

	entry.Fail(nil, time.Now())
	if entry.Err == nil || entry.CompressedBlob != nil {
		t.Error("Failed entry must carry an error and no blob")
	}

	entry.Succeed(&entities.CompressionOutput{OriginalSize: 10, CompressedSize: 4, CompressedBlob: []byte("x")}, time.Now())
	if entry.Err != nil || entry.CompressedBlob == nil {
		t.Error("Succeeded entry must carry a blob and no error")
	}
	if entry.ReductionPercent() != 60 {
		t.Errorf("Expected 60%%, got %.2f", entry.ReductionPercent())
	}
}

func TestJob_RetriableAndClone(t *testing.T) {
	job := newTestJob(10, 20)
	job.Files[0].Fail(errors.New("x"), time.Now())
	job.Files[1].Skip()
	_ = job.Transition(entities.JobFailed)

	if !job.IsRetriable() {
		t.Error("Expected job with a failed file to be retriable")
	}
	if n := len(job.FailedHandles()); n != 1 {
		t.Errorf("Expected 1 failed handle, got %d", n)
	}

	clone := job.Clone()
	clone.Files[0].SubState = entities.FileSucceeded
	if job.Files[0].SubState != entities.FileFailed {
		t.Error("Clone must not share entries with the original")
	}
}

func TestKindOf(t *testing.T) {
	wrapped := entities.NewKindError(entities.KindNoValidFiles, entities.ErrNoValidFiles)

	if entities.KindOf(wrapped) != entities.KindNoValidFiles {
		t.Errorf("Expected NoValidFiles, got %s", entities.KindOf(wrapped))
	}
	if !errors.Is(wrapped, entities.ErrNoValidFiles) {
		t.Error("Expected KindError to unwrap to the sentinel")
	}
	if entities.KindOf(errors.New("plain")) != entities.KindCompressionFailed {
		t.Error("Expected plain errors to default to CompressionFailed")
	}
	if entities.KindOf(nil) != "" {
		t.Error("Expected empty kind for nil")
	}
}
