package embedding

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (s *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.vectors[text], nil
}

func TestEmbedChunks_AssignsSequentialIDs(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"one": {1, 0},
		"two": {0, 1},
	}}

	records, dropped, err := EmbedChunks(context.Background(), emb, "reports/fraud.txt", []string{"one", "two"})
	if err != nil {
		t.Fatalf("EmbedChunks: %v", err)
	}
	if dropped != 0 {
		t.Fatalf("expected no drops, got %d", dropped)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].ID != "fraud.txt-0" || records[1].ID != "fraud.txt-1" {
		t.Fatalf("unexpected ids: %s, %s", records[0].ID, records[1].ID)
	}
	if records[0].Source != "reports/fraud.txt" {
		t.Fatalf("unexpected source: %s", records[0].Source)
	}
}

func TestEmbedChunks_DropsEmptyVectors(t *testing.T) {
	emb := &stubEmbedder{vectors: map[string][]float32{
		"kept": {1},
		// "lost" resolves to a nil vector
	}}

	records, dropped, err := EmbedChunks(context.Background(), emb, "a.txt", []string{"kept", "lost"})
	if err != nil {
		t.Fatalf("EmbedChunks: %v", err)
	}
	if dropped != 1 {
		t.Fatalf("expected 1 drop, got %d", dropped)
	}
	if len(records) != 1 || records[0].Text != "kept" {
		t.Fatalf("unexpected records: %+v", records)
	}
	// ids keep the chunk's position in the file even when others drop
	if records[0].ID != "a.txt-0" {
		t.Fatalf("unexpected id: %s", records[0].ID)
	}
}

func TestEmbedChunks_GatewayErrorAborts(t *testing.T) {
	emb := &stubEmbedder{err: errors.New("unreachable")}

	if _, _, err := EmbedChunks(context.Background(), emb, "a.txt", []string{"text"}); err == nil {
		t.Fatalf("expected gateway error to abort")
	}
}

func TestEmbedChunks_NoChunks(t *testing.T) {
	records, dropped, err := EmbedChunks(context.Background(), &stubEmbedder{}, "a.txt", nil)
	if err != nil || records != nil || dropped != 0 {
		t.Fatalf("expected clean no-op, got %v %d %v", records, dropped, err)
	}
}
