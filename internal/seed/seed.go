package seed

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"catalog-api/internal/repository"
)

// Summary resume una ejecución del seeder
type Summary struct {
	Existing int64
	Inserted int64
}

// Seeder completa el store hasta un total objetivo, por lotes
type Seeder struct {
	writer repository.ProductWriter
	gen    *Generator
	log    zerolog.Logger
}

func NewSeeder(writer repository.ProductWriter, gen *Generator, log zerolog.Logger) *Seeder {
	return &Seeder{writer: writer, gen: gen, log: log}
}

// Run inserta lo que falta para llegar a total. Es idempotente: si ya hay
// suficientes productos no hace nada.
func (s *Seeder) Run(ctx context.Context, total, batchSize int) (Summary, error) {
	if batchSize < 1 {
		return Summary{}, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}

	existing, err := s.writer.Count(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("count products: %w", err)
	}
	summary := Summary{Existing: existing}

	remaining := int64(total) - existing
	if remaining <= 0 {
		s.log.Info().Int64("existing", existing).Msg("database already seeded, skipping")
		return summary, nil
	}
	s.log.Info().
		Int64("existing", existing).
		Int64("remaining", remaining).
		Int("batch_size", batchSize).
		Msg("🌱 seeding products")

	nextID := existing + 1
	for summary.Inserted < remaining {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		n := min(int64(batchSize), remaining-summary.Inserted)
		batch := s.gen.Batch(nextID, int(n))

		inserted, err := s.writer.InsertBatch(ctx, batch)
		summary.Inserted += inserted
		if err != nil {
			return summary, fmt.Errorf("insert batch at id %d: %w", nextID, err)
		}
		nextID += n

		s.log.Info().
			Str("progress", fmt.Sprintf("%.1f%%", float64(summary.Inserted)/float64(remaining)*100)).
			Int64("inserted", summary.Inserted).
			Int64("target", remaining).
			Msg("batch inserted")
	}

	s.log.Info().Int64("inserted", summary.Inserted).Msg("✅ seeding completed")
	return summary, nil
}
