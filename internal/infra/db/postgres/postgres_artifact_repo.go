package postgres

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/oklog/ulid/v2"

	"course-ai-platform/internal/domain/model"
	"course-ai-platform/internal/domain/ports/repository"
)

var _ repository.ArtifactRepository = (*artifactRepo)(nil)

type artifactRepo struct {
	pool *pgxpool.Pool
}

func NewArtifactRepo(pool *pgxpool.Pool) *artifactRepo {
	return &artifactRepo{pool: pool}
}

// SaveAll appends artifacts. A unique index on (subject_id, subject_kind,
// checksum) makes at-least-once callback delivery idempotent: redelivered
// rows hit ON CONFLICT DO NOTHING.
func (r *artifactRepo) SaveAll(ctx context.Context, tx repository.Tx, artifacts []*model.GeneratedArtifact) (int, error) {
	const q = `
INSERT INTO generated_artifacts
  (id, subject_id, subject_kind, content_type, content_data, material_references, question_id, checksum, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (subject_id, subject_kind, checksum) DO NOTHING;`

	inserted := 0
	for _, a := range artifacts {
		if a.ID == "" {
			a.ID = ulid.Make().String()
		}
		if a.CreatedAt.IsZero() {
			a.CreatedAt = time.Now()
		}
		tag, err := execSQL(ctx, r.pool, tx, q,
			a.ID, a.SubjectID, string(a.SubjectKind), string(a.ContentType),
			a.ContentData, a.MaterialReferences, a.QuestionID, checksum(a), a.CreatedAt)
		if err != nil {
			return inserted, fmt.Errorf("postgres: saving artifact: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

func (r *artifactRepo) ListBySubject(ctx context.Context, tx repository.Tx, subjectID int64, kind model.SubjectKind) ([]*model.GeneratedArtifact, error) {
	const q = `
SELECT id, subject_id, subject_kind, content_type, content_data, material_references, question_id, created_at
FROM generated_artifacts
WHERE subject_id = $1 AND subject_kind = $2
ORDER BY id;`

	rows, err := pickRows(ctx, r.pool, tx, q, subjectID, string(kind))
	if err != nil {
		return nil, fmt.Errorf("postgres: listing artifacts: %w", err)
	}
	defer rows.Close()

	var out []*model.GeneratedArtifact
	for rows.Next() {
		var (
			a         model.GeneratedArtifact
			kindStr   string
			ctypeStr  string
			createdAt time.Time
		)
		if err := rows.Scan(&a.ID, &a.SubjectID, &kindStr, &ctypeStr, &a.ContentData, &a.MaterialReferences, &a.QuestionID, &createdAt); err != nil {
			return nil, fmt.Errorf("postgres: scanning artifact: %w", err)
		}
		a.SubjectKind = model.SubjectKind(kindStr)
		a.ContentType = model.ContentType(ctypeStr)
		a.CreatedAt = createdAt
		out = append(out, &a)
	}
	return out, rows.Err()
}

// checksum identifies an artifact by its content, not its row identity.
func checksum(a *model.GeneratedArtifact) string {
	h := sha256.New()
	h.Write([]byte(string(a.ContentType)))
	h.Write([]byte{0})
	h.Write([]byte(a.ContentData))
	h.Write([]byte{0})
	h.Write([]byte(a.MaterialReferences))
	h.Write([]byte{0})
	h.Write([]byte(a.QuestionID))
	return hex.EncodeToString(h.Sum(nil))
}
