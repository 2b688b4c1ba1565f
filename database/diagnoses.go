package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lizet96/medibot-backend/models"
)

// DiagnosisStore guarda los diagnósticos. Toda consulta va acotada al email del dueño.
type DiagnosisStore struct {
	pool *pgxpool.Pool
}

func NewDiagnosisStore(pool *pgxpool.Pool) *DiagnosisStore {
	return &DiagnosisStore{pool: pool}
}

const diagnosisColumns = `id, user_email, image_file_id, audio_file_id, audio_output_id, transcription, doctor_response, created_at, updated_at`

func scanDiagnosis(row pgx.Row) (*models.Diagnosis, error) {
	var d models.Diagnosis
	err := row.Scan(&d.ID, &d.UserEmail, &d.ImageFileID, &d.AudioFileID, &d.AudioOutputID,
		&d.Transcription, &d.DoctorResponse, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *DiagnosisStore) Create(ctx context.Context, d *models.Diagnosis) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO diagnoses (`+diagnosisColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.UserEmail, d.ImageFileID, d.AudioFileID, d.AudioOutputID,
		d.Transcription, d.DoctorResponse, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting diagnosis: %w", err)
	}
	return nil
}

// ListByUser devuelve el historial del usuario, el más reciente primero
func (s *DiagnosisStore) ListByUser(ctx context.Context, email string) ([]models.Diagnosis, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses WHERE user_email = $1 ORDER BY created_at DESC`, email)
	if err != nil {
		return nil, fmt.Errorf("listing diagnoses: %w", err)
	}
	defer rows.Close()

	diagnoses := []models.Diagnosis{}
	for rows.Next() {
		d, err := scanDiagnosis(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning diagnosis: %w", err)
		}
		diagnoses = append(diagnoses, *d)
	}
	return diagnoses, rows.Err()
}

func (s *DiagnosisStore) Get(ctx context.Context, id, email string) (*models.Diagnosis, error) {
	return scanDiagnosis(s.pool.QueryRow(ctx,
		`SELECT `+diagnosisColumns+` FROM diagnoses WHERE id = $1 AND user_email = $2`, id, email))
}

// Update aplica solo los campos presentes en req
func (s *DiagnosisStore) Update(ctx context.Context, id, email string, req models.DiagnosisUpdateRequest) (*models.Diagnosis, error) {
	sets := []string{"updated_at = $1"}
	args := []interface{}{time.Now().UTC()}
	if req.Transcription != nil {
		args = append(args, *req.Transcription)
		sets = append(sets, fmt.Sprintf("transcription = $%d", len(args)))
	}
	if req.DoctorResponse != nil {
		args = append(args, *req.DoctorResponse)
		sets = append(sets, fmt.Sprintf("doctor_response = $%d", len(args)))
	}
	args = append(args, id, email)

	query := fmt.Sprintf(`UPDATE diagnoses SET %s WHERE id = $%d AND user_email = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args)-1, len(args), diagnosisColumns)
	return scanDiagnosis(s.pool.QueryRow(ctx, query, args...))
}

func (s *DiagnosisStore) Delete(ctx context.Context, id, email string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM diagnoses WHERE id = $1 AND user_email = $2`, id, email)
	if err != nil {
		return fmt.Errorf("deleting diagnosis: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// OwnsBlob indica si el blob pertenece a algún diagnóstico del usuario
func (s *DiagnosisStore) OwnsBlob(ctx context.Context, email, blobID string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM diagnoses
			WHERE user_email = $1 AND (image_file_id = $2 OR audio_file_id = $2 OR audio_output_id = $2)
		)`, email, blobID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking blob owner: %w", err)
	}
	return exists, nil
}
