// Package consultation orquesta una consulta: guarda las cargas del paciente,
// transcribe, analiza la imagen, sintetiza la respuesta y persiste el diagnóstico.
package consultation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/lizet96/medibot-backend/ai/stt"
	"github.com/lizet96/medibot-backend/ai/tts"
	"github.com/lizet96/medibot-backend/ai/vision"
	"github.com/lizet96/medibot-backend/database"
	"github.com/lizet96/medibot-backend/events"
	"github.com/lizet96/medibot-backend/models"
	"github.com/lizet96/medibot-backend/storage"
)

const MessageSaved = "Record saved successfully"

var (
	ErrMissingUpload = errors.New("audio and image uploads are required")
	ErrInvalidID     = errors.New("invalid diagnosis id")
	ErrEmptyUpdate   = errors.New("no fields to update")
	ErrNoChanges     = errors.New("no changes applied")
	ErrEmptyRecord   = errors.New("transcription and doctor response are required")
	// ErrNotFound cubre tanto "no existe" como "no es del usuario"
	ErrNotFound = database.ErrNotFound
)

type DiagnosisRepository interface {
	Create(ctx context.Context, d *models.Diagnosis) error
	ListByUser(ctx context.Context, email string) ([]models.Diagnosis, error)
	Get(ctx context.Context, id, email string) (*models.Diagnosis, error)
	Update(ctx context.Context, id, email string, req models.DiagnosisUpdateRequest) (*models.Diagnosis, error)
	Delete(ctx context.Context, id, email string) error
	OwnsBlob(ctx context.Context, email, blobID string) (bool, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, filename string) stt.Result
}

type Analyzer interface {
	Analyze(ctx context.Context, prompt string, image []byte, mimeType string) vision.Result
}

type Speaker interface {
	Synthesize(ctx context.Context, text string) tts.Result
}

// Upload es un archivo recibido en el multipart
type Upload struct {
	Filename    string
	ContentType string
	Data        []byte
}

type Service struct {
	blobs     storage.Store
	diagnoses DiagnosisRepository
	stt       Transcriber
	vision    Analyzer
	tts       Speaker
	events    events.Publisher
	logger    *slog.Logger
	baseURL   string
	now       func() time.Time
}

type Options struct {
	Blobs     storage.Store
	Diagnoses DiagnosisRepository
	STT       Transcriber
	Vision    Analyzer
	TTS       Speaker
	Events    events.Publisher
	Logger    *slog.Logger
	BaseURL   string
}

func NewService(opts Options) *Service {
	pub := opts.Events
	if pub == nil {
		pub = events.NoopPublisher{}
	}
	return &Service{
		blobs:     opts.Blobs,
		diagnoses: opts.Diagnoses,
		stt:       opts.STT,
		vision:    opts.Vision,
		tts:       opts.TTS,
		events:    pub,
		logger:    opts.Logger,
		baseURL:   opts.BaseURL,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Process ejecuta la consulta completa. Las fallas de IA nunca son error
// (se usan placeholders); sí lo son el almacenamiento de las cargas y el insert.
func (s *Service) Process(ctx context.Context, email string, audio, image Upload) (*models.ConsultationResult, error) {
	if len(audio.Data) == 0 || len(image.Data) == 0 {
		return nil, ErrMissingUpload
	}

	var (
		audioID, imageID string
		transcript       stt.Result
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		id, err := s.blobs.Put(gctx, audio.Filename, audio.Data, audio.ContentType)
		if err != nil {
			return fmt.Errorf("storing audio: %w", err)
		}
		audioID = id
		return nil
	})
	g.Go(func() error {
		id, err := s.blobs.Put(gctx, image.Filename, image.Data, image.ContentType)
		if err != nil {
			return fmt.Errorf("storing image: %w", err)
		}
		imageID = id
		return nil
	})
	g.Go(func() error {
		transcript = s.stt.Transcribe(gctx, audio.Data, audio.Filename)
		return nil
	})
	if err := g.Wait(); err != nil {
		s.deleteBlobs(ctx, audioID, imageID)
		return nil, err
	}

	mimeType := image.ContentType
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = storage.DetectContentType(image.Data)
	}
	analysis := s.vision.Analyze(ctx, vision.BuildQuery(transcript.Text), image.Data, mimeType)

	speech := s.tts.Synthesize(ctx, analysis.Text)
	var outputID *string
	if id, err := s.blobs.Put(ctx, "doctor_response"+speech.Audio.Ext(), speech.Audio.Data, speech.Audio.ContentType); err != nil {
		s.logger.Warn("storing synthesized answer failed", "error", err)
	} else {
		outputID = &id
	}

	now := s.now()
	d := &models.Diagnosis{
		ID:             uuid.NewString(),
		UserEmail:      email,
		ImageFileID:    &imageID,
		AudioFileID:    &audioID,
		AudioOutputID:  outputID,
		Transcription:  transcript.Text,
		DoctorResponse: analysis.Text,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.diagnoses.Create(ctx, d); err != nil {
		s.deleteBlobs(ctx, d.BlobIDs()...)
		return nil, err
	}
	s.publish(ctx, events.SubjectDiagnosisCreated, d, "process")

	result := &models.ConsultationResult{
		Message:             MessageSaved,
		DiagnosisID:         d.ID,
		Transcription:       d.Transcription,
		DoctorResponse:      d.DoctorResponse,
		ImageURL:            s.baseURL + "/medibot/image/" + imageID,
		TranscriptionSource: transcript.Source,
		AnalysisSource:      analysis.Source,
		SpeechSource:        speech.Source,
	}
	if outputID != nil {
		result.AudioURL = s.baseURL + "/medibot/audio/" + *outputID
	}

	s.logger.Info("consultation processed",
		"diagnosis_id", d.ID,
		"stt", transcript.Source,
		"vision", analysis.Source,
		"tts", speech.Source)
	return result, nil
}

func (s *Service) History(ctx context.Context, email string) ([]models.HistoryRecord, error) {
	list, err := s.diagnoses.ListByUser(ctx, email)
	if err != nil {
		return nil, err
	}
	records := make([]models.HistoryRecord, 0, len(list))
	for i := range list {
		records = append(records, list[i].HistoryRecord())
	}
	return records, nil
}

// Create guarda un registro manual sin archivos asociados
func (s *Service) Create(ctx context.Context, email string, req models.DiagnosisCreateRequest) (*models.Diagnosis, error) {
	if req.Transcription == "" && req.DoctorResponse == "" {
		return nil, ErrEmptyRecord
	}
	now := s.now()
	createdAt := now
	if req.CreatedAt != nil && !req.CreatedAt.IsZero() {
		createdAt = req.CreatedAt.UTC()
	}
	d := &models.Diagnosis{
		ID:             uuid.NewString(),
		UserEmail:      email,
		Transcription:  req.Transcription,
		DoctorResponse: req.DoctorResponse,
		CreatedAt:      createdAt,
		UpdatedAt:      now,
	}
	if err := s.diagnoses.Create(ctx, d); err != nil {
		return nil, err
	}
	s.publish(ctx, events.SubjectDiagnosisCreated, d, "manual")
	return d, nil
}

func (s *Service) Update(ctx context.Context, email, id string, req models.DiagnosisUpdateRequest) (*models.Diagnosis, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	if req.Empty() {
		return nil, ErrEmptyUpdate
	}
	existing, err := s.diagnoses.Get(ctx, id, email)
	if err != nil {
		return nil, err
	}
	if !changes(existing, req) {
		return nil, ErrNoChanges
	}

	d, err := s.diagnoses.Update(ctx, id, email, req)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.SubjectDiagnosisUpdated, d, "")
	return d, nil
}

// Delete borra el registro y, sin fallar si no se puede, sus archivos
func (s *Service) Delete(ctx context.Context, email, id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	d, err := s.diagnoses.Get(ctx, id, email)
	if err != nil {
		return err
	}
	s.deleteBlobs(ctx, d.BlobIDs()...)

	if err := s.diagnoses.Delete(ctx, id, email); err != nil {
		return err
	}
	s.publish(ctx, events.SubjectDiagnosisDeleted, d, "")
	return nil
}

// Media devuelve un archivo solo si pertenece a algún diagnóstico del usuario
func (s *Service) Media(ctx context.Context, email, blobID string) (*storage.Object, error) {
	if err := storage.CheckID(blobID); err != nil {
		return nil, err
	}
	owns, err := s.diagnoses.OwnsBlob(ctx, email, blobID)
	if err != nil {
		return nil, err
	}
	if !owns {
		return nil, storage.ErrNoObject
	}
	obj, err := s.blobs.Get(ctx, blobID)
	if err != nil {
		return nil, err
	}
	if obj.ContentType == "" || obj.ContentType == "application/octet-stream" {
		obj.ContentType = storage.DetectContentType(obj.Data)
	}
	return obj, nil
}

func (s *Service) deleteBlobs(ctx context.Context, ids ...string) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		err := s.blobs.Delete(ctx, id)
		if err != nil && !errors.Is(err, storage.ErrNoObject) && !errors.Is(err, storage.ErrInvalidID) {
			s.logger.Warn("deleting blob failed", "blob_id", id, "error", err)
		}
	}
}

func (s *Service) publish(ctx context.Context, subject string, d *models.Diagnosis, source string) {
	err := s.events.Publish(ctx, subject, events.DiagnosisEvent{
		DiagnosisID: d.ID,
		UserEmail:   d.UserEmail,
		Source:      source,
		OccurredAt:  s.now(),
	})
	if err != nil {
		s.logger.Warn("publishing event failed", "subject", subject, "error", err)
	}
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrInvalidID
	}
	return nil
}

func changes(d *models.Diagnosis, req models.DiagnosisUpdateRequest) bool {
	if req.Transcription != nil && *req.Transcription != d.Transcription {
		return true
	}
	if req.DoctorResponse != nil && *req.DoctorResponse != d.DoctorResponse {
		return true
	}
	return false
}
