package models

import (
	"time"
)

// Diagnosis representa la tabla diagnoses. Los *FileID apuntan a objetos del blob store.
type Diagnosis struct {
	ID             string    `json:"id" db:"id"`
	UserEmail      string    `json:"user_email" db:"user_email"`
	ImageFileID    *string   `json:"image_file_id" db:"image_file_id"`
	AudioFileID    *string   `json:"audio_file_id" db:"audio_file_id"`
	AudioOutputID  *string   `json:"audio_output_id" db:"audio_output_id"`
	Transcription  string    `json:"transcription" db:"transcription"`
	DoctorResponse string    `json:"doctor_response" db:"doctor_response"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// BlobIDs devuelve los ids de blobs asociados que no son nulos
func (d *Diagnosis) BlobIDs() []string {
	var ids []string
	for _, id := range []*string{d.ImageFileID, d.AudioFileID, d.AudioOutputID} {
		if id != nil && *id != "" {
			ids = append(ids, *id)
		}
	}
	return ids
}

// HistoryRecord es la forma en que el historial se entrega al cliente
type HistoryRecord struct {
	ID              string    `json:"id"`
	UserEmail       string    `json:"userEmail"`
	Transcription   string    `json:"transcription"`
	DoctorResponse  string    `json:"doctorResponse"`
	CreatedAt       time.Time `json:"createdAt"`
	ImagePath       *string   `json:"imagePath"`
	AudioOutputPath *string   `json:"audioOutputPath"`
}

// HistoryRecord convierte el diagnóstico en un registro de historial con rutas relativas
func (d *Diagnosis) HistoryRecord() HistoryRecord {
	rec := HistoryRecord{
		ID:             d.ID,
		UserEmail:      d.UserEmail,
		Transcription:  d.Transcription,
		DoctorResponse: d.DoctorResponse,
		CreatedAt:      d.CreatedAt,
	}
	if d.ImageFileID != nil && *d.ImageFileID != "" {
		p := "medibot/image/" + *d.ImageFileID
		rec.ImagePath = &p
	}
	if d.AudioOutputID != nil && *d.AudioOutputID != "" {
		p := "medibot/audio/" + *d.AudioOutputID
		rec.AudioOutputPath = &p
	}
	return rec
}

type DiagnosisCreateRequest struct {
	Transcription  string     `json:"transcription"`
	DoctorResponse string     `json:"doctorResponse"`
	CreatedAt      *time.Time `json:"createdAt,omitempty"`
}

// DiagnosisUpdateRequest solo modifica los campos presentes
type DiagnosisUpdateRequest struct {
	Transcription  *string `json:"transcription"`
	DoctorResponse *string `json:"doctorResponse"`
}

// Empty indica que la petición no trae nada que actualizar
func (r DiagnosisUpdateRequest) Empty() bool {
	return r.Transcription == nil && r.DoctorResponse == nil
}

// ConsultationResult es la respuesta de /medibot/process
type ConsultationResult struct {
	Message        string `json:"message"`
	DiagnosisID    string `json:"diagnosis_id"`
	Transcription  string `json:"transcription"`
	DoctorResponse string `json:"doctor_response"`
	ImageURL       string `json:"image_url"`
	AudioURL       string `json:"audio_url,omitempty"`
	// Fuentes que respondieron; "placeholder" cuando ningún proveedor funcionó
	TranscriptionSource string `json:"transcription_source"`
	AnalysisSource      string `json:"analysis_source"`
	SpeechSource        string `json:"speech_source"`
}
