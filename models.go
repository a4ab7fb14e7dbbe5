package clinic

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the identity record behind every role. Emails are stored
// lowercased and are unique; the store owns that constraint.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID      `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Role          UserRole       `bun:"role,notnull" json:"role,omitempty"`
	Name          string         `bun:"name,notnull" json:"name,omitempty"`
	Email         string         `bun:"email,notnull,unique" json:"email,omitempty"`
	PasswordHash  string         `bun:"password_hash,notnull" json:"-"`
	Mobile        string         `bun:"mobile" json:"mobile,omitempty"`
	NFCToken      string         `bun:"nfc_token" json:"nfc_token,omitempty"`
	Approved      bool           `bun:"approved,notnull,default:false" json:"approved"`
	Metadata      map[string]any `bun:"metadata" json:"metadata,omitempty"`
	CreatedAt     *time.Time     `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time     `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// AddMetadata will append information to a metadata attribute
func (u *User) AddMetadata(key string, val any) *User {
	if u.Metadata == nil {
		u.Metadata = make(map[string]any)
	}
	u.Metadata[key] = val
	return u
}

// Medication is a single entry in a prescription's medication list.
type Medication struct {
	Name   string `json:"name"`
	Dosage string `json:"dosage,omitempty"`
	Notes  string `json:"notes,omitempty"`
}

// Prescription is authored by a doctor for a patient and is immutable
// after creation; there are no update or delete operations.
//
// Patient and doctor references are plain identifiers, not ownership
// links: the referenced user may be deleted independently and a
// dangling reference is not an error.
type Prescription struct {
	bun.BaseModel `bun:"table:prescriptions,alias:pres"`
	ID            uuid.UUID    `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PatientID     uuid.UUID    `bun:"patient_id,notnull,type:uuid" json:"patient_id"`
	DoctorID      uuid.UUID    `bun:"doctor_id,notnull,type:uuid" json:"doctor_id"`
	Doctor        *User        `bun:"rel:belongs-to,join:doctor_id=id" json:"doctor,omitempty"`
	Diagnosis     string       `bun:"diagnosis" json:"diagnosis,omitempty"`
	Medications   []Medication `bun:"medications,type:jsonb" json:"medications"`
	Notes         string       `bun:"notes" json:"notes,omitempty"`
	FollowUp      *time.Time   `bun:"follow_up,nullzero" json:"follow_up,omitempty"`
	CreatedAt     *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt     *time.Time   `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Document is upload metadata only; the binary payload lives in the
// file store under StoredPath.
type Document struct {
	bun.BaseModel `bun:"table:documents,alias:doc"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	PatientID     uuid.UUID  `bun:"patient_id,notnull,type:uuid" json:"patient_id"`
	UploadedBy    *uuid.UUID `bun:"uploaded_by,nullzero,type:uuid" json:"uploaded_by,omitempty"`
	Filename      string     `bun:"filename,notnull" json:"filename"`
	StoredPath    string     `bun:"stored_path,notnull" json:"stored_path"`
	Mimetype      string     `bun:"mimetype" json:"mimetype,omitempty"`
	Size          int64      `bun:"size" json:"size,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}
