package models

import "fmt"

// Basis is the persisted record for a root scope. The core reads only the
// name, resource id and path; everything else is carried opaquely.
type Basis struct {
	BaseModel

	// Name is a user-friendly name for the basis.
	// Must be unique across all bases.
	Name string `gorm:"uniqueIndex;not null;size:255" json:"name"`

	// Path is the filesystem location of the basis data directory.
	Path string `gorm:"size:2048" json:"path,omitempty"`

	// Projects are the projects owned by this basis.
	Projects []*Project `gorm:"foreignKey:BasisID;constraint:OnDelete:CASCADE" json:"projects,omitempty"`
}

// Validate checks the record for storage errors.
func (b *Basis) Validate() error {
	if b.Name == "" {
		return fmt.Errorf("basis name is required")
	}
	return nil
}

// Project is the persisted record for a project scope owned by a basis.
type Project struct {
	BaseModel

	// BasisID is the resource id of the owning basis.
	BasisID ULID `gorm:"uniqueIndex:idx_project_basis_name;not null;type:char(26)" json:"basis_id"`

	// Name is unique within the owning basis.
	Name string `gorm:"uniqueIndex:idx_project_basis_name;not null;size:255" json:"name"`

	// Path is the filesystem location of the project.
	Path string `gorm:"size:2048" json:"path,omitempty"`

	// Targets are the targets owned by this project.
	Targets []*Target `gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE" json:"targets,omitempty"`
}

// Validate checks the record for storage errors.
func (p *Project) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if p.BasisID.IsZero() {
		return fmt.Errorf("project requires an owning basis")
	}
	return nil
}

// TargetState describes the lifecycle state of a target.
type TargetState string

const (
	// TargetStateUnknown indicates the target state has not been recorded.
	TargetStateUnknown TargetState = "unknown"
	// TargetStatePending indicates the target has been declared but not created.
	TargetStatePending TargetState = "pending"
	// TargetStateCreated indicates the target exists.
	TargetStateCreated TargetState = "created"
	// TargetStateDestroyed indicates the target has been torn down.
	TargetStateDestroyed TargetState = "destroyed"
)

// Target is the persisted record for a machine-like resource owned by a
// project.
type Target struct {
	BaseModel

	// ProjectID is the resource id of the owning project.
	ProjectID ULID `gorm:"uniqueIndex:idx_target_project_name;not null;type:char(26)" json:"project_id"`

	// Name is unique within the owning project.
	Name string `gorm:"uniqueIndex:idx_target_project_name;not null;size:255" json:"name"`

	// Provider is the name of the provider plugin backing this target.
	Provider string `gorm:"size:255" json:"provider,omitempty"`

	// State is the last recorded lifecycle state.
	State TargetState `gorm:"not null;default:'unknown';size:20" json:"state"`
}

// Validate checks the record for storage errors.
func (t *Target) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("target name is required")
	}
	if t.ProjectID.IsZero() {
		return fmt.Errorf("target requires an owning project")
	}
	return nil
}
