package domain

// ListInput narrows an alert listing
type ListInput struct {
	State string `json:"state,omitempty" validate:"omitempty,oneof=open merged skipped expired" example:"open"`
	Limit int    `json:"limit,omitempty" validate:"omitempty,min=1,max=200" example:"50"`
}

// ResolveInput identifies the alert an operator verdict applies to
type ResolveInput struct {
	AlertID string `json:"alert_id" validate:"required,uuid4" example:"7b1e7e6e-0d7e-4f0a-9c1a-2f8f1f6d9b1c"`
}

// AlertDTO is the wire shape of one alert
type AlertDTO struct {
	ID          string  `json:"id"`
	SubjectID   string  `json:"subject_id"`
	CandidateID string  `json:"candidate_id"`
	Score       float64 `json:"score"`
	Tier        string  `json:"tier"`
	State       string  `json:"state"`
	Description string  `json:"description"`
	CreatedUnix int64   `json:"created_unix"`
	UpdatedUnix int64   `json:"updated_unix"`

	// ResolvedUnix is present only once an operator verdict or expiry landed
	ResolvedUnix *int64 `json:"resolved_unix,omitempty"`
}

// ToDTO converts an Alert to its wire shape
func ToDTO(a Alert) AlertDTO {
	var resolved *int64
	if a.ResolvedAt != nil {
		u := a.ResolvedAt.Unix()
		resolved = &u
	}
	return AlertDTO{
		ID:           a.ID,
		SubjectID:    a.SubjectID,
		CandidateID:  a.CandidateID,
		Score:        a.Score,
		Tier:         string(a.Tier),
		State:        string(a.State),
		Description:  a.Description,
		CreatedUnix:  a.CreatedAt.Unix(),
		UpdatedUnix:  a.UpdatedAt.Unix(),
		ResolvedUnix: resolved,
	}
}
