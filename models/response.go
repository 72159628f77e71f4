package models

import "github.com/dnounce/dnounce-api/lifecycle"

// HealthCheckResponse returns the health check response duh
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}

// LifecycleView is the lifecycle block every case surface renders.
type LifecycleView struct {
	State         lifecycle.State           `json:"state"`
	Config        lifecycle.StageConfig     `json:"config"`
	DurationHours int                       `json:"durationHours"`
	StatusText    string                    `json:"statusText"`
	TimeLeft      string                    `json:"timeLeft,omitempty"`
	Tracker       []lifecycle.TrackerStep   `json:"tracker"`
	Permissions   map[lifecycle.Action]bool `json:"permissions"`
}

// CaseResponse is a case with its lifecycle, as seen by one role.
type CaseResponse struct {
	Case            Case           `json:"case"`
	TypeLabel       string         `json:"typeLabel"`
	DisplayNameLine string         `json:"displayNameLine"`
	SummaryOneLine  string         `json:"summaryOneLine"`
	DefendantID     string         `json:"defendantId"`
	Role            lifecycle.Role `json:"role"`
	Lifecycle       LifecycleView  `json:"lifecycle"`
}

// CaseListResponse wraps a page of cases.
type CaseListResponse struct {
	Cases []CaseResponse `json:"cases"`
	Count int            `json:"count"`
}

// SubmitCaseResponse is returned when a case is filed.
type SubmitCaseResponse struct {
	CaseID    string   `json:"caseId"`
	Type      CaseType `json:"type"`
	Forwarded bool     `json:"forwarded"`
	Message   string   `json:"message"`
}

// StoreResponse is returned by the waitlist and survey endpoints.
type StoreResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// StatsResponse is the admin dashboard summary.
type StatsResponse struct {
	Waitlist int    `json:"waitlist"`
	Surveys  int    `json:"surveys"`
	Cases    int    `json:"cases"`
	Source   string `json:"source"`
}
