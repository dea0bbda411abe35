package models

// StatCard is a headline metric on the overview and analytics screens.
type StatCard struct {
	Title  string `json:"title" yaml:"title"`
	Value  string `json:"value" yaml:"value"`
	Change string `json:"change" yaml:"change"`
	Trend  string `json:"trend,omitempty" yaml:"trend,omitempty"`
	Period string `json:"period,omitempty" yaml:"period,omitempty"`
}

// ActivityItem is a row in the recent automation activity list.
type ActivityItem struct {
	ID     int    `json:"id" yaml:"id"`
	Type   string `json:"type" yaml:"type"`
	Status string `json:"status" yaml:"status"`
	Time   string `json:"time" yaml:"time"`
	Amount string `json:"amount" yaml:"amount"`
}

// WorkflowStep is one stage of an automated workflow.
type WorkflowStep struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Type     string `json:"type" yaml:"type"`     // "ai", "human", "system"
	Status   string `json:"status" yaml:"status"` // "completed", "active", "pending"
	Assignee string `json:"assignee,omitempty" yaml:"assignee,omitempty"`
}

// Workflow is a configured automation pipeline shown on the workflows screen.
type Workflow struct {
	ID                string         `json:"id" yaml:"id"`
	Name              string         `json:"name" yaml:"name"`
	Description       string         `json:"description" yaml:"description"`
	Status            string         `json:"status" yaml:"status"` // "active", "paused", "draft"
	TriggerCount      int            `json:"triggerCount" yaml:"trigger_count"`
	SuccessRate       float64        `json:"successRate" yaml:"success_rate"`
	AvgProcessingTime string         `json:"avgProcessingTime" yaml:"avg_processing_time"`
	Steps             []WorkflowStep `json:"steps" yaml:"steps"`
}

// DepartmentStat summarises automation results for one department.
type DepartmentStat struct {
	Department string  `json:"department" yaml:"department"`
	Documents  int     `json:"documents" yaml:"documents"`
	Accuracy   float64 `json:"accuracy" yaml:"accuracy"`
	Savings    string  `json:"savings" yaml:"savings"`
}

// WorkflowPerformance summarises throughput for one workflow.
type WorkflowPerformance struct {
	Workflow string  `json:"workflow" yaml:"workflow"`
	Volume   int     `json:"volume" yaml:"volume"`
	Accuracy float64 `json:"accuracy" yaml:"accuracy"`
	AvgTime  string  `json:"avgTime" yaml:"avg_time"`
}

// AnalyticsView holds the literal analytics screen data.
type AnalyticsView struct {
	Metrics             []StatCard            `json:"metrics" yaml:"metrics"`
	Departments         []DepartmentStat      `json:"departments" yaml:"departments"`
	WorkflowPerformance []WorkflowPerformance `json:"workflowPerformance" yaml:"workflow_performance"`
}

// SettingToggle is a single on/off preference on the settings screen.
type SettingToggle struct {
	Key         string `json:"key" yaml:"key"`
	Label       string `json:"label" yaml:"label"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool   `json:"enabled" yaml:"enabled"`
}

// SettingsSection groups related toggles.
type SettingsSection struct {
	Title   string          `json:"title" yaml:"title"`
	Toggles []SettingToggle `json:"toggles" yaml:"toggles"`
}

// Integration is an external business system shown on the settings screen.
type Integration struct {
	Name   string `json:"name" yaml:"name"`
	Type   string `json:"type" yaml:"type"`
	Status string `json:"status" yaml:"status"` // "connected", "pending", "disconnected"
}

// TeamSummary is the team management card.
type TeamSummary struct {
	ActiveUsers        int `json:"activeUsers" yaml:"active_users"`
	SeatLimit          int `json:"seatLimit" yaml:"seat_limit"`
	AdminUsers         int `json:"adminUsers" yaml:"admin_users"`
	PendingInvitations int `json:"pendingInvitations" yaml:"pending_invitations"`
}

// SettingsView holds the literal settings screen data.
type SettingsView struct {
	Integrations []Integration     `json:"integrations" yaml:"integrations"`
	Sections     []SettingsSection `json:"sections" yaml:"sections"`
	Compliance   []string          `json:"compliance" yaml:"compliance"`
	Team         TeamSummary       `json:"team" yaml:"team"`
}

// SeedDocument is a pre-populated record shown before any upload happens.
type SeedDocument struct {
	Name            string         `yaml:"name"`
	DocumentType    string         `yaml:"document_type"`
	Status          DocumentStatus `yaml:"status"`
	Confidence      float64        `yaml:"confidence"`
	ExtractedFields map[string]any `yaml:"extracted_fields"`
	ReceivedAt      string         `yaml:"received_at"`
}
