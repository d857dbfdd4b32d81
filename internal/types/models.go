package types

import "time"

const (
	IDLength       = 32
	FilePathLength = 500
)

// Agent is a call center agent. Rows are written once per generation
// run and are read-only afterwards.
type Agent struct {
	AgentID   string `json:"agent_id" gorm:"primaryKey;size:32"`
	FirstName string `json:"first_name" gorm:"size:30"`
	LastName  string `json:"last_name" gorm:"size:30"`

	Calls []Call `json:"-" gorm:"foreignKey:AgentID;references:AgentID"`
}

func (Agent) TableName() string { return "agent" }

// Client is a customer of the call center.
type Client struct {
	ClientID    string `json:"client_id" gorm:"primaryKey;size:32"`
	FirstName   string `json:"first_name" gorm:"size:30"`
	LastName    string `json:"last_name" gorm:"size:30"`
	PhoneNumber string `json:"phone_number" gorm:"size:20"`
	Email       string `json:"email" gorm:"size:50"`

	Calls []Call `json:"-" gorm:"foreignKey:ClientID;references:ClientID"`
}

func (Client) TableName() string { return "client" }

// Call is a single recorded call. It is created at ingestion and
// mutated in place as each pipeline stage writes back its columns.
// Derived columns are nullable: a call that failed mid-pipeline keeps
// whatever was filled in so far.
type Call struct {
	CallID   string     `json:"call_id" gorm:"primaryKey;size:32"`
	ClientID string     `json:"client_id" gorm:"size:32;not null"`
	AgentID  string     `json:"agent_id" gorm:"size:32;not null"`
	CallTime time.Time  `json:"call_time"`
	Status   CallStatus `json:"status" gorm:"size:20"`

	AudioFile         string  `json:"audio_file" gorm:"size:500"`
	TranscriptionFile *string `json:"transcription_file,omitempty" gorm:"size:500"`
	AnonymizedFile    *string `json:"anonymized_file,omitempty" gorm:"size:500"`

	// Analysis columns, filled by the answers post-processing stage.
	Topic                  *string `json:"topic,omitempty" gorm:"size:50"`
	Summary                *string `json:"summary,omitempty" gorm:"size:1000"`
	ConcernAddressed       *bool   `json:"concern_addressed,omitempty"`
	ClientTone             *string `json:"client_tone,omitempty" gorm:"size:20"`
	AgentTone              *string `json:"agent_tone,omitempty" gorm:"size:20"`
	UpsaleAttempted        *bool   `json:"upsale_attempted,omitempty"`
	UpsaleSuccess          *bool   `json:"upsale_success,omitempty"`
	Empathy                *int    `json:"empathy,omitempty"`
	Professionalism        *int    `json:"professionalism,omitempty"`
	Kindness               *int    `json:"kindness,omitempty"`
	EffectiveCommunication *int    `json:"effective_communication,omitempty"`
	ActiveListening        *int    `json:"active_listening,omitempty"`
	Customization          *int    `json:"customization,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Client *Client `json:"-" gorm:"foreignKey:ClientID;references:ClientID"`
	Agent  *Agent  `json:"-" gorm:"foreignKey:AgentID;references:AgentID"`
}

func (Call) TableName() string { return "call" }

// CallStatus tracks how far a call progressed through the pipeline.
type CallStatus string

const (
	StatusCreated        CallStatus = "created"
	StatusAudioProcessed CallStatus = "audio_processed"
	StatusSpeechDiarized CallStatus = "speech_diarized"
	StatusTranscribed    CallStatus = "transcribed"
	StatusAnonymized     CallStatus = "anonymized"
	StatusAnalyzed       CallStatus = "analyzed"
)
