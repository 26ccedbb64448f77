package analytics

import "time"

// Stage is the client-visible lifecycle state of an inquiry. The pipeline
// performs several internal phases between processing and done; each phase
// commits its fields and broadcasts, but only these three values ever
// appear in the status field.
type Stage string

const (
	StageCreated    Stage = "created"
	StageProcessing Stage = "processing"
	StageDone       Stage = "done"
)

// Row is one record of a result set. Keys vary per subject table, and the
// product time-series projection produces one column per product name, so
// rows stay schemaless.
type Row map[string]any

type Axis struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Color string `json:"color,omitempty"`
}

// ChartConfig is selected once per inquiry and immutable afterwards.
type ChartConfig struct {
	XAxis Axis   `json:"xAxis"`
	YAxes []Axis `json:"yAxes"`
}

type Session struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"-"`
	SessionID string    `gorm:"type:varchar(36);uniqueIndex;not null" json:"id"`
	CreatedAt time.Time `json:"created"`

	// Ordered inquiry IDs owned by this session, loaded on read.
	InquiryIDs []string `gorm:"-" json:"inquiries"`
}

func (Session) TableName() string { return "analytics_sessions" }

type Inquiry struct {
	ID        string `gorm:"primaryKey;size:26" json:"id"` // ULID length
	SessionID string `gorm:"type:varchar(36);index;not null" json:"sessionId"`
	Question  string `gorm:"type:text;not null" json:"question"`
	Stage     Stage  `gorm:"column:status;type:varchar(16);index;not null" json:"status"`

	// Populated progressively by the pipeline, strictly additive.
	TimeFrame     string       `gorm:"type:varchar(64)" json:"timeFrame,omitempty"`
	SQL           string       `gorm:"column:sql_text;type:text" json:"sql,omitempty"`
	TableData     []Row        `gorm:"serializer:json" json:"tableData,omitempty"`
	ChartType     string       `gorm:"type:varchar(16)" json:"chartType,omitempty"`
	ChartConfig   *ChartConfig `gorm:"serializer:json" json:"chartConfig,omitempty"`
	TextualAnswer string       `gorm:"type:text" json:"textualAnswer,omitempty"`

	CreatedAt time.Time `json:"created"`
	UpdatedAt time.Time `json:"updated"`
}

func (Inquiry) TableName() string { return "analytics_inquiries" }
