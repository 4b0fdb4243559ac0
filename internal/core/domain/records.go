package domain

import "time"

// FarmType values accepted for Farm.Type.
const (
	FarmTypePoultry = "poultry"
	FarmTypePig     = "pig"
)

// Sensor is a named reading attached to a farm.
type Sensor struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Farm is a farm record owned by a user.
type Farm struct {
	ID        string    `json:"_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Type      string    `json:"type"`
	Size      float64   `json:"size"`
	Sensors   []Sensor  `json:"sensors"`
	OwnerID   string    `json:"owner"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// AlertSeverity ranks a disease alert.
type AlertSeverity string

const (
	SeverityLow    AlertSeverity = "low"
	SeverityMedium AlertSeverity = "medium"
	SeverityHigh   AlertSeverity = "high"
)

// Alert is a disease alert, optionally scoped to a farm.
type Alert struct {
	ID        string        `json:"_id"`
	FarmID    string        `json:"farm,omitempty"`
	Message   string        `json:"message"`
	Severity  AlertSeverity `json:"severity"`
	Date      time.Time     `json:"date"`
	CreatedBy string        `json:"createdBy,omitempty"`
}

// Compliance records the outcome of one biosecurity check on a farm.
type Compliance struct {
	ID     string    `json:"_id"`
	FarmID string    `json:"farm,omitempty"`
	Check  string    `json:"check"`
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
}

// Feedback is a free-text message submitted by a user.
type Feedback struct {
	ID      string    `json:"_id"`
	UserID  string    `json:"user"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
}
