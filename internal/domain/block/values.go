package block

// Decoded block values. Field names follow the JSON shapes the front-end sends.

type MeasurementValue struct {
	Value           float64 `json:"value"`
	Unit            string  `json:"unit"`
	MeasurementType string  `json:"measurementType,omitempty"`
	Notes           string  `json:"notes,omitempty"`
}

type RatingValue struct {
	Rating int    `json:"rating"`
	Notes  string `json:"notes,omitempty"`
}

type PortionValue struct {
	Amount           *float64 `json:"amount,omitempty"`
	Unit             string   `json:"unit,omitempty"`
	Brand            string   `json:"brand,omitempty"`
	Product          string   `json:"product,omitempty"`
	ConsumedPercent  *float64 `json:"consumedPercent,omitempty"`
	AllergicReaction bool     `json:"allergicReaction,omitempty"`
	Symptoms         []string `json:"symptoms,omitempty"`
	Severity         string   `json:"severity,omitempty"`
}

type TimerValue struct {
	DurationMinutes int    `json:"durationMinutes"`
	StartTime       string `json:"startTime,omitempty"`
	EndTime         string `json:"endTime,omitempty"`
}

type LocationValue struct {
	Name      string   `json:"name"`
	Address   string   `json:"address,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
}

type WeatherValue struct {
	Condition       string   `json:"condition"`
	Temperature     *float64 `json:"temperature,omitempty"`
	TemperatureUnit string   `json:"temperatureUnit,omitempty"`
}

type ChecklistItem struct {
	Label   string `json:"label"`
	Checked bool   `json:"checked"`
}

type ChecklistValue struct {
	Items []ChecklistItem `json:"items"`
}

// File is an attached file's metadata; the bytes live with the photo store.
type File struct {
	ID       string `json:"id,omitempty"`
	Name     string `json:"name"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
	Path     string `json:"path,omitempty"`
}

type AttachmentValue struct {
	Files []File `json:"files"`
}

type CostValue struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Category string  `json:"category,omitempty"`
	Receipt  *File   `json:"receipt,omitempty"`
}

type ReminderValue struct {
	Date   string `json:"date"`
	Time   string `json:"time,omitempty"`
	Repeat string `json:"repeat,omitempty"`
	Note   string `json:"note,omitempty"`
}

type Person struct {
	Name    string `json:"name"`
	Role    string `json:"role,omitempty"`
	Contact string `json:"contact,omitempty"`
}

type PeopleValue struct {
	People []Person `json:"people"`
}

type RecurrenceValue struct {
	Frequency string `json:"frequency"`
	Interval  int    `json:"interval"`
	EndDate   string `json:"endDate,omitempty"`
}
