package events

import "time"

const (
	CategoryEnvironment = "Environment"
	CategoryEducation   = "Education"
	CategoryHealth      = "Health"
	CategoryCommunity   = "Community"
	CategoryAnimals     = "Animals"
	CategoryElderly     = "Elderly"
	CategoryGeneral     = "General"

	MinCapacity = 1
	MaxCapacity = 1000
)

type Event struct {
	ID            string    `gorm:"type:uuid;primaryKey"`
	Title         string    `gorm:"not null"`
	Description   string    `gorm:"not null"`
	Date          time.Time `gorm:"not null;index"`
	Time          string    `gorm:"not null;default:''"`
	Location      string    `gorm:"not null"`
	Category      string    `gorm:"type:varchar(32);not null;default:General;index"`
	MaxVolunteers int       `gorm:"not null"`
	CreatedBy     string    `gorm:"type:uuid;not null;index"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	UpdatedAt     time.Time `gorm:"autoUpdateTime"`
}

// Volunteer is one roster row. The (event, user) key makes the roster a set.
type Volunteer struct {
	EventID  string    `gorm:"type:uuid;primaryKey"`
	UserID   string    `gorm:"type:uuid;primaryKey"`
	JoinedAt time.Time `gorm:"not null"`
}

func (Volunteer) TableName() string {
	return "event_volunteers"
}

type Person struct {
	ID    string
	Name  string
	Email string
}

type RosterEntry struct {
	Person
	JoinedAt time.Time
}

// Roster is an event together with its current volunteers. Availability
// is always derived from Volunteers, never stored.
type Roster struct {
	Event      Event
	Creator    Person
	Volunteers []RosterEntry
}

func (r Roster) CurrentVolunteers() int {
	return len(r.Volunteers)
}

func (r Roster) IsFull() bool {
	return r.CurrentVolunteers() >= r.Event.MaxVolunteers
}

func (r Roster) SpotsRemaining() int {
	return r.Event.MaxVolunteers - r.CurrentVolunteers()
}

func (r Roster) Has(userID string) bool {
	for _, entry := range r.Volunteers {
		if entry.ID == userID {
			return true
		}
	}
	return false
}

type ListFilter struct {
	Category string
}

type CreateEventInput struct {
	Title         string `validate:"required,max=100"`
	Description   string `validate:"required,max=1000"`
	Date          time.Time
	Time          string `validate:"max=50"`
	Location      string `validate:"required,max=200"`
	Category      string `validate:"oneof=Environment Education Health Community Animals Elderly General"`
	MaxVolunteers int
}

type UpdateEventInput struct {
	ID            string
	Title         *string `validate:"omitnil,min=1,max=100"`
	Description   *string `validate:"omitnil,min=1,max=1000"`
	Date          *time.Time
	Time          *string `validate:"omitnil,max=50"`
	Location      *string `validate:"omitnil,min=1,max=200"`
	Category      *string `validate:"omitnil,oneof=Environment Education Health Community Animals Elderly General"`
	MaxVolunteers *int
}
