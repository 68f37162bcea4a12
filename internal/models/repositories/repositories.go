package repositories

import (
	"database/sql"
	"time"
)

type BaseModel struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	IsActive  bool      `db:"is_active"`
}

type Event struct {
	BaseModel
	Name        string         `db:"name"`
	Type        string         `db:"type"`
	Genre       string         `db:"genre"`
	Location    string         `db:"location"`
	Time        string         `db:"time"`
	ImageURL    sql.NullString `db:"image_url"`
	Description string         `db:"description"`
	Director    string         `db:"director"`
	Cast        []byte         `db:"cast"`
	Duration    string         `db:"duration"`
	Rating      float64        `db:"rating"`
	Favorite    bool           `db:"favorite"`
}

type TicketSite struct {
	ID      int64   `db:"id"`
	EventID int64   `db:"event_id"`
	Name    string  `db:"name"`
	Price   float64 `db:"price"`
	URL     string  `db:"url"`
}

type User struct {
	BaseModel
	Email    string `db:"email"`
	Password string `db:"password"`
	Name     string `db:"name"`
}
