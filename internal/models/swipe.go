package models

import "time"

// Direction is a swipe decision.
type Direction string

const (
	DirectionLeft  Direction = "left"
	DirectionRight Direction = "right"
)

// Swipe is a one-way decision from one user toward another. At most one
// swipe exists per ordered (swiper, swiped) pair; rows are immutable.
type Swipe struct {
	ID        int       `db:"id" json:"id"`
	SwiperID  int       `db:"swiper_id" json:"swiper_id"`
	SwipedID  int       `db:"swiped_id" json:"swiped_id"`
	Direction Direction `db:"direction" json:"direction"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
