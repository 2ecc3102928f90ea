package models_test

import (
	"testing"

	"anonchat/backend/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestUser_Display(t *testing.T) {
	u := models.User{Name: "Alice", Gender: models.GenderFemale, Age: 25}
	assert.Equal(t, "Alice 👧 25", u.Display())

	u = models.User{Name: "Bob", Gender: models.GenderMale, Age: 30}
	assert.Equal(t, "Bob 👦 30", u.Display())

	// Pseudonym users have neither gender nor age.
	u = models.User{Name: "Guest-ab12cd34"}
	assert.Equal(t, "Guest-ab12cd34 👤", u.Display())
}

func TestUser_AvgRating(t *testing.T) {
	u := models.User{}
	assert.Equal(t, "no ratings yet", u.AvgRating())

	u = models.User{RatingSum: 9, RatingCount: 2}
	assert.Equal(t, "4.5 ⭐ (2)", u.AvgRating())
}

func TestSession_Partner(t *testing.T) {
	s := models.Session{User1ID: 1, User2ID: 2}
	assert.Equal(t, int64(2), s.Partner(1))
	assert.Equal(t, int64(1), s.Partner(2))
}
