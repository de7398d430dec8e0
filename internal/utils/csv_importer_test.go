package utils

import (
	"strings"
	"testing"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseUsersCSV(t *testing.T) {
	input := strings.Join([]string{
		"User ID,Full Name,Email,Role,Country,Gender,Trips,Push Enabled,Active",
		"1,Ana Quispe,ana@example.com,Cliente,PE,Femenino,5,yes,yes",
		"2,Luis Rojas,luis@example.com,Cliente,CL,male,1,no,",
		"x,Broken,broken@example.com,Cliente,PE,F,1,yes,yes",
		"4,Rosa,rosa@example.com,Guia,PE,,many,yes,no",
		"5,Pat,pat@example.com,Cliente,AR,nb,0,1,0",
	}, "\n")

	res, err := ParseUsersCSV(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 5, res.TotalRows)
	assert.Len(t, res.Errors, 2)
	require.Len(t, res.Users, 3)

	assert.Equal(t, &models.User{
		ID: 1, Name: "Ana Quispe", Email: "ana@example.com", Role: "Cliente", Country: "PE",
		Gender: models.GenderFemale, TripCount: 5, HasPushDevice: true, Active: true,
	}, res.Users[0])
	assert.Equal(t, models.GenderMale, res.Users[1].Gender)
	assert.False(t, res.Users[1].HasPushDevice)
	assert.True(t, res.Users[1].Active, "active defaults to true")
	assert.Equal(t, models.GenderOther, res.Users[2].Gender)
	assert.False(t, res.Users[2].Active)
}

func TestParseUsersCSV_MissingIDColumn(t *testing.T) {
	_, err := ParseUsersCSV(strings.NewReader("name,email\nAna,ana@example.com\n"))
	assert.ErrorContains(t, err, "id column")
}
