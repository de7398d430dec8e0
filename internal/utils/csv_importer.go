package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ArowuTest/tourbook-backend/internal/models"
)

// UserCSVResult holds the users parsed from a population export
type UserCSVResult struct {
	Users     []*models.User
	TotalRows int
	Errors    []string
}

// ParseUsersCSV reads a population CSV. Columns are matched by header name,
// case-insensitively; only the id column is required. Invalid rows are
// reported and skipped.
func ParseUsersCSV(r io.Reader) (*UserCSVResult, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idIdx := findColumnIndex(header, []string{"id", "user_id", "User ID"})
	if idIdx == -1 {
		return nil, errors.New("id column not found in CSV")
	}
	nameIdx := findColumnIndex(header, []string{"name", "full_name", "Full Name"})
	emailIdx := findColumnIndex(header, []string{"email", "e-mail"})
	roleIdx := findColumnIndex(header, []string{"role", "rol"})
	countryIdx := findColumnIndex(header, []string{"country", "pais"})
	genderIdx := findColumnIndex(header, []string{"gender", "genero"})
	tripsIdx := findColumnIndex(header, []string{"trip_count", "trips", "Trip Count"})
	pushIdx := findColumnIndex(header, []string{"has_push_device", "push", "Push Enabled"})
	activeIdx := findColumnIndex(header, []string{"active", "is_active", "Active"})

	result := &UserCSVResult{Users: []*models.User{}}
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		result.TotalRows++
		line := result.TotalRows + 1
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", line, err))
			continue
		}

		id, err := strconv.ParseInt(column(row, idIdx), 10, 64)
		if err != nil || id <= 0 {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid id %q", line, column(row, idIdx)))
			continue
		}

		u := &models.User{
			ID:            id,
			Name:          column(row, nameIdx),
			Email:         column(row, emailIdx),
			Role:          column(row, roleIdx),
			Country:       column(row, countryIdx),
			Gender:        normalizeGender(column(row, genderIdx)),
			HasPushDevice: parseBool(column(row, pushIdx), false),
			Active:        parseBool(column(row, activeIdx), true),
		}
		if raw := column(row, tripsIdx); raw != "" {
			trips, err := strconv.Atoi(raw)
			if err != nil || trips < 0 {
				result.Errors = append(result.Errors, fmt.Sprintf("Row %d: invalid trip count %q", line, raw))
				continue
			}
			u.TripCount = trips
		}
		result.Users = append(result.Users, u)
	}
	return result, nil
}

// findColumnIndex finds the index of a column in the header
func findColumnIndex(header []string, possibleNames []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range possibleNames {
			if strings.ToLower(name) == h {
				return i
			}
		}
	}
	return -1
}

func column(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseBool(s string, fallback bool) bool {
	switch strings.ToLower(s) {
	case "yes", "true", "1", "y":
		return true
	case "no", "false", "0", "n":
		return false
	default:
		return fallback
	}
}

// normalizeGender maps common spellings onto the M/F/O codes
func normalizeGender(s string) string {
	switch strings.ToLower(s) {
	case "m", "male", "masculino":
		return models.GenderMale
	case "f", "female", "femenino":
		return models.GenderFemale
	case "":
		return ""
	default:
		return models.GenderOther
	}
}
