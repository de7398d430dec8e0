package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/ArowuTest/tourbook-backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so clients can map errors back to the form
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("notblank", validators.NotBlank)
	return v
}

// ValidateCampaignInput checks a campaign submission and reports every invalid field
func ValidateCampaignInput(in *models.CampaignInput, now time.Time) error {
	fields := map[string]string{}

	if err := validate.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		for _, fe := range verrs {
			fields[fe.Field()] = describe(fe)
		}
	}

	switch in.Audience {
	case models.AudienceExplicit:
		if len(in.UserIDs) == 0 {
			fields["userIds"] = "at least one user is required"
		} else if msg := checkUserIDs(in.UserIDs); msg != "" {
			fields["userIds"] = msg
		}
	case models.AudienceSegment:
		if len(in.Segment) == 0 {
			fields["segment"] = "at least one filter is required"
		} else {
			_, problems := models.ParseSegment(in.Segment)
			for k, v := range problems {
				fields[k] = v
			}
		}
	}

	if !in.SendImmediately {
		switch {
		case in.ScheduledAt == nil:
			fields["scheduledAt"] = "is required when not sending immediately"
		case !in.ScheduledAt.After(now):
			fields["scheduledAt"] = "must be in the future"
		}
	}

	if len(fields) > 0 {
		return &models.ValidationError{Fields: fields}
	}
	return nil
}

func checkUserIDs(ids []int64) string {
	seen := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		if id <= 0 {
			return fmt.Sprintf("invalid user id %d", id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Sprintf("user id %d is listed more than once", id)
		}
		seen[id] = struct{}{}
	}
	return ""
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "notblank":
		return "must not be blank"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

// applyInput copies validated input onto the campaign, clearing targeting that
// does not belong to the chosen audience mode
func applyInput(c *models.Campaign, in *models.CampaignInput) {
	c.Title = in.Title
	c.Body = in.Body
	c.Kind = in.Kind
	c.Audience = in.Audience
	c.UserIDs = nil
	c.Segment = nil
	switch in.Audience {
	case models.AudienceExplicit:
		c.UserIDs = append([]int64(nil), in.UserIDs...)
	case models.AudienceSegment:
		c.Segment = make(map[string]string, len(in.Segment))
		for k, v := range in.Segment {
			c.Segment[k] = strings.TrimSpace(v)
		}
	}
	c.SendImmediately = in.SendImmediately
	c.ScheduledAt = nil
	if !in.SendImmediately && in.ScheduledAt != nil {
		t := *in.ScheduledAt
		c.ScheduledAt = &t
	}
}
