package profile

import (
	"strings"
	"time"

	"github.com/wichananm65/sheshape-backend/internal/user"
	"github.com/wichananm65/sheshape-backend/internal/validation"
)

// Request carries profile and fitness fields for both setup and update. A nil
// field is left as it is; an empty list clears the stored set.
type Request struct {
	FirstName   *string `json:"firstName" validate:"omitempty,min=1,max=50"`
	LastName    *string `json:"lastName" validate:"omitempty,min=1,max=50"`
	DateOfBirth *string `json:"dateOfBirth" validate:"omitempty,pastdate"`
	Gender      *Gender `json:"gender" validate:"omitempty,oneof=MALE FEMALE OTHER PREFER_NOT_TO_SAY"`
	PhoneNumber *string `json:"phoneNumber" validate:"omitempty,phone"`

	HeightCm        *int     `json:"heightCm" validate:"omitempty,gte=100,lte=250"`
	CurrentWeightKg *float64 `json:"currentWeightKg" validate:"omitempty,gte=30,lte=300"`
	TargetWeightKg  *float64 `json:"targetWeightKg" validate:"omitempty,gte=30,lte=300"`

	FitnessLevel                    *FitnessLevel  `json:"fitnessLevel" validate:"omitempty,oneof=BEGINNER INTERMEDIATE ADVANCED EXPERT"`
	PrimaryGoal                     *FitnessGoal   `json:"primaryGoal" validate:"omitempty,oneof=WEIGHT_LOSS MUSCLE_GAIN STRENGTH_BUILDING ENDURANCE FLEXIBILITY GENERAL_FITNESS STRESS_RELIEF REHABILITATION"`
	FitnessGoals                    []FitnessGoal  `json:"fitnessGoals" validate:"omitempty,max=5,dive,oneof=WEIGHT_LOSS MUSCLE_GAIN STRENGTH_BUILDING ENDURANCE FLEXIBILITY GENERAL_FITNESS STRESS_RELIEF REHABILITATION"`
	PreferredActivities             []ActivityType `json:"preferredActivities" validate:"omitempty,max=5,dive,oneof=CARDIO STRENGTH_TRAINING YOGA PILATES HIIT DANCE SWIMMING RUNNING CYCLING WALKING"`
	WorkoutFrequencyPerWeek         *int           `json:"workoutFrequencyPerWeek" validate:"omitempty,gte=1,lte=7"`
	PreferredWorkoutDurationMinutes *int           `json:"preferredWorkoutDurationMinutes" validate:"omitempty,gte=15,lte=180"`
	PreferredWorkoutTimes           *string        `json:"preferredWorkoutTimes" validate:"omitempty,max=255"`

	DietaryRestrictions   *string `json:"dietaryRestrictions" validate:"omitempty,max=1000"`
	HealthConditions      *string `json:"healthConditions" validate:"omitempty,max=1000"`
	Medications           *string `json:"medications" validate:"omitempty,max=500"`
	EmergencyContactName  *string `json:"emergencyContactName" validate:"omitempty,max=100"`
	EmergencyContactPhone *string `json:"emergencyContactPhone" validate:"omitempty,phone"`

	Timezone           *string       `json:"timezone" validate:"omitempty,max=50"`
	Language           *string       `json:"language" validate:"omitempty,langcode"`
	EmailNotifications *bool         `json:"emailNotifications"`
	PushNotifications  *bool         `json:"pushNotifications"`
	PrivacyLevel       *PrivacyLevel `json:"privacyLevel" validate:"omitempty,oneof=PUBLIC FRIENDS PRIVATE"`
}

// nameErrors reports name fields that are blank. With required set, absent
// names are reported too.
func (r Request) nameErrors(required bool) map[string]string {
	errs := map[string]string{}
	check := func(field string, v *string) {
		if v == nil && !required {
			return
		}
		if v == nil || strings.TrimSpace(*v) == "" {
			errs[field] = field + " is required"
		}
	}
	check("firstName", r.FirstName)
	check("lastName", r.LastName)
	return errs
}

func (r Request) applyProfile(p *Profile) {
	setString(&p.FirstName, r.FirstName)
	setString(&p.LastName, r.LastName)
	if r.DateOfBirth != nil {
		// already checked by the pastdate rule
		if d, err := time.Parse(validation.DateLayout, *r.DateOfBirth); err == nil {
			p.DateOfBirth = &d
		}
	}
	if r.Gender != nil {
		p.Gender = *r.Gender
	}
	setString(&p.PhoneNumber, r.PhoneNumber)
	if r.HeightCm != nil {
		v := *r.HeightCm
		p.HeightCm = &v
	}
	if r.CurrentWeightKg != nil {
		v := *r.CurrentWeightKg
		p.CurrentWeightKg = &v
	}
	if r.TargetWeightKg != nil {
		v := *r.TargetWeightKg
		p.TargetWeightKg = &v
	}
	setString(&p.DietaryRestrictions, r.DietaryRestrictions)
	setString(&p.HealthConditions, r.HealthConditions)
	setString(&p.Medications, r.Medications)
	setString(&p.EmergencyContactName, r.EmergencyContactName)
	setString(&p.EmergencyContactPhone, r.EmergencyContactPhone)

	setString(&p.Preferences.Timezone, r.Timezone)
	setString(&p.Preferences.Language, r.Language)
	if r.EmailNotifications != nil {
		p.Preferences.EmailNotifications = *r.EmailNotifications
	}
	if r.PushNotifications != nil {
		p.Preferences.PushNotifications = *r.PushNotifications
	}
	if r.PrivacyLevel != nil {
		p.Preferences.PrivacyLevel = *r.PrivacyLevel
	}
}

func (r Request) applyFitness(f *FitnessProfile) {
	if r.FitnessLevel != nil {
		f.FitnessLevel = *r.FitnessLevel
	}
	if r.PrimaryGoal != nil {
		f.PrimaryGoal = *r.PrimaryGoal
	}
	if r.FitnessGoals != nil {
		f.FitnessGoals = append(Set[FitnessGoal]{}, r.FitnessGoals...)
	}
	if r.PreferredActivities != nil {
		f.PreferredActivities = append(Set[ActivityType]{}, r.PreferredActivities...)
	}
	if r.WorkoutFrequencyPerWeek != nil {
		v := *r.WorkoutFrequencyPerWeek
		f.WorkoutFrequencyPerWeek = &v
	}
	if r.PreferredWorkoutDurationMinutes != nil {
		v := *r.PreferredWorkoutDurationMinutes
		f.PreferredWorkoutDurationMinutes = &v
	}
	setString(&f.PreferredWorkoutTimes, r.PreferredWorkoutTimes)
}

// touchesFitness reports whether any fitness field is present.
func (r Request) touchesFitness() bool {
	return r.FitnessLevel != nil || r.PrimaryGoal != nil || r.FitnessGoals != nil ||
		r.PreferredActivities != nil || r.WorkoutFrequencyPerWeek != nil ||
		r.PreferredWorkoutDurationMinutes != nil || r.PreferredWorkoutTimes != nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

// Response is the combined view of a user, the profile and the fitness
// profile.
type Response struct {
	UserID           uint      `json:"userId"`
	Email            string    `json:"email"`
	Role             user.Role `json:"role"`
	IsActive         bool      `json:"isActive"`
	ProfileCompleted bool      `json:"profileCompleted"`
	UserCreatedAt    time.Time `json:"userCreatedAt"`
	UserUpdatedAt    time.Time `json:"userUpdatedAt"`

	FirstName         string `json:"firstName,omitempty"`
	LastName          string `json:"lastName,omitempty"`
	DateOfBirth       string `json:"dateOfBirth,omitempty"`
	Gender            Gender `json:"gender,omitempty"`
	PhoneNumber       string `json:"phoneNumber,omitempty"`
	ProfilePictureURL string `json:"profilePictureUrl,omitempty"`

	HeightCm        *int     `json:"heightCm,omitempty"`
	CurrentWeightKg *float64 `json:"currentWeightKg,omitempty"`
	TargetWeightKg  *float64 `json:"targetWeightKg,omitempty"`

	FitnessLevel                    FitnessLevel   `json:"fitnessLevel,omitempty"`
	PrimaryGoal                     FitnessGoal    `json:"primaryGoal,omitempty"`
	FitnessGoals                    []FitnessGoal  `json:"fitnessGoals"`
	PreferredActivities             []ActivityType `json:"preferredActivities"`
	WorkoutFrequencyPerWeek         *int           `json:"workoutFrequencyPerWeek,omitempty"`
	PreferredWorkoutDurationMinutes *int           `json:"preferredWorkoutDurationMinutes,omitempty"`
	PreferredWorkoutTimes           string         `json:"preferredWorkoutTimes,omitempty"`

	DietaryRestrictions   string `json:"dietaryRestrictions,omitempty"`
	HealthConditions      string `json:"healthConditions,omitempty"`
	Medications           string `json:"medications,omitempty"`
	EmergencyContactName  string `json:"emergencyContactName,omitempty"`
	EmergencyContactPhone string `json:"emergencyContactPhone,omitempty"`

	Preferences

	ProfileCreatedAt *time.Time `json:"profileCreatedAt,omitempty"`
	ProfileUpdatedAt *time.Time `json:"profileUpdatedAt,omitempty"`
}

func newResponse(u user.User, p *Profile, f *FitnessProfile) Response {
	res := Response{
		UserID:              u.ID,
		Email:               u.Email,
		Role:                u.Role,
		IsActive:            u.IsActive,
		ProfileCompleted:    u.ProfileCompleted,
		UserCreatedAt:       u.CreatedAt,
		UserUpdatedAt:       u.UpdatedAt,
		FitnessGoals:        []FitnessGoal{},
		PreferredActivities: []ActivityType{},
	}
	if p != nil {
		res.FirstName = p.FirstName
		res.LastName = p.LastName
		if p.DateOfBirth != nil {
			res.DateOfBirth = p.DateOfBirth.Format(validation.DateLayout)
		}
		res.Gender = p.Gender
		res.PhoneNumber = p.PhoneNumber
		res.ProfilePictureURL = p.ProfilePictureURL
		res.HeightCm = p.HeightCm
		res.CurrentWeightKg = p.CurrentWeightKg
		res.TargetWeightKg = p.TargetWeightKg
		res.DietaryRestrictions = p.DietaryRestrictions
		res.HealthConditions = p.HealthConditions
		res.Medications = p.Medications
		res.EmergencyContactName = p.EmergencyContactName
		res.EmergencyContactPhone = p.EmergencyContactPhone
		res.Preferences = p.Preferences
		created, updated := p.CreatedAt, p.UpdatedAt
		res.ProfileCreatedAt = &created
		res.ProfileUpdatedAt = &updated
	}
	if f != nil {
		res.FitnessLevel = f.FitnessLevel
		res.PrimaryGoal = f.PrimaryGoal
		if f.FitnessGoals != nil {
			res.FitnessGoals = f.FitnessGoals
		}
		if f.PreferredActivities != nil {
			res.PreferredActivities = f.PreferredActivities
		}
		res.WorkoutFrequencyPerWeek = f.WorkoutFrequencyPerWeek
		res.PreferredWorkoutDurationMinutes = f.PreferredWorkoutDurationMinutes
		res.PreferredWorkoutTimes = f.PreferredWorkoutTimes
	}
	return res
}
