package profile

import (
	"database/sql/driver"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/wichananm65/sheshape-backend/internal/user"
)

type Gender string

const (
	GenderMale           Gender = "MALE"
	GenderFemale         Gender = "FEMALE"
	GenderOther          Gender = "OTHER"
	GenderPreferNotToSay Gender = "PREFER_NOT_TO_SAY"
)

type FitnessLevel string

const (
	LevelBeginner     FitnessLevel = "BEGINNER"
	LevelIntermediate FitnessLevel = "INTERMEDIATE"
	LevelAdvanced     FitnessLevel = "ADVANCED"
	LevelExpert       FitnessLevel = "EXPERT"
)

type FitnessGoal string

const (
	GoalWeightLoss       FitnessGoal = "WEIGHT_LOSS"
	GoalMuscleGain       FitnessGoal = "MUSCLE_GAIN"
	GoalStrengthBuilding FitnessGoal = "STRENGTH_BUILDING"
	GoalEndurance        FitnessGoal = "ENDURANCE"
	GoalFlexibility      FitnessGoal = "FLEXIBILITY"
	GoalGeneralFitness   FitnessGoal = "GENERAL_FITNESS"
	GoalStressRelief     FitnessGoal = "STRESS_RELIEF"
	GoalRehabilitation   FitnessGoal = "REHABILITATION"
)

type ActivityType string

const (
	ActivityCardio           ActivityType = "CARDIO"
	ActivityStrengthTraining ActivityType = "STRENGTH_TRAINING"
	ActivityYoga             ActivityType = "YOGA"
	ActivityPilates          ActivityType = "PILATES"
	ActivityHIIT             ActivityType = "HIIT"
	ActivityDance            ActivityType = "DANCE"
	ActivitySwimming         ActivityType = "SWIMMING"
	ActivityRunning          ActivityType = "RUNNING"
	ActivityCycling          ActivityType = "CYCLING"
	ActivityWalking          ActivityType = "WALKING"
)

type PrivacyLevel string

const (
	PrivacyPublic  PrivacyLevel = "PUBLIC"
	PrivacyFriends PrivacyLevel = "FRIENDS"
	PrivacyPrivate PrivacyLevel = "PRIVATE"
)

// Set is an ordered list of enum values stored in a single column: text[] on
// Postgres, the same array literal as text elsewhere.
type Set[T ~string] []T

func (s Set[T]) Value() (driver.Value, error) {
	arr := make(pq.StringArray, len(s))
	for i, v := range s {
		arr[i] = string(v)
	}
	return arr.Value()
}

func (s *Set[T]) Scan(src any) error {
	var arr pq.StringArray
	if err := arr.Scan(src); err != nil {
		return err
	}
	if arr == nil {
		*s = nil
		return nil
	}
	out := make(Set[T], len(arr))
	for i, v := range arr {
		out[i] = T(v)
	}
	*s = out
	return nil
}

func (Set[T]) GormDataType() string {
	return "text"
}

func (Set[T]) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	if db.Dialector.Name() == "postgres" {
		return "text[]"
	}
	return "text"
}

// Preferences are stored inline in the profiles table.
type Preferences struct {
	Timezone           string       `json:"timezone" gorm:"size:50"`
	Language           string       `json:"language" gorm:"size:2"`
	EmailNotifications bool         `json:"emailNotifications" gorm:"not null"`
	PushNotifications  bool         `json:"pushNotifications" gorm:"not null"`
	PrivacyLevel       PrivacyLevel `json:"privacyLevel" gorm:"size:20"`
}

func defaultPreferences() Preferences {
	return Preferences{
		Timezone:           "UTC",
		Language:           "en",
		EmailNotifications: true,
		PushNotifications:  true,
		PrivacyLevel:       PrivacyPublic,
	}
}

// Profile holds the personal details of a user. There is at most one per
// user and it goes away with the user row.
type Profile struct {
	ID                    uint        `gorm:"primaryKey"`
	UserID                uint        `gorm:"uniqueIndex;not null"`
	User                  *user.User  `gorm:"constraint:OnDelete:CASCADE"`
	FirstName             string      `gorm:"size:50"`
	LastName              string      `gorm:"size:50"`
	DateOfBirth           *time.Time  `gorm:"type:date"`
	Gender                Gender      `gorm:"size:20"`
	PhoneNumber           string      `gorm:"size:20"`
	ProfilePictureURL     string      `gorm:"size:512"`
	HeightCm              *int
	CurrentWeightKg       *float64
	TargetWeightKg        *float64
	DietaryRestrictions   string      `gorm:"size:1000"`
	HealthConditions      string      `gorm:"size:1000"`
	Medications           string      `gorm:"size:500"`
	EmergencyContactName  string      `gorm:"size:100"`
	EmergencyContactPhone string      `gorm:"size:20"`
	Preferences           Preferences `gorm:"embedded"`
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// FitnessProfile holds training preferences, one per user.
type FitnessProfile struct {
	ID                              uint              `json:"id" gorm:"primaryKey"`
	UserID                          uint              `json:"userId" gorm:"uniqueIndex;not null"`
	User                            *user.User        `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	FitnessLevel                    FitnessLevel      `json:"fitnessLevel,omitempty" gorm:"size:20;index"`
	PrimaryGoal                     FitnessGoal       `json:"primaryGoal,omitempty" gorm:"size:30;index"`
	FitnessGoals                    Set[FitnessGoal]  `json:"fitnessGoals"`
	PreferredActivities             Set[ActivityType] `json:"preferredActivities"`
	WorkoutFrequencyPerWeek         *int              `json:"workoutFrequencyPerWeek,omitempty" gorm:"index"`
	PreferredWorkoutDurationMinutes *int              `json:"preferredWorkoutDurationMinutes,omitempty"`
	PreferredWorkoutTimes           string            `json:"preferredWorkoutTimes,omitempty" gorm:"size:255"`
	CreatedAt                       time.Time         `json:"createdAt"`
	UpdatedAt                       time.Time         `json:"updatedAt"`
}
