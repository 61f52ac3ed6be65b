package bootstrap

import (
	"errors"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"nub.ac.bd/transport/internal/entity"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Bus{},
		&entity.BusRoute{},
		&entity.BusStop{},
		&entity.BusSchedule{},
		&entity.BusManager{},
		&entity.BusJourney{},
		&entity.BusJourneyCheckIn{},
	)
}

// SeedAdminUser creates the first admin account when both credentials are
// configured and the email is not taken yet.
func SeedAdminUser(db *gorm.DB, email, password string) error {
	if email == "" || password == "" {
		logrus.Debug("admin seed credentials not configured, skipping")
		return nil
	}

	var existing entity.User
	err := db.Where("email = ?", email).First(&existing).Error
	if err == nil {
		logrus.WithField("email", email).Info("admin user already exists, skipping seed")
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := entity.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: string(hashed),
		Role:         entity.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	logrus.WithField("email", email).Info("admin user seeded")
	return nil
}
