// Package seed loads a fixed demo dataset and creates administrator
// accounts.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/nail-scheduler/internal/audit"
	domainProfile "github.com/BruksfildServices01/nail-scheduler/internal/domain/profile"
	"github.com/BruksfildServices01/nail-scheduler/internal/httperr"
	"github.com/BruksfildServices01/nail-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/nail-scheduler/internal/models"
	ucProfile "github.com/BruksfildServices01/nail-scheduler/internal/usecase/profile"
)

type serviceSeed struct {
	Name        string
	Price       float64
	DurationMin int
}

type masterSeed struct {
	Username  string
	FirstName string
	LastName  string
	About     string
	Services  []string
}

type customerSeed struct {
	Username  string
	FirstName string
	LastName  string
	Services  []string
	Masters   []string
}

var services = []serviceSeed{
	{"Manicure", 20, 30},
	{"Pedicure", 30, 45},
	{"Gel polish", 25, 60},
	{"Nail art", 15, 30},
	{"Nail extension", 40, 90},
}

var masters = []masterSeed{
	{"anna_master", "Anna", "Koval", "Classic and **gel** manicure.", []string{"Manicure", "Gel polish"}},
	{"olha_master", "Olha", "Shevchenko", "Pedicure and nail art.", []string{"Pedicure", "Nail art"}},
	{"iryna_master", "Iryna", "Bondar", "Extensions of any length.", []string{"Nail extension", "Manicure"}},
}

var customers = []customerSeed{
	{"kate_customer", "Kate", "Melnyk", []string{"Manicure"}, []string{"anna_master"}},
	{"lena_customer", "Lena", "Tkachenko", []string{"Pedicure", "Nail art"}, []string{"olha_master"}},
	{"sofia_customer", "Sofia", "Kravets", []string{"Nail extension"}, []string{"iryna_master", "anna_master"}},
}

// Result counts what a Run actually inserted.
type Result struct {
	Services  int
	Masters   int
	Customers int
}

// Run inserts the dataset. Rows that already exist are left alone, so it
// can be run repeatedly. Every seeded user gets the same password.
func Run(ctx context.Context, db *gorm.DB, password string) (Result, error) {
	var res Result

	serviceIDs, n, err := seedServices(ctx, db)
	if err != nil {
		return res, err
	}
	res.Services = n

	repo := repository.NewProfileGormRepository(db)
	admin := domainProfile.Actor{Role: models.RoleAdmin}

	createMaster := ucProfile.NewCreateMaster(repo, audit.Nop{})
	masterIDs := make(map[string]uint, len(masters))
	for _, m := range masters {
		prices := make([]domainProfile.PriceInput, 0, len(m.Services))
		for _, name := range m.Services {
			prices = append(prices, domainProfile.PriceInput{ServiceID: serviceIDs[name]})
		}

		created, err := createMaster.Execute(ctx, ucProfile.CreateMasterInput{
			Username:  m.Username,
			Password:  password,
			FirstName: m.FirstName,
			LastName:  m.LastName,
			Email:     m.Username + "@example.com",
			About:     m.About,
			Prices:    prices,
		})
		switch {
		case err == nil:
			masterIDs[m.Username] = created.ID
			res.Masters++
		case httperr.IsBusiness(err, "username_taken"):
			id, err := existingMasterID(ctx, db, m.Username)
			if err != nil {
				return res, err
			}
			masterIDs[m.Username] = id
		default:
			return res, fmt.Errorf("seed master %s: %w", m.Username, err)
		}
	}

	createCustomer := ucProfile.NewCreateCustomer(repo, audit.Nop{})
	updateCustomer := ucProfile.NewUpdateCustomer(repo, audit.Nop{})
	for _, cu := range customers {
		created, err := createCustomer.Execute(ctx, ucProfile.CreateCustomerInput{
			Username:  cu.Username,
			Password:  password,
			FirstName: cu.FirstName,
			LastName:  cu.LastName,
			Email:     cu.Username + "@example.com",
		})
		if httperr.IsBusiness(err, "username_taken") {
			continue
		}
		if err != nil {
			return res, fmt.Errorf("seed customer %s: %w", cu.Username, err)
		}
		res.Customers++

		in := ucProfile.UpdateCustomerInput{
			Actor:      admin,
			CustomerID: created.ID,
			FirstName:  cu.FirstName,
			LastName:   cu.LastName,
			Email:      created.User.Email,
		}
		for _, name := range cu.Services {
			in.ServiceIDs = append(in.ServiceIDs, serviceIDs[name])
		}
		for _, username := range cu.Masters {
			in.MasterIDs = append(in.MasterIDs, masterIDs[username])
		}
		if _, err := updateCustomer.Execute(ctx, in); err != nil {
			return res, fmt.Errorf("seed customer %s choices: %w", cu.Username, err)
		}
	}

	slog.Info("seed finished",
		"services", res.Services,
		"masters", res.Masters,
		"customers", res.Customers,
	)
	return res, nil
}

// seedServices inserts missing catalogue entries and returns every seeded
// service id by name.
func seedServices(ctx context.Context, db *gorm.DB) (map[string]uint, int, error) {
	ids := make(map[string]uint, len(services))
	inserted := 0

	for _, s := range services {
		row := models.Service{Name: s.Name, Price: s.Price, DurationMin: s.DurationMin}
		res := db.WithContext(ctx).
			Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "name"}}, DoNothing: true}).
			Create(&row)
		if res.Error != nil {
			return nil, 0, fmt.Errorf("seed service %s: %w", s.Name, res.Error)
		}
		if res.RowsAffected > 0 {
			inserted++
		}

		var stored models.Service
		if err := db.WithContext(ctx).Where("name = ?", s.Name).First(&stored).Error; err != nil {
			return nil, 0, err
		}
		ids[s.Name] = stored.ID
	}
	return ids, inserted, nil
}

func existingMasterID(ctx context.Context, db *gorm.DB, username string) (uint, error) {
	var master models.Master
	err := db.WithContext(ctx).
		Joins("JOIN users ON users.id = masters.user_id").
		Where("users.username = ?", username).
		First(&master).Error
	return master.ID, err
}

// CreateAdmin adds a user with the admin role. Admins have no profile row.
func CreateAdmin(ctx context.Context, db *gorm.DB, username, password, email string) (*models.User, error) {
	user, err := domainProfile.NewUser(username, password, "", "", email, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Create(user).Error; err != nil {
		if httperr.IsUniqueViolation(err) {
			return nil, httperr.ErrBusiness("username_taken")
		}
		return nil, err
	}
	return user, nil
}
