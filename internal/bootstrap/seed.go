package bootstrap

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/daffahilmyf/go-helpdesk-audit/internal/config"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/domain/entity"
	"github.com/daffahilmyf/go-helpdesk-audit/internal/usecase"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
)

const seedPassword = "helpdesk123"

type SeedOptions struct {
	Users     int
	Tickets   int
	BatchSize int
}

// Seed writes sample companies, users and tickets. Inserts go straight to
// the store so no audit entries or notifications are produced.
func Seed(ctx context.Context, cfg config.Config, opts SeedOptions) error {
	if opts.Users <= 0 {
		opts.Users = 10
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 100
	}

	log, err := BuildLogger(cfg)
	if err != nil {
		return err
	}
	conn, err := openDB(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer conn.Close()

	hash, err := usecase.HashPassword(seedPassword)
	if err != nil {
		return err
	}

	companies := make([]entity.Company, 0, 3)
	for i := 0; i < 3; i++ {
		companies = append(companies, entity.Company{
			Name:   faker.Word() + " " + faker.LastName() + " Ltda",
			CNPJ:   fmt.Sprintf("%014d", rand.Int63n(1e14)),
			Active: true,
		})
	}
	if err := conn.Write(ctx).Create(&companies).Error; err != nil {
		return err
	}

	baseTime := time.Now().UTC()
	users := make([]entity.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		role := entity.RoleClient
		switch {
		case i == 0:
			role = entity.RoleAdmin
		case i%4 == 1:
			role = entity.RoleTechnician
		}
		seedTime := baseTime.Add(time.Duration(i) * time.Microsecond)
		user := entity.User{
			Name:         fmt.Sprintf("%s %s", faker.FirstName(), faker.LastName()),
			Email:        fmt.Sprintf("seed-%s@example.com", uuid.NewString()),
			Phone:        faker.Phonenumber(),
			PasswordHash: hash,
			Role:         role,
			Active:       true,
			CreatedAt:    seedTime,
			UpdatedAt:    seedTime,
		}
		if role == entity.RoleClient {
			user.CompanyID = &companies[i%len(companies)].ID
		}
		users = append(users, user)
	}
	if err := conn.Write(ctx).CreateInBatches(&users, opts.BatchSize).Error; err != nil {
		return err
	}

	var clients []entity.User
	for _, u := range users {
		if u.Role == entity.RoleClient {
			clients = append(clients, u)
		}
	}
	priorities := []string{entity.PriorityLow, entity.PriorityMedium, entity.PriorityHigh}
	tickets := make([]entity.Ticket, 0, opts.Tickets)
	for i := 0; i < opts.Tickets && len(clients) > 0; i++ {
		requester := clients[i%len(clients)]
		tickets = append(tickets, entity.Ticket{
			Title:       faker.Sentence(),
			Description: faker.Paragraph(),
			Status:      entity.StatusOpen,
			Priority:    priorities[i%len(priorities)],
			RequesterID: requester.ID,
			CompanyID:   requester.CompanyID,
		})
	}
	if len(tickets) > 0 {
		if err := conn.Write(ctx).CreateInBatches(&tickets, opts.BatchSize).Error; err != nil {
			return err
		}
	}

	log.Infof("bootstrap: seeded %d companies, %d users, %d tickets (password %q)", len(companies), len(users), len(tickets), seedPassword)
	return nil
}
