// Package seed inserts the demo accounts used in local environments.
package seed

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/iliyamo/tenseconds/internal/model"
	"github.com/iliyamo/tenseconds/internal/repository"
)

// DemoPassword is the password of every demo account.
const DemoPassword = "password"

// Account is one user to seed.
type Account struct {
	Username string
	Email    string
}

// DemoAccounts are created by Run when they do not exist yet.
var DemoAccounts = []Account{
	{Username: "edygg_1", Email: "efgm1024@gmail.com"},
	{Username: "edygg_2", Email: "efgm1025@gmail.com"},
	{Username: "edygg_3", Email: "efgm1026@gmail.com"},
}

// Users is the subset of the user repository the seeder needs.
type Users interface {
	Create(ctx context.Context, username, email, password string, cost int) (uint64, error)
	GetByUsername(ctx context.Context, username string) (model.User, error)
}

// Result reports what Run did per username.
type Result struct {
	Created []string
	Skipped []string
	Failed  []string
}

// Run creates every account that is missing.  Existing usernames are
// skipped so running it twice is harmless.  Each failure is logged and the
// returned error joins all of them.
func Run(ctx context.Context, users Users, accounts []Account, cost int, logger log.FieldLogger) (Result, error) {
	var (
		res  Result
		errs []error
	)
	for _, a := range accounts {
		entry := logger.WithField("username", a.Username)

		_, err := users.GetByUsername(ctx, a.Username)
		if err == nil {
			entry.Info("seed user exists, skipping")
			res.Skipped = append(res.Skipped, a.Username)
			continue
		}
		if !errors.Is(err, repository.ErrNotFound) {
			entry.WithError(err).Error("seed user lookup failed")
			res.Failed = append(res.Failed, a.Username)
			errs = append(errs, fmt.Errorf("lookup %s: %w", a.Username, err))
			continue
		}

		id, err := users.Create(ctx, a.Username, a.Email, DemoPassword, cost)
		if err != nil {
			entry.WithError(err).Error("seed user create failed")
			res.Failed = append(res.Failed, a.Username)
			errs = append(errs, fmt.Errorf("create %s: %w", a.Username, err))
			continue
		}
		entry.WithField("user_id", id).Info("seed user created")
		res.Created = append(res.Created, a.Username)
	}
	return res, errors.Join(errs...)
}
