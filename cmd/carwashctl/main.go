// Command carwashctl runs maintenance tasks against the car wash database.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/sirupsen/logrus"

	"github.com/Horridhunk/carmannagement/internal/auth"
	"github.com/Horridhunk/carmannagement/internal/config"
	dbpkg "github.com/Horridhunk/carmannagement/internal/db"
	"github.com/Horridhunk/carmannagement/internal/domain"
	"github.com/Horridhunk/carmannagement/internal/domain/assignment"
	"github.com/Horridhunk/carmannagement/internal/handlers"
	infraRepo "github.com/Horridhunk/carmannagement/internal/infra/repository"
	"github.com/Horridhunk/carmannagement/internal/logging"
	"github.com/Horridhunk/carmannagement/internal/notify"
	"github.com/Horridhunk/carmannagement/internal/reporting"
	"github.com/Horridhunk/carmannagement/internal/timezone"
	ucAccount "github.com/Horridhunk/carmannagement/internal/usecase/account"
	ucAppointment "github.com/Horridhunk/carmannagement/internal/usecase/appointment"
	ucOrder "github.com/Horridhunk/carmannagement/internal/usecase/order"
)

const usage = `usage: carwashctl <command> [flags]

commands:
  create-admin  -username NAME -email EMAIL -password PASSWORD
  seed-slots    [-from YYYY-MM-DD] [-days N] [-capacity N]
  auto-assign
  status
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.LogLevel, "text")
	ctx := context.Background()

	if err := run(ctx, cfg, logger, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, cmd string, args []string) error {
	db := dbpkg.NewDB(cfg, logging.Component(logger, "db"))
	repo := infraRepo.NewGormRepository(db)
	loc := timezone.Location(cfg.Timezone)

	switch cmd {
	case "create-admin":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		username := fs.String("username", "", "admin username")
		email := fs.String("email", "", "admin email")
		password := fs.String("password", "", "admin password")
		_ = fs.Parse(args)

		a, err := ucAccount.NewCreateAdmin(repo, nil).Execute(ctx, *username, *email, *password)
		if err != nil {
			return err
		}
		fmt.Printf("admin %q created (id %d)\n", a.Username, a.ID)

	case "seed-slots":
		fs := flag.NewFlagSet(cmd, flag.ExitOnError)
		from := fs.String("from", "", "first day (YYYY-MM-DD), defaults to today")
		days := fs.Int("days", 0, "number of days, defaults to the configured value")
		capacity := fs.Int("capacity", 0, "bookings per slot, defaults to the configured value")
		_ = fs.Parse(args)

		plan, err := handlers.SeedPlanFrom(cfg.Business.Slots, handlers.SeedSlotsRequest{
			From:     *from,
			Days:     *days,
			Capacity: *capacity,
		}, time.Now(), loc)
		if err != nil {
			return err
		}

		res, err := ucAppointment.NewSeedTimeSlots(repo, nil).Execute(ctx, auth.System, plan)
		if err != nil {
			return err
		}
		fmt.Printf("time slots: %d created, %d skipped\n", res.Created, res.Skipped)

	case "auto-assign":
		policy, err := domain.ParsePolicy(cfg.Business.SelectionPolicy)
		if err != nil {
			return err
		}
		engine := assignment.NewEngine(
			policy,
			notify.NewLogNotifier(logging.Component(logger, "notify")),
			timezone.System,
			logging.Component(logger, "assignment"),
			nil,
		)

		n, err := ucOrder.NewAutoAssign(repo, engine, nil).Execute(ctx, auth.System)
		if err != nil {
			return err
		}
		fmt.Printf("%d order(s) assigned\n", n)

	case "status":
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		driver := "pgx"
		if dbpkg.IsSQLite(db) {
			driver = "sqlite3"
		}

		stats, err := reporting.NewService(sqlDB, driver, loc, logging.Component(logger, "reporting")).Dashboard(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(stats)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}

	return nil
}
