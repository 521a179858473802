// Command schedule pairs the registered teams of a tournament into fixtures.
//
//	schedule -tournament 3 -staff admin -first 2026-05-01T18:00:00Z -spacing 2h
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"legend-hub/internal/config"
	"legend-hub/internal/logger"
	"legend-hub/internal/pgstore"
	"legend-hub/internal/portal"
)

func main() {
	tournamentID := flag.Int64("tournament", 0, "tournament id")
	staffHandle := flag.String("staff", "", "handle of the staff user the fixtures are scheduled as")
	first := flag.String("first", "", "time of the first fixture, RFC 3339")
	spacing := flag.Duration("spacing", 2*time.Hour, "gap between consecutive fixtures")
	flag.Parse()

	log := logger.NewLogger("schedule")
	defer log.Sync()

	if *tournamentID <= 0 || *staffHandle == "" || *first == "" {
		flag.Usage()
		log.Fatal("missing flags", "tournament", *tournamentID, "staff", *staffHandle, "first", *first)
	}
	start, err := time.Parse(time.RFC3339, *first)
	if err != nil {
		log.Fatal("bad -first", "error", err)
	}

	cfg, _, err := config.LoadConfig()
	if err != nil {
		log.Fatal("config", "error", err)
	}
	pool := pgstore.MustDB(cfg.DatabaseURL, 2, log)
	defer pool.Close()

	svc := portal.NewService(pgstore.New(pool, log), log)
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	staff, err := findStaff(ctx, svc, *staffHandle)
	if err != nil {
		log.Fatal("staff lookup", "error", err)
	}
	fixtures, err := svc.AutoSchedule(ctx, portal.Actor{UserID: staff.ID, Staff: true}, *tournamentID, start, *spacing)
	if err != nil {
		log.Fatal("schedule", "error", err)
	}
	for _, f := range fixtures {
		fmt.Printf("fixture %d: team %d vs team %d at %s\n", f.ID, f.Team1ID, f.Team2ID, f.Time.Format(time.RFC3339))
	}
}

func findStaff(ctx context.Context, svc *portal.Service, handle string) (portal.User, error) {
	u, err := svc.UserByHandle(ctx, handle)
	if err != nil {
		return portal.User{}, err
	}
	if !u.Staff {
		return portal.User{}, fmt.Errorf("%s is not staff", u.Handle)
	}
	return u, nil
}
