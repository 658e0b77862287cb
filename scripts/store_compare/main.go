package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/donor-registry-api/internal/models"
	"github.com/noah-isme/donor-registry-api/internal/repository"
	"github.com/noah-isme/donor-registry-api/pkg/cache"
	"github.com/noah-isme/donor-registry-api/pkg/config"
	"github.com/noah-isme/donor-registry-api/pkg/database"
)

// registry is the read/write surface shared by every store driver.
type registry interface {
	List(ctx context.Context) ([]models.Donor, error)
	UpsertMany(ctx context.Context, donors []models.Donor) error
}

type difference struct {
	ID     string
	Kind   string
	Fields []string
}

// Compares the donors held by the remote PHP shim with the configured local store
// (postgres or redis) and optionally copies the shim's records across.
func main() {
	var (
		remoteURL string
		local     string
		timeout   time.Duration
		apply     bool
	)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	flag.StringVar(&remoteURL, "remote", cfg.Store.RemoteURL, "Remote shim URL")
	flag.StringVar(&local, "local", config.StoreDriverPostgres, "Local driver: postgres or redis")
	flag.DurationVar(&timeout, "timeout", 30*time.Second, "Overall timeout")
	flag.BoolVar(&apply, "apply", false, "Upsert remote records into the local store")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	remote := repository.NewRemoteDonorRepository(remoteURL, cfg.Store.RemoteTimeout, cfg.Store.RemoteRetries, zap.NewNop()).
		WithPasswordWidth(cfg.Store.RemotePasswordWidth)
	localStore, err := openLocal(ctx, cfg, local)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", local, err)
	}

	remoteDonors, err := remote.List(ctx)
	if err != nil {
		log.Fatalf("failed to list remote donors: %v", err)
	}
	localDonors, err := localStore.List(ctx)
	if err != nil {
		log.Fatalf("failed to list local donors: %v", err)
	}

	diffs := diffRegistries(remoteDonors, localDonors)
	printReport(len(remoteDonors), len(localDonors), diffs)

	if apply && len(diffs) > 0 {
		if err := localStore.UpsertMany(ctx, remoteDonors); err != nil {
			log.Fatalf("failed to apply remote donors: %v", err)
		}
		fmt.Printf("Applied %d remote records to %s\n", len(remoteDonors), local)
		return
	}
	if len(diffs) > 0 {
		os.Exit(1)
	}
}

func openLocal(ctx context.Context, cfg *config.Config, driver string) (registry, error) {
	switch driver {
	case config.StoreDriverPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := database.EnsureSchema(ctx, db); err != nil {
			return nil, err
		}
		return repository.NewDonorRepository(db), nil
	case config.StoreDriverRedis:
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		return repository.NewRedisDonorRepository(client, cfg.Redis.KeyPrefix), nil
	}
	return nil, fmt.Errorf("unsupported local driver %q", driver)
}

// diffRegistries reports records present on one side only and records whose shared fields
// disagree. Versions, timestamps of the last write and password hashes are not compared
// because the shim does not keep them.
func diffRegistries(remote, local []models.Donor) []difference {
	localByID := make(map[string]models.Donor, len(local))
	for _, d := range local {
		localByID[d.ID] = d
	}

	var diffs []difference
	seen := make(map[string]struct{}, len(remote))
	for _, r := range remote {
		seen[r.ID] = struct{}{}
		l, ok := localByID[r.ID]
		if !ok {
			diffs = append(diffs, difference{ID: r.ID, Kind: "remote-only"})
			continue
		}
		if fields := changedFields(r, l); len(fields) > 0 {
			diffs = append(diffs, difference{ID: r.ID, Kind: "changed", Fields: fields})
		}
	}
	for _, l := range local {
		if _, ok := seen[l.ID]; !ok {
			diffs = append(diffs, difference{ID: l.ID, Kind: "local-only"})
		}
	}

	sort.SliceStable(diffs, func(i, j int) bool { return diffs[i].ID < diffs[j].ID })
	return diffs
}

func changedFields(a, b models.Donor) []string {
	pairs := []struct {
		name string
		same bool
	}{
		{"loginId", a.LoginID == b.LoginID},
		{"name", a.Name == b.Name},
		{"bloodGroup", a.BloodGroup == b.BloodGroup},
		{"age", a.Age == b.Age},
		{"gender", a.Gender == b.Gender},
		{"address", a.Address == b.Address},
		{"phone", a.Phone == b.Phone},
		{"occupation", a.Occupation == b.Occupation},
		{"designation", a.Designation == b.Designation},
		{"department", a.Department == b.Department},
		{"lastDonationDate", a.LastDonationDate == b.LastDonationDate},
		{"availability", a.Availability == b.Availability},
		{"verificationStatus", a.VerificationStatus == b.VerificationStatus},
		{"isBlocked", a.IsBlocked == b.IsBlocked},
		{"reports", a.Reports == b.Reports},
		{"internalNotes", a.InternalNotes == b.InternalNotes},
		{"userType", a.UserType == b.UserType},
	}
	var fields []string
	for _, p := range pairs {
		if !p.same {
			fields = append(fields, p.name)
		}
	}
	return fields
}

func printReport(remoteCount, localCount int, diffs []difference) {
	fmt.Println("Store Compare Report")
	fmt.Println("====================")
	fmt.Printf("Remote records: %d | Local records: %d\n", remoteCount, localCount)
	for _, d := range diffs {
		switch d.Kind {
		case "changed":
			fmt.Printf("[DIFF] %s fields: %v\n", d.ID, d.Fields)
		default:
			fmt.Printf("[%s] %s\n", d.Kind, d.ID)
		}
	}
	fmt.Printf("Differences: %d\n", len(diffs))
}
