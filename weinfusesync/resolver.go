package weinfusesync

import (
	"context"
	"strings"

	"bitbucket.org/mmdatafocus/weinfuse_backend/models"
)

// MasterStore is the lookup surface the resolver needs from the master
// tables. The gorm-backed implementation is the production one; tests
// substitute an in-memory store.
type MasterStore interface {
	FindCustomersByEntityId(ctx context.Context, entityId string) ([]models.Customer, error)
	FindLocationsByCrossRef(ctx context.Context, code string) ([]models.Location, error)
	FindShipTos(ctx context.Context, customerId uint, label string) ([]models.CustomerAddress, error)
	FindItemsByName(ctx context.Context, name string) ([]models.Item, error)
}

type gormStore struct{}

func NewGormStore() MasterStore {
	return gormStore{}
}

func (gormStore) FindCustomersByEntityId(ctx context.Context, entityId string) ([]models.Customer, error) {
	return models.FindCustomersByEntityId(ctx, entityId)
}

func (gormStore) FindLocationsByCrossRef(ctx context.Context, code string) ([]models.Location, error) {
	return models.FindLocationsByCrossRef(ctx, code)
}

func (gormStore) FindShipTos(ctx context.Context, customerId uint, label string) ([]models.CustomerAddress, error) {
	return models.FindShipTos(ctx, customerId, label)
}

func (gormStore) FindItemsByName(ctx context.Context, name string) ([]models.Item, error) {
	return models.FindItemsByName(ctx, name)
}

// Resolver matches projected lines against the master tables.
type Resolver struct {
	store MasterStore
	cfg   SyncConfig
}

func NewResolver(store MasterStore, cfg SyncConfig) *Resolver {
	return &Resolver{store: store, cfg: cfg}
}

// Resolve walks customer, location, ship-to and item in order and stops
// at the first failure. Each lookup must hit exactly one row; zero rows
// and multiple rows get distinct status codes so the reporting side can
// tell "fix the master" from "fix the duplicate". A storage error maps
// to the internal error status without guessing further.
func (r *Resolver) Resolve(ctx context.Context, line LineRecord) Resolution {
	res := Resolution{Status: models.StatusReceived}

	customerCode := firstToken(line.GroupName)
	customers, err := r.store.FindCustomersByEntityId(ctx, customerCode)
	if err != nil {
		res.Status = models.StatusInternalError
		return res
	}
	if len(customers) == 0 {
		res.Status = models.StatusCustomerNotFound
		return res
	}
	if len(customers) > 1 {
		res.Status = models.StatusCustomerAmbiguous
		return res
	}
	customer := customers[0]
	res.CustomerId = customer.ID

	// Core-category customers always post to the fixed core location, so
	// the location lookup is skipped for them.
	if r.cfg.CoreCategoryId != 0 && customer.CategoryId == r.cfg.CoreCategoryId {
		res.LocationId = r.cfg.CoreLocationId
	} else {
		locationCode := firstToken(line.LocationName)
		locations, err := r.store.FindLocationsByCrossRef(ctx, locationCode)
		if err != nil {
			res.Status = models.StatusInternalError
			return res
		}
		if len(locations) == 0 {
			res.Status = models.StatusLocationNotFound
			return res
		}
		if len(locations) > 1 {
			res.Status = models.StatusLocationAmbiguous
			return res
		}
		res.LocationId = locations[0].ID
	}

	shipToLabel := firstToken(line.LocationName)
	shipTos, err := r.store.FindShipTos(ctx, customer.ID, shipToLabel)
	if err != nil {
		res.Status = models.StatusInternalError
		return res
	}
	if len(shipTos) == 0 {
		res.Status = models.StatusShipToNotFound
		return res
	}
	if len(shipTos) > 1 {
		res.Status = models.StatusShipToAmbiguous
		return res
	}
	res.ShipToId = shipTos[0].ID

	items, err := r.store.FindItemsByName(ctx, line.OuterNdc)
	if err != nil {
		res.Status = models.StatusInternalError
		return res
	}
	if len(items) == 0 {
		res.Status = models.StatusItemNotFound
		return res
	}
	if len(items) > 1 {
		res.Status = models.StatusItemAmbiguous
		return res
	}
	res.ItemId = items[0].ID

	return res
}

// firstToken returns the text before the first whitespace. Group and
// location names lead with the master code, e.g. "C029H Main Clinic".
func firstToken(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexFunc(s, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	}); idx >= 0 {
		return s[:idx]
	}
	return s
}
