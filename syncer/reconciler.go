package syncer

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"feedsyncd/feed"
	"feedsyncd/models"
)

// Store opens per-record transactions for the reconciler.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
}

// Tx is the write surface of one listing reconciliation. Everything a
// single record touches happens inside one transaction so a crash
// mid-record cannot leave a listing without its photos.
type Tx interface {
	GetAgentByEmail(ctx context.Context, email string) (*models.Agent, error)
	InsertAgent(ctx context.Context, a *models.Agent) error
	GetOfficeByName(ctx context.Context, name string) (*models.Office, error)
	InsertOffice(ctx context.Context, o *models.Office) error
	GetListingByMLSID(ctx context.Context, mlsID string) (*models.Listing, error)
	InsertListing(ctx context.Context, l *models.Listing) error
	UpdateListing(ctx context.Context, l *models.Listing) error
	DeleteListingPhotos(ctx context.Context, listingID uuid.UUID) error
	InsertPhoto(ctx context.Context, p *models.Photo) error
	DeleteListingOpenHouses(ctx context.Context, listingID uuid.UUID) error
	InsertOpenHouse(ctx context.Context, oh *models.OpenHouse) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Outcome of one record.
type Op string

const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
)

// ReconcileResult reports what one record did to the store.
type ReconcileResult struct {
	Op                  Op
	ListingID           uuid.UUID
	AgentCreated        bool
	AgentUpdated        bool
	OfficeCreated       bool
	OfficeUpdated       bool
	PhotosProcessed     int
	OpenHousesProcessed int
}

// Reconciler upserts one normalized record into the store.
type Reconciler struct {
	store Store
	now   func() time.Time
}

func NewReconciler(store Store) *Reconciler {
	return &Reconciler{store: store, now: time.Now}
}

// Reconcile resolves the record's agent and office, upserts the listing
// by MLS id, and fully replaces its photos and open houses. Any failure
// rolls back the record's transaction and surfaces as a *RecordError.
func (r *Reconciler) Reconcile(ctx context.Context, rec *feed.Record) (*ReconcileResult, error) {
	if rec.MLSID == nil {
		return nil, &RecordError{Err: fmt.Errorf("missing MLS id")}
	}
	mlsID := *rec.MLSID

	tx, err := r.store.Begin(ctx)
	if err != nil {
		return nil, &RecordError{MLSID: mlsID, Err: fmt.Errorf("begin tx: %w", err)}
	}

	result, err := r.reconcileTx(ctx, tx, rec, mlsID)
	if err != nil {
		tx.Rollback(ctx)
		return nil, &RecordError{MLSID: mlsID, Err: err}
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, &RecordError{MLSID: mlsID, Err: fmt.Errorf("commit: %w", err)}
	}
	return result, nil
}

func (r *Reconciler) reconcileTx(ctx context.Context, tx Tx, rec *feed.Record, mlsID string) (*ReconcileResult, error) {
	result := &ReconcileResult{}
	now := r.now()

	agentID, err := r.resolveAgent(ctx, tx, rec.Agent, now, result)
	if err != nil {
		return nil, err
	}

	officeID, err := r.resolveOffice(ctx, tx, rec.Office, now, result)
	if err != nil {
		return nil, err
	}

	existing, err := tx.GetListingByMLSID(ctx, mlsID)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}

	listing := buildListing(rec, mlsID, agentID, officeID, now)
	if existing == nil {
		listing.ID = uuid.New()
		listing.CreatedAt = now
		if err := tx.InsertListing(ctx, listing); err != nil {
			return nil, fmt.Errorf("insert listing: %w", err)
		}
		result.Op = OpCreated
	} else {
		// Full replace: every mapped field is overwritten, absent
		// values clear stored ones.
		listing.ID = existing.ID
		listing.CreatedAt = existing.CreatedAt
		if err := tx.UpdateListing(ctx, listing); err != nil {
			return nil, fmt.Errorf("update listing: %w", err)
		}
		result.Op = OpUpdated
	}
	result.ListingID = listing.ID

	if err := r.replaceChildren(ctx, tx, listing.ID, rec, now, result); err != nil {
		return nil, err
	}

	return result, nil
}

// resolveAgent looks up an agent by exact email, creating one when no
// match exists. Agents without a matching email are never deduped by
// name: that is provider behavior and preserved deliberately.
func (r *Reconciler) resolveAgent(ctx context.Context, tx Tx, rec *feed.AgentRecord, now time.Time, result *ReconcileResult) (*uuid.UUID, error) {
	if rec == nil || (rec.Email == nil && rec.FirstName == nil) {
		return nil, nil
	}

	if rec.Email != nil {
		existing, err := tx.GetAgentByEmail(ctx, *rec.Email)
		if err != nil {
			return nil, fmt.Errorf("get agent: %w", err)
		}
		if existing != nil {
			result.AgentUpdated = true
			return &existing.ID, nil
		}
	}

	agent := &models.Agent{
		ID:            uuid.New(),
		FirstName:     rec.FirstName,
		LastName:      rec.LastName,
		Email:         rec.Email,
		LicenseNumber: rec.License,
		Phone:         rec.OfficePhone,
		PhotoURL:      rec.PhotoURL,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.InsertAgent(ctx, agent); err != nil {
		return nil, fmt.Errorf("insert agent: %w", err)
	}
	result.AgentCreated = true
	return &agent.ID, nil
}

func (r *Reconciler) resolveOffice(ctx context.Context, tx Tx, rec *feed.OfficeRecord, now time.Time, result *ReconcileResult) (*uuid.UUID, error) {
	if rec == nil || rec.Name == nil {
		return nil, nil
	}

	existing, err := tx.GetOfficeByName(ctx, *rec.Name)
	if err != nil {
		return nil, fmt.Errorf("get office: %w", err)
	}
	if existing != nil {
		result.OfficeUpdated = true
		return &existing.ID, nil
	}

	office := &models.Office{
		ID:            uuid.New(),
		Name:          *rec.Name,
		BrokerageName: rec.BrokerageName,
		BrokerPhone:   rec.BrokerPhone,
		BrokerEmail:   rec.BrokerEmail,
		Address:       rec.Address,
		City:          rec.City,
		State:         rec.State,
		Zip:           rec.Zip,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.InsertOffice(ctx, office); err != nil {
		return nil, fmt.Errorf("insert office: %w", err)
	}
	result.OfficeCreated = true
	return &office.ID, nil
}

// replaceChildren deletes all photos and open houses owned by the
// listing and reinserts from the record. Providers give no stable child
// ids across pulls, so full replacement is the only correct strategy.
func (r *Reconciler) replaceChildren(ctx context.Context, tx Tx, listingID uuid.UUID, rec *feed.Record, now time.Time, result *ReconcileResult) error {
	if err := tx.DeleteListingPhotos(ctx, listingID); err != nil {
		return fmt.Errorf("delete photos: %w", err)
	}
	sortOrder := 0
	for _, p := range rec.Photos {
		if p.URL == nil {
			continue
		}
		photo := &models.Photo{
			ListingID: listingID,
			URL:       *p.URL,
			Caption:   p.Caption,
			SortOrder: sortOrder,
			CreatedAt: now,
		}
		if err := tx.InsertPhoto(ctx, photo); err != nil {
			return fmt.Errorf("insert photo: %w", err)
		}
		sortOrder++
		result.PhotosProcessed++
	}

	if err := tx.DeleteListingOpenHouses(ctx, listingID); err != nil {
		return fmt.Errorf("delete open houses: %w", err)
	}
	for _, oh := range rec.OpenHouses {
		if oh.Date == nil || oh.StartTime == nil || oh.EndTime == nil {
			continue
		}
		openHouse := &models.OpenHouse{
			ListingID: listingID,
			Date:      *oh.Date,
			StartTime: *oh.StartTime,
			EndTime:   *oh.EndTime,
			CreatedAt: now,
		}
		if err := tx.InsertOpenHouse(ctx, openHouse); err != nil {
			return fmt.Errorf("insert open house: %w", err)
		}
		result.OpenHousesProcessed++
	}

	return nil
}

func buildListing(rec *feed.Record, mlsID string, agentID, officeID *uuid.UUID, now time.Time) *models.Listing {
	syncedAt := now
	return &models.Listing{
		MLSID:          mlsID,
		MLSInternalID:  rec.MLSInternalID,
		MLSBoard:       rec.MLSBoard,
		Status:         rec.Status,
		Price:          rec.Price,
		ListingURL:     rec.ListingURL,
		VirtualTourURL: rec.VirtualTourURL,
		Address:        rec.Address,
		UnitNumber:     rec.UnitNumber,
		City:           rec.City,
		State:          rec.State,
		Zip:            rec.Zip,
		Lat:            rec.Lat,
		Lng:            rec.Lng,
		PropertyType:   rec.PropertyType,
		Description:    rec.Description,
		Beds:           rec.Beds,
		Baths:          rec.Baths,
		BathsFull:      rec.BathsFull,
		BathsHalf:      rec.BathsHalf,
		LivingArea:     rec.LivingArea,
		LotSize:        rec.LotSize,
		YearBuilt:      rec.YearBuilt,
		IsRental:       rec.IsRental(),
		PetsAllowed:    rec.PetsAllowed,
		AgentID:        agentID,
		OfficeID:       officeID,
		SyncedAt:       &syncedAt,
		UpdatedAt:      now,
	}
}
