package syncer

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"

	"feedsyncd/feed"
	"feedsyncd/models"
)

// memDB is an in-memory stand-in for the relational store. Writes apply
// immediately; rollback tracking is enough to assert the transaction
// protocol without a database.
type memDB struct {
	agents     map[string]*models.Agent // by email
	offices    map[string]*models.Office
	listings   map[string]*models.Listing // by MLS id
	photos     map[uuid.UUID][]models.Photo
	openHouses map[uuid.UUID][]models.OpenHouse

	agentInserts  int
	officeInserts int
	commits       int
	rollbacks     int

	insertListingErr error
}

func newMemDB() *memDB {
	return &memDB{
		agents:     make(map[string]*models.Agent),
		offices:    make(map[string]*models.Office),
		listings:   make(map[string]*models.Listing),
		photos:     make(map[uuid.UUID][]models.Photo),
		openHouses: make(map[uuid.UUID][]models.OpenHouse),
	}
}

func (db *memDB) Begin(ctx context.Context) (Tx, error) {
	return &memTx{db: db}, nil
}

type memTx struct {
	db *memDB
}

func (t *memTx) GetAgentByEmail(ctx context.Context, email string) (*models.Agent, error) {
	if a, ok := t.db.agents[email]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (t *memTx) InsertAgent(ctx context.Context, a *models.Agent) error {
	t.db.agentInserts++
	if a.Email != nil {
		cp := *a
		t.db.agents[*a.Email] = &cp
	}
	return nil
}

func (t *memTx) GetOfficeByName(ctx context.Context, name string) (*models.Office, error) {
	if o, ok := t.db.offices[name]; ok {
		cp := *o
		return &cp, nil
	}
	return nil, nil
}

func (t *memTx) InsertOffice(ctx context.Context, o *models.Office) error {
	t.db.officeInserts++
	cp := *o
	t.db.offices[o.Name] = &cp
	return nil
}

func (t *memTx) GetListingByMLSID(ctx context.Context, mlsID string) (*models.Listing, error) {
	if l, ok := t.db.listings[mlsID]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, nil
}

func (t *memTx) InsertListing(ctx context.Context, l *models.Listing) error {
	if t.db.insertListingErr != nil {
		return t.db.insertListingErr
	}
	cp := *l
	t.db.listings[l.MLSID] = &cp
	return nil
}

func (t *memTx) UpdateListing(ctx context.Context, l *models.Listing) error {
	cp := *l
	t.db.listings[l.MLSID] = &cp
	return nil
}

func (t *memTx) DeleteListingPhotos(ctx context.Context, listingID uuid.UUID) error {
	delete(t.db.photos, listingID)
	return nil
}

func (t *memTx) InsertPhoto(ctx context.Context, p *models.Photo) error {
	t.db.photos[p.ListingID] = append(t.db.photos[p.ListingID], *p)
	return nil
}

func (t *memTx) DeleteListingOpenHouses(ctx context.Context, listingID uuid.UUID) error {
	delete(t.db.openHouses, listingID)
	return nil
}

func (t *memTx) InsertOpenHouse(ctx context.Context, oh *models.OpenHouse) error {
	t.db.openHouses[oh.ListingID] = append(t.db.openHouses[oh.ListingID], *oh)
	return nil
}

func (t *memTx) Commit(ctx context.Context) error {
	t.db.commits++
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	t.db.rollbacks++
	return nil
}

func strPtr(s string) *string     { return &s }
func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

func fullRecord() *feed.Record {
	return &feed.Record{
		MLSID:  strPtr("MLS-100"),
		Status: strPtr("Active"),
		Price:  floatPtr(325000),
		City:   strPtr("Austin"),
		Beds:   intPtr(3),
		Agent: &feed.AgentRecord{
			FirstName: strPtr("Jane"),
			LastName:  strPtr("Realtor"),
			Email:     strPtr("jane@example.com"),
		},
		Office: &feed.OfficeRecord{
			Name: strPtr("Example Realty"),
		},
		Photos: []feed.PhotoRecord{
			{URL: strPtr("https://photos.example.com/a.jpg")},
			{URL: nil}, // unusable, skipped
			{URL: strPtr("https://photos.example.com/b.jpg"), Caption: strPtr("Back yard")},
		},
		OpenHouses: []feed.OpenHouseRecord{
			{Date: strPtr("2024-06-01"), StartTime: strPtr("10:00AM"), EndTime: strPtr("12:00PM")},
			{Date: strPtr("2024-06-02"), StartTime: nil, EndTime: strPtr("12:00PM")}, // incomplete, skipped
		},
	}
}

func TestReconcileCreatesEverything(t *testing.T) {
	db := newMemDB()
	r := NewReconciler(db)

	result, err := r.Reconcile(context.Background(), fullRecord())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if result.Op != OpCreated {
		t.Errorf("expected created, got %s", result.Op)
	}
	if !result.AgentCreated || result.AgentUpdated {
		t.Errorf("expected new agent, got created=%v updated=%v", result.AgentCreated, result.AgentUpdated)
	}
	if !result.OfficeCreated {
		t.Error("expected new office")
	}
	if result.PhotosProcessed != 2 {
		t.Errorf("expected 2 photos processed, got %d", result.PhotosProcessed)
	}
	if result.OpenHousesProcessed != 1 {
		t.Errorf("expected 1 open house processed, got %d", result.OpenHousesProcessed)
	}

	l := db.listings["MLS-100"]
	if l == nil {
		t.Fatal("listing not stored")
	}
	if l.AgentID == nil || l.OfficeID == nil {
		t.Error("listing should reference agent and office")
	}
	if l.ID == uuid.Nil {
		t.Error("listing should get an id")
	}

	photos := db.photos[l.ID]
	if len(photos) != 2 {
		t.Fatalf("expected 2 stored photos, got %d", len(photos))
	}
	for i, p := range photos {
		if p.SortOrder != i {
			t.Errorf("photo %d has sort order %d", i, p.SortOrder)
		}
	}
	if db.commits != 1 || db.rollbacks != 0 {
		t.Errorf("expected 1 commit 0 rollbacks, got %d/%d", db.commits, db.rollbacks)
	}
}

func TestReconcileUpdateIsFullReplace(t *testing.T) {
	db := newMemDB()
	r := NewReconciler(db)
	ctx := context.Background()

	if _, err := r.Reconcile(ctx, fullRecord()); err != nil {
		t.Fatalf("first reconcile: %v", err)
	}
	firstID := db.listings["MLS-100"].ID
	firstCreated := db.listings["MLS-100"].CreatedAt

	// Same MLS id, sparser record: absent fields must clear stored
	// values and children are replaced wholesale.
	second := &feed.Record{
		MLSID:  strPtr("MLS-100"),
		Status: strPtr("Pending"),
		Photos: []feed.PhotoRecord{
			{URL: strPtr("https://photos.example.com/new.jpg")},
		},
	}

	result, err := r.Reconcile(ctx, second)
	if err != nil {
		t.Fatalf("second reconcile: %v", err)
	}
	if result.Op != OpUpdated {
		t.Errorf("expected updated, got %s", result.Op)
	}

	l := db.listings["MLS-100"]
	if l.ID != firstID {
		t.Error("update must preserve the listing id")
	}
	if !l.CreatedAt.Equal(firstCreated) {
		t.Error("update must preserve created_at")
	}
	if l.Status == nil || *l.Status != "Pending" {
		t.Errorf("unexpected status: %v", l.Status)
	}
	if l.Price != nil {
		t.Errorf("absent price must clear the stored value, got %v", *l.Price)
	}
	if l.City != nil {
		t.Errorf("absent city must clear the stored value, got %v", *l.City)
	}
	if l.AgentID != nil {
		t.Error("absent agent must clear the reference")
	}

	photos := db.photos[l.ID]
	if len(photos) != 1 {
		t.Fatalf("expected photos replaced with 1, got %d", len(photos))
	}
	if photos[0].URL != "https://photos.example.com/new.jpg" {
		t.Errorf("unexpected photo: %s", photos[0].URL)
	}
	if len(db.openHouses[l.ID]) != 0 {
		t.Errorf("expected open houses cleared, got %d", len(db.openHouses[l.ID]))
	}
}

func TestReconcileIdempotent(t *testing.T) {
	db := newMemDB()
	r := NewReconciler(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := r.Reconcile(ctx, fullRecord()); err != nil {
			t.Fatalf("reconcile %d: %v", i, err)
		}
	}

	if len(db.listings) != 1 {
		t.Errorf("expected 1 listing, got %d", len(db.listings))
	}
	if db.agentInserts != 1 {
		t.Errorf("agent should be inserted once, got %d", db.agentInserts)
	}
	if db.officeInserts != 1 {
		t.Errorf("office should be inserted once, got %d", db.officeInserts)
	}
	if n := len(db.photos[db.listings["MLS-100"].ID]); n != 2 {
		t.Errorf("photos must not accumulate, got %d", n)
	}
}

func TestReconcileMissingMLSID(t *testing.T) {
	db := newMemDB()
	r := NewReconciler(db)

	_, err := r.Reconcile(context.Background(), &feed.Record{Status: strPtr("Active")})
	if err == nil {
		t.Fatal("expected error")
	}
	var rerr *RecordError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RecordError, got %T", err)
	}
	if db.commits != 0 {
		t.Error("nothing should be committed")
	}
}

func TestReconcileAgentReuseByEmail(t *testing.T) {
	db := newMemDB()
	existing := &models.Agent{
		ID:        uuid.New(),
		Email:     strPtr("jane@example.com"),
		FirstName: strPtr("Janet"),
		CreatedAt: time.Now(),
	}
	db.agents["jane@example.com"] = existing

	r := NewReconciler(db)
	result, err := r.Reconcile(context.Background(), fullRecord())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if result.AgentCreated {
		t.Error("matching email must reuse the agent")
	}
	if !result.AgentUpdated {
		t.Error("reused agent should count as updated")
	}
	if db.agentInserts != 0 {
		t.Errorf("no agent insert expected, got %d", db.agentInserts)
	}
	l := db.listings["MLS-100"]
	if l.AgentID == nil || *l.AgentID != existing.ID {
		t.Error("listing should reference the existing agent")
	}
}

func TestReconcileAgentWithoutIdentity(t *testing.T) {
	db := newMemDB()
	r := NewReconciler(db)

	rec := fullRecord()
	rec.Agent = &feed.AgentRecord{OfficePhone: strPtr("512-555-0100")} // no email, no first name

	result, err := r.Reconcile(context.Background(), rec)
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if result.AgentCreated || result.AgentUpdated {
		t.Error("agent without email or first name must be skipped")
	}
	if db.listings["MLS-100"].AgentID != nil {
		t.Error("listing must not reference a skipped agent")
	}
}

func TestReconcileOfficeReuseByName(t *testing.T) {
	db := newMemDB()
	existing := &models.Office{ID: uuid.New(), Name: "Example Realty"}
	db.offices["Example Realty"] = existing

	r := NewReconciler(db)
	result, err := r.Reconcile(context.Background(), fullRecord())
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}

	if result.OfficeCreated {
		t.Error("matching name must reuse the office")
	}
	if !result.OfficeUpdated {
		t.Error("reused office should count as updated")
	}
	l := db.listings["MLS-100"]
	if l.OfficeID == nil || *l.OfficeID != existing.ID {
		t.Error("listing should reference the existing office")
	}
}

func TestReconcileFailureRollsBack(t *testing.T) {
	db := newMemDB()
	db.insertListingErr = fmt.Errorf("disk on fire")
	r := NewReconciler(db)

	_, err := r.Reconcile(context.Background(), fullRecord())
	if err == nil {
		t.Fatal("expected error")
	}
	var rerr *RecordError
	if !errors.As(err, &rerr) {
		t.Fatalf("expected RecordError, got %T", err)
	}
	if rerr.MLSID != "MLS-100" {
		t.Errorf("record error should carry the MLS id, got %q", rerr.MLSID)
	}
	if db.rollbacks != 1 {
		t.Errorf("expected 1 rollback, got %d", db.rollbacks)
	}
	if db.commits != 0 {
		t.Errorf("expected no commit, got %d", db.commits)
	}
}
