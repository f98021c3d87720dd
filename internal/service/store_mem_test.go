package service

import (
	"context"
	"sort"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/equipment-service/internal/domain"
	"github.com/spec-kit/equipment-service/internal/events"
	"github.com/spec-kit/equipment-service/internal/repository"
)

// memStore is an in-memory repository.Store for service tests. WithinTx
// snapshots the whole state and restores it when the callback fails, so
// rollback behavior matches the Postgres-backed store.
type memStore struct {
	nextID int64

	tickets       map[int64]domain.ServiceTicket
	sequences     map[int]int64
	history       []domain.TicketHistoryEntry
	approvals     map[int64]domain.ApprovalRecord
	usages        []domain.PartUsageRecord
	central       map[int64]domain.CentralInventoryItem
	techInv       []domain.TechnicianInventoryEntry
	partsRequests map[int64]domain.PartsRequest
	assignments   []domain.AssignmentRelation
	users         map[int64]domain.User
	institutions  []domain.Institution
	printers      []domain.Printer
	pendingMaint  map[int64]bool
	parts         map[int64]domain.Part
}

func newMemStore() *memStore {
	return &memStore{
		tickets:       map[int64]domain.ServiceTicket{},
		sequences:     map[int]int64{},
		approvals:     map[int64]domain.ApprovalRecord{},
		central:       map[int64]domain.CentralInventoryItem{},
		partsRequests: map[int64]domain.PartsRequest{},
		users:         map[int64]domain.User{},
		pendingMaint:  map[int64]bool{},
		parts:         map[int64]domain.Part{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) clone() *memStore {
	c := newMemStore()
	c.nextID = m.nextID
	for k, v := range m.tickets {
		c.tickets[k] = v
	}
	for k, v := range m.sequences {
		c.sequences[k] = v
	}
	c.history = append([]domain.TicketHistoryEntry(nil), m.history...)
	for k, v := range m.approvals {
		c.approvals[k] = v
	}
	c.usages = append([]domain.PartUsageRecord(nil), m.usages...)
	for k, v := range m.central {
		c.central[k] = v
	}
	c.techInv = append([]domain.TechnicianInventoryEntry(nil), m.techInv...)
	for k, v := range m.partsRequests {
		c.partsRequests[k] = v
	}
	c.assignments = append([]domain.AssignmentRelation(nil), m.assignments...)
	for k, v := range m.users {
		c.users[k] = v
	}
	c.institutions = append([]domain.Institution(nil), m.institutions...)
	c.printers = append([]domain.Printer(nil), m.printers...)
	for k, v := range m.pendingMaint {
		c.pendingMaint[k] = v
	}
	for k, v := range m.parts {
		c.parts[k] = v
	}
	return c
}

func (m *memStore) restore(snapshot *memStore) {
	*m = *snapshot
}

func (m *memStore) WithinTx(ctx context.Context, fn func(repository.Store) error) error {
	snapshot := m.clone()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memStore) Tickets() repository.TicketRepository               { return memTickets{m} }
func (m *memStore) History() repository.TicketHistoryRepository       { return memHistory{m} }
func (m *memStore) Approvals() repository.ApprovalRepository          { return memApprovals{m} }
func (m *memStore) PartUsages() repository.PartUsageRepository        { return memUsages{m} }
func (m *memStore) CentralInventory() repository.CentralInventoryRepository {
	return memCentral{m}
}
func (m *memStore) TechnicianInventory() repository.TechnicianInventoryRepository {
	return memTechInv{m}
}
func (m *memStore) PartsRequests() repository.PartsRequestRepository { return memPartsRequests{m} }
func (m *memStore) Assignments() repository.AssignmentRepository     { return memAssignments{m} }
func (m *memStore) Users() repository.UserRepository                 { return memUsers{m} }
func (m *memStore) Institutions() repository.InstitutionRepository   { return memInstitutions{m} }
func (m *memStore) Printers() repository.PrinterRepository           { return memPrinters{m} }
func (m *memStore) Maintenance() repository.MaintenanceRepository    { return memMaintenance{m} }
func (m *memStore) Parts() repository.PartRepository                 { return memParts{m} }

type memTickets struct{ s *memStore }

func (r memTickets) Create(_ context.Context, ticket *domain.ServiceTicket) error {
	ticket.ID = r.s.id()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) Update(_ context.Context, ticket *domain.ServiceTicket) error {
	if _, ok := r.s.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	ticket.UpdatedAt = time.Now()
	r.s.tickets[ticket.ID] = *ticket
	return nil
}

func (r memTickets) GetByID(_ context.Context, id int64) (*domain.ServiceTicket, error) {
	ticket, ok := r.s.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (r memTickets) GetByIDForUpdate(ctx context.Context, id int64) (*domain.ServiceTicket, error) {
	return r.GetByID(ctx, id)
}

func (r memTickets) GetBySequenceNumber(_ context.Context, seq string) (*domain.ServiceTicket, error) {
	for _, ticket := range r.s.tickets {
		if ticket.SequenceNumber == seq {
			t := ticket
			return &t, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memTickets) FindActiveByPrinter(_ context.Context, printerID int64) (*domain.ServiceTicket, error) {
	ids := make([]int64, 0, len(r.s.tickets))
	for id := range r.s.tickets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		ticket := r.s.tickets[id]
		if ticket.PrinterID == printerID && !ticket.Status.IsTerminal() {
			t := ticket
			return &t, nil
		}
	}
	return nil, nil
}

func (r memTickets) NextSequence(_ context.Context, year int) (int64, error) {
	r.s.sequences[year]++
	return r.s.sequences[year], nil
}

func (r memTickets) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.ServiceTicket, error) {
	ids := make([]int64, 0, len(r.s.tickets))
	for id := range r.s.tickets {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []domain.ServiceTicket
	for _, id := range ids {
		ticket := r.s.tickets[id]
		if filter.RequesterID != nil && ticket.RequesterID != *filter.RequesterID {
			continue
		}
		if filter.TechnicianID != nil && (ticket.TechnicianID == nil || *ticket.TechnicianID != *filter.TechnicianID) {
			continue
		}
		if filter.InstitutionID != nil && ticket.InstitutionID != *filter.InstitutionID {
			continue
		}
		if len(filter.Statuses) > 0 {
			matched := false
			for _, status := range filter.Statuses {
				if ticket.Status == status {
					matched = true
					break
				}
			}
			if !matched {
				continue
			}
		}
		out = append(out, ticket)
	}
	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return nil, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

type memHistory struct{ s *memStore }

func (r memHistory) Create(_ context.Context, entry *domain.TicketHistoryEntry) error {
	entry.ID = r.s.id()
	entry.CreatedAt = time.Now()
	r.s.history = append(r.s.history, *entry)
	return nil
}

func (r memHistory) ListByTicket(_ context.Context, ticketID int64) ([]domain.TicketHistoryEntry, error) {
	var out []domain.TicketHistoryEntry
	for _, entry := range r.s.history {
		if entry.TicketID == ticketID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type memApprovals struct{ s *memStore }

func (r memApprovals) Create(_ context.Context, record *domain.ApprovalRecord) error {
	record.ID = r.s.id()
	record.SubmittedAt = time.Now()
	r.s.approvals[record.ID] = *record
	return nil
}

func (r memApprovals) Update(_ context.Context, record *domain.ApprovalRecord) error {
	if _, ok := r.s.approvals[record.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.approvals[record.ID] = *record
	return nil
}

func (r memApprovals) GetByID(_ context.Context, id int64) (*domain.ApprovalRecord, error) {
	record, ok := r.s.approvals[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &record, nil
}

func (r memApprovals) GetByIDForUpdate(ctx context.Context, id int64) (*domain.ApprovalRecord, error) {
	return r.GetByID(ctx, id)
}

func (r memApprovals) OpenByTicket(_ context.Context, ticketID int64) (*domain.ApprovalRecord, error) {
	for _, record := range r.s.approvals {
		if record.TicketID == ticketID && record.State == domain.ApprovalAwaiting {
			rec := record
			return &rec, nil
		}
	}
	return nil, nil
}

func (r memApprovals) ListByTicket(_ context.Context, ticketID int64) ([]domain.ApprovalRecord, error) {
	var out []domain.ApprovalRecord
	for _, record := range r.s.approvals {
		if record.TicketID == ticketID {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memUsages struct{ s *memStore }

func (r memUsages) Create(_ context.Context, usage *domain.PartUsageRecord) error {
	usage.ID = r.s.id()
	usage.CreatedAt = time.Now()
	r.s.usages = append(r.s.usages, *usage)
	return nil
}

func (r memUsages) ListByApproval(_ context.Context, approvalID int64) ([]domain.PartUsageRecord, error) {
	var out []domain.PartUsageRecord
	for _, usage := range r.s.usages {
		if usage.ApprovalID == approvalID {
			out = append(out, usage)
		}
	}
	return out, nil
}

func (r memUsages) ListByTicket(_ context.Context, ticketID int64) ([]domain.PartUsageRecord, error) {
	var out []domain.PartUsageRecord
	for _, usage := range r.s.usages {
		if usage.TicketID == ticketID {
			out = append(out, usage)
		}
	}
	return out, nil
}

func (r memUsages) DeleteByApproval(_ context.Context, approvalID int64) error {
	kept := r.s.usages[:0]
	for _, usage := range r.s.usages {
		if usage.ApprovalID != approvalID {
			kept = append(kept, usage)
		}
	}
	r.s.usages = append([]domain.PartUsageRecord(nil), kept...)
	return nil
}

type memCentral struct{ s *memStore }

func (r memCentral) GetByPart(_ context.Context, partID int64) (*domain.CentralInventoryItem, error) {
	item, ok := r.s.central[partID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &item, nil
}

func (r memCentral) GetByPartForUpdate(ctx context.Context, partID int64) (*domain.CentralInventoryItem, error) {
	return r.GetByPart(ctx, partID)
}

func (r memCentral) UpdateQuantity(_ context.Context, id int64, quantity int) error {
	for partID, item := range r.s.central {
		if item.ID == id {
			item.Quantity = quantity
			r.s.central[partID] = item
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r memCentral) List(_ context.Context) ([]domain.CentralInventoryItem, error) {
	var out []domain.CentralInventoryItem
	for _, item := range r.s.central {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartID < out[j].PartID })
	return out, nil
}

type memTechInv struct{ s *memStore }

func (r memTechInv) GetByTechnicianAndPart(_ context.Context, technicianID, partID int64) (*domain.TechnicianInventoryEntry, error) {
	for _, entry := range r.s.techInv {
		if entry.TechnicianID == technicianID && entry.PartID == partID {
			e := entry
			return &e, nil
		}
	}
	return nil, nil
}

func (r memTechInv) GetByTechnicianAndPartForUpdate(ctx context.Context, technicianID, partID int64) (*domain.TechnicianInventoryEntry, error) {
	return r.GetByTechnicianAndPart(ctx, technicianID, partID)
}

func (r memTechInv) UpdateQuantity(_ context.Context, id int64, quantity int) error {
	for i, entry := range r.s.techInv {
		if entry.ID == id {
			r.s.techInv[i].Quantity = quantity
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (r memTechInv) AddQuantity(_ context.Context, technicianID, partID int64, delta int) error {
	for i, entry := range r.s.techInv {
		if entry.TechnicianID == technicianID && entry.PartID == partID {
			r.s.techInv[i].Quantity += delta
			return nil
		}
	}
	r.s.techInv = append(r.s.techInv, domain.TechnicianInventoryEntry{
		ID:           r.s.id(),
		TechnicianID: technicianID,
		PartID:       partID,
		Quantity:     delta,
	})
	return nil
}

func (r memTechInv) ListByTechnician(_ context.Context, technicianID int64) ([]domain.TechnicianInventoryEntry, error) {
	var out []domain.TechnicianInventoryEntry
	for _, entry := range r.s.techInv {
		if entry.TechnicianID == technicianID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PartID < out[j].PartID })
	return out, nil
}

type memPartsRequests struct{ s *memStore }

func (r memPartsRequests) Create(_ context.Context, request *domain.PartsRequest) error {
	request.ID = r.s.id()
	request.CreatedAt = time.Now()
	r.s.partsRequests[request.ID] = *request
	return nil
}

func (r memPartsRequests) Update(_ context.Context, request *domain.PartsRequest) error {
	if _, ok := r.s.partsRequests[request.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.partsRequests[request.ID] = *request
	return nil
}

func (r memPartsRequests) GetByID(_ context.Context, id int64) (*domain.PartsRequest, error) {
	request, ok := r.s.partsRequests[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &request, nil
}

func (r memPartsRequests) GetByIDForUpdate(ctx context.Context, id int64) (*domain.PartsRequest, error) {
	return r.GetByID(ctx, id)
}

func (r memPartsRequests) ListByTechnician(_ context.Context, technicianID int64) ([]domain.PartsRequest, error) {
	var out []domain.PartsRequest
	for _, request := range r.s.partsRequests {
		if request.TechnicianID == technicianID {
			out = append(out, request)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memPartsRequests) ListPending(_ context.Context) ([]domain.PartsRequest, error) {
	var out []domain.PartsRequest
	for _, request := range r.s.partsRequests {
		if request.Status == domain.PartsRequestPending {
			out = append(out, request)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memAssignments struct{ s *memStore }

func (r memAssignments) Create(_ context.Context, relation *domain.AssignmentRelation) error {
	relation.ID = r.s.id()
	relation.CreatedAt = time.Now()
	r.s.assignments = append(r.s.assignments, *relation)
	return nil
}

func (r memAssignments) ActiveByInstitution(_ context.Context, institutionID int64) ([]domain.AssignmentRelation, error) {
	var out []domain.AssignmentRelation
	for _, relation := range r.s.assignments {
		if relation.InstitutionID == institutionID && relation.Active {
			out = append(out, relation)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAssignments) ActiveByTechnician(_ context.Context, technicianID int64) ([]domain.AssignmentRelation, error) {
	var out []domain.AssignmentRelation
	for _, relation := range r.s.assignments {
		if relation.TechnicianID == technicianID && relation.Active {
			out = append(out, relation)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memAssignments) DeactivateByInstitution(_ context.Context, institutionID int64) error {
	now := time.Now()
	for i, relation := range r.s.assignments {
		if relation.InstitutionID == institutionID && relation.Active {
			r.s.assignments[i].Active = false
			r.s.assignments[i].DeactivatedAt = &now
		}
	}
	return nil
}

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, user *domain.User) error {
	user.ID = r.s.id()
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.s.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	r.s.users[user.ID] = *user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range r.s.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memUsers) ListByRole(_ context.Context, role domain.UserRole) ([]domain.User, error) {
	var out []domain.User
	for _, user := range r.s.users {
		if user.Role == role {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memInstitutions struct{ s *memStore }

func (r memInstitutions) GetByID(_ context.Context, id int64) (*domain.Institution, error) {
	for _, inst := range r.s.institutions {
		if inst.ID == id {
			i := inst
			return &i, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memInstitutions) GetByOwner(_ context.Context, userID int64) (*domain.Institution, error) {
	for _, inst := range r.s.institutions {
		if inst.OwnerUserID != nil && *inst.OwnerUserID == userID {
			i := inst
			return &i, nil
		}
	}
	return nil, nil
}

type memPrinters struct{ s *memStore }

func (r memPrinters) GetByID(_ context.Context, id int64) (*domain.Printer, error) {
	for _, printer := range r.s.printers {
		if printer.ID == id {
			p := printer
			return &p, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memPrinters) FirstByOwner(_ context.Context, userID int64) (*domain.Printer, error) {
	for _, printer := range r.s.printers {
		if printer.OwnerUserID != nil && *printer.OwnerUserID == userID {
			p := printer
			return &p, nil
		}
	}
	return nil, nil
}

func (r memPrinters) ListByInstitution(_ context.Context, institutionID int64) ([]domain.Printer, error) {
	var out []domain.Printer
	for _, printer := range r.s.printers {
		if printer.InstitutionID == institutionID {
			out = append(out, printer)
		}
	}
	return out, nil
}

type memMaintenance struct{ s *memStore }

func (r memMaintenance) HasPendingForPrinter(_ context.Context, printerID int64) (bool, error) {
	return r.s.pendingMaint[printerID], nil
}

type memParts struct{ s *memStore }

func (r memParts) GetByID(_ context.Context, id int64) (*domain.Part, error) {
	part, ok := r.s.parts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &part, nil
}

func (r memParts) List(_ context.Context) ([]domain.Part, error) {
	var out []domain.Part
	for _, part := range r.s.parts {
		out = append(out, part)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	published []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.published = append(d.published, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(eventType events.EventType) []events.Event {
	var out []events.Event
	for _, event := range d.published {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}
