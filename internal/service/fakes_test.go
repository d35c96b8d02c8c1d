package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	"github.com/helpdesk-kit/helpdesk/internal/repository"
)

// memStore backs the in-memory repository fakes the service tests run
// against. Services built with a nil TxBeginner run their transactional
// closures directly, so the fakes see every write.
type memStore struct {
	users      map[int64]*domain.User
	categories map[int64]*domain.Category
	priorities map[int64]*domain.Priority
	statuses   []*domain.Status
	tickets    map[int64]*domain.Ticket
	comments   []*domain.Comment
	history    []*domain.HistoryEntry
	nextID     int64
}

func newMemStore() *memStore {
	return &memStore{
		users:      map[int64]*domain.User{},
		categories: map[int64]*domain.Category{},
		priorities: map[int64]*domain.Priority{},
		tickets:    map[int64]*domain.Ticket{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) addUser(role domain.Role, active bool) *domain.User {
	user := &domain.User{
		ID:        s.id(),
		Username:  "user",
		Email:     "user@example.com",
		Role:      role,
		Active:    active,
		CreatedAt: time.Now(),
	}
	s.users[user.ID] = user
	return user
}

func (s *memStore) addCategory(name string) *domain.Category {
	category := &domain.Category{ID: s.id(), Name: name, CreatedAt: time.Now()}
	s.categories[category.ID] = category
	return category
}

func (s *memStore) addPriority(name string, level int) *domain.Priority {
	priority := &domain.Priority{ID: s.id(), Name: name, Level: level}
	s.priorities[priority.ID] = priority
	return priority
}

func (s *memStore) addStatus(name string, statusType domain.StatusType) *domain.Status {
	status := &domain.Status{ID: s.id(), Name: name, Type: statusType}
	s.statuses = append(s.statuses, status)
	return status
}

func (s *memStore) addTicket(userID, categoryID, priorityID, statusID int64) *domain.Ticket {
	ticket := &domain.Ticket{
		ID:          s.id(),
		Subject:     "printer is on fire",
		Description: "it is genuinely on fire",
		UserID:      userID,
		CategoryID:  categoryID,
		PriorityID:  priorityID,
		StatusID:    statusID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.tickets[ticket.ID] = ticket
	return ticket
}

func (s *memStore) statusByID(id int64) *domain.Status {
	for _, status := range s.statuses {
		if status.ID == id {
			return status
		}
	}
	return nil
}

func (s *memStore) historyFor(ticketID int64) []*domain.HistoryEntry {
	var entries []*domain.HistoryEntry
	for _, entry := range s.history {
		if entry.TicketID == ticketID {
			entries = append(entries, entry)
		}
	}
	return entries
}

type fakeUserRepo struct{ store *memStore }

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	user.ID = r.store.id()
	user.CreatedAt = time.Now()
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	if _, ok := r.store.users[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *user
	r.store.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.store.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.users, id)
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	user, ok := r.store.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *user
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, user := range r.store.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeUserRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	var users []domain.User
	for _, user := range r.store.users {
		if filter.Role != nil && user.Role != *filter.Role {
			continue
		}
		if filter.SearchTerm != nil && !strings.Contains(user.Username, *filter.SearchTerm) {
			continue
		}
		users = append(users, *user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) ListTechnicians(_ context.Context) ([]domain.User, error) {
	var users []domain.User
	for _, user := range r.store.users {
		if user.Active && user.Role.IsStaff() {
			users = append(users, *user)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

func (r *fakeUserRepo) CountByRoles(_ context.Context, roles ...domain.Role) (int64, error) {
	var count int64
	for _, user := range r.store.users {
		for _, role := range roles {
			if user.Role == role {
				count++
				break
			}
		}
	}
	return count, nil
}

func (r *fakeUserRepo) WithTx(pgx.Tx) repository.UserRepository { return r }

type fakeCategoryRepo struct{ store *memStore }

func (r *fakeCategoryRepo) Create(_ context.Context, category *domain.Category) error {
	category.ID = r.store.id()
	category.CreatedAt = time.Now()
	copied := *category
	r.store.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *domain.Category) error {
	if _, ok := r.store.categories[category.ID]; !ok {
		return pgx.ErrNoRows
	}
	copied := *category
	r.store.categories[category.ID] = &copied
	return nil
}

func (r *fakeCategoryRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.store.categories[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(r.store.categories, id)
	return nil
}

func (r *fakeCategoryRepo) GetByID(_ context.Context, id int64) (*domain.Category, error) {
	category, ok := r.store.categories[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *category
	return &copied, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	for _, category := range r.store.categories {
		categories = append(categories, *category)
	}
	sort.Slice(categories, func(i, j int) bool { return categories[i].ID < categories[j].ID })
	return categories, nil
}

func (r *fakeCategoryRepo) ListWithCounts(ctx context.Context) ([]repository.CategoryWithCount, error) {
	categories, _ := r.List(ctx)
	items := make([]repository.CategoryWithCount, 0, len(categories))
	for _, category := range categories {
		count, _ := r.CountTickets(ctx, category.ID)
		items = append(items, repository.CategoryWithCount{Category: category, TicketCount: count})
	}
	return items, nil
}

func (r *fakeCategoryRepo) CountTickets(_ context.Context, id int64) (int64, error) {
	var count int64
	for _, ticket := range r.store.tickets {
		if ticket.CategoryID == id {
			count++
		}
	}
	return count, nil
}

func (r *fakeCategoryRepo) WithTx(pgx.Tx) repository.CategoryRepository { return r }

type fakePriorityRepo struct{ store *memStore }

func (r *fakePriorityRepo) GetByID(_ context.Context, id int64) (*domain.Priority, error) {
	priority, ok := r.store.priorities[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *priority
	return &copied, nil
}

func (r *fakePriorityRepo) List(_ context.Context) ([]domain.Priority, error) {
	var priorities []domain.Priority
	for _, priority := range r.store.priorities {
		priorities = append(priorities, *priority)
	}
	sort.Slice(priorities, func(i, j int) bool { return priorities[i].Level < priorities[j].Level })
	return priorities, nil
}

type fakeStatusRepo struct{ store *memStore }

func (r *fakeStatusRepo) GetByID(_ context.Context, id int64) (*domain.Status, error) {
	if status := r.store.statusByID(id); status != nil {
		copied := *status
		return &copied, nil
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeStatusRepo) List(_ context.Context) ([]domain.Status, error) {
	statuses := make([]domain.Status, 0, len(r.store.statuses))
	for _, status := range r.store.statuses {
		statuses = append(statuses, *status)
	}
	return statuses, nil
}

func (r *fakeStatusRepo) DefaultOpen(_ context.Context) (*domain.Status, error) {
	var lowest *domain.Status
	for _, status := range r.store.statuses {
		if status.Type != domain.StatusTypeOpen {
			continue
		}
		if lowest == nil || status.ID < lowest.ID {
			lowest = status
		}
	}
	if lowest == nil {
		return nil, pgx.ErrNoRows
	}
	copied := *lowest
	return &copied, nil
}

type fakeTicketRepo struct{ store *memStore }

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	ticket.ID = r.store.id()
	ticket.CreatedAt = time.Now()
	ticket.UpdatedAt = ticket.CreatedAt
	copied := *ticket
	r.store.tickets[ticket.ID] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id int64) (*domain.Ticket, error) {
	ticket, ok := r.store.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) UpdateAssignee(_ context.Context, id int64, assignedTo *int64) error {
	ticket, ok := r.store.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.AssignedTo = assignedTo
	ticket.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTicketRepo) ClaimUnassigned(_ context.Context, id, technicianID int64) (bool, error) {
	ticket, ok := r.store.tickets[id]
	if !ok || ticket.AssignedTo != nil {
		return false, nil
	}
	ticket.AssignedTo = &technicianID
	ticket.UpdatedAt = time.Now()
	return true, nil
}

func (r *fakeTicketRepo) UpdateStatus(_ context.Context, id, statusID int64, closedAt *time.Time) error {
	ticket, ok := r.store.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.StatusID = statusID
	ticket.ClosedAt = closedAt
	ticket.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTicketRepo) UpdatePriority(_ context.Context, id, priorityID int64) error {
	ticket, ok := r.store.tickets[id]
	if !ok {
		return pgx.ErrNoRows
	}
	ticket.PriorityID = priorityID
	ticket.UpdatedAt = time.Now()
	return nil
}

func (r *fakeTicketRepo) matches(ticket *domain.Ticket, filter repository.TicketFilter) bool {
	if filter.UserID != nil && ticket.UserID != *filter.UserID {
		return false
	}
	if filter.AssignedTo != nil && (ticket.AssignedTo == nil || *ticket.AssignedTo != *filter.AssignedTo) {
		return false
	}
	if filter.Unassigned && ticket.AssignedTo != nil {
		return false
	}
	if len(filter.StatusIDs) > 0 && !containsID(filter.StatusIDs, ticket.StatusID) {
		return false
	}
	if len(filter.PriorityIDs) > 0 && !containsID(filter.PriorityIDs, ticket.PriorityID) {
		return false
	}
	if len(filter.CategoryIDs) > 0 && !containsID(filter.CategoryIDs, ticket.CategoryID) {
		return false
	}
	if filter.SearchTerm != nil && !strings.Contains(ticket.Subject, *filter.SearchTerm) {
		return false
	}
	return true
}

func (r *fakeTicketRepo) ListWithFilter(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, error) {
	var tickets []domain.Ticket
	for _, ticket := range r.store.tickets {
		if r.matches(ticket, filter) {
			tickets = append(tickets, *ticket)
		}
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].ID > tickets[j].ID })
	if filter.Offset > 0 {
		if filter.Offset >= len(tickets) {
			return nil, nil
		}
		tickets = tickets[filter.Offset:]
	}
	if filter.Limit > 0 && len(tickets) > filter.Limit {
		tickets = tickets[:filter.Limit]
	}
	return tickets, nil
}

func (r *fakeTicketRepo) CountWithFilter(_ context.Context, filter repository.TicketFilter) (int64, error) {
	var count int64
	for _, ticket := range r.store.tickets {
		if r.matches(ticket, filter) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) CountByStatusType(_ context.Context, filter repository.TicketFilter, statusType domain.StatusType) (int64, error) {
	var count int64
	for _, ticket := range r.store.tickets {
		if !r.matches(ticket, filter) {
			continue
		}
		status := r.store.statusByID(ticket.StatusID)
		if status != nil && status.Type == statusType {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) CountClosedSince(_ context.Context, technicianID int64, since time.Time) (int64, error) {
	var count int64
	for _, ticket := range r.store.tickets {
		if ticket.AssignedTo == nil || *ticket.AssignedTo != technicianID {
			continue
		}
		if ticket.ClosedAt != nil && ticket.ClosedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (r *fakeTicketRepo) WithTx(pgx.Tx) repository.TicketRepository { return r }

type fakeCommentRepo struct{ store *memStore }

func (r *fakeCommentRepo) Create(_ context.Context, comment *domain.Comment) error {
	comment.ID = r.store.id()
	comment.CreatedAt = time.Now()
	copied := *comment
	r.store.comments = append(r.store.comments, &copied)
	return nil
}

func (r *fakeCommentRepo) ListByTicket(_ context.Context, ticketID int64, includeInternal bool) ([]domain.Comment, error) {
	var comments []domain.Comment
	for _, comment := range r.store.comments {
		if comment.TicketID != ticketID {
			continue
		}
		if comment.IsInternal && !includeInternal {
			continue
		}
		comments = append(comments, *comment)
	}
	return comments, nil
}

func (r *fakeCommentRepo) WithTx(pgx.Tx) repository.CommentRepository { return r }

type fakeHistoryRepo struct{ store *memStore }

func (r *fakeHistoryRepo) Create(_ context.Context, entry *domain.HistoryEntry) error {
	entry.ID = r.store.id()
	entry.CreatedAt = time.Now()
	copied := *entry
	r.store.history = append(r.store.history, &copied)
	return nil
}

func (r *fakeHistoryRepo) ListByTicket(_ context.Context, ticketID int64) ([]domain.HistoryEntry, error) {
	var entries []domain.HistoryEntry
	for _, entry := range r.store.history {
		if entry.TicketID == ticketID {
			entries = append(entries, *entry)
		}
	}
	return entries, nil
}

func (r *fakeHistoryRepo) ListRecent(_ context.Context, ticketID int64, limit int) ([]domain.HistoryEntry, error) {
	entries, _ := r.ListByTicket(context.Background(), ticketID)
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

func (r *fakeHistoryRepo) WithTx(pgx.Tx) repository.HistoryRepository { return r }

func containsID(ids []int64, id int64) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

// fixture wires a fully populated fake world and the services under test.
type fixture struct {
	store       *memStore
	tickets     *TicketService
	assignments *AssignmentService
	directory   *DirectoryService

	requester  *domain.User
	technician *domain.User
	admin      *domain.User
	category   *domain.Category
	priority   *domain.Priority
	openStatus *domain.Status
	working    *domain.Status
	closed     *domain.Status
}

func newFixture() *fixture {
	store := newMemStore()
	f := &fixture{store: store}

	f.requester = store.addUser(domain.RoleUser, true)
	f.technician = store.addUser(domain.RoleTechnician, true)
	f.admin = store.addUser(domain.RoleAdmin, true)
	f.category = store.addCategory("Hardware")
	f.priority = store.addPriority("High", 2)
	f.openStatus = store.addStatus("New", domain.StatusTypeOpen)
	f.working = store.addStatus("In Progress", domain.StatusTypeInProgress)
	f.closed = store.addStatus("Closed", domain.StatusTypeClosed)

	users := &fakeUserRepo{store: store}
	categories := &fakeCategoryRepo{store: store}
	priorities := &fakePriorityRepo{store: store}
	statuses := &fakeStatusRepo{store: store}
	tickets := &fakeTicketRepo{store: store}
	comments := &fakeCommentRepo{store: store}
	history := &fakeHistoryRepo{store: store}

	f.tickets = NewTicketService(TicketDependencies{
		TicketRepo:   tickets,
		CategoryRepo: categories,
		PriorityRepo: priorities,
		StatusRepo:   statuses,
		CommentRepo:  comments,
		HistoryRepo:  history,
	})
	f.assignments = NewAssignmentService(AssignmentDependencies{
		TicketRepo:  tickets,
		UserRepo:    users,
		HistoryRepo: history,
	})
	f.directory = NewDirectoryService(DirectoryDependencies{
		CategoryRepo: categories,
		PriorityRepo: priorities,
		StatusRepo:   statuses,
		UserRepo:     users,
	})
	return f
}

func identity(user *domain.User) domain.Identity {
	return domain.Identity{UserID: user.ID, Role: user.Role}
}
