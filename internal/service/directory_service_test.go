package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helpdesk-kit/helpdesk/internal/domain"
	apperrors "github.com/helpdesk-kit/helpdesk/pkg/util"
)

func TestCategoryLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	admin := identity(f.admin)

	category, err := f.directory.CreateCategory(ctx, admin, CategoryInput{Name: "  Network  ", Description: "switches and cabling"})
	require.NoError(t, err)
	assert.Equal(t, "Network", category.Name, "names are trimmed")

	category, err = f.directory.UpdateCategory(ctx, admin, category.ID, CategoryInput{Name: "Networking"})
	require.NoError(t, err)
	assert.Equal(t, "Networking", category.Name)

	require.NoError(t, f.directory.DeleteCategory(ctx, admin, category.ID))

	_, err = f.directory.UpdateCategory(ctx, admin, category.ID, CategoryInput{Name: "gone"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestDeleteCategoryInUse(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)
	f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)

	err := f.directory.DeleteCategory(ctx, identity(f.admin), f.category.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.EqualValues(t, 2, domainErr.Details["ticket_count"])

	_, getErr := f.directory.UpdateCategory(ctx, identity(f.admin), f.category.ID, CategoryInput{Name: f.category.Name})
	assert.NoError(t, getErr, "a refused delete leaves the category in place")
}

func TestCategoryMutationsAdminOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.directory.CreateCategory(ctx, identity(f.technician), CategoryInput{Name: "Shadow"})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))

	err = f.directory.DeleteCategory(ctx, identity(f.requester), f.category.ID)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}

func TestListCategoriesWithCounts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.addTicket(f.requester.ID, f.category.ID, f.priority.ID, f.openStatus.ID)

	categories, err := f.directory.ListCategories(ctx, identity(f.requester))
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.EqualValues(t, 1, categories[0].TicketCount)
}

func TestListPrioritiesOrderedByLevel(t *testing.T) {
	f := newFixture()
	f.store.addPriority("Critical", 1)
	f.store.addPriority("Low", 4)

	priorities, err := f.directory.ListPriorities(context.Background(), identity(f.requester))
	require.NoError(t, err)
	require.Len(t, priorities, 3)
	assert.Equal(t, "Critical", priorities[0].Name)
	assert.Equal(t, "Low", priorities[2].Name)
}

func TestListTechniciansRoster(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.store.addUser(domain.RoleTechnician, false) // inactive, excluded

	roster, err := f.directory.ListTechnicians(ctx, identity(f.technician))
	require.NoError(t, err)
	require.Len(t, roster, 2, "active technicians and admins only")
	for _, member := range roster {
		assert.True(t, member.Role.IsStaff())
		assert.True(t, member.Active)
	}

	_, err = f.directory.ListTechnicians(ctx, identity(f.requester))
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "FORBIDDEN"))
}
