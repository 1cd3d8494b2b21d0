package client_test

import (
	"context"
	"testing"

	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/domain/client"
	"github.com/rpggio/billable/internal/repository"
	"github.com/rpggio/billable/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestClientService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ClientRepository{}
	svc := client.NewService(repo, nil)

	_, err := svc.Create(ctx, client.Input{Name: "  ", Email: "not-an-email"})
	require.ErrorIs(t, err, apperr.ErrValidation)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "name")
	require.Contains(t, verr.Fields, "email")
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestClientService_CreateDuplicateName(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ClientRepository{}
	repo.On("Create", ctx, mock.Anything).Return(repository.ErrDuplicate)

	svc := client.NewService(repo, nil)
	_, err := svc.Create(ctx, client.Input{Name: "Acme"})

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "has already been taken", verr.Fields["name"])
}

func TestClientService_GetNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ClientRepository{}
	repo.On("Get", ctx, "missing").Return((*client.Client)(nil), repository.ErrNotFound)

	svc := client.NewService(repo, nil)
	_, err := svc.Get(ctx, "missing")
	require.ErrorIs(t, err, client.ErrClientNotFound)
	require.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestClientService_FindOrCreateByName(t *testing.T) {
	ctx := context.Background()

	t.Run("existing", func(t *testing.T) {
		existing := &client.Client{ID: "c1", Name: "Acme"}
		repo := &mocks.ClientRepository{}
		repo.On("FindByName", ctx, "Acme").Return(existing, nil)

		got, err := client.NewService(repo, nil).FindOrCreateByName(ctx, " Acme ")
		require.NoError(t, err)
		require.Same(t, existing, got)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("created", func(t *testing.T) {
		repo := &mocks.ClientRepository{}
		repo.On("FindByName", ctx, "Globex").Return((*client.Client)(nil), repository.ErrNotFound)
		repo.On("Create", ctx, mock.MatchedBy(func(c *client.Client) bool { return c.Name == "Globex" })).Return(nil)

		got, err := client.NewService(repo, nil).FindOrCreateByName(ctx, "Globex")
		require.NoError(t, err)
		require.NotEmpty(t, got.ID)
		repo.AssertExpectations(t)
	})
}

func TestClient_ContactAndAddress(t *testing.T) {
	c := client.Client{
		FirstName:    "Ada",
		LastName:     "Lovelace",
		AddressLine1: "12 St James's Square",
		City:         "London",
		ZipCode:      "SW1Y 4JH",
		Country:      "UK",
	}
	require.Equal(t, "Ada Lovelace", c.ContactName())
	require.Equal(t, "12 St James's Square\nLondon, SW1Y 4JH\nUK", c.FullAddress())
	require.Empty(t, (&client.Client{}).ContactName())
}
