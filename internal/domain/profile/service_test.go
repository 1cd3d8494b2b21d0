package profile_test

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/billable/internal/apperr"
	"github.com/rpggio/billable/internal/domain/profile"
	"github.com/rpggio/billable/internal/repository"
	"github.com/rpggio/billable/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestProfileService_SaveValidation(t *testing.T) {
	ctx := context.Background()
	svc := profile.NewService(&mocks.ProfileRepository{}, nil)

	terms := -5
	_, err := svc.Save(ctx, &profile.Profile{
		EntityType:          profile.EntityBusiness,
		Email:               "bad",
		DefaultPaymentTerms: &terms,
	})
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Contains(t, verr.Fields, "business_name")
	require.Contains(t, verr.Fields, "email")
	require.Contains(t, verr.Fields, "invoice_prefix")
	require.Contains(t, verr.Fields, "default_payment_terms")
	require.NotContains(t, verr.Fields, "first_name")
}

func TestProfileService_SaveDefaults(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProfileRepository{}
	repo.On("Get", ctx).Return((*profile.Profile)(nil), repository.ErrNotFound)
	repo.On("Save", ctx, mock.Anything).Return(nil)

	p, err := profile.NewService(repo, nil).Save(ctx, &profile.Profile{
		FirstName:     "Ada",
		LastName:      "Lovelace",
		Email:         "ada@example.com",
		InvoicePrefix: " ADA ",
	})
	require.NoError(t, err)
	require.Equal(t, profile.EntityIndividual, p.EntityType)
	require.Equal(t, 1, p.NextInvoiceNumber)
	require.Equal(t, "ADA", p.InvoicePrefix)
	require.Equal(t, "Ada Lovelace", p.DisplayName())
}

func TestProfileService_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.ProfileRepository{}
	repo.On("Get", ctx).Return((*profile.Profile)(nil), repository.ErrNotFound)

	_, err := profile.NewService(repo, nil).Get(ctx)
	require.ErrorIs(t, err, profile.ErrProfileNotFound)
}

func TestSequencer_Next(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }

	repo := &mocks.ProfileRepository{}
	repo.On("ClaimInvoiceNumber", ctx).Return("ACME", 7, nil)

	number, err := profile.NewSequencer(repo, nil).WithClock(clock).Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "ACME-2026-007", number)
}

func TestSequencer_NoProfile(t *testing.T) {
	ctx := context.Background()
	clock := func() time.Time { return time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC) }

	repo := &mocks.ProfileRepository{}
	repo.On("ClaimInvoiceNumber", ctx).Return("", 0, repository.ErrNotFound)

	number, err := profile.NewSequencer(repo, nil).WithClock(clock).Next(ctx)
	require.NoError(t, err)
	require.Equal(t, "INV-2026-001", number)
}

func TestFormat_WidensPastThreeDigits(t *testing.T) {
	require.Equal(t, "INV-2026-1234", profile.Format("INV", 2026, 1234))
}
