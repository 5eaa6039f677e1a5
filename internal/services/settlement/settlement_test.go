package settlement

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/event-reminder/internal/models"
	"github.com/magabrotheeeer/event-reminder/internal/paymentprovider"
	"github.com/magabrotheeeer/event-reminder/internal/storage/repository"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) GetUser(ctx context.Context, userUID string) (*models.User, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *RepoMock) HasActiveSubscriptionUntil(ctx context.Context, userUID string, after time.Time) (bool, error) {
	args := m.Called(ctx, userUID, after)
	return args.Bool(0), args.Error(1)
}

func (m *RepoMock) CreatePendingSubscription(ctx context.Context, sub models.Subscription) (int, error) {
	args := m.Called(ctx, sub)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) SetSubscriptionAuthority(ctx context.Context, id int, authority string) (int, error) {
	args := m.Called(ctx, id, authority)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ReadSubscription(ctx context.Context, id int) (*models.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) DeleteSubscription(ctx context.Context, id int) (int, error) {
	args := m.Called(ctx, id)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) ActivateSubscription(ctx context.Context, id int, paymentRef string) error {
	return m.Called(ctx, id, paymentRef).Error(0)
}

func (m *RepoMock) GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error) {
	args := m.Called(ctx, userUID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Subscription), args.Error(1)
}

func (m *RepoMock) DeactivateSubscription(ctx context.Context, id int, userUID string) error {
	return m.Called(ctx, id, userUID).Error(0)
}

type ProviderMock struct{ mock.Mock }

func (m *ProviderMock) Request(ctx context.Context, amount int, callbackURL, description, email, mobile string) (*paymentprovider.RequestResponse, error) {
	args := m.Called(ctx, amount, callbackURL, description, email, mobile)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.RequestResponse), args.Error(1)
}

func (m *ProviderMock) Verify(ctx context.Context, amount int, authority string) (*paymentprovider.VerifyResponse, error) {
	args := m.Called(ctx, amount, authority)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*paymentprovider.VerifyResponse), args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

const testUID = "3f1c8a7e-1111-2222-3333-444455556666"

func testUser() *models.User {
	return &models.User{
		UID:      testUID,
		Email:    "user@example.com",
		Username: "testuser",
		Tier:     models.TierFree,
	}
}

func TestRequestUpgrade(t *testing.T) {
	tests := []struct {
		name       string
		tier       models.Tier
		setupMocks func(r *RepoMock, p *ProviderMock)
		wantURL    string
		wantErr    error
	}{
		{
			name: "успешный запрос оплаты",
			tier: models.TierPremium,
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("GetUser", mock.Anything, testUID).Return(testUser(), nil).Once()
				r.On("HasActiveSubscriptionUntil", mock.Anything, testUID, mock.Anything).
					Return(false, nil).Once()
				r.On("CreatePendingSubscription", mock.Anything, mock.MatchedBy(func(s models.Subscription) bool {
					return s.UserUID == testUID && s.Tier == models.TierPremium && s.Amount == 49900
				})).Return(7, nil).Once()
				p.On("Request", mock.Anything, 49900, "https://app.example.com/api/v1/payments/callback?subscription=7",
					mock.Anything, "user@example.com", "").
					Return(&paymentprovider.RequestResponse{
						Status:      paymentprovider.StatusOK,
						Authority:   "A0001",
						RedirectURL: "https://pay.example.com/A0001",
					}, nil).Once()
				r.On("SetSubscriptionAuthority", mock.Anything, 7, "A0001").Return(1, nil).Once()
			},
			wantURL: "https://pay.example.com/A0001",
		},
		{
			name: "активная подписка уже есть",
			tier: models.TierPremium,
			setupMocks: func(r *RepoMock, _ *ProviderMock) {
				r.On("GetUser", mock.Anything, testUID).Return(testUser(), nil).Once()
				r.On("HasActiveSubscriptionUntil", mock.Anything, testUID, mock.Anything).
					Return(true, nil).Once()
			},
			wantErr: ErrActiveSubscriptionExists,
		},
		{
			name:       "free не оплачивается",
			tier:       models.TierFree,
			setupMocks: func(_ *RepoMock, _ *ProviderMock) {},
			wantErr:    ErrInvalidTier,
		},
		{
			name: "отказ провайдера удаляет PENDING-строку",
			tier: models.TierBusiness,
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("GetUser", mock.Anything, testUID).Return(testUser(), nil).Once()
				r.On("HasActiveSubscriptionUntil", mock.Anything, testUID, mock.Anything).
					Return(false, nil).Once()
				r.On("CreatePendingSubscription", mock.Anything, mock.Anything).Return(8, nil).Once()
				p.On("Request", mock.Anything, 99900, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
					Return(nil, errors.New("provider timeout")).Once()
				r.On("DeleteSubscription", mock.Anything, 8).Return(1, nil).Once()
			},
			wantErr: ErrPaymentInitiation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			provider := new(ProviderMock)
			tt.setupMocks(repo, provider)

			svc := New(repo, provider, "https://app.example.com/api/v1/payments/callback", nil, newNoopLogger())
			url, err := svc.RequestUpgrade(context.Background(), testUID, tt.tier)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantURL, url)
			}
			repo.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}

func TestRequestUpgrade_AuthoritySaveFailureDeletesPending(t *testing.T) {
	repo := new(RepoMock)
	provider := new(ProviderMock)

	repo.On("GetUser", mock.Anything, testUID).Return(testUser(), nil).Once()
	repo.On("HasActiveSubscriptionUntil", mock.Anything, testUID, mock.Anything).
		Return(false, nil).Once()
	repo.On("CreatePendingSubscription", mock.Anything, mock.Anything).Return(9, nil).Once()
	provider.On("Request", mock.Anything, 49900, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(&paymentprovider.RequestResponse{
			Status:      paymentprovider.StatusOK,
			Authority:   "A0009",
			RedirectURL: "https://pay.example.com/A0009",
		}, nil).Once()
	repo.On("SetSubscriptionAuthority", mock.Anything, 9, "A0009").
		Return(0, errors.New("db down")).Once()
	// Строка без authority не может быть подтверждена callback'ом,
	// поэтому удаляется сразу.
	repo.On("DeleteSubscription", mock.Anything, 9).Return(1, nil).Once()

	svc := New(repo, provider, "https://app.example.com/api/v1/payments/callback", nil, newNoopLogger())
	_, err := svc.RequestUpgrade(context.Background(), testUID, models.TierPremium)
	assert.Error(t, err)
	repo.AssertExpectations(t)
	provider.AssertExpectations(t)
}

func pendingSubscription(id int) *models.Subscription {
	return &models.Subscription{
		ID:               id,
		UserUID:          testUID,
		Tier:             models.TierPremium,
		Amount:           49900,
		EndDate:          time.Now().AddDate(0, 1, 0),
		IsActive:         false,
		PaymentAuthority: "A0001",
	}
}

func TestHandleCallback(t *testing.T) {
	tests := []struct {
		name       string
		status     string
		setupMocks func(r *RepoMock, p *ProviderMock)
		wantKind   OutcomeKind
	}{
		{
			name:   "успешная верификация активирует подписку",
			status: "OK",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("ReadSubscription", mock.Anything, 7).Return(pendingSubscription(7), nil).Once()
				p.On("Verify", mock.Anything, 49900, "A0001").
					Return(&paymentprovider.VerifyResponse{
						Status: paymentprovider.StatusOK,
						RefID:  "R-100",
					}, nil).Once()
				r.On("ActivateSubscription", mock.Anything, 7, "R-100").Return(nil).Once()
			},
			wantKind: OutcomeActivated,
		},
		{
			name:   "повторная верификация идемпотентна",
			status: "OK",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("ReadSubscription", mock.Anything, 7).Return(pendingSubscription(7), nil).Once()
				p.On("Verify", mock.Anything, 49900, "A0001").
					Return(&paymentprovider.VerifyResponse{
						Status: paymentprovider.StatusAlreadyVerified,
						RefID:  "R-100",
					}, nil).Once()
				r.On("ActivateSubscription", mock.Anything, 7, "R-100").Return(nil).Once()
			},
			wantKind: OutcomeActivated,
		},
		{
			name:   "отмена пользователем удаляет строку без верификации",
			status: "NOK",
			setupMocks: func(r *RepoMock, _ *ProviderMock) {
				r.On("ReadSubscription", mock.Anything, 7).Return(pendingSubscription(7), nil).Once()
				r.On("DeleteSubscription", mock.Anything, 7).Return(1, nil).Once()
			},
			wantKind: OutcomeCancelled,
		},
		{
			name:   "отклонённая верификация удаляет строку",
			status: "OK",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("ReadSubscription", mock.Anything, 7).Return(pendingSubscription(7), nil).Once()
				p.On("Verify", mock.Anything, 49900, "A0001").
					Return(&paymentprovider.VerifyResponse{Status: -21}, nil).Once()
				r.On("DeleteSubscription", mock.Anything, 7).Return(1, nil).Once()
			},
			wantKind: OutcomeFailed,
		},
		{
			name:   "недоступный провайдер при verify",
			status: "OK",
			setupMocks: func(r *RepoMock, p *ProviderMock) {
				r.On("ReadSubscription", mock.Anything, 7).Return(pendingSubscription(7), nil).Once()
				p.On("Verify", mock.Anything, 49900, "A0001").
					Return(nil, errors.New("connection refused")).Once()
				r.On("DeleteSubscription", mock.Anything, 7).Return(1, nil).Once()
			},
			wantKind: OutcomeFailed,
		},
		{
			name:   "callback по несуществующей подписке",
			status: "OK",
			setupMocks: func(r *RepoMock, _ *ProviderMock) {
				r.On("ReadSubscription", mock.Anything, 7).
					Return(nil, repository.ErrSubscriptionNotFound).Once()
			},
			wantKind: OutcomeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			provider := new(ProviderMock)
			tt.setupMocks(repo, provider)

			svc := New(repo, provider, "https://app.example.com/callback", nil, newNoopLogger())
			outcome, err := svc.HandleCallback(context.Background(), 7, tt.status)

			assert.NoError(t, err)
			assert.Equal(t, tt.wantKind, outcome.Kind)
			repo.AssertExpectations(t)
			provider.AssertExpectations(t)
		})
	}
}

func TestCancel(t *testing.T) {
	t.Run("отмена активной подписки", func(t *testing.T) {
		repo := new(RepoMock)
		active := pendingSubscription(9)
		active.IsActive = true
		repo.On("GetActiveSubscription", mock.Anything, testUID).Return(active, nil).Once()
		repo.On("DeactivateSubscription", mock.Anything, 9, testUID).Return(nil).Once()

		svc := New(repo, new(ProviderMock), "", nil, newNoopLogger())
		assert.NoError(t, svc.Cancel(context.Background(), testUID))
		repo.AssertExpectations(t)
	})

	t.Run("нет активной подписки", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetActiveSubscription", mock.Anything, testUID).
			Return(nil, repository.ErrSubscriptionNotFound).Once()

		svc := New(repo, new(ProviderMock), "", nil, newNoopLogger())
		assert.ErrorIs(t, svc.Cancel(context.Background(), testUID), ErrNoActiveSubscription)
		repo.AssertExpectations(t)
	})
}

func TestTierPrice(t *testing.T) {
	price, ok := TierPrice(models.TierPremium)
	assert.True(t, ok)
	assert.Equal(t, 49900, price)

	price, ok = TierPrice(models.TierBusiness)
	assert.True(t, ok)
	assert.Equal(t, 99900, price)

	_, ok = TierPrice(models.TierFree)
	assert.False(t, ok)
}
