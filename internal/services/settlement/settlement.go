// Package settlement реализует машину состояний оплаты подписки:
// PENDING -> ACTIVE или удаление строки. Подписка становится ACTIVE
// только после подтверждённой провайдером верификации, оптимистичной
// активации нигде нет.
package settlement

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/event-reminder/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/event-reminder/internal/lib/sl"
	"github.com/magabrotheeeer/event-reminder/internal/models"
	"github.com/magabrotheeeer/event-reminder/internal/paymentprovider"
	"github.com/magabrotheeeer/event-reminder/internal/storage/repository"
)

// Ошибки бизнес-уровня, различаемые обработчиками.
var (
	ErrActiveSubscriptionExists = errors.New("user already has an active subscription")
	ErrNoActiveSubscription     = errors.New("user has no active subscription")
	ErrPaymentInitiation        = errors.New("failed to initiate payment")
	ErrInvalidTier              = errors.New("tier is not payable")
)

// Цены тарифов в минорных единицах валюты, фиксированные.
var tierPrices = map[models.Tier]int{
	models.TierPremium:  49900,
	models.TierBusiness: 99900,
}

// CallbackStatusOK — значение статуса в callback-редиректе провайдера,
// означающее, что пользователь не отменил оплату на его стороне.
const CallbackStatusOK = "OK"

// OutcomeKind — результат обработки callback.
type OutcomeKind int

// Возможные исходы callback.
const (
	OutcomeActivated OutcomeKind = iota
	OutcomeCancelled
	OutcomeFailed
)

// Outcome — итог обработки callback с человекочитаемой причиной отказа.
type Outcome struct {
	Kind   OutcomeKind
	Reason string
}

// SubscriptionRepository определяет методы хранилища для settlement.
type SubscriptionRepository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	HasActiveSubscriptionUntil(ctx context.Context, userUID string, after time.Time) (bool, error)
	CreatePendingSubscription(ctx context.Context, sub models.Subscription) (int, error)
	SetSubscriptionAuthority(ctx context.Context, id int, authority string) (int, error)
	ReadSubscription(ctx context.Context, id int) (*models.Subscription, error)
	DeleteSubscription(ctx context.Context, id int) (int, error)
	ActivateSubscription(ctx context.Context, id int, paymentRef string) error
	GetActiveSubscription(ctx context.Context, userUID string) (*models.Subscription, error)
	DeactivateSubscription(ctx context.Context, id int, userUID string) error
}

// PaymentProvider определяет два вызова провайдера: request и verify.
type PaymentProvider interface {
	Request(ctx context.Context, amount int, callbackURL, description, email, mobile string) (*paymentprovider.RequestResponse, error)
	Verify(ctx context.Context, amount int, authority string) (*paymentprovider.VerifyResponse, error)
}

// Service реализует жизненный цикл оплаты подписки.
type Service struct {
	repo        SubscriptionRepository
	provider    PaymentProvider
	callbackURL string
	ch          *amqp.Channel // Канал для публикации квитанций, может быть nil
	log         *slog.Logger
}

// New создает новый экземпляр Service. Канал RabbitMQ может быть nil:
// тогда квитанции не публикуются.
func New(repo SubscriptionRepository, provider PaymentProvider, callbackURL string, ch *amqp.Channel, log *slog.Logger) *Service {
	return &Service{
		repo:        repo,
		provider:    provider,
		callbackURL: callbackURL,
		ch:          ch,
		log:         log,
	}
}

// TierPrice возвращает фиксированную месячную цену тарифа.
func TierPrice(tier models.Tier) (int, bool) {
	price, ok := tierPrices[tier]
	return price, ok
}

// RequestUpgrade создаёт PENDING-подписку и запрашивает у провайдера
// адрес страницы оплаты. Отказ провайдера удаляет строку: осиротевших
// PENDING-строк не остаётся.
func (s *Service) RequestUpgrade(ctx context.Context, userUID string, tier models.Tier) (string, error) {
	const op = "settlement.RequestUpgrade"

	price, ok := TierPrice(tier)
	if !ok {
		return "", fmt.Errorf("%s: %w", op, ErrInvalidTier)
	}

	user, err := s.repo.GetUser(ctx, userUID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	has, err := s.repo.HasActiveSubscriptionUntil(ctx, userUID, time.Now())
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if has {
		return "", fmt.Errorf("%s: %w", op, ErrActiveSubscriptionExists)
	}

	sub := models.Subscription{
		UserUID: userUID,
		Tier:    tier,
		Amount:  price,
		EndDate: time.Now().AddDate(0, 1, 0),
	}
	id, err := s.repo.CreatePendingSubscription(ctx, sub)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	var phone string
	if user.Phone != nil {
		phone = *user.Phone
	}
	callback := fmt.Sprintf("%s?subscription=%d", s.callbackURL, id)
	description := fmt.Sprintf("Event reminder subscription: %s", tier)

	resp, err := s.provider.Request(ctx, price, callback, description, user.Email, phone)
	if err != nil || resp.Status != paymentprovider.StatusOK {
		if _, delErr := s.repo.DeleteSubscription(ctx, id); delErr != nil {
			s.log.Error("failed to delete pending subscription", sl.Err(delErr))
		}
		if err != nil {
			return "", fmt.Errorf("%s: %w: %w", op, ErrPaymentInitiation, err)
		}
		return "", fmt.Errorf("%s: %w: %s", op, ErrPaymentInitiation,
			paymentprovider.StatusText(resp.Status))
	}

	if _, err := s.repo.SetSubscriptionAuthority(ctx, id, resp.Authority); err != nil {
		// Без authority callback никогда не пройдёт verify: строка
		// удаляется, как и при неудачном запросе к провайдеру.
		if _, delErr := s.repo.DeleteSubscription(ctx, id); delErr != nil {
			s.log.Error("failed to delete pending subscription", sl.Err(delErr))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	s.log.Info("payment requested", slog.Int("subscription_id", id),
		slog.String("tier", string(tier)), slog.String("authority", resp.Authority))
	return resp.RedirectURL, nil
}

// HandleCallback обрабатывает редирект провайдера: отмена пользователя
// удаляет PENDING-строку, иначе выполняется verify. Принимаются два кода
// успеха — первая верификация и повторная, поэтому дубликат callback
// идемпотентен.
func (s *Service) HandleCallback(ctx context.Context, subscriptionID int, callbackStatus string) (Outcome, error) {
	const op = "settlement.HandleCallback"

	sub, err := s.repo.ReadSubscription(ctx, subscriptionID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return Outcome{Kind: OutcomeFailed, Reason: "subscription not found"}, nil
		}
		return Outcome{}, fmt.Errorf("%s: %w", op, err)
	}

	if callbackStatus != CallbackStatusOK {
		if _, err := s.repo.DeleteSubscription(ctx, subscriptionID); err != nil {
			s.log.Error("failed to delete cancelled subscription", sl.Err(err))
		}
		s.log.Info("payment cancelled by user", slog.Int("subscription_id", subscriptionID))
		return Outcome{Kind: OutcomeCancelled}, nil
	}

	resp, err := s.provider.Verify(ctx, sub.Amount, sub.PaymentAuthority)
	if err != nil {
		if _, delErr := s.repo.DeleteSubscription(ctx, subscriptionID); delErr != nil {
			s.log.Error("failed to delete unverified subscription", sl.Err(delErr))
		}
		s.log.Error("payment verification call failed", sl.Err(err))
		return Outcome{Kind: OutcomeFailed, Reason: "payment verification unavailable"}, nil
	}

	switch resp.Status {
	case paymentprovider.StatusOK, paymentprovider.StatusAlreadyVerified:
		if err := s.repo.ActivateSubscription(ctx, subscriptionID, resp.RefID); err != nil {
			return Outcome{}, fmt.Errorf("%s: %w", op, err)
		}
		s.log.Info("subscription activated", slog.Int("subscription_id", subscriptionID),
			slog.String("tier", string(sub.Tier)), slog.String("ref_id", resp.RefID))
		s.publishReceipt(ctx, sub, resp.RefID)
		return Outcome{Kind: OutcomeActivated}, nil
	default:
		if _, err := s.repo.DeleteSubscription(ctx, subscriptionID); err != nil {
			s.log.Error("failed to delete rejected subscription", sl.Err(err))
		}
		reason := paymentprovider.StatusText(resp.Status)
		s.log.Info("payment verification rejected",
			slog.Int("subscription_id", subscriptionID),
			slog.Int("status", resp.Status), slog.String("reason", reason))
		return Outcome{Kind: OutcomeFailed, Reason: reason}, nil
	}
}

// Cancel деактивирует текущую активную подписку и возвращает тариф
// пользователя к free. Строка остаётся в истории, дата окончания не меняется.
func (s *Service) Cancel(ctx context.Context, userUID string) error {
	const op = "settlement.Cancel"

	sub, err := s.repo.GetActiveSubscription(ctx, userUID)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			return fmt.Errorf("%s: %w", op, ErrNoActiveSubscription)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.repo.DeactivateSubscription(ctx, sub.ID, userUID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("subscription cancelled", slog.Int("subscription_id", sub.ID),
		slog.String("user_uid", userUID))
	return nil
}

// publishReceipt отправляет событие о квитанции в очередь. Ошибка
// публикации логируется и не влияет на результат settlement.
func (s *Service) publishReceipt(ctx context.Context, sub *models.Subscription, refID string) {
	if s.ch == nil {
		return
	}
	user, err := s.repo.GetUser(ctx, sub.UserUID)
	if err != nil {
		s.log.Error("failed to load user for receipt", sl.Err(err))
		return
	}
	receipt := models.Receipt{
		Email:      user.Email,
		Username:   user.Username,
		Tier:       sub.Tier,
		Amount:     sub.Amount,
		PaymentRef: refID,
	}
	if err := rabbitmq.PublishMessage(s.ch, "receipts", "payment", receipt); err != nil {
		s.log.Error("failed to publish receipt", sl.Err(err))
	}
}
