package basket

import (
	"context"

	"pos-basket/internal/gateway"
	"pos-basket/internal/model"
)

// CreditCard carries the tokenized card credentials from the terminal.
type CreditCard struct {
	Token    string
	LastFour string
	CardType string
}

// GiftCard carries raw track data swiped from a gift certificate.
type GiftCard struct {
	Track1 string
	Track2 string
}

// GiftCardBalance checks a card's remaining balance without applying it.
func (s *Session) GiftCardBalance(ctx context.Context, card GiftCard) (int64, error) {
	if card.Track1 == "" && card.Track2 == "" {
		return 0, model.NewValidationFault("track_data", "required")
	}
	return s.gw.GiftCardBalance(ctx, card.Track1, card.Track2)
}

// AuthorizeGiftCard applies a gift certificate for the given amount.
// Gift card authorization is order-scoped: the order must already exist so
// the capture has a settlement target. Amount zero authorizes the full
// balance due.
func (s *Session) AuthorizeGiftCard(ctx context.Context, card GiftCard, amount int64) (*model.Basket, error) {
	if card.Track1 == "" && card.Track2 == "" {
		return nil, model.NewValidationFault("track_data", "required")
	}
	if amount < 0 {
		return nil, model.NewValidationFault("amount", "must not be negative")
	}
	cur := s.syncer.Basket()
	if !cur.HasOrder() {
		return nil, model.NewValidationFault("order_no", "create the order before authorizing a gift card")
	}
	if amount == 0 {
		amount = cur.BalanceDue()
	}
	req := gateway.PaymentRequest{
		Method:  model.PaymentGiftCertificate,
		Amount:  amount,
		Track1:  card.Track1,
		Track2:  card.Track2,
		OrderNo: cur.OrderNo,
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.AddPaymentInstrument(ctx, basketID, etag, req)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangePayment)
	return s.stamp(b), nil
}

// AuthorizeCreditCard applies a tokenized credit card. Amount zero
// authorizes the full balance due, which is the common single-tender case.
func (s *Session) AuthorizeCreditCard(ctx context.Context, card CreditCard, amount int64) (*model.Basket, error) {
	if card.Token == "" {
		return nil, model.NewValidationFault("card_token", "required")
	}
	if amount < 0 {
		return nil, model.NewValidationFault("amount", "must not be negative")
	}
	cur := s.syncer.Basket()
	if amount == 0 {
		amount = cur.BalanceDue()
	}
	req := gateway.PaymentRequest{
		Method:    model.PaymentCreditCard,
		Amount:    amount,
		CardToken: card.Token,
		LastFour:  card.LastFour,
		CardType:  card.CardType,
		OrderNo:   cur.OrderNo,
	}
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.AddPaymentInstrument(ctx, basketID, etag, req)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangePayment)
	return s.stamp(b), nil
}

// RemoveGiftCard removes the applied gift certificate instrument.
func (s *Session) RemoveGiftCard(ctx context.Context) (*model.Basket, error) {
	return s.removeInstrument(ctx, model.PaymentGiftCertificate)
}

// RemoveCreditCard removes the applied credit card instrument.
func (s *Session) RemoveCreditCard(ctx context.Context) (*model.Basket, error) {
	return s.removeInstrument(ctx, model.PaymentCreditCard)
}

func (s *Session) removeInstrument(ctx context.Context, method model.PaymentMethod) (*model.Basket, error) {
	pi := s.syncer.Basket().InstrumentByMethod(method)
	if pi == nil {
		return nil, model.NewNotFoundFault("payment instrument")
	}
	id := pi.ID
	b, err := s.syncer.Do(ctx, func(ctx context.Context, basketID, etag string) (*model.Basket, error) {
		return s.gw.RemovePaymentInstrument(ctx, basketID, etag, id)
	})
	if err != nil {
		return nil, err
	}
	s.publish(model.ChangePayment)
	return s.stamp(b), nil
}
