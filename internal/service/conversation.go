package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/B1acB1rd/SolSwap/internal/audit"
	"github.com/B1acB1rd/SolSwap/internal/config"
	apperrors "github.com/B1acB1rd/SolSwap/internal/errors"
	"github.com/B1acB1rd/SolSwap/internal/model"
	"github.com/B1acB1rd/SolSwap/internal/repository"
)

// Fixed reply templates. The reply generator rephrases these; when it is
// unavailable the template text itself is returned.
const (
	replyRejected = "Sorry, I can't process that message. Please rephrase it without sensitive or unsafe content."

	replyGreeting = "Welcome to SolSwap! I can help you sell SOL, USDC or USDT for a Naira bank payout. " +
		"Say \"sell\" to get started, or ask for the current rates."

	replyHelp = "Here's how it works: say \"sell\", pick a token (SOL, USDC or USDT), " +
		"send it to the deposit address I give you, then share your bank details for the payout. " +
		"You can ask for rates, check your status, or cancel at any time."

	replyTransferInfo = "To sell tokens, say \"sell\" and I'll walk you through it: you pick a token, " +
		"transfer it to a deposit address, and receive Naira in your bank account."

	replyPromptToken = "Which token would you like to sell: SOL, USDC or USDT?"

	replyRePromptToken = "I didn't catch a supported token there. Please reply with SOL, USDC or USDT."

	replyDuplicateTx = "That transaction signature has already been processed for another order, " +
		"so I can't accept it again. Please double-check and send the correct signature."

	replyConfirming = "Got it! I'm watching for your deposit on-chain. " +
		"I'll ask for your bank details as soon as it's confirmed."

	replyStillConfirming = "Your deposit is still being confirmed on-chain. Hang tight - " +
		"I'll prompt you for bank details the moment it lands."

	replyPromptBank = "Please send your payout details: a 10-digit account number and a 3-digit bank code, " +
		"for example: 0123456789 058."

	replyPayoutPending = "Your payout is being processed. I'll confirm as soon as the bank transfer completes."

	replyCancelled = "No problem, I've cancelled the current flow. Say \"sell\" whenever you want to start again."

	replyNoActiveTx = "You have no active transaction. Say \"sell\" to start one."

	replyRatesUnavailable = "Live rates are unavailable right now. Please try again in a moment."
)

// TurnInput is one inbound chat message for a user.
type TurnInput struct {
	UserID         string `json:"userId"`
	Message        string `json:"message"`
	IdempotencyKey string `json:"idempotencyKey,omitempty"`
}

// TurnResult is the outcome of one processed turn.
type TurnResult struct {
	Reply   string         `json:"reply"`
	Session *model.Session `json:"session"`
	Order   *model.Order   `json:"order,omitempty"`
}

func (r *TurnResult) clone() *TurnResult {
	if r == nil {
		return nil
	}
	return &TurnResult{
		Reply:   r.Reply,
		Session: r.Session.Clone(),
		Order:   r.Order.Clone(),
	}
}

// ConversationService is the per-user conversation/order state machine. Turn
// processing for one user is serialized; different users run in parallel.
type ConversationService struct {
	sessions repository.SessionRepository
	orders   repository.OrderRepository
	replies  ReplyGenerator
	quotes   QuoteProvider
	wallet   DepositAddressProvider
	payouts  PayoutProvider
	idem     *IdempotencyCache
	locks    *userLocks
}

func NewConversationService(
	sessions repository.SessionRepository,
	orders repository.OrderRepository,
	replies ReplyGenerator,
	quotes QuoteProvider,
	wallet DepositAddressProvider,
	payouts PayoutProvider,
) *ConversationService {
	return &ConversationService{
		sessions: sessions,
		orders:   orders,
		replies:  replies,
		quotes:   quotes,
		wallet:   wallet,
		payouts:  payouts,
		idem:     NewIdempotencyCache(),
		locks:    newUserLocks(),
	}
}

// HandleTurn processes one chat turn end to end: sanitize, deduplicate,
// classify, transition, phrase, filter. Sanitizer rejection and recoverable
// validation failures produce a normal result, never an error to the caller.
func (s *ConversationService) HandleTurn(ctx context.Context, input TurnInput) (*TurnResult, error) {
	if err := validateTurnInput(input); err != nil {
		return nil, err
	}

	cleaned, err := Sanitize(input.Message)
	if err != nil {
		log.Warn().Str("userId", input.UserID).Msg("message rejected by sanitizer")
		audit.Log(ctx, audit.Event{Type: audit.EventInputRejected, UserID: input.UserID})
		session, findErr := s.sessions.FindByUserID(ctx, input.UserID)
		if findErr != nil {
			return nil, apperrors.Database(findErr)
		}
		if session == nil {
			// Rejection must not mutate state, so an unknown user gets a
			// transient, unpersisted session in the response.
			session = &model.Session{UserID: input.UserID, State: model.StateStart}
		}
		return &TurnResult{Reply: replyRejected, Session: session}, nil
	}

	cacheKey := idempotencyCacheKey(input.UserID, input.IdempotencyKey)

	if cached, ok := s.idem.Check(cacheKey); ok {
		log.Debug().Str("userId", input.UserID).Str("key", input.IdempotencyKey).Msg("idempotency cache hit")
		return cached, nil
	}

	release := s.locks.Acquire(input.UserID)
	defer release()

	// A concurrent delivery of the same key may have stored its result while
	// this one waited for the lock. Re-check so both deliveries return the
	// same cached result instead of reprocessing against the new state.
	if cached, ok := s.idem.Check(cacheKey); ok {
		log.Debug().Str("userId", input.UserID).Str("key", input.IdempotencyKey).Msg("idempotency cache hit after lock")
		return cached, nil
	}

	session, err := s.sessions.FindByUserID(ctx, input.UserID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if session == nil {
		session, err = s.sessions.Create(ctx, input.UserID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		log.Info().Str("userId", input.UserID).Msg("session created")
	}

	var order *model.Order
	if session.OrderID != nil {
		order, err = s.orders.FindByID(ctx, *session.OrderID)
		if err != nil {
			return nil, apperrors.Database(err)
		}
		if order == nil {
			// Stale reference: treat the order as absent.
			log.Warn().Str("userId", input.UserID).Str("orderId", *session.OrderID).Msg("stale order reference")
			session.OrderID = nil
		}
	}

	intent := Classify(cleaned)

	template, order, err := s.dispatch(ctx, session, order, intent, cleaned)
	if err != nil {
		return nil, err
	}

	reply := s.phrase(ctx, cleaned, template)

	filtered := FilterReply(reply)
	if filtered != reply {
		audit.Log(ctx, audit.Event{Type: audit.EventReplyRedacted, UserID: input.UserID})
	}

	result := &TurnResult{
		Reply:   filtered,
		Session: session.Clone(),
		Order:   order.Clone(),
	}
	s.idem.Store(cacheKey, result)
	return result, nil
}

// idempotencyCacheKey scopes a caller-supplied key to its user so the same
// key from two users never shares a cache entry. Empty keys stay uncached.
func idempotencyCacheKey(userID, key string) string {
	if key == "" {
		return ""
	}
	return userID + ":" + key
}

func validateTurnInput(input TurnInput) error {
	if input.UserID == "" {
		return apperrors.MissingRequired("userId")
	}
	if len(input.UserID) > config.MaxUserIDLength {
		return apperrors.InvalidInput("userId", fmt.Sprintf("must be at most %d characters", config.MaxUserIDLength))
	}
	if input.Message == "" {
		return apperrors.MissingRequired("message")
	}
	return nil
}

// dispatch applies universal intents, then state-specific transitions.
// It returns the semantic reply template and the (possibly updated) order.
func (s *ConversationService) dispatch(
	ctx context.Context,
	session *model.Session,
	order *model.Order,
	intent model.Intent,
	cleaned string,
) (string, *model.Order, error) {
	// Universal intents intercept regardless of state.
	switch intent {
	case model.IntentRate:
		return s.rateReply(ctx), order, nil
	case model.IntentHelp:
		return replyHelp, order, nil
	case model.IntentCancel:
		return s.cancel(ctx, session, order)
	case model.IntentStatus:
		return statusReply(session, order), order, nil
	}

	switch session.State {
	case model.StateStart:
		return s.fromStart(ctx, session, intent)

	case model.StateAwaitingToken:
		return s.fromAwaitingToken(ctx, session, cleaned)

	case model.StateAwaitingDeposit:
		return s.fromAwaitingDeposit(ctx, session, order, intent, cleaned)

	case model.StateConfirming:
		return replyStillConfirming, order, nil

	case model.StateAwaitingBank:
		return s.fromAwaitingBank(ctx, session, order, intent, cleaned)

	case model.StateReadyToPay:
		return replyPayoutPending, order, nil

	case model.StatePaid, model.StateFailed, model.StateCancelled:
		return s.fromTerminal(ctx, session, order, intent)

	default:
		log.Error().Str("state", string(session.State)).Msg("unknown session state")
		return replyGreeting, order, nil
	}
}

func (s *ConversationService) fromStart(ctx context.Context, session *model.Session, intent model.Intent) (string, *model.Order, error) {
	switch intent {
	case model.IntentSell:
		session.State = model.StateAwaitingToken
		if err := s.sessions.Update(ctx, session); err != nil {
			return "", nil, apperrors.Database(err)
		}
		return replyPromptToken, nil, nil
	case model.IntentTransfer:
		return replyTransferInfo, nil, nil
	default:
		return replyGreeting, nil, nil
	}
}

func (s *ConversationService) fromAwaitingToken(ctx context.Context, session *model.Session, cleaned string) (string, *model.Order, error) {
	symbol, ok := model.ParseTokenSymbol(cleaned)
	if !ok {
		// Re-prompt without repeating the greeting.
		return replyRePromptToken, nil, nil
	}

	addr, err := s.wallet.GetDepositAddress(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("token", string(symbol)).Msg("deposit address unavailable")
		return "I couldn't generate a deposit address just now. Please send the token symbol again in a moment.", nil, nil
	}

	order, err := s.orders.Create(ctx, model.CreateOrderParams{
		UserID:              session.UserID,
		TokenSymbol:         symbol,
		DepositAddress:      addr.Address,
		DepositTokenAccount: addr.TokenAccount,
	})
	if err != nil {
		return "", nil, apperrors.Database(err)
	}

	session.OrderID = &order.ID
	session.State = model.StateAwaitingDeposit
	if err := s.sessions.Update(ctx, session); err != nil {
		return "", nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{
		Type:    audit.EventOrderCreated,
		UserID:  session.UserID,
		OrderID: order.ID,
		Details: map[string]interface{}{"token": string(symbol)},
	})

	return depositInstructions(order), order, nil
}

func (s *ConversationService) fromAwaitingDeposit(
	ctx context.Context,
	session *model.Session,
	order *model.Order,
	intent model.Intent,
	cleaned string,
) (string, *model.Order, error) {
	if order == nil {
		// Stale order reference; restart token selection cleanly.
		session.OrderID = nil
		session.State = model.StateAwaitingToken
		if err := s.sessions.Update(ctx, session); err != nil {
			return "", nil, apperrors.Database(err)
		}
		return replyRePromptToken, nil, nil
	}

	if intent != model.IntentSent {
		return depositReminder(order), order, nil
	}

	if signature, ok := ExtractTxSignature(cleaned); ok {
		exists, err := s.orders.TxSignatureExists(ctx, signature)
		if err != nil {
			return "", nil, apperrors.Database(err)
		}
		if exists {
			audit.Log(ctx, audit.Event{
				Type:    audit.EventDuplicateTransaction,
				UserID:  session.UserID,
				OrderID: order.ID,
			})
			return replyDuplicateTx, order, nil
		}
		order.TxSignature = &signature
	}

	order.Status = model.OrderStatusConfirming
	if err := s.orders.Update(ctx, order); err != nil {
		return "", nil, apperrors.Database(err)
	}

	session.State = model.StateConfirming
	if err := s.sessions.Update(ctx, session); err != nil {
		return "", nil, apperrors.Database(err)
	}

	audit.Log(ctx, audit.Event{Type: audit.EventDepositReported, UserID: session.UserID, OrderID: order.ID})

	return replyConfirming, order, nil
}

func (s *ConversationService) fromAwaitingBank(
	ctx context.Context,
	session *model.Session,
	order *model.Order,
	intent model.Intent,
	cleaned string,
) (string, *model.Order, error) {
	if order == nil {
		session.OrderID = nil
		session.State = model.StateStart
		if err := s.sessions.Update(ctx, session); err != nil {
			return "", nil, apperrors.Database(err)
		}
		return replyNoActiveTx, nil, nil
	}

	if intent != model.IntentBank && !ContainsBankDetails(cleaned) {
		return replyPromptBank, order, nil
	}

	account, err := ParseBankAccount(cleaned)
	if err != nil {
		return replyPromptBank, order, nil
	}

	order.BankAccountNumber = &account.AccountNumber
	order.BankCode = &account.BankCode
	order.Status = model.OrderStatusReadyToPay

	// Payout initiation fails soft: the order stays ready_to_pay and the
	// payout collaborator's completion callback finishes the flow.
	if reference, initErr := s.payouts.InitiateTransfer(ctx, order); initErr != nil {
		log.Warn().Err(initErr).Str("orderId", order.ID).Msg("payout initiation deferred")
	} else {
		order.PayoutReference = &reference
		audit.Log(ctx, audit.Event{Type: audit.EventPayoutInitiated, UserID: session.UserID, OrderID: order.ID})
	}

	if err := s.orders.Update(ctx, order); err != nil {
		return "", nil, apperrors.Database(err)
	}

	session.State = model.StateReadyToPay
	if err := s.sessions.Update(ctx, session); err != nil {
		return "", nil, apperrors.Database(err)
	}

	log.Info().
		Str("userId", session.UserID).
		Str("orderId", order.ID).
		Msg("bank details accepted, payout pending")

	return fmt.Sprintf("Your bank details are in: account %s (bank %s). %s",
		maskAccountNumber(account.AccountNumber), account.BankCode, replyPayoutPending), order, nil
}

func (s *ConversationService) fromTerminal(ctx context.Context, session *model.Session, order *model.Order, intent model.Intent) (string, *model.Order, error) {
	if intent == model.IntentSell {
		session.OrderID = nil
		session.State = model.StateAwaitingToken
		if err := s.sessions.Update(ctx, session); err != nil {
			return "", nil, apperrors.Database(err)
		}
		return replyPromptToken, nil, nil
	}
	return statusReply(session, order), order, nil
}

// cancel resets the session to start and detaches the order, which keeps its
// last status as a historical record.
func (s *ConversationService) cancel(ctx context.Context, session *model.Session, order *model.Order) (string, *model.Order, error) {
	session.State = model.StateStart
	session.OrderID = nil
	if err := s.sessions.Update(ctx, session); err != nil {
		return "", nil, apperrors.Database(err)
	}

	if order != nil {
		audit.Log(ctx, audit.Event{
			Type:    audit.EventOrderCancelled,
			UserID:  session.UserID,
			OrderID: order.ID,
			Details: map[string]interface{}{"lastStatus": string(order.Status)},
		})
	}
	return replyCancelled, order, nil
}

func (s *ConversationService) rateReply(ctx context.Context) string {
	quote, err := s.quotes.GetQuote(ctx, model.AllTokens)
	if err != nil {
		log.Warn().Err(err).Msg("quote unavailable")
		return replyRatesUnavailable
	}

	parts := make([]string, 0, len(model.AllTokens))
	for _, symbol := range model.AllTokens {
		parts = append(parts, fmt.Sprintf("1 %s = NGN %.2f", symbol, quote.NGNPrice(symbol)))
	}
	return "Current rates: " + strings.Join(parts, ", ") + "."
}

// phrase runs the reply generator over the template, falling back to the
// template itself if the collaborator is down. Loss of the language model
// must never block the transaction flow.
func (s *ConversationService) phrase(ctx context.Context, userMessage, template string) string {
	if s.replies == nil {
		return template
	}
	phrased, err := s.replies.GenerateReply(ctx, userMessage, template)
	if err != nil {
		log.Warn().Err(err).Msg("reply generator unavailable, using template")
		return template
	}
	return phrased
}

func statusReply(session *model.Session, order *model.Order) string {
	if session.OrderID == nil || order == nil {
		return replyNoActiveTx
	}

	switch order.Status {
	case model.OrderStatusAwaitingDeposit:
		return depositReminder(order)
	case model.OrderStatusConfirming:
		return replyStillConfirming
	case model.OrderStatusAwaitingBank:
		return replyPromptBank
	case model.OrderStatusReadyToPay:
		return replyPayoutPending
	case model.OrderStatusPaid:
		return fmt.Sprintf("Your payout of NGN %.2f is complete. Thanks for using SolSwap!", order.AmountNGN)
	case model.OrderStatusFailed:
		return "Your last transaction failed. Say \"sell\" to start a new one."
	case model.OrderStatusCancelled:
		return "Your last transaction was cancelled. Say \"sell\" to start a new one."
	default:
		return replyNoActiveTx
	}
}

func depositInstructions(order *model.Order) string {
	msg := fmt.Sprintf("Great choice! Send your %s to this deposit address: %s",
		order.TokenSymbol, order.DepositAddress)
	if order.DepositTokenAccount != nil {
		msg += fmt.Sprintf(" (token account: %s)", *order.DepositTokenAccount)
	}
	return msg + ". Let me know once you've sent it - pasting the transaction signature speeds things up."
}

func depositReminder(order *model.Order) string {
	return fmt.Sprintf("I'm waiting for your %s deposit to %s. "+
		"Tell me once you've sent it, ideally with the transaction signature.",
		order.TokenSymbol, order.DepositAddress)
}

func maskAccountNumber(accountNumber string) string {
	if len(accountNumber) <= 4 {
		return "******"
	}
	return strings.Repeat("*", len(accountNumber)-4) + accountNumber[len(accountNumber)-4:]
}
