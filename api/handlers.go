package api

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rustyeddy/ledger/engine"
	"github.com/rustyeddy/ledger/id"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type createAccountRequest struct {
	Name     string `json:"name" validate:"required,max=256"`
	Currency string `json:"currency" validate:"required,len=3,alpha"`
}

type renameAccountRequest struct {
	Name string `json:"name" validate:"required,max=256"`
}

type transferRequest struct {
	SenderID       string           `json:"senderId" validate:"omitempty,uuid"`
	ReceiverID     string           `json:"receiverId" validate:"omitempty,uuid"`
	AmountSent     *decimal.Decimal `json:"amountSent"`
	AmountReceived *decimal.Decimal `json:"amountReceived"`
	DateTime       *time.Time       `json:"dateTime"`
}

type singleAccountRequest struct {
	AccountID string           `json:"accountId" validate:"required,uuid"`
	Amount    *decimal.Decimal `json:"amount" validate:"required"`
	DateTime  *time.Time       `json:"dateTime"`
}

type idResponse struct {
	ID string `json:"id"`
}

// bind parses the JSON body into req and runs its validate tags.
func (s *server) bind(c *fiber.Ctx, req any) error {
	if err := c.BodyParser(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	}
	return s.validate.Struct(req)
}

func accountIDParam(c *fiber.Ctx) (string, error) {
	accountID := c.Params("id")
	if !id.IsUUID(accountID) {
		return "", fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("account id %q is not a UUID", accountID))
	}
	return accountID, nil
}

func (s *server) createAccount(c *fiber.Ctx) error {
	var req createAccountRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}

	acct, err := s.engine.CreateAccount(c.UserContext(), s.query.NewAccountID(), req.Name, req.Currency)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(idResponse{ID: acct.ID})
}

func (s *server) listAccounts(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"ids": s.query.AccountIDs()})
}

func (s *server) getAccount(c *fiber.Ctx) error {
	accountID, err := accountIDParam(c)
	if err != nil {
		return err
	}
	acct, err := s.query.Account(accountID)
	if err != nil {
		return err
	}
	return c.JSON(accountView(acct))
}

func (s *server) renameAccount(c *fiber.Ctx) error {
	accountID, err := accountIDParam(c)
	if err != nil {
		return err
	}
	var req renameAccountRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	acct, err := s.engine.RenameAccount(c.UserContext(), accountID, req.Name)
	if err != nil {
		return err
	}
	return c.JSON(accountView(acct))
}

func (s *server) closeAccount(c *fiber.Ctx) error {
	accountID, err := accountIDParam(c)
	if err != nil {
		return err
	}
	acct, err := s.engine.CloseAccount(c.UserContext(), accountID)
	if err != nil {
		return err
	}
	return c.JSON(accountView(acct))
}

func (s *server) accountTransactions(c *fiber.Ctx) error {
	accountID, err := accountIDParam(c)
	if err != nil {
		return err
	}
	txs, err := s.query.AccountTransactions(accountID)
	if err != nil {
		return err
	}

	views := make([]AccountTransactionView, 0, len(txs))
	for _, tx := range txs {
		v, err := accountTransactionView(accountID, tx)
		if err != nil {
			return err
		}
		views = append(views, v)
	}
	return c.JSON(fiber.Map{"id": accountID, "transactions": views})
}

func (s *server) submitTransfer(c *fiber.Ctx) error {
	var req transferRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	return s.submit(c, engine.Movement{
		SenderID:       req.SenderID,
		ReceiverID:     req.ReceiverID,
		AmountSent:     req.AmountSent,
		AmountReceived: req.AmountReceived,
		When:           req.DateTime,
	})
}

func (s *server) withdraw(c *fiber.Ctx) error {
	var req singleAccountRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	return s.submit(c, engine.Movement{
		SenderID:   req.AccountID,
		AmountSent: req.Amount,
		When:       req.DateTime,
	})
}

func (s *server) deposit(c *fiber.Ctx) error {
	var req singleAccountRequest
	if err := s.bind(c, &req); err != nil {
		return err
	}
	return s.submit(c, engine.Movement{
		ReceiverID:     req.AccountID,
		AmountReceived: req.Amount,
		When:           req.DateTime,
	})
}

func (s *server) submit(c *fiber.Ctx, m engine.Movement) error {
	m.TransactionID = s.query.NewTransactionID()

	tx, err := s.engine.Submit(c.UserContext(), m)
	if err != nil {
		return err
	}
	s.log.Debug("transaction accepted", zap.String("transaction_id", tx.ID))
	return c.Status(fiber.StatusCreated).JSON(idResponse{ID: tx.ID})
}

func (s *server) getTransaction(c *fiber.Ctx) error {
	txID := c.Params("id")
	if !id.IsULID(txID) {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("transaction id %q is not a ULID", txID))
	}
	tx, err := s.query.Transaction(txID)
	if err != nil {
		return err
	}
	return c.JSON(transactionView(tx))
}
