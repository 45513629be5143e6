package services_test

import (
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/apperrors"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/domain"
	portssvc "github.com/samuelmanoizy/intuipay-dashboard/internal/core/ports/services"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/core/services"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/dto"
	"github.com/samuelmanoizy/intuipay-dashboard/internal/worker"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock SettlementService ---
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) Settle(ctx context.Context, transactionID string) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockSettlementService) HandleCollectionComplete(ctx context.Context, correlation string, amount decimal.Decimal) error {
	args := m.Called(ctx, correlation, amount)
	return args.Error(0)
}

func (m *MockSettlementService) HandleCollectionFailed(ctx context.Context, correlation string, amount decimal.Decimal) error {
	args := m.Called(ctx, correlation, amount)
	return args.Error(0)
}

var _ portssvc.SettlementSvcFacade = (*MockSettlementService)(nil)

// immediateQueue runs submitted jobs inline so tests observe their effects
// synchronously.
type immediateQueue struct {
	submitted int
}

func (q *immediateQueue) Submit(job worker.Job) {
	q.submitted++
	job(context.Background())
}

// --- Test Suite ---
type WalletServiceTestSuite struct {
	suite.Suite
	mockRepo       *MockTransactionRepository
	mockSettlement *MockSettlementService
	queue          *immediateQueue
	service        portssvc.WalletSvcFacade
}

func (suite *WalletServiceTestSuite) SetupTest() {
	suite.mockRepo = new(MockTransactionRepository)
	suite.mockSettlement = new(MockSettlementService)
	suite.queue = &immediateQueue{}
	suite.service = services.NewWalletService(suite.mockRepo, suite.mockSettlement, suite.queue, "254", slog.Default())
}

// --- Test Cases ---

func (suite *WalletServiceTestSuite) TestRequestDeposit_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := dto.DepositRequest{Amount: "150.00", Phone: "0712345678"}

	suite.mockRepo.On("CreateTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.UserID == userID &&
			txn.Type == domain.Deposit &&
			txn.Status == domain.StatusPending &&
			txn.Amount.Equal(decimal.NewFromInt(150)) &&
			txn.RecipientPhone == "254712345678" &&
			txn.TransactionID != ""
	})).Return(nil).Once()
	suite.mockSettlement.On("Settle", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	txn, err := suite.service.RequestDeposit(ctx, userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(domain.StatusPending, txn.Status)
	suite.Equal(1, suite.queue.submitted)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockSettlement.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestRequestDeposit_InvalidAmount() {
	ctx := context.Background()

	for _, amount := range []string{"-5", "0", "abc", ""} {
		_, err := suite.service.RequestDeposit(ctx, uuid.NewString(), dto.DepositRequest{Amount: amount})
		suite.Require().Error(err, "amount %q should be rejected", amount)
		suite.ErrorIs(err, apperrors.ErrValidation)
	}

	// Nothing reached the ledger and no settlement was scheduled.
	suite.mockRepo.AssertNotCalled(suite.T(), "CreateTransaction")
	suite.Equal(0, suite.queue.submitted)
}

func (suite *WalletServiceTestSuite) TestRequestDeposit_PhoneOptional() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockRepo.On("CreateTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.RecipientPhone == ""
	})).Return(nil).Once()
	suite.mockSettlement.On("Settle", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	txn, err := suite.service.RequestDeposit(ctx, userID, dto.DepositRequest{Amount: "20"})

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestRequestWithdrawal_Success() {
	ctx := context.Background()
	userID := uuid.NewString()
	req := dto.WithdrawalRequest{Amount: "75.50", Phone: "0712345678", Name: "Jane"}

	suite.mockRepo.On("CreateTransaction", ctx, mock.MatchedBy(func(txn domain.Transaction) bool {
		return txn.UserID == userID &&
			txn.Type == domain.Withdrawal &&
			txn.Status == domain.StatusPending &&
			txn.RecipientPhone == "254712345678" &&
			txn.RecipientName == "Jane"
	})).Return(nil).Once()
	suite.mockSettlement.On("Settle", mock.Anything, mock.AnythingOfType("string")).Return(nil).Once()

	txn, err := suite.service.RequestWithdrawal(ctx, userID, req)

	suite.Require().NoError(err)
	suite.Require().NotNil(txn)
	suite.Equal(1, suite.queue.submitted)
	suite.mockRepo.AssertExpectations(suite.T())
	suite.mockSettlement.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestRequestWithdrawal_InvalidDestination() {
	ctx := context.Background()

	_, err := suite.service.RequestWithdrawal(ctx, uuid.NewString(), dto.WithdrawalRequest{Amount: "50", Phone: "not-a-number"})

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrInvalidDestination)
	suite.mockRepo.AssertNotCalled(suite.T(), "CreateTransaction")
	suite.Equal(0, suite.queue.submitted)
}

func (suite *WalletServiceTestSuite) TestRequestWithdrawal_CreateError() {
	ctx := context.Background()
	expectedErr := assert.AnError

	suite.mockRepo.On("CreateTransaction", ctx, mock.AnythingOfType("domain.Transaction")).Return(expectedErr).Once()

	_, err := suite.service.RequestWithdrawal(ctx, uuid.NewString(), dto.WithdrawalRequest{Amount: "50", Phone: "0712345678"})

	suite.Require().Error(err)
	suite.ErrorIs(err, expectedErr)
	suite.Equal(0, suite.queue.submitted)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestListTransactions_DefaultLimit() {
	ctx := context.Background()
	userID := uuid.NewString()
	expected := []domain.Transaction{{TransactionID: uuid.NewString(), UserID: userID}}

	suite.mockRepo.On("ListTransactionsByUser", ctx, userID, 50).Return(expected, nil).Once()

	txns, err := suite.service.ListTransactions(ctx, userID, 0)

	suite.Require().NoError(err)
	suite.Equal(expected, txns)
	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestGetBalance_FoldsApprovedRows() {
	ctx := context.Background()
	userID := uuid.NewString()
	approved := []domain.Transaction{
		{Type: domain.Deposit, Amount: decimal.NewFromInt(1000), Status: domain.StatusApproved},
		{Type: domain.Deposit, Amount: decimal.RequireFromString("250.75"), Status: domain.StatusApproved},
		{Type: domain.Withdrawal, Amount: decimal.NewFromInt(300), Status: domain.StatusApproved},
	}

	suite.mockRepo.On("ListApprovedByUser", ctx, userID).Return(approved, nil).Twice()

	balance, err := suite.service.GetBalance(ctx, userID)
	suite.Require().NoError(err)
	suite.True(balance.Equal(decimal.RequireFromString("950.75")), "got %s", balance)

	// Recomputing from the same ledger yields the same balance.
	again, err := suite.service.GetBalance(ctx, userID)
	suite.Require().NoError(err)
	suite.True(balance.Equal(again))

	suite.mockRepo.AssertExpectations(suite.T())
}

func (suite *WalletServiceTestSuite) TestGetBalance_EmptyLedgerIsZero() {
	ctx := context.Background()
	userID := uuid.NewString()

	suite.mockRepo.On("ListApprovedByUser", ctx, userID).Return([]domain.Transaction{}, nil).Once()

	balance, err := suite.service.GetBalance(ctx, userID)

	suite.Require().NoError(err)
	suite.True(balance.IsZero())
	suite.mockRepo.AssertExpectations(suite.T())
}

// --- Run Test Suite ---
func TestWalletService(t *testing.T) {
	suite.Run(t, new(WalletServiceTestSuite))
}
