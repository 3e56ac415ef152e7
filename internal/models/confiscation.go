package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ConfiscationRequest carries the parameters of a forfeiture action.
// Auction fields are optional and recorded on the collateral item.
type ConfiscationRequest struct {
	LoanID       int              `json:"loan_id"`
	Notes        string           `json:"notes,omitempty"`
	AuctionPrice *decimal.Decimal `json:"auction_price,omitempty"`
	AuctionDate  *time.Time       `json:"auction_date,omitempty"`
	ProcessedBy  int              `json:"-"`
}

// Forfeit moves the loan to its terminal forfeited status. Only overdue loans
// may be forfeited; active loans must go through the overdue sweep first.
func (l *Loan) Forfeit(now time.Time) error {
	if l.Status != LoanStatusOverdue {
		return fmt.Errorf("%w: loan %d has status %s, only overdue loans can be confiscated",
			ErrInvalidLoanState, l.ID, l.Status)
	}

	l.Status = LoanStatusForfeited
	forfeitedAt := now
	l.ForfeitedDate = &forfeitedAt

	return nil
}
