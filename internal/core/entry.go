package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Income  Kind = "income"
	Expense Kind = "expense"
)

const (
	Paid      Status = "paid"
	Pending   Status = "pending"
	Cancelled Status = "cancelled"
)

const (
	Pix        PaymentMethod = "pix"
	CashMoney  PaymentMethod = "cash"
	CreditCard PaymentMethod = "credit_card"
	DebitCard  PaymentMethod = "debit_card"
	BankSlip   PaymentMethod = "bank_slip"
	Transfer   PaymentMethod = "transfer"
	Trust      PaymentMethod = "trust"
	Courtesy   PaymentMethod = "courtesy"
)

const (
	Nubank       Institution = "nubank"
	PicPay       Institution = "picpay"
	SumUp        Institution = "sumup"
	ThirdParty   Institution = "third_party"
	CashDrawer   Institution = "cash"
	CourtesyInst Institution = "courtesy"
)

const (
	Individual Ownership = "individual" // PF
	Business   Ownership = "business"   // PJ
)

type (
	Kind          string
	Status        string
	PaymentMethod string
	Institution   string
	Ownership     string

	// Installment marks one charge of a parceled batch, 1-indexed.
	Installment struct {
		Index int
		Count int
	}

	// LedgerEntry is one cash-basis transaction. Ref is the storage row
	// reference assigned by the backing store and is empty for entries
	// that have not been persisted yet.
	LedgerEntry struct {
		Ref             string
		CompetenceDate  Date
		CashDate        Date // zero until settled
		Kind            Kind
		Category        string
		Description     string
		Counterparty    string
		PaymentMethod   PaymentMethod
		Institution     Institution
		Ownership       Ownership
		Installment     *Installment
		Amount          Money
		Status          Status
		Notes           string
		ReceivableMonth string
	}
)

var (
	ErrEmptyDescription   = errors.New("empty description")
	ErrInvalidKind        = errors.New("invalid kind")
	ErrInvalidStatus      = errors.New("invalid status")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidInstallment = errors.New("invalid installment")
	ErrMissingDate        = errors.New("missing competence date")
)

// PaymentMethods lists the closed set of accepted payment methods.
func PaymentMethods() []PaymentMethod {
	return []PaymentMethod{Pix, CashMoney, CreditCard, DebitCard, BankSlip, Transfer, Trust, Courtesy}
}

// Institutions lists the closed set of accepted institutions.
func Institutions() []Institution {
	return []Institution{Nubank, PicPay, SumUp, ThirdParty, CashDrawer, CourtesyInst}
}

// Ownerships lists the closed set of account ownerships.
func Ownerships() []Ownership {
	return []Ownership{Individual, Business}
}

func (k Kind) Valid() bool {
	return k == Income || k == Expense
}

func (s Status) Valid() bool {
	return s == Paid || s == Pending || s == Cancelled
}

func (p PaymentMethod) Valid() bool {
	for _, m := range PaymentMethods() {
		if p == m {
			return true
		}
	}
	return false
}

func (i Institution) Valid() bool {
	for _, known := range Institutions() {
		if i == known {
			return true
		}
	}
	return false
}

func (o Ownership) Valid() bool {
	return o == Individual || o == Business
}

func (ins Installment) Validate() error {
	if ins.Count < 1 || ins.Index < 1 || ins.Index > ins.Count {
		return fmt.Errorf("%w: %d/%d", ErrInvalidInstallment, ins.Index, ins.Count)
	}
	return nil
}

// Validate checks the fields required to persist an entry. Optional
// dimension fields (payment method, institution, ownership) may be empty:
// entries without them are kept in the totals but skipped in the
// per-dimension breakdowns.
func (e LedgerEntry) Validate() error {
	if e.CompetenceDate.IsZero() {
		return ErrMissingDate
	}
	if !e.Kind.Valid() {
		return ErrInvalidKind
	}
	if !e.Status.Valid() {
		return ErrInvalidStatus
	}
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if e.PaymentMethod != "" && !e.PaymentMethod.Valid() {
		return fmt.Errorf("unknown payment method %q", e.PaymentMethod)
	}
	if e.Installment != nil {
		return e.Installment.Validate()
	}
	return nil
}

// BucketMonth returns the YYYY-MM month this entry rolls up into and
// whether the entry participates in monthly buckets at all. Settled
// entries bucket by cash month; a pending entry has no cash date yet and
// buckets by its competence month. A paid entry whose cash date was
// unparseable falls back to the competence month so the totals stay
// available with dirty source data. Cancelled entries never bucket.
func (e LedgerEntry) BucketMonth() (string, bool) {
	if e.Status == Cancelled {
		return "", false
	}
	if e.Status == Paid && !e.CashDate.IsZero() {
		return e.CashDate.MonthKey(), true
	}
	if e.CompetenceDate.IsZero() {
		return "", false
	}
	return e.CompetenceDate.MonthKey(), true
}
