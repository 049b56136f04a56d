package core

import (
	"errors"
	"strings"
	"time"
)

const (
	CreditCard   DebtCategory = "credit_card"
	AutoLoan     DebtCategory = "auto_loan"
	Mortgage     DebtCategory = "mortgage"
	StudentLoan  DebtCategory = "student_loan"
	PersonalLoan DebtCategory = "personal_loan"
	MedicalBill  DebtCategory = "medical_bill"
	OtherDebt    DebtCategory = "other"
)

const (
	Monthly   PaymentFrequency = "monthly"
	Biweekly  PaymentFrequency = "biweekly"
	Weekly    PaymentFrequency = "weekly"
	Quarterly PaymentFrequency = "quarterly"
)

const (
	MinimumPayment PaymentKind = "minimum"
	ExtraPayment   PaymentKind = "extra"
	FullPayment    PaymentKind = "full"
)

const (
	Income  ItemType = "income"
	Expense ItemType = "expense"
)

const maxNameLength = 100

type (
	DebtCategory     string
	PaymentFrequency string
	PaymentKind      string
	ItemType         string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	User struct {
		ID           string    `json:"id"`
		Username     string    `json:"username"`
		FullName     string    `json:"fullName"`
		Email        string    `json:"email,omitempty"`
		PasswordHash string    `json:"-"`
		CreatedAt    time.Time `json:"createdAt"`
	}

	Debt struct {
		ID             string           `json:"id"`
		UserID         string           `json:"userId"`
		Name           string           `json:"name"`
		Balance        Money            `json:"balance"`
		InterestRate   Rate             `json:"interestRate"`
		MinimumPayment Money            `json:"minimumPayment"`
		DueDay         int              `json:"dueDate"`
		Category       DebtCategory     `json:"debtType"`
		Frequency      PaymentFrequency `json:"paymentFrequency"`
		CreatedAt      time.Time        `json:"createdAt"`
	}

	Payment struct {
		ID        string      `json:"id"`
		DebtID    string      `json:"debtId"`
		UserID    string      `json:"userId"`
		Amount    Money       `json:"amount"`
		PaidAt    Date        `json:"paymentDate"`
		Kind      PaymentKind `json:"paymentType"`
		CreatedAt time.Time   `json:"createdAt"`
	}

	BudgetItem struct {
		ID        string    `json:"id"`
		UserID    string    `json:"userId"`
		Name      string    `json:"name"`
		Amount    Money     `json:"amount"`
		Category  string    `json:"category"`
		Type      ItemType  `json:"type"`
		Essential bool      `json:"isEssential"`
		Fixed     bool      `json:"isFixed"`
		Protected bool      `json:"isProtected"`
		CreatedAt time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidDay       = errors.New("invalid day")
	ErrInvalidMonth     = errors.New("invalid month")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidPrecision = errors.New("amount has more than two decimal places")
	ErrAmountOutOfRange = errors.New("amount exceeds 999,999,999.99")
	ErrInvalidRate      = errors.New("interest rate must be between 0 and 100")
	ErrInvalidDueDay    = errors.New("due day must be between 1 and 31")
	ErrInvalidCategory  = errors.New("invalid debt category")
	ErrInvalidFrequency = errors.New("invalid payment frequency")
	ErrInvalidKind      = errors.New("invalid payment kind")
	ErrInvalidItemType  = errors.New("invalid budget item type")
	ErrEmptyName        = errors.New("empty name")
	ErrNameTooLong      = errors.New("name too long (max 100 characters)")
	ErrEmptyCategory    = errors.New("empty category")
	ErrMissingDebt      = errors.New("payment must reference a debt")
	ErrMissingOwner     = errors.New("record has no owner")
)

// DebtCategories lists every accepted category in display order.
var DebtCategories = []DebtCategory{CreditCard, AutoLoan, Mortgage, StudentLoan, PersonalLoan, MedicalBill, OtherDebt}

func (c DebtCategory) Valid() bool {
	for _, known := range DebtCategories {
		if c == known {
			return true
		}
	}
	return false
}

// Label returns a human name for the category.
func (c DebtCategory) Label() string {
	switch c {
	case CreditCard:
		return "Credit Card"
	case AutoLoan:
		return "Auto Loan"
	case Mortgage:
		return "Mortgage"
	case StudentLoan:
		return "Student Loan"
	case PersonalLoan:
		return "Personal Loan"
	case MedicalBill:
		return "Medical Bill"
	default:
		return "Other"
	}
}

func (f PaymentFrequency) Valid() bool {
	switch f {
	case Monthly, Biweekly, Weekly, Quarterly:
		return true
	}
	return false
}

func (k PaymentKind) Valid() bool {
	switch k {
	case MinimumPayment, ExtraPayment, FullPayment:
		return true
	}
	return false
}

func (t ItemType) Valid() bool {
	return t == Income || t == Expense
}

func (d Date) Validate() error {
	if d.IsZero() {
		return errors.New("date cannot be zero")
	}
	_, month, day := d.Date()
	if day < 1 || day > 31 {
		return ErrInvalidDay
	}
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate reads YYYY-MM-DD or a full RFC 3339 timestamp.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return Date{Time: t}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return Date{}, errors.New("invalid date: expected YYYY-MM-DD")
	}
	return Date{Time: t.UTC()}, nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format("2006-01-02") + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDate(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (u User) OwnerID() string       { return u.ID }
func (d Debt) OwnerID() string       { return d.UserID }
func (p Payment) OwnerID() string    { return p.UserID }
func (b BudgetItem) OwnerID() string { return b.UserID }

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > maxNameLength {
		return ErrNameTooLong
	}
	return nil
}

func (d Debt) Validate() error {
	if strings.TrimSpace(d.UserID) == "" {
		return ErrMissingOwner
	}
	if err := validateName(d.Name); err != nil {
		return err
	}
	if err := d.Balance.Validate(); err != nil {
		return err
	}
	if err := d.InterestRate.Validate(); err != nil {
		return err
	}
	if err := d.MinimumPayment.Validate(); err != nil {
		return err
	}
	if d.DueDay < 1 || d.DueDay > 31 {
		return ErrInvalidDueDay
	}
	if !d.Category.Valid() {
		return ErrInvalidCategory
	}
	if !d.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	return nil
}

func (p Payment) Validate() error {
	if strings.TrimSpace(p.UserID) == "" {
		return ErrMissingOwner
	}
	if strings.TrimSpace(p.DebtID) == "" {
		return ErrMissingDebt
	}
	if err := p.Amount.Validate(); err != nil {
		return err
	}
	if err := p.PaidAt.Validate(); err != nil {
		return err
	}
	if !p.Kind.Valid() {
		return ErrInvalidKind
	}
	return nil
}

func (b BudgetItem) Validate() error {
	if strings.TrimSpace(b.UserID) == "" {
		return ErrMissingOwner
	}
	if err := validateName(b.Name); err != nil {
		return err
	}
	if err := b.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	if !b.Type.Valid() {
		return ErrInvalidItemType
	}
	return nil
}
