package storage

// Row types mirror the tables in migrations/ one to one.

type User struct {
	ID           string
	Username     string
	FullName     string
	Email        string
	PasswordHash string
	CreatedAt    string
}

type Debt struct {
	ID                  string
	UserID              string
	Name                string
	BalanceCents        int64
	InterestRateBp      int64
	MinimumPaymentCents int64
	DueDay              int64
	Category            string
	Frequency           string
	CreatedAt           string
}

type Payment struct {
	ID          string
	DebtID      string
	UserID      string
	AmountCents int64
	PaidAt      string
	Kind        string
	CreatedAt   string
}

type BudgetItem struct {
	ID          string
	UserID      string
	Name        string
	AmountCents int64
	Category    string
	ItemType    string
	IsEssential bool
	IsFixed     bool
	IsProtected bool
	CreatedAt   string
}
